package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/korpus-labs/korpus-cli/internal/core/domain"
)

// answerReceived carries a completed answer into the update loop.
type answerReceived struct {
	question string
	answer   domain.Answer
}

// statusLoaded carries the store status for the header line.
type statusLoaded struct {
	status domain.StoreStatus
}

// errorOccurred carries a failed operation into the update loop.
type errorOccurred struct {
	err error
}

// App is the interactive ask session following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *Styles

	input    textinput.Model
	view     viewport.Model
	spin     spinner.Model
	asking   bool
	question string
	answer   *domain.Answer
	status   *domain.StoreStatus
	err      error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new ask session with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	input := textinput.New()
	input.Placeholder = "Ask a question about your documents..."
	input.Focus()
	input.CharLimit = 500

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return &App{
		ports:  ports,
		ctx:    context.Background(),
		styles: DefaultStyles(),
		input:  input,
		view:   viewport.New(80, 16),
		spin:   spin,
		width:  80,
		height: 24,
	}, nil
}

// WithContext sets the context used for service calls.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init loads the store status and starts the input cursor.
func (a *App) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, a.loadStatus())
}

// Update handles messages for the ask session.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.view.Width = msg.Width - 4
		a.view.Height = msg.Height - 8
		a.ready = true
		return a, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return a, tea.Quit
		case tea.KeyEnter:
			return a, a.submit()
		}

	case answerReceived:
		a.asking = false
		a.question = msg.question
		a.answer = &msg.answer
		a.err = nil
		a.view.SetContent(a.renderAnswer())
		a.view.GotoTop()
		return a, nil

	case statusLoaded:
		a.status = &msg.status
		return a, nil

	case errorOccurred:
		a.asking = false
		a.err = msg.err
		return a, nil

	case spinner.TickMsg:
		if !a.asking {
			return a, nil
		}
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	if cmd != nil {
		cmds = append(cmds, cmd)
	}
	a.view, cmd = a.view.Update(msg)
	if cmd != nil {
		cmds = append(cmds, cmd)
	}
	return a, tea.Batch(cmds...)
}

// View renders the session.
func (a *App) View() string {
	var b strings.Builder

	b.WriteString(a.styles.Title.Render("Korpus"))
	if a.status != nil {
		b.WriteString(a.styles.Muted.Render(fmt.Sprintf(
			"  %d documents, %d chunks", a.status.DocumentCount, a.status.ChunkCount)))
	}
	b.WriteString("\n\n")

	b.WriteString(a.styles.Prompt.Render("? "))
	b.WriteString(a.input.View())
	b.WriteString("\n\n")

	switch {
	case a.asking:
		b.WriteString(a.spin.View())
		b.WriteString(a.styles.Muted.Render(" thinking..."))
	case a.err != nil:
		b.WriteString(a.styles.Error.Render(fmt.Sprintf("Error: %v", a.err)))
	case a.answer != nil:
		b.WriteString(a.view.View())
	default:
		b.WriteString(a.styles.Muted.Render("Type a question and press Enter."))
	}

	b.WriteString("\n\n")
	b.WriteString(a.styles.Muted.Render("enter ask | up/down scroll | esc quit"))
	return b.String()
}

// submit starts answering the typed question.
func (a *App) submit() tea.Cmd {
	question := strings.TrimSpace(a.input.Value())
	if question == "" || a.asking {
		return nil
	}

	a.asking = true
	a.err = nil
	a.input.SetValue("")

	return tea.Batch(a.spin.Tick, a.ask(question))
}

// ask calls the answerer off the update loop.
func (a *App) ask(question string) tea.Cmd {
	return func() tea.Msg {
		answer, err := a.ports.Answer.Answer(a.ctx, question, domain.AskOptions{})
		if err != nil {
			return errorOccurred{err: err}
		}
		return answerReceived{question: question, answer: answer}
	}
}

// loadStatus fetches the store status for the header.
func (a *App) loadStatus() tea.Cmd {
	return func() tea.Msg {
		status, err := a.ports.Status.Status(a.ctx)
		if err != nil {
			return errorOccurred{err: err}
		}
		return statusLoaded{status: status}
	}
}

// renderAnswer formats the current answer with its citations.
func (a *App) renderAnswer() string {
	var b strings.Builder

	b.WriteString(a.styles.Prompt.Render(a.question))
	b.WriteString("\n\n")
	b.WriteString(a.styles.Answer.Render(a.answer.Text))

	if len(a.answer.CitedDocumentIDs) > 0 {
		b.WriteString("\n\n")
		b.WriteString(a.styles.Citation.Render("Sources:"))
		for _, id := range a.answer.CitedDocumentIDs {
			b.WriteString("\n")
			b.WriteString(a.styles.Citation.Render("  " + id))
		}
	}
	return b.String()
}
