package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korpus-labs/korpus-cli/internal/core/domain"
)

func TestAskCmd_Use(t *testing.T) {
	assert.Equal(t, "ask [question]", askCmd.Use)
}

func TestAskCmd_RequiresExactlyOneArg(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "ask")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestAskCmd_HasTopKFlag(t *testing.T) {
	flag := askCmd.Flags().Lookup("top-k")
	require.NotNil(t, flag)
	assert.Equal(t, "k", flag.Shorthand)
	assert.Equal(t, "5", flag.DefValue)
}

func TestAskCmd_PrintsAnswerWithSources(t *testing.T) {
	stubs, cleanup := setupTestServices()
	defer cleanup()

	stubs.answer.answer = domain.Answer{
		Text:             "The launch is in March.",
		CitedDocumentIDs: []string{"doc-1", "doc-3"},
	}

	out, err := execute(t, "ask", "when is the launch?")

	require.NoError(t, err)
	assert.Contains(t, out, "The launch is in March.")
	assert.Contains(t, out, "Sources:")
	assert.Contains(t, out, "doc-1")
	assert.Contains(t, out, "doc-3")
}

func TestAskCmd_NoContext(t *testing.T) {
	stubs, cleanup := setupTestServices()
	defer cleanup()

	stubs.answer.answer = domain.Answer{
		Text:      domain.NoRelevantContextMessage,
		NoContext: true,
	}

	out, err := execute(t, "ask", "something unknown")

	require.NoError(t, err)
	assert.Contains(t, out, domain.NoRelevantContextMessage)
	assert.NotContains(t, out, "Sources:")
}

func TestAskCmd_ExplicitZeroMinScore(t *testing.T) {
	stubs, cleanup := setupTestServices()
	defer cleanup()
	defer func() { askMinScore = domain.DefaultMinScore }()

	stubs.answer.answer = domain.Answer{Text: "Everything matched."}

	_, err := execute(t, "ask", "--min-score", "0", "question")

	require.NoError(t, err)
	require.NotNil(t, stubs.answer.lastOpts.MinScore)
	assert.Zero(t, *stubs.answer.lastOpts.MinScore)
}

func TestAskCmd_JSONOutput(t *testing.T) {
	stubs, cleanup := setupTestServices()
	defer cleanup()
	defer func() { askJSON = false }()

	stubs.answer.answer = domain.Answer{
		Text:             "Answer text.",
		CitedDocumentIDs: []string{"doc-1"},
	}

	out, err := execute(t, "ask", "--json", "question")

	require.NoError(t, err)
	assert.Contains(t, out, `"answer": "Answer text."`)
	assert.Contains(t, out, `"cited_document_ids"`)
}

func TestAskCmd_PropagatesError(t *testing.T) {
	stubs, cleanup := setupTestServices()
	defer cleanup()

	stubs.answer.err = domain.ErrGenerationFailed

	_, err := execute(t, "ask", "question")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
}
