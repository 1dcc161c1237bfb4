package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korpus-labs/korpus-cli/internal/core/domain"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return buf.String(), err
}

func resetIngestFlags() {
	ingestText = ""
	ingestTitle = ""
	ingestSummary = ""
}

func TestIngestCmd_Use(t *testing.T) {
	assert.Equal(t, "ingest [ref...]", ingestCmd.Use)
}

func TestIngestCmd_NoInput(t *testing.T) {
	stubs, cleanup := setupTestServices()
	defer cleanup()
	defer resetIngestFlags()
	_ = stubs

	_, err := execute(t, "ingest")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIngestCmd_RawText(t *testing.T) {
	stubs, cleanup := setupTestServices()
	defer cleanup()
	defer resetIngestFlags()

	stubs.ingest.doc = domain.Document{
		ID:       "doc-1",
		Title:    "Notes",
		ChunkIDs: []string{"doc-1:0"},
		Summaries: domain.Summaries{
			Standard: "[STANDARD SUMMARY]\nAbout notes.",
		},
	}

	out, err := execute(t, "ingest", "--text", "some note text", "--title", "Notes")

	require.NoError(t, err)
	assert.Contains(t, out, `Ingested "Notes" (doc-1), 1 chunks.`)
	assert.Contains(t, out, "[STANDARD SUMMARY]")
}

func TestIngestCmd_TextWithRefsRejected(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	defer resetIngestFlags()

	_, err := execute(t, "ingest", "--text", "raw", "some-file.txt")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestIngestCmd_SingleRef(t *testing.T) {
	stubs, cleanup := setupTestServices()
	defer cleanup()
	defer resetIngestFlags()

	stubs.ingest.doc = domain.Document{ID: "doc-2", Title: "report", ChunkIDs: []string{"doc-2:0", "doc-2:1"}}

	out, err := execute(t, "ingest", "/tmp/report.txt")

	require.NoError(t, err)
	assert.Contains(t, out, `Ingested "report" (doc-2), 2 chunks.`)
}

func TestIngestCmd_SingleRefFailure(t *testing.T) {
	stubs, cleanup := setupTestServices()
	defer cleanup()
	defer resetIngestFlags()

	stubs.ingest.err = domain.NewIngestionError("/tmp/missing.txt", errors.New("no such file"))

	_, err := execute(t, "ingest", "/tmp/missing.txt")

	require.Error(t, err)
	var ingErr *domain.IngestionError
	assert.ErrorAs(t, err, &ingErr)
}

func TestIngestCmd_Batch(t *testing.T) {
	stubs, cleanup := setupTestServices()
	defer cleanup()
	defer resetIngestFlags()

	stubs.ingest.batch = domain.BatchResult{
		Items: []domain.BatchItemResult{
			{Ref: "a.txt", DocumentID: "doc-a", Title: "A"},
			{Ref: "b.txt", Err: errors.New("unreadable")},
			{Ref: "c.txt", DocumentID: "doc-c", Title: "C"},
		},
		UnifiedSummary: "All three cover the launch plan.",
	}

	out, err := execute(t, "ingest", "a.txt", "b.txt", "c.txt")

	require.NoError(t, err)
	assert.Contains(t, out, "ok    a.txt (doc-a)")
	assert.Contains(t, out, "fail  b.txt: unreadable")
	assert.Contains(t, out, "Ingested 2 of 3 sources.")
	assert.Contains(t, out, "All three cover the launch plan.")
}

func TestIngestCmd_InvalidSummaryLevel(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	defer resetIngestFlags()

	_, err := execute(t, "ingest", "--summary", "verbose", "a.txt")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
