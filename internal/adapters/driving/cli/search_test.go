package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korpus-labs/korpus-cli/internal/core/domain"
)

func TestSearchCmd_Use(t *testing.T) {
	assert.Equal(t, "search [query]", searchCmd.Use)
}

func TestSearchCmd_RequiresExactlyOneArg(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "search")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestSearchCmd_HasLimitFlag(t *testing.T) {
	flag := searchCmd.Flags().Lookup("limit")
	require.NotNil(t, flag)
	assert.Equal(t, "n", flag.Shorthand)
	assert.Equal(t, "5", flag.DefValue)
}

func TestSearchCmd_PrintsResults(t *testing.T) {
	stubs, cleanup := setupTestServices()
	defer cleanup()

	stubs.search.results = []domain.ScoredChunk{
		{
			Chunk: domain.Chunk{ID: "doc-1:0", DocumentID: "doc-1", Text: "the quarterly numbers improved"},
			Score: 0.87,
		},
	}

	out, err := execute(t, "search", "quarterly numbers")

	require.NoError(t, err)
	assert.Contains(t, out, "Results:")
	assert.Contains(t, out, "doc-1:0")
	assert.Contains(t, out, "0.87")
	assert.Contains(t, out, "the quarterly numbers improved")
}

func TestSearchCmd_NoResults(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "search", "nothing matches")

	require.NoError(t, err)
	assert.Contains(t, out, "No results found.")
}

func TestSearchCmd_JSONOutput(t *testing.T) {
	stubs, cleanup := setupTestServices()
	defer cleanup()
	defer func() { searchJSON = false }()

	stubs.search.results = []domain.ScoredChunk{
		{Chunk: domain.Chunk{ID: "doc-1:2", DocumentID: "doc-1", Position: 2, Text: "x"}, Score: 0.5},
	}

	out, err := execute(t, "search", "--json", "query")

	require.NoError(t, err)
	assert.Contains(t, out, `"chunk_id": "doc-1:2"`)
	assert.Contains(t, out, `"position": 2`)
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "short text", snippet("short text", 120))
	assert.Equal(t, "a b c", snippet("a\n b\t c", 120))

	long := snippet("word word word word word", 9)
	assert.Equal(t, "word word...", long)
}
