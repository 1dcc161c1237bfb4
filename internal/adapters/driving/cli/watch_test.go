package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korpus-labs/korpus-cli/internal/core/domain"
)

func TestWatchCmd_Use(t *testing.T) {
	assert.Equal(t, "watch [dir]", watchCmd.Use)
}

func TestWatchCmd_RequiresExactlyOneArg(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "watch")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestWatchCmd_InvalidSummaryLevel(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	defer func() { watchSummary = "" }()

	_, err := execute(t, "watch", "--summary", "everything", "/tmp")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
