package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	configfile "github.com/korpus-labs/korpus-cli/internal/adapters/driven/config/file"
)

// setupTestConfig installs a config store rooted in a temp directory.
func setupTestConfig(t *testing.T) {
	t.Helper()

	old := configStore
	store, err := configfile.NewConfigStore(t.TempDir())
	require.NoError(t, err)
	configStore = store
	t.Cleanup(func() {
		configStore = old
	})
}

func TestConfigCmd_HasSubcommands(t *testing.T) {
	commands := configCmd.Commands()
	names := make([]string, 0, len(commands))
	for _, cmd := range commands {
		names = append(names, cmd.Name())
	}

	assert.Contains(t, names, "get")
	assert.Contains(t, names, "set")
	assert.Contains(t, names, "set-key")
}

func TestConfigSetAndGet(t *testing.T) {
	setupTestConfig(t)

	out, err := execute(t, "config", "set", "retrieval.top_k", "8")
	require.NoError(t, err)
	assert.Contains(t, out, "Set retrieval.top_k.")

	out, err = execute(t, "config", "get", "retrieval.top_k")
	require.NoError(t, err)
	assert.Contains(t, out, "8")
}

func TestConfigSet_ParsesTypes(t *testing.T) {
	setupTestConfig(t)

	_, err := execute(t, "config", "set", "retrieval.min_score", "0.4")
	require.NoError(t, err)
	assert.Equal(t, 0.4, configStore.GetFloat("retrieval.min_score"))

	_, err = execute(t, "config", "set", "storage.backend", "sqlite")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", configStore.GetString("storage.backend"))
}

func TestConfigGet_MissingKey(t *testing.T) {
	setupTestConfig(t)

	_, err := execute(t, "config", "get", "no.such.key")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not set")
}

func TestConfigGet_MasksSecrets(t *testing.T) {
	setupTestConfig(t)

	require.NoError(t, configStore.Set("generation.api_key", "sk-ant-abcdef123456"))

	out, err := execute(t, "config", "get", "generation.api_key")

	require.NoError(t, err)
	assert.NotContains(t, out, "sk-ant-abcdef123456")
	assert.Contains(t, out, "...")
}

func TestConfigShow(t *testing.T) {
	setupTestConfig(t)

	require.NoError(t, configStore.Set("embedding.provider", "ollama"))
	require.NoError(t, configStore.Set("embedding.model", "nomic-embed-text"))

	out, err := execute(t, "config")

	require.NoError(t, err)
	assert.Contains(t, out, "[Storage]")
	assert.Contains(t, out, "[Embedding]")
	assert.Contains(t, out, "Ollama (local)")
	assert.Contains(t, out, "nomic-embed-text")
	assert.Contains(t, out, "Config file:")
}

func TestParseValue(t *testing.T) {
	assert.Equal(t, true, parseValue("true"))
	assert.Equal(t, int64(42), parseValue("42"))
	assert.Equal(t, 0.25, parseValue("0.25"))
	assert.Equal(t, "snapshot", parseValue("snapshot"))
}

func TestIsSecretKey(t *testing.T) {
	assert.True(t, isSecretKey("embedding.api_key"))
	assert.True(t, isSecretKey("sources.github_token"))
	assert.False(t, isSecretKey("storage.backend"))
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "****", maskAPIKey("short"))
	assert.Equal(t, "sk-a...wxyz", maskAPIKey("sk-abcdefghijklmnopqrstuvwxyz"))
}
