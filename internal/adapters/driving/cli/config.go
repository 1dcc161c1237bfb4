package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	configfile "github.com/korpus-labs/korpus-cli/internal/adapters/driven/config/file"
	"github.com/korpus-labs/korpus-cli/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage application configuration",
	Long: `View and change configuration values.

Keys use dot notation, e.g. storage.backend, chunking.max_size,
embedding.provider, generation.model. API keys are set with
'config set-key' which reads the secret without echoing it; they can
also be supplied via KORPUS_* environment variables.`,
	RunE: runConfigShow,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Print a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key [key]",
	Short: "Set a secret configuration value without echoing it",
	Long: `Reads the secret from the terminal with echo disabled and stores it
under the given key, e.g. embedding.api_key or sources.github_token.`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigSetKey,
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configSetKeyCmd)
	rootCmd.AddCommand(configCmd)
}

func initConfig() error {
	if configStore != nil {
		return nil
	}
	store, err := configfile.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config store: %w", err)
	}
	configStore = store
	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if err := initConfig(); err != nil {
		return err
	}

	settings, err := configfile.LoadSettings(configStore)
	if err != nil {
		return err
	}

	cmd.Println("Current Configuration")
	cmd.Println("=====================")
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Backend: %s\n", settings.Storage.Backend)
	if settings.Storage.Dir != "" {
		cmd.Printf("  Dir: %s\n", settings.Storage.Dir)
	}
	cmd.Println()

	cmd.Println("[Chunking]")
	cmd.Printf("  Max size: %d\n", settings.Chunking.MaxSize)
	cmd.Printf("  Overlap: %d\n", settings.Chunking.Overlap)
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  Top K: %d\n", settings.Retrieval.TopK)
	cmd.Printf("  Min score: %.2f\n", settings.Retrieval.MinScore)
	cmd.Println()

	cmd.Println("[Embedding]")
	printProvider(cmd, settings.Embedding.Provider, settings.Embedding.Model,
		settings.Embedding.BaseURL, settings.Embedding.APIKey, settings.Embedding.IsConfigured())
	cmd.Println()

	cmd.Println("[Generation]")
	printProvider(cmd, settings.Generation.Provider, settings.Generation.Model,
		settings.Generation.BaseURL, settings.Generation.APIKey, settings.Generation.IsConfigured())
	cmd.Println()

	cmd.Printf("Config file: %s\n", configStore.Path())
	return nil
}

func printProvider(cmd *cobra.Command, provider domain.AIProvider, model, baseURL, apiKey string, configured bool) {
	cmd.Printf("  Provider: %s\n", provider.Description())
	if model != "" {
		cmd.Printf("  Model: %s\n", model)
	}
	if provider.IsLocal() && baseURL != "" {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if provider.RequiresAPIKey() {
		if apiKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(apiKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status := "configured"
	if !configured {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	if err := initConfig(); err != nil {
		return err
	}

	value, ok := configStore.Get(args[0])
	if !ok {
		return fmt.Errorf("%w: key %q is not set", domain.ErrInvalidInput, args[0])
	}

	if isSecretKey(args[0]) {
		if s, isString := value.(string); isString {
			value = maskAPIKey(s)
		}
	}
	cmd.Printf("%v\n", value)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if err := initConfig(); err != nil {
		return err
	}

	key, raw := args[0], args[1]
	if err := configStore.Set(key, parseValue(raw)); err != nil {
		return fmt.Errorf("setting %s: %w", key, err)
	}

	cmd.Printf("Set %s.\n", key)
	return nil
}

func runConfigSetKey(cmd *cobra.Command, args []string) error {
	if err := initConfig(); err != nil {
		return err
	}

	cmd.Printf("Value for %s: ", args[0])
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	cmd.Println()
	if err != nil {
		return fmt.Errorf("reading secret: %w", err)
	}
	if len(secret) == 0 {
		return fmt.Errorf("%w: empty secret", domain.ErrInvalidInput)
	}

	if err := configStore.Set(args[0], string(secret)); err != nil {
		return fmt.Errorf("setting %s: %w", args[0], err)
	}

	cmd.Printf("Set %s.\n", args[0])
	return nil
}

// parseValue converts a flag string to the most specific TOML type.
func parseValue(raw string) any {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	// After the numeric checks so "1"/"0" stay integers.
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}

// isSecretKey reports whether a config key holds a credential.
func isSecretKey(key string) bool {
	return strings.HasSuffix(key, "api_key") || strings.HasSuffix(key, "token")
}

// maskAPIKey hides all but the first and last few characters of a key.
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
