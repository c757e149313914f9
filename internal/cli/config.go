package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/trustie/internal/model"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage Trustie configuration",
	Long: `Manage Trustie configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (TRUSTIE_*)
3. Config file (~/.trustie/config.yaml)
4. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration after merging defaults, config file, env vars and flags.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig(viper.GetViper())
		if err != nil {
			return err
		}

		if configFile := viper.ConfigFileUsed(); configFile != "" {
			fmt.Fprintf(os.Stderr, "Configuration file: %s\n\n", configFile)
		} else {
			fmt.Fprintf(os.Stderr, "No configuration file found (using defaults)\n\n")
		}

		cfg.Backend.APIKey = maskSecret(cfg.Backend.APIKey)

		yamlData, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}

		fmt.Println(string(yamlData))
		fmt.Println("Configuration hierarchy (highest to lowest priority):")
		fmt.Println("  1. CLI flags")
		fmt.Println("  2. Environment variables (TRUSTIE_*, ANTHROPIC_API_KEY, OPENAI_API_KEY, OLLAMA_BASE_URL)")
		fmt.Println("  3. Config file (~/.trustie/config.yaml)")
		fmt.Println("  4. Defaults")

		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize default configuration file",
	Long:  `Create a default configuration file at ~/.trustie/config.yaml with all available options.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("error finding home directory: %w", err)
		}

		configPath := filepath.Join(home, ".trustie", "config.yaml")
		if err := WriteDefaultConfig(configPath); err != nil {
			return err
		}

		fmt.Printf("✓ Created default configuration: %s\n", configPath)
		fmt.Printf("\nTo view the configuration:\n")
		fmt.Printf("  trustie config show\n")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

// omitted lists keys that the YAML dump leaves out when empty.
// They still need defaults so environment variables can reach them.
var omitted = []string{
	"backend.api_key",
	"backend.base_url",
	"backend.http_proxy",
	"backend.https_proxy",
	"misconceptions.path",
}

// configureEnv makes TRUSTIE_SECTION_KEY variables override section.key
func configureEnv(v *viper.Viper) {
	v.SetEnvPrefix("TRUSTIE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// LoadConfig merges defaults, config file, environment and bound flags
// from v into a model.Config. Provider API keys fall back to their
// conventional environment variables.
func LoadConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := setDefaults(v, cfg); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	applyEnvKeys(cfg, os.Getenv)
	return cfg, nil
}

// setDefaults registers every field of cfg as a viper default
func setDefaults(v *viper.Viper, cfg *model.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode defaults: %w", err)
	}

	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("decode defaults: %w", err)
	}

	setTree(v, "", tree)
	for _, key := range omitted {
		v.SetDefault(key, "")
	}
	return nil
}

func setTree(v *viper.Viper, prefix string, node map[string]any) {
	for k, val := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if child, ok := val.(map[string]any); ok {
			setTree(v, key, child)
			continue
		}
		v.SetDefault(key, val)
	}
}

// applyEnvKeys fills credentials from the provider's conventional variables
func applyEnvKeys(cfg *model.Config, getenv func(string) string) {
	switch strings.ToLower(strings.TrimSpace(cfg.Backend.Provider)) {
	case "anthropic", "claude":
		if cfg.Backend.APIKey == "" {
			cfg.Backend.APIKey = getenv("ANTHROPIC_API_KEY")
		}
	case "openai":
		if cfg.Backend.APIKey == "" {
			cfg.Backend.APIKey = getenv("OPENAI_API_KEY")
		}
	case "ollama":
		if cfg.Backend.BaseURL == "" {
			cfg.Backend.BaseURL = getenv("OLLAMA_BASE_URL")
		}
	}
}

// WriteDefaultConfig writes the default configuration to path.
// An existing file is never overwritten.
func WriteDefaultConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s\nUse 'trustie config show' to view it, or delete it first to recreate", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	yamlData, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	var b strings.Builder
	b.WriteString("# Trustie Configuration File\n")
	b.WriteString("#\n")
	b.WriteString("# Configuration hierarchy (highest to lowest priority):\n")
	b.WriteString("#   1. CLI flags\n")
	b.WriteString("#   2. Environment variables (TRUSTIE_*)\n")
	b.WriteString("#   3. This config file\n")
	b.WriteString("#   4. Built-in defaults\n\n")
	b.Write(yamlData)
	b.WriteString("\n# API Keys (recommended to use environment variables instead):\n")
	b.WriteString("#   export ANTHROPIC_API_KEY=sk-ant-...\n")
	b.WriteString("#   export OPENAI_API_KEY=sk-...\n")
	b.WriteString("#   export OLLAMA_BASE_URL=http://localhost:11434\n")

	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		return fmt.Errorf("error writing config: %w", err)
	}
	return nil
}

func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}
