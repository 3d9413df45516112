package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/Iron-Ham/qanotes/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or modify qanotes configuration",
	Long: `View or modify qanotes configuration.

Without arguments, displays the current configuration.
Use subcommands to modify settings or create a config file.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the user's config file.

Keys use dot notation, e.g.:
  qanotes config set render.max_releases 10
  qanotes config set render.timestamp false
  qanotes config set output.dir site

Valid keys:
  render.max_releases  - Releases shown per page
  render.locale        - Locale of the rendered text
  render.timestamp     - Include the build time in the header (true/false)
  tickets.strict       - Fail on ticket URLs no rule recognizes (true/false)
  logging.enabled      - Write debug logs (true/false)
  logging.level        - Options: debug, info, warn, error
  logging.dir          - Directory for qanotes.log (empty logs to stderr)
  logging.max_size_mb  - Log size that triggers rotation
  logging.max_backups  - Rotated logs to keep
  output.dir           - Directory for rendered pages
  output.suffix        - Extension of rendered pages

Ticket rules are lists; edit them in the config file.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a default config file",
	Long:  `Create a default config file at ~/.config/qanotes/config.yaml with all available options.`,
	RunE:  runConfigInit,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show the config file path",
	RunE:  runConfigPath,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configPathCmd)
}

// settableKeys maps each scalar key to its value type.
var settableKeys = map[string]string{
	"render.max_releases": "int",
	"render.locale":       "string",
	"render.timestamp":    "bool",
	"tickets.strict":      "bool",
	"logging.enabled":     "bool",
	"logging.level":       "string",
	"logging.dir":         "string",
	"logging.max_size_mb": "int",
	"logging.max_backups": "int",
	"output.dir":          "string",
	"output.suffix":       "string",
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	if _, err := loadConfig(); err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if used := viper.ConfigFileUsed(); used != "" {
		_, _ = fmt.Fprintf(out, "# Config file: %s\n", used)
	} else {
		_, _ = fmt.Fprintln(out, "# Config file: (none - using defaults)")
	}

	data, err := yaml.Marshal(viper.AllSettings())
	if err != nil {
		return fmt.Errorf("failed to format configuration: %w", err)
	}
	_, err = out.Write(data)
	return err
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	value := args[1]

	keyType, ok := settableKeys[key]
	if !ok {
		return fmt.Errorf("unknown configuration key: %s\nRun 'qanotes config set --help' to see valid keys", key)
	}

	var typedValue any
	switch keyType {
	case "string":
		typedValue = value
	case "bool":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: expected true or false", key)
		}
		typedValue = b
	case "int":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: expected integer", key)
		}
		typedValue = n
	}

	previous := viper.Get(key)
	viper.Set(key, typedValue)
	if _, err := config.Load(); err != nil {
		viper.Set(key, previous)
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}

	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		configFile = config.ConfigFile()
	}
	if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Set %s = %v\n", key, typedValue)
	_, _ = fmt.Fprintf(out, "Config saved to %s\n", configFile)
	return nil
}

const defaultConfigContent = `# qanotes configuration

render:
  # Number of releases, newest first, shown on a page
  max_releases: 5
  # Locale of the rendered notes
  locale: en-US
  # Include "built on <time>" in the page header; false gives reproducible pages
  timestamp: true

tickets:
  # Fail the render when a ticket URL matches no rule
  strict: true
  # Rules are tried in order before the built-in GitHub, GitLab and Jira rules.
  # Display may use {host}, {owner}, {repo} and {last}.
  rules: []
  #  - pattern: "https://tracker.example.com/ticket/*"
  #    display: "TKT-{last}"

logging:
  enabled: false
  # Options: debug, info, warn, error
  level: info
  # Directory for qanotes.log; empty logs to stderr
  dir: ""
  max_size_mb: 10
  max_backups: 3

output:
  # Directory for rendered pages; empty writes next to each database
  dir: ""
  suffix: .html
`

func runConfigInit(cmd *cobra.Command, args []string) error {
	configDir := config.ConfigDir()
	configFile := config.ConfigFile()

	if _, err := os.Stat(configFile); err == nil {
		return fmt.Errorf("config file already exists at %s\nUse 'qanotes config set' to modify values", configFile)
	}

	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(configFile, []byte(defaultConfigContent), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Created config file at %s\n", configFile)
	_, _ = fmt.Fprintln(out, "Edit this file to customize qanotes' behavior.")
	return nil
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if used := viper.ConfigFileUsed(); used != "" {
		_, _ = fmt.Fprintf(out, "Active config: %s\n", used)
	} else {
		_, _ = fmt.Fprintf(out, "Default path: %s (not created)\n", config.ConfigFile())
	}

	_, _ = fmt.Fprintln(out, "\nSearch paths:")
	_, _ = fmt.Fprintf(out, "  1. %s\n", config.ConfigFile())
	_, _ = fmt.Fprintln(out, "  2. $HOME/.config/qanotes/config.yaml")
	_, _ = fmt.Fprintln(out, "  3. ./config.yaml (current directory)")
	_, _ = fmt.Fprintln(out, "\nEnvironment variables: QANOTES_* (e.g., QANOTES_RENDER_MAX_RELEASES)")
	return nil
}
