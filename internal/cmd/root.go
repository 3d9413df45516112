package cmd

import (
	"fmt"
	"strings"

	"github.com/Iron-Ham/qanotes/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	// configErr records a failure to read an explicitly named config file.
	configErr error
)

var rootCmd = &cobra.Command{
	Use:   "qanotes",
	Short: "Render release databases into QA Notes pages",
	Long: `qanotes turns a release-notes database into a single self-contained
HTML page for QA: the newest releases with their public and internal
notes, testing instructions, and ticket links.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is $HOME/.config/qanotes/config.yaml)")
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath("$HOME/.config/qanotes")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("QANOTES")
	// QANOTES_RENDER_MAX_RELEASES for render.max_releases
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists; only an explicit --config must exist
	configErr = nil
	if err := viper.ReadInConfig(); err != nil && cfgFile != "" {
		configErr = fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
	}
}

// loadConfig returns the validated configuration for the current invocation.
func loadConfig() (*config.Config, error) {
	if configErr != nil {
		return nil, configErr
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
