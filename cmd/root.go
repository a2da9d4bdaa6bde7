package cmd

import (
	"github.com/spf13/cobra"

	"github.com/bnema/wallmon/internal/config"
	"github.com/bnema/wallmon/internal/logger"
)

var (
	// Version is set during build
	Version = "0.1.0-dev"

	configPath string

	rootCmd = &cobra.Command{
		Use:   "wallmon",
		Short: "Wallmon - looping video wallpapers",
		Long: `Wallmon renders looping video files onto the Windows desktop background,
behind the icons, with a separate video and frame rate per monitor.`,
		SilenceUsage: true,
	}
)

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s\n" .Version}}`)
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
}

// initConfig loads the persisted assignments and applies the configured
// log level. Called by every command that touches the config.
func initConfig() error {
	if configPath != "" {
		config.SetConfigPath(configPath)
	}
	if err := config.Init(); err != nil {
		return err
	}
	logger.SetLevel(config.Get().Logging.LogLevel)
	return nil
}
