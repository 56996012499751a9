package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vmunix/arrbot/internal/config"
)

var version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "arrbot",
	Short: "Matrix bot for Sonarr and Radarr",
	Long: `arrbot - Matrix bot for Sonarr and Radarr

Answers chat commands against Sonarr and Radarr and posts
download notifications received over webhooks.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: discovered)")

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("arrbot {{.Version}}\n")
}

// resolveConfigPath returns the --config value or the discovered path.
func resolveConfigPath(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if configPath != "" {
		return configPath, nil
	}
	path, err := config.Discover()
	if err != nil {
		return "", fmt.Errorf("%w (run 'arrbot config init' or pass --config)", err)
	}
	return path, nil
}
