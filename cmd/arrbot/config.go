package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vmunix/arrbot/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
}

var configTestCmd = &cobra.Command{
	Use:   "test [path]",
	Short: "Validate configuration file",
	Long:  "Validates config.toml syntax, required fields, and environment variable substitution without connecting to anything.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigTest,
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write an example configuration file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigInit,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configTestCmd)
	configCmd.AddCommand(configInitCmd)
}

func runConfigTest(cmd *cobra.Command, args []string) error {
	path, err := resolveConfigPath(args)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Validating %s...\n\n", path)

	cfg, err := config.Load(path)
	if err != nil {
		var configErr *config.ConfigError
		if errors.As(err, &configErr) {
			printConfigErrors(out, configErr)
			return errors.New("configuration invalid")
		}
		return fmt.Errorf("failed to load config: %w", err)
	}

	printConfigSummary(out, cfg)
	fmt.Fprintln(out, "\nConfiguration valid!")
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := config.DefaultPath()
	if len(args) > 0 {
		path = args[0]
	}
	if err := config.WriteDefault(path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	return nil
}

func printConfigErrors(w io.Writer, e *config.ConfigError) {
	if len(e.Missing) > 0 {
		fmt.Fprintln(w, "Missing environment variables:")
		for _, m := range e.Missing {
			fmt.Fprintf(w, "  - %s\n", m)
		}
		fmt.Fprintln(w)
	}

	if len(e.Errors) > 0 {
		fmt.Fprintln(w, "Validation errors:")
		for _, err := range e.Errors {
			fmt.Fprintf(w, "  - %s\n", err)
		}
		fmt.Fprintln(w)
	}
}

func printConfigSummary(w io.Writer, cfg *config.Config) {
	fmt.Fprintln(w, "Configuration Summary:")
	fmt.Fprintf(w, "  Matrix:     %s as %s\n", cfg.Matrix.Homeserver, cfg.Matrix.User)
	fmt.Fprintf(w, "  Room:       %s\n", orNone(cfg.Matrix.TargetRoomID))
	fmt.Fprintf(w, "  Prefix:     %s\n", cfg.Matrix.CommandPrefix)
	fmt.Fprintf(w, "  Sonarr:     %s\n", serviceSummary(cfg.Sonarr))
	fmt.Fprintf(w, "  Radarr:     %s\n", serviceSummary(cfg.Radarr))
	fmt.Fprintf(w, "  TVDB:       %s\n", enabled(cfg.TVDB.APIKey != ""))
	fmt.Fprintf(w, "  TMDB:       %s\n", enabled(cfg.TMDB.APIKey != ""))
	fmt.Fprintf(w, "  Webhook:    %s\n", cfg.WebhookAddr())
	fmt.Fprintf(w, "  TLS verify: %t\n", cfg.VerifyTLS())
	fmt.Fprintf(w, "  Log level:  %s\n", cfg.Log.Level)

	for _, warning := range cfg.Warnings {
		fmt.Fprintf(w, "  Warning:    %s\n", warning)
	}
}

func serviceSummary(s config.ServiceConfig) string {
	if !s.Configured() {
		return "not configured"
	}
	return s.URL
}

func enabled(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
