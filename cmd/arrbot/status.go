package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/vmunix/arrbot/internal/config"
	"github.com/vmunix/arrbot/internal/status"
)

const statusTimeout = 30 * time.Second

var errIssuesDetected = errors.New("issues detected")

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check connectivity to Sonarr, Radarr and Matrix",
	Long: `Runs the same probes as the !status chat command and prints the report.

Matrix is only probed when an access token is configured, since a
password login would create a new session. Exits non-zero when any
configured service fails.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	path, err := resolveConfigPath(nil)
	if err != nil {
		return err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))
	svc, err := newServices(cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), statusTimeout)
	defer cancel()

	checker := svc.checker(logger, cfg.Matrix.AccessToken != "")
	return printStatus(cmd.OutOrStdout(), checker.Check(ctx))
}

func printStatus(w io.Writer, results []status.Result) error {
	plain, _ := status.Report(results)
	fmt.Fprintln(w, plain)
	if !status.Healthy(results) {
		return errIssuesDetected
	}
	return nil
}
