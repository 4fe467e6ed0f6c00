package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"albumsvc/internal/app"
	"albumsvc/internal/config"
	"albumsvc/internal/infrastructure"
	"albumsvc/internal/store"
	"albumsvc/pkg/contracts"
)

type rootOptions struct {
	configPath string
}

// NewRootCmd creates the albumsvc command tree. Running it without a
// subcommand starts the server.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           config.AppName,
		Short:         "Album service with HTTP, WebSocket echo and SQLite storage",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"path to a YAML config file (default: $"+config.EnvPrefix+"_CONFIG or ./config.yaml)")

	rootCmd.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newVersionCmd(),
	)

	return rootCmd
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP and WebSocket server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func runServe(ctx context.Context, opts *rootOptions) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	application, err := app.NewApplication(cfg, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return application.Run(ctx)
}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the album database schema",
	}

	migrateCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDatabase(cmd, opts, store.MigrateUp)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back all applied migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDatabase(cmd, opts, store.MigrateDown)
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Print the applied schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withDatabase(cmd, opts, func(db *sql.DB, _ *slog.Logger) error {
					version, dirty, err := store.SchemaVersion(db)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty: %t)\n", version, dirty)
					return nil
				})
			},
		},
	)

	return migrateCmd
}

// withDatabase opens the configured database, runs fn and closes it again.
// Migration commands log to stderr only.
func withDatabase(cmd *cobra.Command, opts *rootOptions, fn func(*sql.DB, *slog.Logger) error) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	logger := infrastructure.NewLogger(cmd.ErrOrStderr(), cfg.Logging.Level)

	db, err := store.Open(cmd.Context(), cfg.Database, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	return fn(db, logger)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), contracts.GetFullVersionString())
		},
	}
}
