package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/stockroom/internal/activity"
	"github.com/smallbiznis/stockroom/internal/clock"
	"github.com/smallbiznis/stockroom/internal/config"
	"github.com/smallbiznis/stockroom/internal/migration"
	"github.com/smallbiznis/stockroom/internal/observability"
	"github.com/smallbiznis/stockroom/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var rootCmd = &cobra.Command{
	Use:   "stockroomctl",
	Short: "Maintenance commands for the stockroom database",
	Long: `stockroomctl works directly on the shared SQLite file resolved from
MM_SHARED_DIR and MM_DB_NAME. The web server does not need to be running.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(migrateCmd, importCmd, materialsCmd, setPINCmd, dbPathCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runApp starts a short-lived application with the database and domain
// modules, populates targets and stops it again.
func runApp(ctx context.Context, modules []fx.Option, targets ...any) (func(), error) {
	opts := []fx.Option{
		fx.NopLogger,
		config.Module,
		observability.Module,
		fx.Provide(newNode),
		db.Module,
		clock.Module,
		migration.Module,
		activity.Module,
	}
	opts = append(opts, modules...)
	opts = append(opts, fx.Populate(targets...))

	app := fx.New(opts...)
	if err := app.Err(); err != nil {
		return nil, err
	}

	startCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return nil, err
	}

	return func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = app.Stop(stopCtx)
	}, nil
}

func newNode() (*snowflake.Node, error) {
	return snowflake.NewNode(2)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		var cfg config.Config
		stop, err := runApp(cmd.Context(), nil, &cfg)
		if err != nil {
			return err
		}
		defer stop()
		fmt.Fprintf(cmd.OutOrStdout(), "schema up to date: %s\n", cfg.DBPath())
		return nil
	},
}

var dbPathCmd = &cobra.Command{
	Use:   "db-path",
	Short: "Print the resolved database file path",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), config.Load().DBPath())
	},
}
