// internal/cli/root.go

// Package cli holds the importer commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/javajoker/autoimport/internal/app"
	"github.com/javajoker/autoimport/internal/config"
)

// RootCmd returns the importer command tree.
func RootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "importer",
		Short: "Import car adverts from the marketplace into the catalogue",
		Long: `importer pulls car adverts from the marketplace partners API and public
pages, normalizes them and keeps the catalogue in step with the live feed.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(SyncCmd())
	rootCmd.AddCommand(ImportCmd())
	rootCmd.AddCommand(FixSpecsCmd())
	rootCmd.AddCommand(ScanMismatchesCmd())
	rootCmd.AddCommand(DebugCarCmd())
	rootCmd.AddCommand(AdminTokenCmd())

	return rootCmd
}

// withApp builds the application, runs fn with a context cancelled on
// SIGINT/SIGTERM and tears everything down afterwards.
func withApp(fn func(ctx context.Context, a *app.App) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return fn(ctx, a)
}
