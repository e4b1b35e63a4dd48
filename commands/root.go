// commands/root.go
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "wiscflow",
	Short:         "wiscflow ingests the course catalog, grade distributions and prerequisite links.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yaml (default: backend/config/config.yaml or config/config.yaml)")

	rootCmd.AddCommand(
		stageCmd("scrape", "Scrape the course catalog into the database."),
		stageCmd("grades", "Ingest grade distributions and recompute course averages."),
		stageCmd("link", "Link prerequisite courses from requisite text."),
		stageCmd("all", "Run scrape, grades and link in order."),
		seedSchoolsCmd,
		migrateCmd,
		serveCmd,
	)
}

// Execute runs the CLI. Any returned error exits with status 1.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
