// commands/admin.go
package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/gewnthar/wiscflow/handlers"
	"github.com/gewnthar/wiscflow/report"
)

var seedSchoolsCmd = &cobra.Command{
	Use:   "seed-schools",
	Short: "Upsert the fixed list of schools and colleges.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.schools.SeedSchools(cmd.Context())
		if err != nil {
			return err
		}
		report.PrintSeed(os.Stdout, result)
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database tables if they do not exist.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		// newApp migrates on open.
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		a.Close()
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the health and admin run endpoints.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		a, err := newApp(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		srv := &http.Server{
			Addr: ":" + cfg.Server.Port,
			Handler: handlers.NewRouter(
				handlers.NewAdminHandler(a.pipeline, a.store, a.log),
				handlers.NewCourseHandler(a.store, a.log),
			),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			a.log.Info("server starting", "addr", srv.Addr)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-cmd.Context().Done():
			a.log.Info("shutting down server")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(ctx)
		}
	},
}
