// commands/stages.go
package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/gewnthar/wiscflow/models"
	"github.com/gewnthar/wiscflow/report"
	"github.com/gewnthar/wiscflow/services"
)

func stageCmd(name, short string) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stages, err := services.ParseStages(name)
			if err != nil {
				return err
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			for _, st := range stages {
				if st == models.StageGrades {
					// Fatal before any work, including opening the database.
					if err := cfg.RequireGradesToken(); err != nil {
						return err
					}
				}
			}

			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			result, runErr := a.pipeline.Run(cmd.Context(), stages...)
			report.PrintPipeline(os.Stdout, result)

			files, err := report.WriteErrorFiles(cfg.Reports.Dir, result)
			if err != nil {
				a.log.Warn("could not write error files", "error", err)
			}
			for _, f := range files {
				a.log.Info("error details saved", "path", f)
			}
			return runErr
		},
	}
}
