// services/pipeline.go
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/gewnthar/wiscflow/logger"
	"github.com/gewnthar/wiscflow/models"
)

// Stage runners. *CatalogService, *GradesService and *PrereqService satisfy them.
type (
	Scraper interface {
		Scrape(ctx context.Context) (models.ScrapeReport, error)
	}
	GradesIngester interface {
		Ready() error
		Ingest(ctx context.Context) (models.GradesReport, error)
	}
	Linker interface {
		Link(ctx context.Context) (models.LinkReport, error)
	}
)

// StageOrder is the order stages always run in: courses must exist before
// grades or prerequisite edges can attach to them.
var StageOrder = []models.Stage{models.StageScrape, models.StageGrades, models.StageLink}

// ParseStages maps names to stages. "all" or no names selects every stage.
func ParseStages(names ...string) ([]models.Stage, error) {
	if len(names) == 0 {
		return append([]models.Stage(nil), StageOrder...), nil
	}
	want := make(map[models.Stage]bool)
	for _, n := range names {
		switch st := models.Stage(strings.ToLower(strings.TrimSpace(n))); st {
		case "all":
			return append([]models.Stage(nil), StageOrder...), nil
		case models.StageScrape, models.StageGrades, models.StageLink:
			want[st] = true
		default:
			return nil, fmt.Errorf("unknown stage %q", n)
		}
	}
	var stages []models.Stage
	for _, st := range StageOrder {
		if want[st] {
			stages = append(stages, st)
		}
	}
	return stages, nil
}

// Pipeline runs the batch stages in StageOrder.
type Pipeline struct {
	scraper Scraper
	grades  GradesIngester
	linker  Linker
	log     *logger.Logger
}

// NewPipeline returns a pipeline over the three stages.
func NewPipeline(scraper Scraper, grades GradesIngester, linker Linker, log *logger.Logger) *Pipeline {
	if log == nil {
		log = logger.Nop()
	}
	return &Pipeline{scraper: scraper, grades: grades, linker: linker, log: log}
}

// Run executes the selected stages (all when none given) in StageOrder.
// A stage error stops the run; the reports of finished stages are still returned.
func (p *Pipeline) Run(ctx context.Context, stages ...models.Stage) (models.PipelineReport, error) {
	names := make([]string, len(stages))
	for i, st := range stages {
		names[i] = string(st)
	}
	ordered, err := ParseStages(names...)
	if err != nil {
		return models.PipelineReport{}, err
	}

	report := models.PipelineReport{RunID: uuid.NewString()}
	for _, st := range ordered {
		if st == models.StageGrades {
			if err := p.grades.Ready(); err != nil {
				return report, err
			}
		}
	}

	for _, st := range ordered {
		p.log.Info("running stage", "run_id", report.RunID, "stage", st)
		switch st {
		case models.StageScrape:
			r, err := p.scraper.Scrape(ctx)
			report.Scrape = &r
			if err != nil {
				return report, fmt.Errorf("scrape: %w", err)
			}
		case models.StageGrades:
			r, err := p.grades.Ingest(ctx)
			report.Grades = &r
			if err != nil {
				return report, fmt.Errorf("grades: %w", err)
			}
		case models.StageLink:
			r, err := p.linker.Link(ctx)
			report.Link = &r
			if err != nil {
				return report, fmt.Errorf("link: %w", err)
			}
		}
		report.Stages = append(report.Stages, st)
	}
	return report, nil
}
