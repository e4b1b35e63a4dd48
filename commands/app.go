// commands/app.go
package commands

import (
	"context"
	"fmt"

	"github.com/gewnthar/wiscflow/config"
	"github.com/gewnthar/wiscflow/database"
	"github.com/gewnthar/wiscflow/fetch"
	"github.com/gewnthar/wiscflow/logger"
	"github.com/gewnthar/wiscflow/scraper"
	"github.com/gewnthar/wiscflow/services"
)

// app is everything a command needs, wired from the config.
type app struct {
	cfg      config.Config
	log      *logger.Logger
	store    *database.Store
	catalog  *services.CatalogService
	grades   *services.GradesService
	prereqs  *services.PrereqService
	schools  *services.SchoolService
	pipeline *services.Pipeline
}

func loadConfig() (config.Config, error) {
	path := configPath
	if path == "" {
		path = config.FindConfigFile("backend/config/config.yaml", "config/config.yaml")
	}
	return config.LoadConfig(path)
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	store, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		return nil, err
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, err
	}

	resolver, err := scraper.SchoolResolverFromConfig(cfg.Schools)
	if err != nil {
		store.Close()
		return nil, err
	}

	pages := fetch.NewClient(fetch.Options{
		BaseURL:     cfg.Catalog.BaseURL,
		UserAgent:   cfg.Catalog.UserAgent,
		Timeout:     cfg.Catalog.Fetch.Timeout,
		BackoffBase: cfg.Catalog.Fetch.BackoffBase,
	}, log)

	a := &app{
		cfg:     cfg,
		log:     log,
		store:   store,
		catalog: services.NewCatalogService(cfg.Catalog, pages, store, resolver, log),
		grades:  services.NewGradesService(cfg.Grades, scraper.NewGradesClient(cfg.Grades, log), store, log),
		prereqs: services.NewPrereqService(store, log),
		schools: services.NewSchoolService(store, cfg.Schools.SeedSchools, log),
	}
	a.pipeline = services.NewPipeline(a.catalog, a.grades, a.prereqs, log)
	return a, nil
}

func (a *app) Close() {
	a.store.Close()
	a.log.Sync()
}
