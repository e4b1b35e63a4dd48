// services/catalog_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gewnthar/wiscflow/config"
	"github.com/gewnthar/wiscflow/fetch"
	"github.com/gewnthar/wiscflow/logger"
	"github.com/gewnthar/wiscflow/models"
	"github.com/gewnthar/wiscflow/scraper"
	"github.com/gewnthar/wiscflow/utils"
)

// PageFetcher fetches an HTML page with retry.
type PageFetcher interface {
	FetchWithRetry(ctx context.Context, url string, maxRetries int) (string, error)
}

// CatalogStore is what the catalog scrape writes.
type CatalogStore interface {
	UpsertSchool(ctx context.Context, name string) (string, error)
	UpsertCourse(ctx context.Context, c models.ParsedCourse, schoolID string) (string, error)
}

// CatalogService scrapes the course catalog into the store.
type CatalogService struct {
	fetcher    PageFetcher
	store      CatalogStore
	schools    *scraper.SchoolResolver
	parser     scraper.BlockParser
	indexPath  string
	maxRetries int
	queueOpts  fetch.QueueOptions
	log        *logger.Logger
}

// NewCatalogService wires the scrape stage. A nil resolver maps every subject
// to the default school; zero queue settings keep ScraperQueueOptions.
func NewCatalogService(cfg config.CatalogConfig, fetcher PageFetcher, store CatalogStore, schools *scraper.SchoolResolver, log *logger.Logger) *CatalogService {
	if log == nil {
		log = logger.Nop()
	}
	if schools == nil {
		schools = scraper.NewSchoolResolver(config.Default().Schools.Default, nil)
	}
	indexPath := cfg.IndexPath
	if indexPath == "" {
		indexPath = "/courses/"
	}
	opts := fetch.ScraperQueueOptions()
	if cfg.Fetch.Concurrency > 0 {
		opts.Concurrency = cfg.Fetch.Concurrency
	}
	if cfg.Fetch.IntervalCap > 0 {
		opts.IntervalCap = cfg.Fetch.IntervalCap
	}
	if cfg.Fetch.Interval > 0 {
		opts.Interval = cfg.Fetch.Interval
	}
	return &CatalogService{
		fetcher:    fetcher,
		store:      store,
		schools:    schools,
		parser:     scraper.GuideParser{},
		indexPath:  indexPath,
		maxRetries: cfg.Fetch.MaxRetries,
		queueOpts:  opts,
		log:        log.With("stage", models.StageScrape),
	}
}

// WithParser swaps the course-block parser.
func (s *CatalogService) WithParser(p scraper.BlockParser) *CatalogService {
	s.parser = p
	return s
}

type subjectResult struct {
	scraped       bool
	found         int
	invalid       int
	inserted      int
	parseFailures int
	errors        []models.ItemError
}

// Scrape crawls every subject linked from the catalog index. Only a failure to
// read the index, or cancellation, is returned as an error; everything per
// subject or per course ends up in the report.
func (s *CatalogService) Scrape(ctx context.Context) (models.ScrapeReport, error) {
	start := time.Now()
	report := models.ScrapeReport{RunID: uuid.NewString()}
	s.log.Info("starting catalog scrape", "run_id", report.RunID, "index", s.indexPath)

	index, err := s.fetcher.FetchWithRetry(ctx, s.indexPath, s.maxRetries)
	if err != nil {
		return report, fmt.Errorf("failed to fetch catalog index: %w", err)
	}
	paths, err := scraper.DiscoverSubjectPaths(index)
	if err != nil {
		return report, err
	}
	report.SubjectsDiscovered = len(paths)
	s.log.Info("found subjects", "count", len(paths))

	var mu sync.Mutex
	q := fetch.NewQueue(ctx, s.queueOpts)
	for _, path := range paths {
		path := path
		q.Enqueue(func(ctx context.Context) error {
			res := s.scrapeSubject(ctx, path)

			mu.Lock()
			defer mu.Unlock()
			if res.scraped {
				report.SubjectsScraped++
			}
			report.CoursesFound += res.found
			report.CoursesInvalid += res.invalid
			report.CoursesInserted += res.inserted
			report.ParseFailures += res.parseFailures
			report.Errors = append(report.Errors, res.errors...)
			return nil
		})
	}
	if err := q.Drain(); err != nil {
		report.Duration = time.Since(start)
		return report, err
	}

	report.Duration = time.Since(start)
	s.log.Info("catalog scrape complete",
		"subjects_scraped", report.SubjectsScraped,
		"courses_found", report.CoursesFound,
		"courses_inserted", report.CoursesInserted,
		"errors", len(report.Errors),
		"duration", report.Duration.String(),
	)
	return report, nil
}

func (s *CatalogService) scrapeSubject(ctx context.Context, path string) subjectResult {
	var res subjectResult
	subject := scraper.SubjectCodeFromPath(path)
	school := s.schools.Resolve(subject)
	log := s.log.With("subject", subject)

	log.Info("scraping subject")
	html, err := s.fetcher.FetchWithRetry(ctx, path, s.maxRetries)
	if err != nil {
		log.Error("failed to fetch subject page", "error", err)
		res.errors = append(res.errors, itemError(models.StageScrape, subject, models.KindFetch, err))
		return res
	}
	res.scraped = true

	courses, blockErrs := scraper.ParseSubjectPage(html, school, s.parser)
	for _, err := range blockErrs {
		log.Warn("could not parse course block", "error", err)
		res.parseFailures++
		res.errors = append(res.errors, itemError(models.StageScrape, subject, models.KindParse, err))
	}
	res.found = len(courses)
	if len(courses) == 0 {
		log.Warn("no courses found")
		return res
	}

	schoolIDs := make(map[string]string)
	for _, course := range courses {
		if err := utils.ValidateParsedCourse(course); err != nil {
			var ve *utils.ValidationError
			if errors.As(err, &ve) {
				log.Warn("dropping invalid course", "code", course.Code, "fields", ve.Fields)
			}
			res.invalid++
			res.errors = append(res.errors, itemError(models.StageScrape, course.Code, models.KindValidation, err))
			continue
		}

		schoolID, ok := schoolIDs[course.SchoolName]
		if !ok {
			schoolID, err = s.store.UpsertSchool(ctx, course.SchoolName)
			if err != nil {
				log.Warn("error upserting school", "code", course.Code, "school", course.SchoolName, "error", err)
				res.errors = append(res.errors, itemError(models.StageScrape, course.Code, models.KindPersist, err))
				continue
			}
			schoolIDs[course.SchoolName] = schoolID
		}

		if _, err := s.store.UpsertCourse(ctx, course, schoolID); err != nil {
			log.Warn("error inserting course", "code", course.Code, "error", err)
			res.errors = append(res.errors, itemError(models.StageScrape, course.Code, models.KindPersist, err))
			continue
		}
		res.inserted++
	}

	log.Info("subject scraped", "found", res.found, "inserted", res.inserted)
	return res
}

func itemError(stage models.Stage, item, kind string, err error) models.ItemError {
	return models.ItemError{Stage: stage, Item: item, Kind: kind, Error: err.Error()}
}
