// models/report.go
package models

import "time"

// Stage names a batch job of the ingestion pipeline.
type Stage string

const (
	StageScrape Stage = "scrape"
	StageGrades Stage = "grades"
	StageLink   Stage = "link"
)

// ItemError is one per-item failure converted into a statistic.
// It is also the row shape of the error-detail CSV files.
type ItemError struct {
	Stage Stage  `csv:"stage" json:"stage"`
	Item  string `csv:"item" json:"item"`
	Kind  string `csv:"kind" json:"kind"`
	Error string `csv:"error" json:"error"`
}

// Item error kinds.
const (
	KindFetch      = "fetch"
	KindParse      = "parse"
	KindValidation = "validation"
	KindPersist    = "persist"
)

// ScrapeReport summarizes one catalog scrape.
type ScrapeReport struct {
	RunID              string        `json:"run_id"`
	SubjectsDiscovered int           `json:"subjects_discovered"`
	SubjectsScraped    int           `json:"subjects_scraped"`
	CoursesFound       int           `json:"courses_found"`
	CoursesInvalid     int           `json:"courses_invalid"`
	CoursesInserted    int           `json:"courses_inserted"`
	ParseFailures      int           `json:"parse_failures"`
	Errors             []ItemError   `json:"errors,omitempty"`
	Duration           time.Duration `json:"duration"`
}

// GradesReport summarizes one grades ingestion.
type GradesReport struct {
	RunID             string        `json:"run_id"`
	CoursesTotal      int           `json:"courses_total"`
	CoursesProcessed  int           `json:"courses_processed"`
	GradesInserted    int           `json:"grades_inserted"`
	ZeroTermsSkipped  int           `json:"zero_terms_skipped"`
	CoursesNotFound   int           `json:"courses_not_found"`
	InvalidCodes      int           `json:"invalid_codes"`
	APIErrors         int           `json:"api_errors"`
	WriteErrors       int           `json:"write_errors"`
	AveragesUpdated   int           `json:"averages_updated"`
	AveragesCleared   int           `json:"averages_cleared"`
	TotalDistribution int           `json:"total_distributions"`
	CoursesWithGrades int           `json:"courses_with_grades"`
	Errors            []ItemError   `json:"errors,omitempty"`
	Duration          time.Duration `json:"duration"`
}

// LinkReport summarizes one prerequisite linking pass.
type LinkReport struct {
	RunID            string        `json:"run_id"`
	CoursesScanned   int           `json:"courses_scanned"`
	CoursesLinked    int           `json:"courses_linked"`
	CoursesSkipped   int           `json:"courses_skipped"`
	EdgesWritten     int           `json:"edges_written"`
	NotFoundCodes    []string      `json:"not_found_codes,omitempty"`
	CoursesWithLinks int           `json:"courses_with_links"`
	Errors           []ItemError   `json:"errors,omitempty"`
	Duration         time.Duration `json:"duration"`
}

// SeedReport summarizes a school seeding run.
type SeedReport struct {
	Defined int `json:"defined"`
	Total   int `json:"total"`
}

// PipelineReport aggregates the reports of the stages that ran.
type PipelineReport struct {
	RunID  string        `json:"run_id"`
	Stages []Stage       `json:"stages"`
	Scrape *ScrapeReport `json:"scrape,omitempty"`
	Grades *GradesReport `json:"grades,omitempty"`
	Link   *LinkReport   `json:"link,omitempty"`
}
