// report/summary.go
package report

import (
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/gewnthar/wiscflow/models"
)

// maxListedCodes bounds the missing-prerequisite listing in the link summary.
const maxListedCodes = 20

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	t.SetTitle(title)
	t.AppendHeader(table.Row{"Metric", "Value"})
	return t
}

func seconds(d time.Duration) string {
	return d.Round(100 * time.Millisecond).String()
}

// PrintScrape prints the scrape counters.
func PrintScrape(w io.Writer, r models.ScrapeReport) {
	t := newTable(w, "Catalog scrape")
	t.AppendRows([]table.Row{
		{"Subjects discovered", r.SubjectsDiscovered},
		{"Subjects scraped", r.SubjectsScraped},
		{"Courses found", r.CoursesFound},
		{"Courses invalid", r.CoursesInvalid},
		{"Courses inserted", r.CoursesInserted},
		{"Parse failures", r.ParseFailures},
		{"Errors", len(r.Errors)},
		{"Duration", seconds(r.Duration)},
	})
	t.Render()
}

// PrintGrades prints the run counters followed by the store totals.
func PrintGrades(w io.Writer, r models.GradesReport) {
	t := newTable(w, "Grades ingestion")
	t.AppendRows([]table.Row{
		{"Courses processed", r.CoursesProcessed},
		{"Grade distributions inserted", r.GradesInserted},
		{"Zero-total terms skipped", r.ZeroTermsSkipped},
		{"Courses not found", r.CoursesNotFound},
		{"Unparseable codes", r.InvalidCodes},
		{"API errors", r.APIErrors},
		{"Write errors", r.WriteErrors},
		{"Averages updated", r.AveragesUpdated},
		{"Averages cleared", r.AveragesCleared},
		{"Duration", seconds(r.Duration)},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"DB grade distributions", r.TotalDistribution},
		{"DB courses with grades", r.CoursesWithGrades},
	})
	t.Render()
}

// PrintLink prints the link counters and, when short enough, the missing codes.
func PrintLink(w io.Writer, r models.LinkReport) {
	t := newTable(w, "Prerequisite linking")
	t.AppendRows([]table.Row{
		{"Courses with prerequisite text", r.CoursesScanned},
		{"Courses linked", r.CoursesLinked},
		{"Courses skipped", r.CoursesSkipped},
		{"New edges", r.EdgesWritten},
		{"Unique codes not found", len(r.NotFoundCodes)},
		{"DB courses with links", r.CoursesWithLinks},
	})
	t.Render()

	if n := len(r.NotFoundCodes); n > 0 && n <= maxListedCodes {
		missing := table.NewWriter()
		missing.SetStyle(table.StyleRounded)
		missing.SetOutputMirror(w)
		missing.AppendHeader(table.Row{"Missing prerequisite course"})
		for _, code := range r.NotFoundCodes {
			missing.AppendRow(table.Row{code})
		}
		missing.Render()
	}
}

func PrintSeed(w io.Writer, r models.SeedReport) {
	t := newTable(w, "School seeding")
	t.AppendRows([]table.Row{
		{"Defined in seed list", r.Defined},
		{"Total in database", r.Total},
	})
	t.Render()
}

// PrintPipeline prints the summary of every stage that ran.
func PrintPipeline(w io.Writer, r models.PipelineReport) {
	if r.Scrape != nil {
		PrintScrape(w, *r.Scrape)
	}
	if r.Grades != nil {
		PrintGrades(w, *r.Grades)
	}
	if r.Link != nil {
		PrintLink(w, *r.Link)
	}
}
