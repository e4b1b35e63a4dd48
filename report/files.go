// report/files.go
package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jszwec/csvutil"

	"github.com/gewnthar/wiscflow/models"
)

const (
	ScrapeErrorsFile = "scrape-errors.csv"
	GradesErrorsFile = "grades-errors.csv"
	LinkMissingFile  = "link-missing.csv"
)

type missingCode struct {
	Code string `csv:"code"`
}

// WriteItemErrors writes errs as CSV to path. Nothing is written for an empty slice.
func WriteItemErrors(path string, errs []models.ItemError) (bool, error) {
	if len(errs) == 0 {
		return false, nil
	}
	return true, writeCSV(path, errs)
}

// WriteMissingCodes writes one code per row. Nothing is written for an empty slice.
func WriteMissingCodes(path string, codes []string) (bool, error) {
	if len(codes) == 0 {
		return false, nil
	}
	rows := make([]missingCode, len(codes))
	for i, c := range codes {
		rows[i] = missingCode{Code: c}
	}
	return true, writeCSV(path, rows)
}

// WriteErrorFiles writes the error-detail files for every stage in r under dir
// and returns the paths written.
func WriteErrorFiles(dir string, r models.PipelineReport) ([]string, error) {
	var written []string
	write := func(name string, fn func(string) (bool, error)) error {
		path := filepath.Join(dir, name)
		ok, err := fn(path)
		if err != nil {
			return err
		}
		if ok {
			written = append(written, path)
		}
		return nil
	}

	if r.Scrape != nil {
		if err := write(ScrapeErrorsFile, func(p string) (bool, error) { return WriteItemErrors(p, r.Scrape.Errors) }); err != nil {
			return written, err
		}
	}
	if r.Grades != nil {
		if err := write(GradesErrorsFile, func(p string) (bool, error) { return WriteItemErrors(p, r.Grades.Errors) }); err != nil {
			return written, err
		}
	}
	if r.Link != nil {
		if err := write(LinkMissingFile, func(p string) (bool, error) { return WriteMissingCodes(p, r.Link.NotFoundCodes) }); err != nil {
			return written, err
		}
	}
	return written, nil
}

func writeCSV(path string, v interface{}) error {
	data, err := csvutil.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
