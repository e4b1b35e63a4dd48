// scraper/subject_page.go
package scraper

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/gewnthar/wiscflow/models"
)

// ParseSubjectPage parses every .courseblock on a subject listing page.
// A failing block is reported in the error slice and never stops the page.
func ParseSubjectPage(html, school string, parser BlockParser) ([]models.ParsedCourse, []error) {
	if parser == nil {
		parser = GuideParser{}
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, []error{fmt.Errorf("failed to parse subject page: %w", err)}
	}

	var (
		courses []models.ParsedCourse
		errs    []error
	)
	doc.Find(".courseblock").Each(func(i int, block *goquery.Selection) {
		course, err := parser.ParseBlock(block, school)
		switch {
		case errors.Is(err, ErrMissingHeader):
			return
		case err != nil:
			errs = append(errs, fmt.Errorf("block %d: %w", i, err))
			return
		}
		courses = append(courses, course)
	})
	return courses, errs
}
