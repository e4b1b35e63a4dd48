// scraper/grades_client.go
package scraper

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/gewnthar/wiscflow/config"
	"github.com/gewnthar/wiscflow/fetch"
	"github.com/gewnthar/wiscflow/logger"
	"github.com/gewnthar/wiscflow/models"
)

// GradesClient reads per-course grade records from the grades API.
type GradesClient struct {
	fetcher    *fetch.Client
	maxRetries int
}

// NewGradesClient authenticates every request with "<scheme> <token>".
func NewGradesClient(cfg config.GradesConfig, log *logger.Logger) *GradesClient {
	scheme := cfg.AuthScheme
	if scheme == "" {
		scheme = "Token"
	}
	fetcher := fetch.NewClient(fetch.Options{
		BaseURL: strings.TrimRight(cfg.APIURL, "/"),
		Headers: map[string]string{
			"Authorization": scheme + " " + cfg.Token,
			"Accept":        "application/json",
		},
		Timeout:     cfg.Fetch.Timeout,
		BackoffBase: cfg.Fetch.BackoffBase,
	}, log)
	return &GradesClient{fetcher: fetcher, maxRetries: cfg.Fetch.MaxRetries}
}

// CourseGrades returns the term records for one course. subject is in the
// API's convention ("comp_sci"). A 404 is returned as fetch.ErrNotFound.
func (c *GradesClient) CourseGrades(ctx context.Context, subject, number string) ([]models.MadgradesTermGrades, error) {
	path := fmt.Sprintf("/courses/%s/%s/grades", url.PathEscape(subject), url.PathEscape(number))

	var body models.MadgradesCourse
	if err := c.fetcher.FetchJSON(ctx, path, c.maxRetries, &body); err != nil {
		return nil, err
	}
	return body.Grades, nil
}
