// scraper/school_map.go
package scraper

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jszwec/csvutil"

	"github.com/gewnthar/wiscflow/config"
	"github.com/gewnthar/wiscflow/models"
)

// SchoolResolver maps a subject code ("comp_sci") to a school name.
// Unknown subjects resolve to the default; courses are never rejected for it.
type SchoolResolver struct {
	def       string
	bySubject map[string]string
}

// NewSchoolResolver returns a resolver falling back to def. Keys are matched
// case-insensitively.
func NewSchoolResolver(def string, bySubject map[string]string) *SchoolResolver {
	m := make(map[string]string, len(bySubject))
	for k, v := range bySubject {
		m[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return &SchoolResolver{def: def, bySubject: m}
}

// Resolve returns the school for subjectCode.
func (r *SchoolResolver) Resolve(subjectCode string) string {
	if school, ok := r.bySubject[strings.ToLower(strings.TrimSpace(subjectCode))]; ok && school != "" {
		return school
	}
	return r.def
}

// Len is the number of explicit mappings.
func (r *SchoolResolver) Len() int { return len(r.bySubject) }

// ParseSchoolMappingCSV decodes "subject,school" rows.
func ParseSchoolMappingCSV(reader io.Reader) ([]models.SubjectSchool, error) {
	var rows []models.SubjectSchool

	// csvutil maps the header line onto the csv tags of models.SubjectSchool.
	decoder, err := csvutil.NewDecoder(csv.NewReader(reader))
	if err != nil {
		return nil, fmt.Errorf("failed to create CSV decoder for school mapping: %w", err)
	}
	if err := decoder.Decode(&rows); err != nil {
		return nil, fmt.Errorf("failed to decode school mapping CSV data: %w", err)
	}
	return rows, nil
}

// SchoolResolverFromConfig loads the CSV mapping (if configured) and then
// applies the inline map on top of it.
func SchoolResolverFromConfig(cfg config.SchoolsConfig) (*SchoolResolver, error) {
	mapping := make(map[string]string)

	if cfg.MappingCSV != "" {
		f, err := os.Open(cfg.MappingCSV)
		if err != nil {
			return nil, fmt.Errorf("failed to open school mapping %s: %w", cfg.MappingCSV, err)
		}
		defer f.Close()

		rows, err := ParseSchoolMappingCSV(f)
		if err != nil {
			return nil, err
		}
		for _, row := range rows {
			mapping[row.Subject] = row.School
		}
	}
	for subject, school := range cfg.BySubject {
		mapping[subject] = school
	}

	return NewSchoolResolver(cfg.Default, mapping), nil
}
