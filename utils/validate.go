// utils/validate.go
package utils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/gewnthar/wiscflow/models"
)

// Course code shape: "COMP SCI 577", "MATH 222", "ECON 101".
var courseCodePattern = regexp.MustCompile(`^[A-Z][A-Z\s]*\d{3}$`)

const (
	minNameLen        = 3
	maxNameLen        = 300
	minDescriptionLen = 10
	minCredits        = 0
	maxCredits        = 12
)

// FieldError describes one failing field of a record.
type FieldError struct {
	Field   string
	Message string
}

func (f FieldError) String() string {
	return f.Field + ": " + f.Message
}

// ValidationError lists every field a record failed on.
type ValidationError struct {
	Record string
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	return fmt.Sprintf("invalid %s: %s", e.Record, strings.Join(parts, "; "))
}

// ValidateParsedCourse checks a scraped course against the record schema.
// It never modifies the course; a non-nil error is always a *ValidationError.
func ValidateParsedCourse(c models.ParsedCourse) error {
	var fields []FieldError
	add := func(field, format string, args ...any) {
		fields = append(fields, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if !courseCodePattern.MatchString(c.Code) {
		add("code", "invalid course code format %q", c.Code)
	}
	if n := utf8.RuneCountInString(c.Name); n < minNameLen || n > maxNameLen {
		add("name", "length %d outside %d..%d", n, minNameLen, maxNameLen)
	}
	if n := utf8.RuneCountInString(c.Description); n < minDescriptionLen {
		add("description", "length %d below %d", n, minDescriptionLen)
	}
	if c.Credits < minCredits || c.Credits > maxCredits {
		add("credits", "%d outside %d..%d", c.Credits, minCredits, maxCredits)
	}
	if c.SchoolName == "" {
		add("school_name", "must not be empty")
	}
	if !c.Level.Valid() {
		add("level", "%q is not one of Elementary, Intermediate, Advanced", c.Level)
	}

	if len(fields) > 0 {
		return &ValidationError{Record: "course " + c.Code, Fields: fields}
	}
	return nil
}

// ValidateGradeBuckets rejects negative counts.
func ValidateGradeBuckets(g models.GradeBuckets) error {
	var fields []FieldError
	check := func(name string, v int) {
		if v < 0 {
			fields = append(fields, FieldError{Field: name, Message: fmt.Sprintf("negative count %d", v)})
		}
	}
	check("a_count", g.A)
	check("ab_count", g.AB)
	check("b_count", g.B)
	check("bc_count", g.BC)
	check("c_count", g.C)
	check("d_count", g.D)
	check("f_count", g.F)

	if len(fields) > 0 {
		return &ValidationError{Record: "grade distribution", Fields: fields}
	}
	return nil
}
