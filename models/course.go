// models/course.go
package models

// Level is the catalog's course level designation.
type Level string

const (
	LevelElementary   Level = "Elementary"
	LevelIntermediate Level = "Intermediate"
	LevelAdvanced     Level = "Advanced"
)

// Valid reports whether l is one of the three catalog levels.
func (l Level) Valid() bool {
	switch l {
	case LevelElementary, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

// ParsedCourse is one course block as read off a subject listing page.
// It is transient: the catalog service validates it and upserts a Course from it.
type ParsedCourse struct {
	Code             string   `json:"code"` // canonical, e.g. "COMP SCI 577"
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	Credits          int      `json:"credits"`
	SchoolName       string   `json:"school_name"`
	PrerequisiteText *string  `json:"prerequisite_text,omitempty"`
	Breadths         []string `json:"breadths"`
	GenEds           []string `json:"gen_eds"`
	Level            Level    `json:"level"`
	LastOffered      *string  `json:"last_offered,omitempty"`
}

// School is keyed by name and created lazily when a course references it.
type School struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Course is the persisted catalog entry. AvgGPA is nil when no grade data exists.
type Course struct {
	ID               string   `db:"id" json:"id"`
	Code             string   `db:"code" json:"code"`
	Name             string   `db:"name" json:"name"`
	Description      string   `db:"description" json:"description"`
	Credits          int      `db:"credits" json:"credits"`
	SchoolID         string   `db:"school_id" json:"school_id"`
	PrerequisiteText *string  `db:"prerequisite_text" json:"prerequisite_text,omitempty"`
	Breadths         []string `db:"breadths" json:"breadths"`
	GenEds           []string `db:"gen_eds" json:"gen_eds"`
	Level            Level    `db:"level" json:"level"`
	LastOffered      *string  `db:"last_offered" json:"last_offered,omitempty"`
	AvgGPA           *float64 `db:"avg_gpa" json:"avg_gpa,omitempty"`
}

// CourseRef is the id/code pair the grades ingester and linker work from.
type CourseRef struct {
	ID   string `db:"id" json:"id"`
	Code string `db:"code" json:"code"`
}

// CoursePrereqText is a course whose prerequisite free text is non-null.
type CoursePrereqText struct {
	ID               string `db:"id"`
	Code             string `db:"code"`
	PrerequisiteText string `db:"prerequisite_text"`
}
