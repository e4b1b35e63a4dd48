// models/grades.go
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// GradeBuckets holds the seven letter-grade counts for one course in one term.
type GradeBuckets struct {
	A  int `db:"a_count" json:"a_count"`
	AB int `db:"ab_count" json:"ab_count"`
	B  int `db:"b_count" json:"b_count"`
	BC int `db:"bc_count" json:"bc_count"`
	C  int `db:"c_count" json:"c_count"`
	D  int `db:"d_count" json:"d_count"`
	F  int `db:"f_count" json:"f_count"`
}

// Total is the number of students who received a letter grade.
func (g GradeBuckets) Total() int {
	return g.A + g.AB + g.B + g.BC + g.C + g.D + g.F
}

// GradeDistribution is persisted once per (course, term).
type GradeDistribution struct {
	ID       string `db:"id" json:"id"`
	CourseID string `db:"course_id" json:"course_id"`
	Term     string `db:"term" json:"term"`
	GradeBuckets
	TotalGraded int     `db:"total_graded" json:"total_graded"`
	AvgGPA      float64 `db:"avg_gpa" json:"avg_gpa"`
}

// GradeWeight is the slice of a distribution the rolling average needs.
type GradeWeight struct {
	TotalGraded int
	AvgGPA      float64
}

// MadgradesCourse is the body of GET /courses/{subject}/{number}/grades.
type MadgradesCourse struct {
	UUID         string                `json:"uuid"`
	SubjectCode  FlexString            `json:"subjectCode"`
	CourseNumber FlexString            `json:"courseNumber"`
	Name         string                `json:"name"`
	Grades       []MadgradesTermGrades `json:"grades"`
}

// MadgradesTermGrades is one term's record. Only the letter buckets feed the GPA;
// the other buckets are kept for completeness of the wire shape.
type MadgradesTermGrades struct {
	TermCode   FlexString `json:"termCode"`
	TermName   string     `json:"termName"`
	ACount     int        `json:"aCount"`
	ABCount    int        `json:"abCount"`
	BCount     int        `json:"bCount"`
	BCCount    int        `json:"bcCount"`
	CCount     int        `json:"cCount"`
	DCount     int        `json:"dCount"`
	FCount     int        `json:"fCount"`
	SCount     *int       `json:"sCount,omitempty"`
	UCount     *int       `json:"uCount,omitempty"`
	CRCount    *int       `json:"crCount,omitempty"`
	NCount     *int       `json:"nCount,omitempty"`
	PCount     *int       `json:"pCount,omitempty"`
	ICount     *int       `json:"iCount,omitempty"`
	NWCount    *int       `json:"nwCount,omitempty"`
	OtherCount *int       `json:"otherCount,omitempty"`
	Total      int        `json:"total"`
}

// Buckets extracts the seven letter-grade counts.
func (t MadgradesTermGrades) Buckets() GradeBuckets {
	return GradeBuckets{
		A:  t.ACount,
		AB: t.ABCount,
		B:  t.BCount,
		BC: t.BCCount,
		C:  t.CCount,
		D:  t.DCount,
		F:  t.FCount,
	}
}

// FlexString accepts either a JSON string or a JSON number.
// The grades API returns courseNumber and termCode as numbers on some endpoints.
type FlexString string

func (s *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = ""
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = FlexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err == nil {
		if i, err := strconv.ParseInt(num.String(), 10, 64); err == nil {
			*s = FlexString(strconv.FormatInt(i, 10))
			return nil
		}
		*s = FlexString(num.String())
		return nil
	}
	return fmt.Errorf("value must be a string or number, got: %s", string(data))
}

func (s FlexString) String() string {
	return string(s)
}
