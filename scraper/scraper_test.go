package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gewnthar/wiscflow/config"
	"github.com/gewnthar/wiscflow/fetch"
	"github.com/gewnthar/wiscflow/models"
)

const indexHTML = `<html><body>
<a href="/courses/">All</a>
<a href="/courses/comp_sci/">Computer Sciences (COMP SCI)</a>
<a href="/courses/math/">Mathematics (MATH)</a>
<a href="/courses/comp_sci/">Computer Sciences again</a>
<a href="/courses/comp_sci/#text">Anchor</a>
<a href="/programs/">Programs</a>
</body></html>`

const subjectHTML = `<html><body><div class="sc_sccoursedescs">
<div class="courseblock">
  <p class="courseblocktitle"><strong>COMP&#160;SCI&#160;577 — INTRODUCTION TO ALGORITHMS</strong></p>
  <p class="courseblockcredits">4 credits.</p>
  <p class="courseblockdesc">Basic paradigms for the design and analysis of efficient algorithms.</p>
  <div class="courseblockextra">
    <p><strong>Requisites:</strong> (COMP SCI 400 or 367) and (MATH 222 or 276).</p>
    <p><strong>Course Designation:</strong> Breadth - Natural Science<br/>Level - Advanced</p>
    <p><strong>Last Taught:</strong> Fall 2024.</p>
  </div>
</div>
<div class="courseblock">
  <p class="courseblocktitle">MATH 22 — BROKEN HEADER</p>
</div>
<div class="courseblock">
  <p class="courseblocktitle">COMP SCI/E C E 252 — INTRODUCTION TO COMPUTER ENGINEERING</p>
  <p class="courseblockcredits">2-3 credits.</p>
  <div class="courseblockextra"><p>Gen Ed - Quantitative Reasoning A</p></div>
</div>
<div class="courseblock"><p class="courseblockdesc">orphan block without a title</p></div>
</div></body></html>`

func TestDiscoverSubjectPaths(t *testing.T) {
	paths, err := DiscoverSubjectPaths(indexHTML)
	require.NoError(t, err)
	assert.Equal(t, []string{"/courses/comp_sci/", "/courses/math/"}, paths)
	assert.Equal(t, "comp_sci", SubjectCodeFromPath("/courses/comp_sci/"))
}

func strPtr(s string) *string { return &s }

func TestParseSubjectPage(t *testing.T) {
	courses, errs := ParseSubjectPage(subjectHTML, "Letters & Science, College of", GuideParser{})

	require.Len(t, errs, 1)
	assert.True(t, errors.Is(errs[0], ErrHeaderMismatch))

	want := []models.ParsedCourse{
		{
			Code:             "COMP SCI 577",
			Name:             "INTRODUCTION TO ALGORITHMS",
			Description:      "Basic paradigms for the design and analysis of efficient algorithms.",
			Credits:          4,
			SchoolName:       "Letters & Science, College of",
			PrerequisiteText: strPtr("(COMP SCI 400 or 367) and (MATH 222 or 276)."),
			Breadths:         []string{"Natural Science"},
			GenEds:           []string{},
			Level:            models.LevelAdvanced,
			LastOffered:      strPtr("Fall 2024"),
		},
		{
			Code:        "COMP SCI 252",
			Name:        "INTRODUCTION TO COMPUTER ENGINEERING",
			Description: "No description available.",
			Credits:     2,
			SchoolName:  "Letters & Science, College of",
			Breadths:    []string{},
			GenEds:      []string{"Quantitative Reasoning A"},
			Level:       models.LevelIntermediate,
		},
	}
	if diff := cmp.Diff(want, courses); diff != "" {
		t.Errorf("parsed courses mismatch (-want +got):\n%s", diff)
	}
}

func TestGuideParserDefaultsAndQuirks(t *testing.T) {
	html := `<div class="courseblock">
  <p class="courseblocktitle">ENGL 100 – INTRODUCTION TO COLLEGE COMPOSITION</p>
  <div class="courseblockextra">Gen Ed - Communication Part A. Breadth - Literature. Level - Elementary. Social Sciences</div>
</div>`
	courses, errs := ParseSubjectPage(html, "Letters & Science, College of", nil)
	require.Empty(t, errs)
	require.Len(t, courses, 1)

	c := courses[0]
	assert.Equal(t, "ENGL 100", c.Code)
	assert.Equal(t, 3, c.Credits)
	assert.Nil(t, c.PrerequisiteText)
	assert.Nil(t, c.LastOffered)
	assert.Equal(t, models.LevelElementary, c.Level)
	// "Social Sciences" contains "Social Science"; matching is presence only.
	assert.Equal(t, []string{"Literature", "Social Science"}, c.Breadths)
	// Keyword then letter, case-insensitive: the "B" of "Breadth" counts.
	assert.Equal(t, []string{"Communication A", "Communication B"}, c.GenEds)
	assert.Equal(t, "No description available.", c.Description)
}

func TestSchoolResolver(t *testing.T) {
	r := NewSchoolResolver("Letters & Science, College of", map[string]string{
		"comp_sci": "Computer Data & Information Sciences, School of",
	})
	assert.Equal(t, "Computer Data & Information Sciences, School of", r.Resolve("comp_sci"))
	assert.Equal(t, "Letters & Science, College of", r.Resolve("zoology"))
}

func TestSchoolResolverFromConfig(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "schools.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(
		"subject,school\ncomp_sci,\"Computer Data & Information Sciences, School of\"\nlaw,Law School\n"), 0o644))

	r, err := SchoolResolverFromConfig(config.SchoolsConfig{
		Default:    "Letters & Science, College of",
		MappingCSV: csvPath,
		BySubject:  map[string]string{"law": "Law School (override)"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, "Computer Data & Information Sciences, School of", r.Resolve("comp_sci"))
	assert.Equal(t, "Law School (override)", r.Resolve("law"))
	assert.Equal(t, "Letters & Science, College of", r.Resolve("art"))

	rows, err := ParseSchoolMappingCSV(strings.NewReader("subject,school\nmath,\"Letters & Science, College of\"\n"))
	require.NoError(t, err)
	assert.Equal(t, []models.SubjectSchool{{Subject: "math", School: "Letters & Science, College of"}}, rows)
}

func TestParseSchoolMappingCSVHandlesQuotingAndCRLF(t *testing.T) {
	rows, err := ParseSchoolMappingCSV(strings.NewReader(
		"subject,school\r\nart,\"Letters & Science, College of\"\r\nnursing,\"Nursing, School of\"\r\n"))
	require.NoError(t, err)
	assert.Equal(t, []models.SubjectSchool{
		{Subject: "art", School: "Letters & Science, College of"},
		{Subject: "nursing", School: "Nursing, School of"},
	}, rows)

	_, err = ParseSchoolMappingCSV(strings.NewReader(""))
	assert.Error(t, err)
}

func TestGradesClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Token secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		switch r.URL.Path {
		case "/v1/courses/comp_sci/577/grades":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"uuid":"u1","subjectCode":"266","courseNumber":577,"name":"Algorithms",
				"grades":[{"termCode":1242,"termName":" Fall 2023 ","aCount":10,"abCount":0,"bCount":5,"bcCount":0,"cCount":0,"dCount":0,"fCount":0,"total":15}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := NewGradesClient(config.GradesConfig{
		APIURL: srv.URL + "/v1/",
		Token:  "secret",
		Fetch:  config.FetchConfig{MaxRetries: 3, BackoffBase: time.Millisecond},
	}, nil)

	grades, err := client.CourseGrades(context.Background(), "comp_sci", "577")
	require.NoError(t, err)
	require.Len(t, grades, 1)
	assert.Equal(t, models.FlexString("1242"), grades[0].TermCode)
	assert.Equal(t, " Fall 2023 ", grades[0].TermName)
	assert.Equal(t, 15, grades[0].Buckets().Total())

	_, err = client.CourseGrades(context.Background(), "zoology", "999")
	assert.ErrorIs(t, err, fetch.ErrNotFound)
}
