// scraper/course_block.go
package scraper

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/gewnthar/wiscflow/models"
	"github.com/gewnthar/wiscflow/utils"
)

var (
	// ErrMissingHeader marks a block without a title. Such blocks are skipped quietly.
	ErrMissingHeader = errors.New("course block has no title")
	// ErrHeaderMismatch marks a title that is not subject letters, a three digit
	// number, a dash and a name.
	ErrHeaderMismatch = errors.New("course header does not match expected pattern")
)

const (
	defaultCredits     = 3
	defaultDescription = "No description available."
)

// BlockParser turns one course block of a subject page into a ParsedCourse.
// It is the only place that knows the catalog markup.
type BlockParser interface {
	ParseBlock(block *goquery.Selection, school string) (models.ParsedCourse, error)
}

// GuideParser reads the guide's courseblock markup.
type GuideParser struct{}

var (
	headerRegex     = regexp.MustCompile(`^([A-Z][A-Z\s/]+)\s*(\d{3})\s*[—–-]\s*(.+)$`)
	creditsRegex    = regexp.MustCompile(`(\d+)`)
	requisitesRegex = regexp.MustCompile(`(?i)Requisites?:\s*([^.]+\.)`)
	lastTaughtRegex = regexp.MustCompile(`(?i)Last Taught:\s*([^.]+)`)
)

type tagPattern struct {
	tag string
	re  *regexp.Regexp
}

var breadthPatterns = []tagPattern{
	{"Biological Science", regexp.MustCompile(`(?i)Biological Science`)},
	{"Humanities", regexp.MustCompile(`(?i)Humanities`)},
	{"Literature", regexp.MustCompile(`(?i)Literature`)},
	{"Natural Science", regexp.MustCompile(`(?i)Natural Science`)},
	{"Physical Science", regexp.MustCompile(`(?i)Physical Science`)},
	{"Social Science", regexp.MustCompile(`(?i)Social Science`)},
}

var genEdPatterns = []tagPattern{
	{"Communication A", regexp.MustCompile(`(?i)Communication.*?A`)},
	{"Communication B", regexp.MustCompile(`(?i)Communication.*?B`)},
	{"Quantitative Reasoning A", regexp.MustCompile(`(?i)Quantitative.*?A`)},
	{"Quantitative Reasoning B", regexp.MustCompile(`(?i)Quantitative.*?B`)},
	{"Ethnic Studies", regexp.MustCompile(`(?i)Ethnic Studies`)},
}

// Checked in order; the first hit wins.
var levelPatterns = []struct {
	level models.Level
	re    *regexp.Regexp
}{
	{models.LevelElementary, regexp.MustCompile(`(?i)Level.*?Elementary`)},
	{models.LevelAdvanced, regexp.MustCompile(`(?i)Level.*?Advanced`)},
	{models.LevelIntermediate, regexp.MustCompile(`(?i)Level.*?Intermediate`)},
}

// ParseBlock reads one .courseblock. It returns ErrMissingHeader for a block
// without a title and ErrHeaderMismatch when the title is not "SUBJ 123 - Name".
func (GuideParser) ParseBlock(block *goquery.Selection, school string) (models.ParsedCourse, error) {
	header := utils.CleanText(block.Find(".courseblocktitle").Text())
	if header == "" {
		return models.ParsedCourse{}, ErrMissingHeader
	}

	m := headerRegex.FindStringSubmatch(header)
	if m == nil {
		return models.ParsedCourse{}, fmt.Errorf("%w: %q", ErrHeaderMismatch, truncate(header, 50))
	}

	// Cross-listed subjects ("COMP SCI/E C E") keep the first one.
	subject := strings.TrimSpace(strings.Split(m[1], "/")[0])
	course := models.ParsedCourse{
		Code:       utils.NormalizeCourseCode(subject + " " + m[2]),
		Name:       strings.TrimSpace(m[3]),
		Credits:    parseCredits(block.Find(".courseblockcredits").Text()),
		SchoolName: school,
		Breadths:   []string{},
		GenEds:     []string{},
		Level:      models.LevelIntermediate,
	}

	course.Description = utils.CleanText(block.Find(".courseblockdesc").Text())
	if course.Description == "" {
		course.Description = defaultDescription
	}

	extra := utils.CleanText(block.Find(".courseblockextra").Text())

	if pm := requisitesRegex.FindStringSubmatch(extra); pm != nil {
		text := strings.TrimSpace(pm[1])
		course.PrerequisiteText = &text
	}
	for _, p := range breadthPatterns {
		if p.re.MatchString(extra) {
			course.Breadths = append(course.Breadths, p.tag)
		}
	}
	for _, p := range genEdPatterns {
		if p.re.MatchString(extra) {
			course.GenEds = append(course.GenEds, p.tag)
		}
	}
	for _, p := range levelPatterns {
		if p.re.MatchString(extra) {
			course.Level = p.level
			break
		}
	}
	if lm := lastTaughtRegex.FindStringSubmatch(extra); lm != nil {
		term := strings.TrimSpace(lm[1])
		course.LastOffered = &term
	}

	return course, nil
}

func parseCredits(text string) int {
	m := creditsRegex.FindString(text)
	if m == "" {
		return defaultCredits
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return defaultCredits
	}
	return n
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
