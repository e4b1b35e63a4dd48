// utils/coursecode.go
package utils

import (
	"regexp"
	"strings"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)

	// Up to 13 uppercase letters/spaces directly followed by a three-digit number.
	// Matches "COMP SCI 400", "MATH 222", "E C E 252".
	prereqCodePattern = regexp.MustCompile(`([A-Z][A-Z\s]{1,12})(\d{3})`)

	courseCodeSplit = regexp.MustCompile(`^(.+?)\s+(\d{3})$`)
)

// NormalizeCourseCode converts "comp sci  577" to "COMP SCI 577".
// It always succeeds and is idempotent.
func NormalizeCourseCode(raw string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(strings.ToUpper(raw), " "))
}

// ExtractCourseCodesFromPrereqText returns the normalized course codes found in
// free prerequisite text, deduplicated in first-seen order. The codes are not
// checked against the catalog.
func ExtractCourseCodesFromPrereqText(text string) []string {
	matches := prereqCodePattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(matches))
	codes := make([]string, 0, len(matches))
	for _, m := range matches {
		code := NormalizeCourseCode(m[1] + " " + m[2])
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	return codes
}

// SplitCourseCode splits "COMP SCI 577" into "COMP SCI" and "577".
func SplitCourseCode(code string) (subject, number string, ok bool) {
	m := courseCodeSplit.FindStringSubmatch(code)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}

// ToMadgradesSubject converts a subject name to the grades API identifier:
// "COMP SCI" becomes "comp_sci".
func ToMadgradesSubject(subject string) string {
	return strings.ToLower(whitespaceRun.ReplaceAllString(subject, "_"))
}
