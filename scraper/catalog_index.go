// scraper/catalog_index.go
package scraper

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const coursesPrefix = "/courses/"

// DiscoverSubjectPaths returns the distinct subject listing paths linked from
// the catalog index, in page order. A subject path looks like "/courses/comp_sci/".
func DiscoverSubjectPaths(html string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog index: %w", err)
	}

	seen := make(map[string]struct{})
	var paths []string
	doc.Find(`a[href^="/courses/"]`).Each(func(_ int, a *goquery.Selection) {
		href, ok := a.Attr("href")
		if !ok || href == coursesPrefix || !strings.HasSuffix(href, "/") {
			return
		}
		if _, dup := seen[href]; dup {
			return
		}
		seen[href] = struct{}{}
		paths = append(paths, href)
	})
	return paths, nil
}

// SubjectCodeFromPath turns "/courses/comp_sci/" into "comp_sci".
func SubjectCodeFromPath(path string) string {
	code := strings.Replace(path, coursesPrefix, "", 1)
	return strings.Replace(code, "/", "", 1)
}
