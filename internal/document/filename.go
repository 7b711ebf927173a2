package document

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/quillmed/chartextract/internal/parse"
)

// Scanned exports often carry the visit date or provider only in the
// filename ("visit_2024-03-14_dr_smith.pdf"). These fallbacks are
// consulted only when in-text extraction found nothing.

var (
	filenameDateRe = regexp.MustCompile(`(\d{4}-\d{2}-\d{2}|\d{2}-\d{2}-\d{4}|\d{8})`)

	filenameProviderRe = regexp.MustCompile(`(?i)dr[._ -]+([a-z]+)`)
)

// DateFromFilename extracts a calendar date embedded in a file name, or
// nil when none is found.
func DateFromFilename(path string) *time.Time {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	m := filenameDateRe.FindString(base)
	if m == "" {
		return nil
	}
	if len(m) == 8 {
		// Compact YYYYMMDD form.
		m = m[:4] + "-" + m[4:6] + "-" + m[6:]
	}
	return parse.ParseDate(m)
}

// ProviderFromFilename extracts a provider surname embedded in a file
// name ("dr_smith"), title-cased, or "" when none is found.
func ProviderFromFilename(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	m := filenameProviderRe.FindStringSubmatch(base)
	if m == nil {
		return ""
	}
	name := strings.ToLower(m[1])
	return strings.ToUpper(name[:1]) + name[1:]
}
