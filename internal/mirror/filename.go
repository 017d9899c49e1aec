package mirror

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
)

// filenameRe matches the mirror naming scheme {date}--{slug}--v{semver}.md.
// The slug group is greedy, so a slug that itself contains "--v" still
// resolves against the trailing semver.
var filenameRe = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})--(.*)--v(\d+\.\d+\.\d+)\.md$`)

// Slug derives the filename fragment from a title: lowercase, keep
// letters, digits, hyphens and underscores, spaces become hyphens,
// everything else is dropped. An all-symbol title yields an empty slug,
// which is allowed.
func Slug(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == ' ':
			b.WriteByte('-')
		case r == '-' || r == '_':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Filename builds the mirror filename for a version written on date.
func Filename(date time.Time, slug, semver string) string {
	return fmt.Sprintf("%s--%s--v%s.md", date.UTC().Format(time.DateOnly), slug, semver)
}

// FilenameParts is a mirror filename decomposed for recovery.
type FilenameParts struct {
	Date   time.Time
	Slug   string
	Semver string
}

// ParseFilename decomposes a mirror filename. Names that do not follow
// the scheme report ok=false; they were not written by us.
func ParseFilename(name string) (FilenameParts, bool) {
	matches := filenameRe.FindStringSubmatch(name)
	if matches == nil {
		return FilenameParts{}, false
	}
	date, err := time.Parse(time.DateOnly, matches[1])
	if err != nil {
		return FilenameParts{}, false
	}
	return FilenameParts{Date: date, Slug: matches[2], Semver: matches[3]}, true
}
