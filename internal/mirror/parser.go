package mirror

import (
	"strings"
	"time"

	"github.com/promptkeepapp/promptkeep-server/internal/errors"
	"github.com/promptkeepapp/promptkeep-server/internal/id"
	"github.com/promptkeepapp/promptkeep-server/internal/semver"
)

// Parse reads a mirror document back from file content.
//
// The grammar is deliberately line-oriented: an opening "---" fence,
// "key: value" lines until the closing fence, then the body. Values may
// be double-quoted strings or a bracketed tag list. Unknown keys are
// ignored so hand-edited files with extra front matter still import.
//
// uuid and title are required and must be well-formed; a missing
// version defaults to 1.0.0. Tags that do not parse degrade to an
// empty list rather than failing the file.
func Parse(content []byte) (*Document, error) {
	lines := strings.Split(string(content), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}

	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return nil, errors.MalformedDocument("missing front matter fence")
	}

	doc := &Document{Tags: []string{}}
	bodyStart := -1
	for i := 1; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "---" {
			bodyStart = i + 1
			break
		}
		if line == "" {
			continue
		}

		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "uuid":
			doc.UUID = unquote(value)
		case "version":
			doc.Semver = unquote(value)
		case "title":
			doc.Title = unquote(value)
		case "tags":
			doc.Tags = parseTagList(value)
		case "created":
			doc.Created = parseDate(value)
		case "modified":
			doc.Modified = parseDate(value)
		}
	}
	if bodyStart < 0 {
		return nil, errors.MalformedDocument("unterminated front matter")
	}

	if doc.UUID == "" {
		return nil, errors.MalformedDocument("front matter is missing uuid")
	}
	if !id.IsUUID(doc.UUID) {
		return nil, errors.MalformedDocumentf("front matter uuid %q is not a canonical UUID", doc.UUID)
	}
	if doc.Title == "" {
		return nil, errors.MalformedDocument("front matter is missing title")
	}
	if doc.Semver == "" {
		doc.Semver = semver.Initial
	}
	if !semver.IsValid(doc.Semver) {
		return nil, errors.MalformedDocumentf("front matter version %q is not MAJOR.MINOR.PATCH", doc.Semver)
	}

	doc.Body = strings.TrimSpace(strings.Join(lines[bodyStart:], "\n"))
	return doc, nil
}

// unquote strips one surrounding pair of double quotes. Interior quotes
// stay put, so a title written unescaped round-trips.
func unquote(s string) string {
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		return s[1 : len(s)-1]
	}
	return s
}

// parseTagList reads `["a", "b"]`. Anything that does not look like a
// bracketed list collapses to no tags.
func parseTagList(value string) []string {
	if !strings.HasPrefix(value, "[") || !strings.HasSuffix(value, "]") {
		return []string{}
	}
	inner := strings.TrimSpace(value[1 : len(value)-1])
	if inner == "" {
		return []string{}
	}

	var tags []string
	for _, part := range strings.Split(inner, ",") {
		tag := unquote(strings.TrimSpace(part))
		if tag == "" {
			continue
		}
		tags = append(tags, tag)
	}
	if tags == nil {
		return []string{}
	}
	return tags
}

func parseDate(value string) time.Time {
	t, err := time.Parse(time.DateOnly, unquote(value))
	if err != nil {
		return time.Time{}
	}
	return t
}
