// Package mirror renders prompt versions to markdown files with front
// matter and parses them back. The database stays authoritative; these
// files exist so prompts can be read, edited, and synced as plain text.
package mirror

import (
	"strings"
	"time"
)

// Document is one mirror file: identifying front matter plus the
// version body verbatim.
type Document struct {
	UUID     string
	Semver   string
	Title    string
	Tags     []string
	Created  time.Time
	Modified time.Time
	Body     string
}

// Render produces the file content. Format, exactly:
//
//	---
//	uuid: "<prompt uuid>"
//	version: "<semver>"
//	title: "<title>"
//	tags: ["tag1", "tag2"]
//	created: 2025-01-15
//	modified: 2025-01-15
//	---
//
//	<body>
func (d *Document) Render() []byte {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString(`uuid: "` + d.UUID + "\"\n")
	b.WriteString(`version: "` + d.Semver + "\"\n")
	b.WriteString(`title: "` + d.Title + "\"\n")
	b.WriteString("tags: " + renderTagList(d.Tags) + "\n")
	b.WriteString("created: " + d.Created.UTC().Format(time.DateOnly) + "\n")
	b.WriteString("modified: " + d.Modified.UTC().Format(time.DateOnly) + "\n")
	b.WriteString("---\n\n")
	b.WriteString(d.Body)
	if !strings.HasSuffix(d.Body, "\n") {
		b.WriteString("\n")
	}
	return []byte(b.String())
}

func renderTagList(tags []string) string {
	if len(tags) == 0 {
		return "[]"
	}
	quoted := make([]string, len(tags))
	for i, tag := range tags {
		quoted[i] = `"` + tag + `"`
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
