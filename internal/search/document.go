// Package search provides full-text search over prompt versions using
// Bleve. Every version is indexed as its own document with the owning
// prompt's title, tags, and category denormalized in, so a search
// observes current metadata without a join.
package search

import (
	"github.com/promptkeepapp/promptkeep-server/internal/domain"
)

// VersionDocument is the Bleve document for one prompt version.
// The document ID is the version UUID, so re-indexing a version
// overwrites its previous document.
type VersionDocument struct {
	ID         string   `json:"id"`          // Version UUID
	PromptUUID string   `json:"prompt_uuid"` // Owning prompt
	Title      string   `json:"title"`       // Denormalized prompt title
	Body       string   `json:"body"`
	Tags       []string `json:"tags,omitempty"` // Denormalized prompt tags
	Semver     string   `json:"semver"`
	Category   string   `json:"category"`   // Denormalized category path
	CreatedAt  int64    `json:"created_at"` // Unix millis
}

// ToMap converts the document to a map with lowercase field names.
// Bleve by default uses Go struct field names (capitalized), but the
// index mapping uses lowercase names, so we convert explicitly.
func (d *VersionDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":          d.ID,
		"prompt_uuid": d.PromptUUID,
		"title":       d.Title,
		"body":        d.Body,
		"semver":      d.Semver,
		"category":    d.Category,
		"created_at":  d.CreatedAt,
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}
	return m
}

// NewVersionDocument builds the search document for a version,
// denormalizing the prompt's title, tags, and category.
func NewVersionDocument(prompt *domain.Prompt, version *domain.Version) *VersionDocument {
	return &VersionDocument{
		ID:         version.UUID,
		PromptUUID: prompt.UUID,
		Title:      prompt.Title,
		Body:       version.Body,
		Tags:       prompt.Tags,
		Semver:     version.Semver,
		Category:   prompt.CategoryPath,
		CreatedAt:  version.CreatedAt.UnixMilli(),
	}
}
