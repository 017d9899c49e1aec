// Package domain contains the core business entities for the PromptKeep prompt library.
package domain

import (
	"slices"
	"time"
)

// Prompt is a named prompt with an append-only version history.
// The prompt row carries identity and metadata; the text itself lives
// in Version rows.
type Prompt struct {
	UUID         string    `json:"uuid"`
	Title        string    `json:"title"`
	Tags         []string  `json:"tags"`
	CategoryPath string    `json:"category_path"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	// ProdVersionUUID pins the version the user marked as "production".
	ProdVersionUUID *string `json:"prod_version_uuid,omitempty"`
}

// NewPrompt creates a prompt with fresh timestamps.
// An empty categoryPath falls back to DefaultCategoryPath.
func NewPrompt(uuid, title string, tags []string, categoryPath string) *Prompt {
	if categoryPath == "" {
		categoryPath = DefaultCategoryPath
	}
	if tags == nil {
		tags = []string{}
	}
	now := time.Now().UTC()
	return &Prompt{
		UUID:         uuid,
		Title:        title,
		Tags:         tags,
		CategoryPath: categoryPath,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Touch updates the UpdatedAt timestamp to the current time.
// Call this whenever a new version lands or metadata changes.
func (p *Prompt) Touch() {
	p.UpdatedAt = time.Now().UTC()
}

// HasTag reports whether the prompt carries the given tag.
func (p *Prompt) HasTag(tag string) bool {
	return slices.Contains(p.Tags, tag)
}
