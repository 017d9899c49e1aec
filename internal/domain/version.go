package domain

import "time"

// Version is one immutable snapshot of a prompt's body.
// Rows are append-only: a rollback creates a new version rather than
// rewriting history. Metadata is the only field that may change after
// insert.
type Version struct {
	UUID       string           `json:"uuid"`
	PromptUUID string           `json:"prompt_uuid"`
	Semver     string           `json:"semver"`
	Body       string           `json:"body"`
	Metadata   *VersionMetadata `json:"metadata,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	// ParentUUID links to the version this one was derived from;
	// nil for a prompt's first version.
	ParentUUID *string `json:"parent_uuid,omitempty"`
}

// NewVersion creates a version with a fresh timestamp.
func NewVersion(uuid, promptUUID, semver, body string, parentUUID *string) *Version {
	return &Version{
		UUID:       uuid,
		PromptUUID: promptUUID,
		Semver:     semver,
		Body:       body,
		CreatedAt:  time.Now().UTC(),
		ParentUUID: parentUUID,
	}
}

// IsInitial reports whether this is a prompt's first version.
func (v *Version) IsInitial() bool {
	return v.ParentUUID == nil
}

// VersionMetadata is the mutable annotation object on a version.
// All fields are optional; a patch only touches the fields it sets.
type VersionMetadata struct {
	Title        *string        `json:"title,omitempty"`
	Tags         []string       `json:"tags,omitempty"`
	Models       []string       `json:"models,omitempty"`
	CategoryPath *string        `json:"category_path,omitempty"`
	Notes        *string        `json:"notes,omitempty"`
	CustomFields map[string]any `json:"custom_fields,omitempty"`
}

// Merge applies the set fields of patch onto m. Unset (nil) patch
// fields leave the existing value alone.
func (m *VersionMetadata) Merge(patch *VersionMetadata) {
	if patch == nil {
		return
	}
	if patch.Title != nil {
		m.Title = patch.Title
	}
	if patch.Tags != nil {
		m.Tags = patch.Tags
	}
	if patch.Models != nil {
		m.Models = patch.Models
	}
	if patch.CategoryPath != nil {
		m.CategoryPath = patch.CategoryPath
	}
	if patch.Notes != nil {
		m.Notes = patch.Notes
	}
	if patch.CustomFields != nil {
		m.CustomFields = patch.CustomFields
	}
}

// IsZero reports whether no field is set.
func (m *VersionMetadata) IsZero() bool {
	return m.Title == nil && m.Tags == nil && m.Models == nil &&
		m.CategoryPath == nil && m.Notes == nil && m.CustomFields == nil
}
