package validation

import (
	"regexp"
	"strings"

	"github.com/promptkeepapp/promptkeep-server/internal/domain"
	"github.com/promptkeepapp/promptkeep-server/internal/errors"
)

// Prompt content limits.
const (
	MaxTitleLength = 255
	MaxBodyLength  = 100_000
	MaxTags        = 20
	MaxTagLength   = 50

	MaxMetadataTags      = 10
	MaxMetadataTagLength = 25
	MaxNotesLength       = 10_000
	MaxCategoryLength    = 255

	MaxModelIDLength  = 100
	MaxModelName      = 100
	MaxProviderLength = 50
)

// Prompt bodies are markdown with optional XML-style tags. Raw HTML,
// script URLs, data URLs, and inline event handlers are rejected so a
// body can never smuggle something executable into the GUI's preview
// pane.
var (
	htmlTagRe   = regexp.MustCompile(`<(?:script|style|iframe|object|embed|form|input|button|link|meta|base|head|html|body)[^>]*>`)
	scriptURLRe = regexp.MustCompile(`(?i)(javascript|vbscript):`)
	dataURLRe   = regexp.MustCompile(`data:`)
	eventAttrRe = regexp.MustCompile(`(?i)on\w+\s*=`)

	uuidRe = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
)

// ValidateBody checks a prompt body for emptiness, length, and
// disallowed active content.
func ValidateBody(body string) error {
	if strings.TrimSpace(body) == "" {
		return errors.InvalidInput("content cannot be empty")
	}
	if len(body) > MaxBodyLength {
		return errors.InvalidInput("content too long (max 100,000 characters)")
	}

	switch {
	case htmlTagRe.MatchString(body):
		return errors.InvalidInput("content contains HTML tags; only plain text, markdown, and XML tags are allowed")
	case scriptURLRe.MatchString(body):
		return errors.InvalidInput("content contains script URLs which are not allowed")
	case dataURLRe.MatchString(body):
		return errors.InvalidInput("content contains data URLs which are not allowed")
	case eventAttrRe.MatchString(body):
		return errors.InvalidInput("content contains event handlers which are not allowed")
	}
	return nil
}

// ValidateTitle checks a prompt title.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return errors.InvalidInput("title cannot be empty")
	}
	if len(title) > MaxTitleLength {
		return errors.InvalidInput("title too long (max 255 characters)")
	}
	if strings.ContainsAny(title, "<>") {
		return errors.InvalidInput("title cannot contain HTML")
	}
	return nil
}

// ValidateTags checks a prompt tag list.
func ValidateTags(tags []string) error {
	if len(tags) > MaxTags {
		return errors.InvalidInput("too many tags (max 20)")
	}
	for _, tag := range tags {
		if strings.TrimSpace(tag) == "" {
			return errors.InvalidInput("tag cannot be empty")
		}
		if len(tag) > MaxTagLength {
			return errors.InvalidInput("tag too long (max 50 characters)")
		}
		if strings.ContainsAny(tag, "<>") {
			return errors.InvalidInput("tags cannot contain HTML")
		}
	}
	return nil
}

// ValidatePromptInput checks the full (title, body, tags) triple used
// by prompt creation and file import.
func ValidatePromptInput(title, body string, tags []string) error {
	if err := ValidateTitle(title); err != nil {
		return err
	}
	if err := ValidateTags(tags); err != nil {
		return err
	}
	return ValidateBody(body)
}

// ValidateUUID checks canonical lowercase 8-4-4-4-12 form.
func ValidateUUID(uuid string) error {
	if !uuidRe.MatchString(uuid) {
		return errors.InvalidInput("invalid UUID format")
	}
	return nil
}

// ValidateCategoryPath checks a category path: non-empty printable
// ASCII without filesystem-hostile characters.
func ValidateCategoryPath(path string) error {
	if path == "" {
		return errors.InvalidInput("category path cannot be empty")
	}
	if len(path) > MaxCategoryLength {
		return errors.InvalidInput("category path cannot exceed 255 characters")
	}
	for _, c := range path {
		if c > 126 || c < 32 {
			return errors.InvalidInput("category path must contain only printable ASCII characters")
		}
		switch c {
		case '\\', '<', '>', ':', '"', '|', '?', '*':
			return errors.InvalidInput("category path contains invalid characters")
		}
	}
	return nil
}

// ValidateMetadata checks the limits on a version metadata object.
func ValidateMetadata(meta *domain.VersionMetadata) error {
	if meta == nil {
		return nil
	}

	if meta.Title != nil {
		if strings.TrimSpace(*meta.Title) == "" {
			return errors.InvalidInput("title cannot be empty")
		}
		if len(*meta.Title) > MaxTitleLength {
			return errors.InvalidInput("title cannot exceed 255 characters")
		}
	}

	if meta.Tags != nil {
		if len(meta.Tags) > MaxMetadataTags {
			return errors.InvalidInput("maximum 10 tags allowed")
		}
		for _, tag := range meta.Tags {
			if strings.TrimSpace(tag) == "" {
				return errors.InvalidInput("tags cannot be empty")
			}
			if len(tag) > MaxMetadataTagLength {
				return errors.InvalidInput("each tag must be 25 characters or less")
			}
		}
	}

	if meta.CategoryPath != nil {
		if err := ValidateCategoryPath(*meta.CategoryPath); err != nil {
			return err
		}
	}

	if meta.Notes != nil && len(*meta.Notes) > MaxNotesLength {
		return errors.InvalidInput("notes cannot exceed 10,000 characters")
	}

	return nil
}

// ValidateProviderInput checks a model provider registration.
func ValidateProviderInput(modelID, name, provider string) error {
	if strings.TrimSpace(modelID) == "" || strings.TrimSpace(name) == "" || strings.TrimSpace(provider) == "" {
		return errors.InvalidInput("model ID, name, and provider cannot be empty")
	}
	if len(modelID) > MaxModelIDLength || len(name) > MaxModelName || len(provider) > MaxProviderLength {
		return errors.InvalidInput("model ID, name, or provider too long")
	}
	return nil
}
