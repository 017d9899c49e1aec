package service

import (
	"log/slog"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"

	"github.com/promptkeepapp/promptkeep-server/internal/errors"
)

// htmlTagPattern matches common HTML tags to detect if a string contains HTML.
// Looks for opening tags like <p>, <br>, <div>, <b>, etc.
var htmlTagPattern = regexp.MustCompile(`<(p|br|div|span|b|i|strong|em|a|ul|ol|li|h[1-6]|blockquote)[\s>/]`)

// PasteService converts rich-text clipboard content into markdown so
// pasted prompt bodies never carry raw HTML into the store.
type PasteService struct {
	logger *slog.Logger
}

// NewPasteService creates a new paste service.
func NewPasteService(logger *slog.Logger) *PasteService {
	return &PasteService{logger: logger}
}

// containsHTML checks if a string appears to contain HTML markup.
func containsHTML(s string) bool {
	return htmlTagPattern.MatchString(strings.ToLower(s))
}

// Convert turns pasted HTML into markdown. Plain text passes through
// trimmed. The returned bool reports whether a conversion happened.
func (s *PasteService) Convert(html string) (string, bool, error) {
	if html == "" || !containsHTML(html) {
		return strings.TrimSpace(html), false, nil
	}

	markdown, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return "", false, errors.InvalidInputf("could not convert pasted HTML: %v", err)
	}

	s.logger.Debug("converted pasted HTML", "html_len", len(html), "markdown_len", len(markdown))
	return strings.TrimSpace(markdown), true, nil
}
