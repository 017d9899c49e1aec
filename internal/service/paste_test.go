package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainsHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{name: "empty string", input: "", expected: false},
		{name: "plain text", input: "Summarize the email thread below.", expected: false},
		{name: "angle brackets but not HTML", input: "Use <stdin> for input and 2 > 1 is true", expected: false},
		{name: "paragraph tags", input: "<p>A paragraph.</p>", expected: true},
		{name: "self-closing break", input: "Line one<br/>Line two", expected: true},
		{name: "anchor", input: `Click <a href="https://example.com">here</a>`, expected: true},
		{name: "uppercase tags", input: "<P>Uppercase paragraph</P>", expected: true},
		{name: "heading", input: "<h2>Context</h2>", expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, containsHTML(tt.input))
		})
	}
}

func TestPasteService_Convert(t *testing.T) {
	svc := NewPasteService(testLogger())

	tests := []struct {
		name      string
		input     string
		expected  string
		converted bool
	}{
		{
			name:      "empty string",
			input:     "",
			expected:  "",
			converted: false,
		},
		{
			name:      "plain text trimmed",
			input:     "  Summarize the thread.  ",
			expected:  "Summarize the thread.",
			converted: false,
		},
		{
			name:      "paragraphs to newlines",
			input:     "<p>First paragraph.</p><p>Second paragraph.</p>",
			expected:  "First paragraph.\n\nSecond paragraph.",
			converted: true,
		},
		{
			name:      "bold to markdown",
			input:     "This is <b>bold</b> and <strong>strong</strong> text.",
			expected:  "This is **bold** and **strong** text.",
			converted: true,
		},
		{
			name:      "links to markdown",
			input:     `Visit <a href="https://example.com">our site</a> for more.`,
			expected:  "Visit [our site](https://example.com) for more.",
			converted: true,
		},
		{
			name:      "unordered list",
			input:     "<ul><li>Item 1</li><li>Item 2</li></ul>",
			expected:  "- Item 1\n- Item 2",
			converted: true,
		},
		{
			name:      "heading and body",
			input:     "<h1>Role</h1><p>You are a careful editor.</p>",
			expected:  "# Role\n\nYou are a careful editor.",
			converted: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, converted, err := svc.Convert(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, tt.converted, converted)
		})
	}
}
