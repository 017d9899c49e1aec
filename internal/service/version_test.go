package service

import (
	"context"
	"os"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptkeepapp/promptkeep-server/internal/domain"
	domainerrors "github.com/promptkeepapp/promptkeep-server/internal/errors"
	"github.com/promptkeepapp/promptkeep-server/internal/mirror"
	"github.com/promptkeepapp/promptkeep-server/internal/store"
)

func newVersionService(t *testing.T) (*VersionService, *store.Store, *mirror.Mirror) {
	t.Helper()
	st := newTestStore(t)
	mir := mirror.New(t.TempDir(), testLogger())
	st.SetMirrorWriter(mir)
	return NewVersionService(st, mir, testLogger()), st, mir
}

func createTestPrompt(t *testing.T, st *store.Store, title, body string) (*domain.Prompt, *domain.Version) {
	t.Helper()
	prompt, version, err := st.CreatePrompt(context.Background(), title, body, nil, "")
	require.NoError(t, err)
	return prompt, version
}

func TestVersionService_Save(t *testing.T) {
	svc, st, _ := newVersionService(t)
	ctx := context.Background()

	prompt, _ := createTestPrompt(t, st, "Greeter", "Say hello.")

	notes := "tightened the tone"
	version, err := svc.Save(ctx, prompt.UUID, SaveVersionRequest{
		Body:     "Say hello, warmly.",
		Metadata: &domain.VersionMetadata{Notes: &notes},
	})
	require.NoError(t, err)
	assert.Equal(t, "1.0.1", version.Semver)
	assert.Equal(t, "Say hello, warmly.", version.Body)
	require.NotNil(t, version.Metadata)
	require.NotNil(t, version.Metadata.Notes)
	assert.Equal(t, notes, *version.Metadata.Notes)
}

func TestVersionService_Save_RejectsInvalidInput(t *testing.T) {
	svc, st, _ := newVersionService(t)
	ctx := context.Background()

	prompt, _ := createTestPrompt(t, st, "Greeter", "Say hello.")
	emptyTitle := "   "

	tests := []struct {
		name       string
		promptUUID string
		req        SaveVersionRequest
	}{
		{name: "bad uuid", promptUUID: "nope", req: SaveVersionRequest{Body: "fine"}},
		{name: "empty body", promptUUID: prompt.UUID, req: SaveVersionRequest{Body: "  "}},
		{
			name:       "blank metadata title",
			promptUUID: prompt.UUID,
			req:        SaveVersionRequest{Body: "fine", Metadata: &domain.VersionMetadata{Title: &emptyTitle}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Save(ctx, tt.promptUUID, tt.req)
			assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
		})
	}
}

func TestVersionService_Save_DuplicateBody(t *testing.T) {
	svc, st, _ := newVersionService(t)
	ctx := context.Background()

	prompt, _ := createTestPrompt(t, st, "Greeter", "Say hello.")

	_, err := svc.Save(ctx, prompt.UUID, SaveVersionRequest{Body: "Say hello."})
	assert.ErrorIs(t, err, domainerrors.ErrDuplicateContent)
}

func TestVersionService_ListForPrompt(t *testing.T) {
	svc, st, _ := newVersionService(t)
	ctx := context.Background()

	prompt, _ := createTestPrompt(t, st, "Greeter", "Say hello.")
	_, err := svc.Save(ctx, prompt.UUID, SaveVersionRequest{Body: "Say hello, warmly."})
	require.NoError(t, err)

	versions, err := svc.ListForPrompt(ctx, prompt.UUID, 0)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, "1.0.1", versions[0].Semver)
	assert.Equal(t, "1.0.0", versions[1].Semver)
}

func TestVersionService_ListForPrompt_UnknownPrompt(t *testing.T) {
	svc, _, _ := newVersionService(t)

	_, err := svc.ListForPrompt(context.Background(), unknownUUID, 0)
	assert.ErrorIs(t, err, domainerrors.ErrPromptNotFound)
}

func TestVersionService_Rollback(t *testing.T) {
	svc, st, _ := newVersionService(t)
	ctx := context.Background()

	prompt, first := createTestPrompt(t, st, "Greeter", "Say hello.")
	_, err := svc.Save(ctx, prompt.UUID, SaveVersionRequest{Body: "Say hello, warmly."})
	require.NoError(t, err)

	restored, err := svc.Rollback(ctx, prompt.UUID, first.UUID)
	require.NoError(t, err)
	assert.Equal(t, "1.0.2", restored.Semver)
	assert.Equal(t, "Say hello.", restored.Body)
}

func TestVersionService_Rollback_WrongPrompt(t *testing.T) {
	svc, st, _ := newVersionService(t)
	ctx := context.Background()

	prompt, _ := createTestPrompt(t, st, "Greeter", "Say hello.")
	_, foreign := createTestPrompt(t, st, "Closer", "Say goodbye.")

	// A version of another prompt cannot be rolled back through this one.
	_, err := svc.Rollback(ctx, prompt.UUID, foreign.UUID)
	assert.ErrorIs(t, err, domainerrors.ErrVersionNotFound)

	versions, err := svc.ListForPrompt(ctx, prompt.UUID, 0)
	require.NoError(t, err)
	assert.Len(t, versions, 1)
}

func TestVersionService_Metadata(t *testing.T) {
	svc, st, _ := newVersionService(t)
	ctx := context.Background()

	_, version := createTestPrompt(t, st, "Greeter", "Say hello.")

	// Unset metadata reads as the default category.
	meta, err := svc.GetMetadata(ctx, version.UUID)
	require.NoError(t, err)
	require.NotNil(t, meta.CategoryPath)
	assert.Equal(t, "Uncategorized", *meta.CategoryPath)

	notes := "first round of edits"
	category := "Work"
	meta, err = svc.UpdateMetadata(ctx, version.UUID, &domain.VersionMetadata{
		Notes:        &notes,
		CategoryPath: &category,
	})
	require.NoError(t, err)
	require.NotNil(t, meta.Notes)
	assert.Equal(t, notes, *meta.Notes)

	blank := ""
	_, err = svc.UpdateMetadata(ctx, version.UUID, &domain.VersionMetadata{Title: &blank})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)
}

func TestVersionService_Recent(t *testing.T) {
	svc, st, _ := newVersionService(t)
	ctx := context.Background()

	longBody := strings.Repeat("é", 300)
	createTestPrompt(t, st, "Older Prompt", "short body")
	newer, _ := createTestPrompt(t, st, "Newer Prompt", longBody)

	recent, err := svc.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, recent, 2)

	assert.Equal(t, newer.UUID, recent[0].PromptUUID)
	assert.Equal(t, "Newer Prompt", recent[0].Title)
	assert.Equal(t, "1.0.0", recent[0].Semver)
	assert.Equal(t, 200, utf8.RuneCountInString(recent[0].Snippet))
	assert.Equal(t, "short body", recent[1].Snippet)

	limited, err := svc.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, newer.UUID, limited[0].PromptUUID)
}

func TestVersionService_RegenerateFile(t *testing.T) {
	svc, st, mir := newVersionService(t)
	ctx := context.Background()

	prompt, version := createTestPrompt(t, st, "Meeting Notes", "Summarize the meeting.")

	path := mir.VersionPath(prompt, version)
	require.FileExists(t, path)
	require.NoError(t, os.Remove(path))

	written, err := svc.RegenerateFile(ctx, version.UUID)
	require.NoError(t, err)
	assert.Equal(t, path, written)
	require.FileExists(t, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	doc, err := mirror.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, version.UUID, doc.UUID)
	assert.Equal(t, "Summarize the meeting.", doc.Body)
}

func TestVersionService_RegenerateFile_UnknownVersion(t *testing.T) {
	svc, _, _ := newVersionService(t)

	_, err := svc.RegenerateFile(context.Background(), unknownUUID)
	assert.ErrorIs(t, err, domainerrors.ErrVersionNotFound)
}

func TestSnippetOf(t *testing.T) {
	assert.Equal(t, "short", snippetOf("short", 200))
	assert.Equal(t, strings.Repeat("a", 200), snippetOf(strings.Repeat("a", 200), 200))
	assert.Equal(t, strings.Repeat("a", 200), snippetOf(strings.Repeat("a", 201), 200))

	// Truncation counts runes, not bytes.
	truncated := snippetOf(strings.Repeat("é", 300), 200)
	assert.Equal(t, 200, utf8.RuneCountInString(truncated))
	assert.Equal(t, strings.Repeat("é", 200), truncated)
}
