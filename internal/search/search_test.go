package search

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptkeepapp/promptkeep-server/internal/domain"
	"github.com/promptkeepapp/promptkeep-server/internal/errors"
)

// setupTestIndex creates a temporary search index for testing.
func setupTestIndex(t *testing.T) *Index {
	t.Helper()

	index, err := New(Options{DataPath: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	return index
}

func testVersion(promptUUID, versionUUID, title, body string, tags []string, category string) (*domain.Prompt, *domain.Version) {
	prompt := domain.NewPrompt(promptUUID, title, tags, category)
	version := domain.NewVersion(versionUUID, promptUUID, "1.0.0", body, nil)
	return prompt, version
}

func TestNew(t *testing.T) {
	index := setupTestIndex(t)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
	assert.False(t, index.NeedsReindex())
}

func TestIndexVersion(t *testing.T) {
	index := setupTestIndex(t)

	prompt, version := testVersion("p-1", "v-1", "Code Reviewer", "Review the diff.", nil, "")
	err := index.IndexVersion(context.Background(), prompt, version)
	require.NoError(t, err)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestReindexPrompt_OverwritesInPlace(t *testing.T) {
	index := setupTestIndex(t)
	ctx := context.Background()

	prompt, version := testVersion("p-1", "v-1", "Old Title", "Body text.", nil, "")
	require.NoError(t, index.IndexVersion(ctx, prompt, version))

	prompt.Title = "Shiny Title"
	require.NoError(t, index.ReindexPrompt(ctx, prompt, []*domain.Version{version}))

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count, "reindex must overwrite, not duplicate")

	result, err := index.Search(ctx, Params{Query: "shiny"})
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "Shiny Title", result.Hits[0].Title)
	assert.Equal(t, "v-1", result.Hits[0].VersionUUID)
	assert.Equal(t, "p-1", result.Hits[0].PromptUUID)
}

func TestSearch_TitleOutranksBody(t *testing.T) {
	index := setupTestIndex(t)
	ctx := context.Background()

	promptA, versionA := testVersion("p-a", "v-a", "Review Checklist", "Check everything twice.", nil, "")
	promptB, versionB := testVersion("p-b", "v-b", "Something Else", "Please review the code carefully.", nil, "")
	require.NoError(t, index.IndexVersion(ctx, promptA, versionA))
	require.NoError(t, index.IndexVersion(ctx, promptB, versionB))

	result, err := index.Search(ctx, Params{Query: "review"})
	require.NoError(t, err)
	require.Len(t, result.Hits, 2)
	assert.Equal(t, "v-a", result.Hits[0].VersionUUID, "title match should rank above body match")
}

func TestSearch_Tags(t *testing.T) {
	index := setupTestIndex(t)
	ctx := context.Background()

	prompt, version := testVersion("p-1", "v-1", "Blog Helper", "Write an outline.", []string{"drafting", "blog"}, "")
	require.NoError(t, index.IndexVersion(ctx, prompt, version))

	result, err := index.Search(ctx, Params{Query: "drafting"})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), result.Total)
}

func TestSearch_Fuzzy(t *testing.T) {
	index := setupTestIndex(t)
	ctx := context.Background()

	prompt, version := testVersion("p-1", "v-1", "Wizard Prompt", "Cast spells.", nil, "")
	require.NoError(t, index.IndexVersion(ctx, prompt, version))

	// One edit away from "wizard"
	result, err := index.Search(ctx, Params{Query: "wizzard"})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.Total, uint64(1))
}

func TestSearch_Prefix(t *testing.T) {
	index := setupTestIndex(t)
	ctx := context.Background()

	prompt, version := testVersion("p-1", "v-1", "Summarizer", "Condense text.", nil, "")
	require.NoError(t, index.IndexVersion(ctx, prompt, version))

	result, err := index.Search(ctx, Params{Query: "summ"})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.Total, uint64(1))
}

func TestSearch_CategoryFilter(t *testing.T) {
	index := setupTestIndex(t)
	ctx := context.Background()

	promptA, versionA := testVersion("p-a", "v-a", "Meeting Notes", "Summarize the meeting.", nil, "Work")
	promptB, versionB := testVersion("p-b", "v-b", "Meeting Agenda", "Summarize the agenda.", nil, "Personal")
	require.NoError(t, index.IndexVersion(ctx, promptA, versionA))
	require.NoError(t, index.IndexVersion(ctx, promptB, versionB))

	result, err := index.Search(ctx, Params{Query: "meeting", CategoryPath: "Work"})
	require.NoError(t, err)
	require.Equal(t, uint64(1), result.Total)
	assert.Equal(t, "v-a", result.Hits[0].VersionUUID)
}

func TestSearch_EmptyQuery(t *testing.T) {
	index := setupTestIndex(t)

	prompt, version := testVersion("p-1", "v-1", "Anything", "Whatever.", nil, "")
	require.NoError(t, index.IndexVersion(context.Background(), prompt, version))

	for _, q := range []string{"", "   "} {
		result, err := index.Search(context.Background(), Params{Query: q})
		require.NoError(t, err)
		assert.Equal(t, uint64(0), result.Total)
		assert.Empty(t, result.Hits)
	}
}

func TestSearch_QueryTooLong(t *testing.T) {
	index := setupTestIndex(t)

	_, err := index.Search(context.Background(), Params{Query: strings.Repeat("a", MaxQueryLength+1)})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidInput))
}

func TestSearch_DefaultLimit(t *testing.T) {
	index := setupTestIndex(t)
	ctx := context.Background()

	docs := make([]*VersionDocument, 0, DefaultLimit+5)
	for i := 0; i < DefaultLimit+5; i++ {
		prompt, version := testVersion(
			fmt.Sprintf("p-%d", i), fmt.Sprintf("v-%d", i),
			fmt.Sprintf("Recipe %d", i), "A cooking prompt.", nil, "",
		)
		docs = append(docs, NewVersionDocument(prompt, version))
	}
	require.NoError(t, index.IndexDocuments(docs))

	result, err := index.Search(ctx, Params{Query: "recipe"})
	require.NoError(t, err)
	assert.Equal(t, uint64(DefaultLimit+5), result.Total)
	assert.Len(t, result.Hits, DefaultLimit)

	// Offset pages past the first window
	result, err = index.Search(ctx, Params{Query: "recipe", Limit: DefaultLimit, Offset: DefaultLimit})
	require.NoError(t, err)
	assert.Len(t, result.Hits, 5)
}

func TestSearch_Snippet(t *testing.T) {
	index := setupTestIndex(t)
	ctx := context.Background()

	prompt, version := testVersion("p-1", "v-1", "Long Form",
		"You are a translator. Translate the passage faithfully and keep the register.", nil, "")
	require.NoError(t, index.IndexVersion(ctx, prompt, version))

	result, err := index.Search(ctx, Params{Query: "translator"})
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Contains(t, result.Hits[0].Snippet, "<mark>", "body matches should be highlighted")
}

func TestReset(t *testing.T) {
	index := setupTestIndex(t)

	prompt, version := testVersion("p-1", "v-1", "Test", "Body.", nil, "")
	require.NoError(t, index.IndexVersion(context.Background(), prompt, version))

	require.NoError(t, index.Reset())

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestPersistence(t *testing.T) {
	dir := t.TempDir()

	index1, err := New(Options{DataPath: dir})
	require.NoError(t, err)

	prompt, version := testVersion("p-1", "v-1", "Keeper", "Persists across opens.", nil, "")
	require.NoError(t, index1.IndexVersion(context.Background(), prompt, version))
	require.NoError(t, index1.Close())

	index2, err := New(Options{DataPath: dir})
	require.NoError(t, err)
	defer index2.Close()

	assert.False(t, index2.NeedsReindex())

	count, err := index2.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestMappingVersionMismatch_Rebuilds(t *testing.T) {
	dir := t.TempDir()

	index1, err := New(Options{DataPath: dir})
	require.NoError(t, err)

	prompt, version := testVersion("p-1", "v-1", "Stale", "Indexed under the old mapping.", nil, "")
	require.NoError(t, index1.IndexVersion(context.Background(), prompt, version))
	require.NoError(t, index1.Close())

	// Simulate an index written by an older build
	require.NoError(t, os.WriteFile(filepath.Join(dir, "search.version"), []byte("0"), 0644))

	index2, err := New(Options{DataPath: dir})
	require.NoError(t, err)
	defer index2.Close()

	assert.True(t, index2.NeedsReindex())

	count, err := index2.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), count)
}

func TestNewVersionDocument(t *testing.T) {
	now := time.Now().UTC()
	prompt := &domain.Prompt{
		UUID:         "p-1",
		Title:        "Email Summarizer",
		Tags:         []string{"email"},
		CategoryPath: "Work/Agents",
	}
	version := &domain.Version{
		UUID:       "v-1",
		PromptUUID: "p-1",
		Semver:     "1.2.3",
		Body:       "Summarize this email.",
		CreatedAt:  now,
	}

	doc := NewVersionDocument(prompt, version)
	assert.Equal(t, "v-1", doc.ID)
	assert.Equal(t, "p-1", doc.PromptUUID)
	assert.Equal(t, "Email Summarizer", doc.Title)
	assert.Equal(t, "1.2.3", doc.Semver)
	assert.Equal(t, "Work/Agents", doc.Category)
	assert.Equal(t, now.UnixMilli(), doc.CreatedAt)

	m := doc.ToMap()
	assert.Equal(t, []string{"email"}, m["tags"])

	doc.Tags = nil
	_, present := doc.ToMap()["tags"]
	assert.False(t, present, "empty tags should be omitted from the map")
}
