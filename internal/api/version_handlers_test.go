package api

import (
	"encoding/json/v2"
	"net/http"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveVersion_BumpsMinor(t *testing.T) {
	ts := setupTestServer(t)

	created := ts.createPrompt(t, "Iterating", "First draft.")

	resp := ts.api.Post("/api/v1/prompts/"+created.Prompt.UUID+"/versions", map[string]any{
		"body": "Second draft.",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[VersionResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	assert.Equal(t, "1.1.0", envelope.Data.Semver)
	assert.Equal(t, "Second draft.", envelope.Data.Body)
	require.NotNil(t, envelope.Data.ParentUUID)
	assert.Equal(t, created.Version.UUID, *envelope.Data.ParentUUID)
}

func TestSaveVersion_RejectsDuplicateContent(t *testing.T) {
	ts := setupTestServer(t)

	created := ts.createPrompt(t, "Stable", "Unchanging content.")

	resp := ts.api.Post("/api/v1/prompts/"+created.Prompt.UUID+"/versions", map[string]any{
		"body": "Unchanging content.",
	})
	require.Equal(t, http.StatusConflict, resp.Code)

	var envelope testErrorEnvelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "DUPLICATE_CONTENT", envelope.Code)
}

func TestSaveVersion_PromptNotFound(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/prompts/0f0e6b9c-2b3a-4d5e-8f90-1a2b3c4d5e6f/versions", map[string]any{
		"body": "Orphan content.",
	})
	require.Equal(t, http.StatusNotFound, resp.Code)

	var envelope testErrorEnvelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "PROMPT_NOT_FOUND", envelope.Code)
}

func TestListPromptVersions_NewestFirst(t *testing.T) {
	ts := setupTestServer(t)

	created := ts.createPrompt(t, "History", "v1 content.")

	for _, body := range []string{"v2 content.", "v3 content."} {
		resp := ts.api.Post("/api/v1/prompts/"+created.Prompt.UUID+"/versions", map[string]any{
			"body": body,
		})
		require.Equal(t, http.StatusOK, resp.Code)
	}

	resp := ts.api.Get("/api/v1/prompts/" + created.Prompt.UUID + "/versions")
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[ListVersionsResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	require.Len(t, envelope.Data.Versions, 3)
	assert.Equal(t, "1.2.0", envelope.Data.Versions[0].Semver)
	assert.Equal(t, "1.1.0", envelope.Data.Versions[1].Semver)
	assert.Equal(t, "1.0.0", envelope.Data.Versions[2].Semver)
}

func TestRollback_CreatesNewVersion(t *testing.T) {
	ts := setupTestServer(t)

	created := ts.createPrompt(t, "Rollbackable", "The good wording.")

	resp := ts.api.Post("/api/v1/prompts/"+created.Prompt.UUID+"/versions", map[string]any{
		"body": "A regression.",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var second testEnvelope[VersionResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &second))

	resp = ts.api.Post("/api/v1/prompts/"+created.Prompt.UUID+"/rollback", map[string]any{
		"version_uuid": created.Version.UUID,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[VersionResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	// History stays append-only: the restored content lands in a fresh
	// version whose parent is the pre-rollback head.
	assert.Equal(t, "1.2.0", envelope.Data.Semver)
	assert.Equal(t, "The good wording.", envelope.Data.Body)
	require.NotNil(t, envelope.Data.ParentUUID)
	assert.Equal(t, second.Data.UUID, *envelope.Data.ParentUUID)
}

func TestRollback_ForeignVersionRejected(t *testing.T) {
	ts := setupTestServer(t)

	mine := ts.createPrompt(t, "Mine", "My content.")
	other := ts.createPrompt(t, "Other", "Other content.")

	resp := ts.api.Post("/api/v1/prompts/"+mine.Prompt.UUID+"/rollback", map[string]any{
		"version_uuid": other.Version.UUID,
	})
	require.Equal(t, http.StatusNotFound, resp.Code)

	var envelope testErrorEnvelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "VERSION_NOT_FOUND", envelope.Code)
}

func TestRecentVersions_SpansPrompts(t *testing.T) {
	ts := setupTestServer(t)

	ts.createPrompt(t, "Alpha prompt", "Alpha body with some length to snippet.")
	ts.createPrompt(t, "Beta prompt", "Beta body.")

	resp := ts.api.Get("/api/v1/versions/recent?limit=10")
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[RecentVersionsResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	require.Len(t, envelope.Data.Versions, 2)

	titles := []string{envelope.Data.Versions[0].Title, envelope.Data.Versions[1].Title}
	assert.Contains(t, titles, "Alpha prompt")
	assert.Contains(t, titles, "Beta prompt")
	assert.NotEmpty(t, envelope.Data.Versions[0].Snippet)
}

func TestGetVersion_ReturnsFullBody(t *testing.T) {
	ts := setupTestServer(t)

	created := ts.createPrompt(t, "Readable", "Full body content here.")

	resp := ts.api.Get("/api/v1/versions/" + created.Version.UUID)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[VersionResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	assert.Equal(t, created.Version.UUID, envelope.Data.UUID)
	assert.Equal(t, "Full body content here.", envelope.Data.Body)
}

func TestVersionMetadata_MergePreservesExisting(t *testing.T) {
	ts := setupTestServer(t)

	created := ts.createPrompt(t, "Annotated", "Body one.")

	resp := ts.api.Post("/api/v1/prompts/"+created.Prompt.UUID+"/versions", map[string]any{
		"body": "Body two.",
		"metadata": map[string]any{
			"notes": "second attempt",
		},
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var saved testEnvelope[VersionResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &saved))

	resp = ts.api.Patch("/api/v1/versions/"+saved.Data.UUID+"/metadata", map[string]any{
		"models": []string{"gpt-4o", "claude-sonnet"},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/v1/versions/" + saved.Data.UUID + "/metadata")
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[map[string]any]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	assert.Equal(t, "second attempt", envelope.Data["notes"])
	assert.Equal(t, []any{"gpt-4o", "claude-sonnet"}, envelope.Data["models"])
}

func TestRegenerateVersionFile_RewritesMirror(t *testing.T) {
	ts := setupTestServer(t)

	created := ts.createPrompt(t, "Mirrored", "Mirror me.")

	resp := ts.api.Post("/api/v1/versions/" + created.Version.UUID + "/regenerate")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[RegenerateFileResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	require.NotEmpty(t, envelope.Data.Path)
	_, err := os.Stat(envelope.Data.Path)
	assert.NoError(t, err, "regenerated mirror file should exist on disk")
}
