package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createPromptInCategory(t *testing.T, ts *testServer, title, categoryPath string) CreatePromptResponse {
	t.Helper()

	resp := ts.api.Post("/api/v1/prompts", map[string]any{
		"title":         title,
		"body":          "Body of " + title + ".",
		"category_path": categoryPath,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[CreatePromptResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	return envelope.Data
}

func TestCategoryTree_SubtreeCounts(t *testing.T) {
	ts := setupTestServer(t)

	createPromptInCategory(t, ts, "Go helper", "Coding/Go")
	createPromptInCategory(t, ts, "Python helper", "Coding/Python")
	createPromptInCategory(t, ts, "Email draft", "Writing")

	resp := ts.api.Get("/api/v1/categories")
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[CategoryTreeResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	require.Len(t, envelope.Data.Categories, 2)

	coding := envelope.Data.Categories[0]
	assert.Equal(t, "Coding", coding.Name)
	assert.Equal(t, int64(2), coding.Count, "subtree count includes descendants")
	require.Len(t, coding.Children, 2)
	assert.Equal(t, "Coding/Go", coding.Children[0].Path)
	assert.Equal(t, int64(1), coding.Children[0].Count)

	writing := envelope.Data.Categories[1]
	assert.Equal(t, "Writing", writing.Name)
	assert.Equal(t, int64(1), writing.Count)
	assert.Empty(t, writing.Children)
}

func TestCreateCategory_FreePath(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/categories", map[string]any{
		"path": "Research/Papers",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[MessageResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
}

func TestCreateCategory_OccupiedPath(t *testing.T) {
	ts := setupTestServer(t)

	createPromptInCategory(t, ts, "Existing", "Coding/Go")

	resp := ts.api.Post("/api/v1/categories", map[string]any{
		"path": "Coding/Go",
	})
	require.Equal(t, http.StatusConflict, resp.Code)

	var envelope testErrorEnvelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "ALREADY_EXISTS", envelope.Code)
}

func TestCreateCategory_ReservedName(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/categories", map[string]any{
		"path": "Uncategorized",
	})
	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestRenameCategory_MovesSubtree(t *testing.T) {
	ts := setupTestServer(t)

	createPromptInCategory(t, ts, "One", "Coding/Go")
	createPromptInCategory(t, ts, "Two", "Coding/Python")

	resp := ts.api.Post("/api/v1/categories/rename", map[string]any{
		"old_path": "Coding",
		"new_path": "Engineering",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[RenameCategoryResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, int64(2), envelope.Data.Moved)

	resp = ts.api.Get("/api/v1/prompts?category=Engineering")
	require.Equal(t, http.StatusOK, resp.Code)

	var list testEnvelope[ListPromptsResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))
	assert.Len(t, list.Data.Prompts, 2)
}

func TestRenameCategory_UnknownPath(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/categories/rename", map[string]any{
		"old_path": "Nowhere",
		"new_path": "Somewhere",
	})
	require.Equal(t, http.StatusNotFound, resp.Code)

	var envelope testErrorEnvelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "CATEGORY_NOT_FOUND", envelope.Code)
}

func TestRenameCategory_TargetOccupied(t *testing.T) {
	ts := setupTestServer(t)

	createPromptInCategory(t, ts, "One", "Coding")
	createPromptInCategory(t, ts, "Two", "Engineering")

	resp := ts.api.Post("/api/v1/categories/rename", map[string]any{
		"old_path": "Coding",
		"new_path": "Engineering",
	})
	require.Equal(t, http.StatusConflict, resp.Code)

	var envelope testErrorEnvelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "ALREADY_EXISTS", envelope.Code)
}

func TestDeleteCategory_ReassignsToUncategorized(t *testing.T) {
	ts := setupTestServer(t)

	created := createPromptInCategory(t, ts, "Doomed", "Temp/Scratch")

	resp := ts.api.Post("/api/v1/categories/delete", map[string]any{
		"path": "Temp",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[DeleteCategoryResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, int64(1), envelope.Data.Reassigned)

	resp = ts.api.Get("/api/v1/prompts/" + created.Prompt.UUID)
	require.Equal(t, http.StatusOK, resp.Code)

	var detail testEnvelope[PromptDetailResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &detail))
	assert.Equal(t, "Uncategorized", detail.Data.Prompt.CategoryPath)
}

func TestDeleteCategory_ReservedName(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/categories/delete", map[string]any{
		"path": "Uncategorized",
	})
	require.Equal(t, http.StatusBadRequest, resp.Code)

	var envelope testErrorEnvelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "INVALID_INPUT", envelope.Code)
}

func TestAssignCategory_MovesPrompt(t *testing.T) {
	ts := setupTestServer(t)

	created := ts.createPrompt(t, "Wandering", "Content.")

	resp := ts.api.Put("/api/v1/prompts/"+created.Prompt.UUID+"/category", map[string]any{
		"path": "Archive/Old",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[PromptResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "Archive/Old", envelope.Data.CategoryPath)
}

func TestAssignCategory_PromptNotFound(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Put("/api/v1/prompts/0f0e6b9c-2b3a-4d5e-8f90-1a2b3c4d5e6f/category", map[string]any{
		"path": "Anywhere",
	})
	require.Equal(t, http.StatusNotFound, resp.Code)

	var envelope testErrorEnvelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "PROMPT_NOT_FOUND", envelope.Code)
}
