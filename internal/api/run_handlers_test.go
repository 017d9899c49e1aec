package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRun_WithMetrics(t *testing.T) {
	ts := setupTestServer(t)

	created := ts.createPrompt(t, "Evaluated", "Prompt under evaluation.")

	resp := ts.api.Post("/api/v1/versions/"+created.Version.UUID+"/runs", map[string]any{
		"model":       "gpt-4o",
		"input":       "test input",
		"output":      "test output",
		"judge_score": 8.5,
		"cost_usd":    0.0042,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[RunResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	assert.NotEmpty(t, envelope.Data.UUID)
	assert.Equal(t, created.Version.UUID, envelope.Data.VersionUUID)
	assert.Equal(t, "gpt-4o", envelope.Data.Model)
	assert.Equal(t, "test output", envelope.Data.Output)
	require.NotNil(t, envelope.Data.JudgeScore)
	assert.InDelta(t, 8.5, *envelope.Data.JudgeScore, 0.001)
	require.NotNil(t, envelope.Data.CostUSD)
	assert.InDelta(t, 0.0042, *envelope.Data.CostUSD, 0.000001)
	assert.Nil(t, envelope.Data.Bleu, "unset metrics stay null")
}

func TestRecordRun_MissingModel(t *testing.T) {
	ts := setupTestServer(t)

	created := ts.createPrompt(t, "Evaluated", "Content.")

	resp := ts.api.Post("/api/v1/versions/"+created.Version.UUID+"/runs", map[string]any{
		"output": "output without a model",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestRecordRun_VersionNotFound(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/versions/0f0e6b9c-2b3a-4d5e-8f90-1a2b3c4d5e6f/runs", map[string]any{
		"model": "gpt-4o",
	})
	require.Equal(t, http.StatusNotFound, resp.Code)

	var envelope testErrorEnvelope
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "VERSION_NOT_FOUND", envelope.Code)
}

func TestListRuns_ForVersion(t *testing.T) {
	ts := setupTestServer(t)

	created := ts.createPrompt(t, "Evaluated", "Content.")

	for _, model := range []string{"gpt-4o", "claude-sonnet"} {
		resp := ts.api.Post("/api/v1/versions/"+created.Version.UUID+"/runs", map[string]any{
			"model": model,
		})
		require.Equal(t, http.StatusOK, resp.Code)
	}

	resp := ts.api.Get("/api/v1/versions/" + created.Version.UUID + "/runs")
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[ListRunsResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	require.Len(t, envelope.Data.Runs, 2)
	for _, run := range envelope.Data.Runs {
		assert.Equal(t, created.Version.UUID, run.VersionUUID)
	}

	resp = ts.api.Get("/api/v1/versions/" + created.Version.UUID + "/runs?limit=1")
	require.Equal(t, http.StatusOK, resp.Code)

	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data.Runs, 1)
}
