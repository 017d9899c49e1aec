package api

import (
	"context"
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck_ComponentsHealthy(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[HealthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	db := envelope.Data.Components["database"]
	assert.Equal(t, "healthy", db.Status)
	assert.NotEmpty(t, db.Latency)

	search := envelope.Data.Components["search"]
	assert.Equal(t, "healthy", search.Status, "an empty index is a valid state, not a degraded one")
	assert.Equal(t, "search index empty", search.Message)

	sse := envelope.Data.Components["sse"]
	assert.Equal(t, "healthy", sse.Status)
	assert.Equal(t, "no connected clients", sse.Message)
}

func TestHealthCheck_MissingDependenciesDegrade(t *testing.T) {
	s := &Server{}
	ctx := context.Background()

	assert.Equal(t, "degraded", s.checkDatabase(ctx).Status)
	assert.Equal(t, "degraded", s.checkSearchIndex().Status)
	assert.Equal(t, "degraded", s.checkSSEManager().Status)
}

func TestFormatSSEStatus(t *testing.T) {
	assert.Equal(t, "no connected clients", formatSSEStatus(0))
	assert.Equal(t, "1 connected client", formatSSEStatus(1))
	assert.Equal(t, "3 connected clients", formatSSEStatus(3))
}
