package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerStatsRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getStats",
		Method:      http.MethodGet,
		Path:        "/api/v1/stats",
		Summary:     "Knowledge base stats",
		Description: "Returns row and index document counts for the whole knowledge base",
		Tags:        []string{"Stats"},
	}, s.handleGetStats)
}

// === DTOs ===

type StatsResponse struct {
	SchemaVersion    int    `json:"schema_version" doc:"Database schema version"`
	Prompts          int64  `json:"prompts" doc:"Total prompts"`
	Versions         int64  `json:"versions" doc:"Total versions"`
	Runs             int64  `json:"runs" doc:"Total recorded runs"`
	ActiveProviders  int64  `json:"active_providers" doc:"Providers marked active"`
	IndexedDocuments uint64 `json:"indexed_documents" doc:"Documents in the search index"`
}

type StatsOutput struct {
	Body StatsResponse
}

// === Handlers ===

func (s *Server) handleGetStats(ctx context.Context, _ *struct{}) (*StatsOutput, error) {
	overview, err := s.services.Stats.Overview(ctx)
	if err != nil {
		return nil, err
	}

	return &StatsOutput{Body: StatsResponse{
		SchemaVersion:    overview.SchemaVersion,
		Prompts:          overview.Prompts,
		Versions:         overview.Versions,
		Runs:             overview.Runs,
		ActiveProviders:  overview.ActiveProviders,
		IndexedDocuments: overview.IndexedDocuments,
	}}, nil
}
