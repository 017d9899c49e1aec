package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/promptkeepapp/promptkeep-server/internal/search"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "search",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search versions",
		Description: "Full-text search over version bodies, titles, and tags",
		Tags:        []string{"Search"},
	}, s.handleSearch)

	huma.Register(s.api, huma.Operation{
		OperationID: "rebuildSearchIndex",
		Method:      http.MethodPost,
		Path:        "/api/v1/search/rebuild",
		Summary:     "Rebuild search index",
		Description: "Drops the index and reindexes every version from the database",
		Tags:        []string{"Search"},
	}, s.handleRebuildSearchIndex)
}

// === DTOs ===

type SearchInput struct {
	Query    string `query:"q" maxLength:"500" doc:"Search query; blank returns no hits"`
	Category string `query:"category" doc:"Restrict hits to one exact category path"`
	Limit    int    `query:"limit" minimum:"0" maximum:"100" doc:"Max hits to return; defaults to 20"`
	Offset   int    `query:"offset" minimum:"0" doc:"Pagination offset"`
}

type SearchHitResponse struct {
	VersionUUID string  `json:"version_uuid" doc:"Matching version"`
	PromptUUID  string  `json:"prompt_uuid" doc:"Owning prompt"`
	Title       string  `json:"title" doc:"Prompt title at index time"`
	Semver      string  `json:"semver" doc:"Version number"`
	Score       float64 `json:"score" doc:"Relevance score"`
	Snippet     string  `json:"snippet,omitempty" doc:"Highlighted body fragment"`
}

type SearchResponse struct {
	Query  string              `json:"query" doc:"Query as executed"`
	Total  uint64              `json:"total" doc:"Total matching versions"`
	TookMs int64               `json:"took_ms" doc:"Query time in milliseconds"`
	Hits   []SearchHitResponse `json:"hits" doc:"Matches, best first"`
}

type SearchOutput struct {
	Body SearchResponse
}

type RebuildIndexResponse struct {
	Indexed int   `json:"indexed" doc:"Versions written to the fresh index"`
	TookMs  int64 `json:"took_ms" doc:"Rebuild time in milliseconds"`
}

type RebuildIndexOutput struct {
	Body RebuildIndexResponse
}

// === Handlers ===

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	result, err := s.services.Search.Search(ctx, search.Params{
		Query:        input.Query,
		CategoryPath: input.Category,
		Limit:        input.Limit,
		Offset:       input.Offset,
	})
	if err != nil {
		return nil, err
	}

	hits := make([]SearchHitResponse, len(result.Hits))
	for i, h := range result.Hits {
		hits[i] = SearchHitResponse{
			VersionUUID: h.VersionUUID,
			PromptUUID:  h.PromptUUID,
			Title:       h.Title,
			Semver:      h.Semver,
			Score:       h.Score,
			Snippet:     h.Snippet,
		}
	}

	return &SearchOutput{Body: SearchResponse{
		Query:  result.Query,
		Total:  result.Total,
		TookMs: result.TookMs,
		Hits:   hits,
	}}, nil
}

func (s *Server) handleRebuildSearchIndex(ctx context.Context, _ *struct{}) (*RebuildIndexOutput, error) {
	result, err := s.services.Search.Rebuild(ctx)
	if err != nil {
		return nil, err
	}

	return &RebuildIndexOutput{Body: RebuildIndexResponse{
		Indexed: result.Indexed,
		TookMs:  result.Took.Milliseconds(),
	}}, nil
}
