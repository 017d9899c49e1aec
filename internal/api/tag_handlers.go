package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerTagRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listTags",
		Method:      http.MethodGet,
		Path:        "/api/v1/tags",
		Summary:     "List tags",
		Description: "Returns every tag in use, sorted alphabetically",
		Tags:        []string{"Tags"},
	}, s.handleListTags)
}

// === DTOs ===

type ListTagsResponse struct {
	Tags []string `json:"tags" doc:"All tags currently assigned to at least one prompt"`
}

type ListTagsOutput struct {
	Body ListTagsResponse
}

// === Handlers ===

func (s *Server) handleListTags(ctx context.Context, _ *struct{}) (*ListTagsOutput, error) {
	tags, err := s.services.Prompt.ListTags(ctx)
	if err != nil {
		return nil, err
	}

	return &ListTagsOutput{Body: ListTagsResponse{Tags: tags}}, nil
}
