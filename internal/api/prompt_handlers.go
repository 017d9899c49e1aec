package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/promptkeepapp/promptkeep-server/internal/domain"
	"github.com/promptkeepapp/promptkeep-server/internal/service"
	"github.com/promptkeepapp/promptkeep-server/internal/store"
)

func (s *Server) registerPromptRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "createPrompt",
		Method:      http.MethodPost,
		Path:        "/api/v1/prompts",
		Summary:     "Create prompt",
		Description: "Creates a prompt with its initial 1.0.0 version",
		Tags:        []string{"Prompts"},
	}, s.handleCreatePrompt)

	huma.Register(s.api, huma.Operation{
		OperationID: "listPrompts",
		Method:      http.MethodGet,
		Path:        "/api/v1/prompts",
		Summary:     "List prompts",
		Description: "Returns prompts ordered by most recently updated",
		Tags:        []string{"Prompts"},
	}, s.handleListPrompts)

	huma.Register(s.api, huma.Operation{
		OperationID: "getPrompt",
		Method:      http.MethodGet,
		Path:        "/api/v1/prompts/{uuid}",
		Summary:     "Get prompt",
		Description: "Returns a prompt together with its latest version",
		Tags:        []string{"Prompts"},
	}, s.handleGetPrompt)

	huma.Register(s.api, huma.Operation{
		OperationID: "updatePrompt",
		Method:      http.MethodPatch,
		Path:        "/api/v1/prompts/{uuid}",
		Summary:     "Update prompt",
		Description: "Patches prompt title, tags, or the pinned production version",
		Tags:        []string{"Prompts"},
	}, s.handleUpdatePrompt)
}

// === DTOs ===

type CreatePromptRequest struct {
	Title        string   `json:"title" maxLength:"255" doc:"Prompt title"`
	Body         string   `json:"body" doc:"Prompt text (markdown)"`
	Tags         []string `json:"tags,omitempty" maxItems:"20" doc:"Tags for filtering and search"`
	CategoryPath string   `json:"category_path,omitempty" doc:"Category path; defaults to Uncategorized"`
}

type CreatePromptInput struct {
	Body CreatePromptRequest
}

type PromptResponse struct {
	UUID            string    `json:"uuid" doc:"Prompt UUID"`
	Title           string    `json:"title" doc:"Prompt title"`
	Tags            []string  `json:"tags" doc:"Tags"`
	CategoryPath    string    `json:"category_path" doc:"Category path"`
	ProdVersionUUID *string   `json:"prod_version_uuid,omitempty" doc:"Version pinned as production, if any"`
	CreatedAt       time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt       time.Time `json:"updated_at" doc:"Last update time"`
}

type CreatePromptResponse struct {
	Prompt  PromptResponse  `json:"prompt" doc:"The new prompt"`
	Version VersionResponse `json:"version" doc:"Its initial version"`
}

type CreatePromptOutput struct {
	Body CreatePromptResponse
}

type ListPromptsInput struct {
	Category string `query:"category" doc:"Restrict to one category path (subcategories included)"`
	Limit    int    `query:"limit" minimum:"0" doc:"Max prompts to return; 0 returns all"`
	Offset   int    `query:"offset" minimum:"0" doc:"Pagination offset"`
}

type ListPromptsResponse struct {
	Prompts []PromptResponse `json:"prompts" doc:"List of prompts"`
}

type ListPromptsOutput struct {
	Body ListPromptsResponse
}

type GetPromptInput struct {
	UUID string `path:"uuid" doc:"Prompt UUID"`
}

type PromptDetailResponse struct {
	Prompt        PromptResponse   `json:"prompt" doc:"The prompt"`
	LatestVersion *VersionResponse `json:"latest_version,omitempty" doc:"Its newest version"`
}

type PromptDetailOutput struct {
	Body PromptDetailResponse
}

type UpdatePromptRequest struct {
	Title           *string  `json:"title,omitempty" maxLength:"255" doc:"New title"`
	Tags            []string `json:"tags,omitempty" maxItems:"20" doc:"Replacement tag set"`
	ProdVersionUUID *string  `json:"prod_version_uuid,omitempty" doc:"Version to pin as production; an empty string clears the pin"`
}

type UpdatePromptInput struct {
	UUID string `path:"uuid" doc:"Prompt UUID"`
	Body UpdatePromptRequest
}

type PromptOutput struct {
	Body PromptResponse
}

// === Handlers ===

func (s *Server) handleCreatePrompt(ctx context.Context, input *CreatePromptInput) (*CreatePromptOutput, error) {
	prompt, version, err := s.services.Prompt.Create(ctx, service.CreatePromptRequest{
		Title:        input.Body.Title,
		Body:         input.Body.Body,
		Tags:         input.Body.Tags,
		CategoryPath: input.Body.CategoryPath,
	})
	if err != nil {
		return nil, err
	}

	return &CreatePromptOutput{Body: CreatePromptResponse{
		Prompt:  mapPromptResponse(prompt),
		Version: mapVersionResponse(version),
	}}, nil
}

func (s *Server) handleListPrompts(ctx context.Context, input *ListPromptsInput) (*ListPromptsOutput, error) {
	prompts, err := s.services.Prompt.List(ctx, store.ListPromptsParams{
		CategoryPath: input.Category,
		Limit:        input.Limit,
		Offset:       input.Offset,
	})
	if err != nil {
		return nil, err
	}

	resp := make([]PromptResponse, len(prompts))
	for i, p := range prompts {
		resp[i] = mapPromptResponse(p)
	}

	return &ListPromptsOutput{Body: ListPromptsResponse{Prompts: resp}}, nil
}

func (s *Server) handleGetPrompt(ctx context.Context, input *GetPromptInput) (*PromptDetailOutput, error) {
	detail, err := s.services.Prompt.Get(ctx, input.UUID)
	if err != nil {
		return nil, err
	}

	resp := PromptDetailResponse{Prompt: mapPromptResponse(detail.Prompt)}
	if detail.LatestVersion != nil {
		latest := mapVersionResponse(detail.LatestVersion)
		resp.LatestVersion = &latest
	}

	return &PromptDetailOutput{Body: resp}, nil
}

func (s *Server) handleUpdatePrompt(ctx context.Context, input *UpdatePromptInput) (*PromptOutput, error) {
	prompt, err := s.services.Prompt.Update(ctx, input.UUID, service.UpdatePromptRequest{
		Title:           input.Body.Title,
		Tags:            input.Body.Tags,
		ProdVersionUUID: input.Body.ProdVersionUUID,
	})
	if err != nil {
		return nil, err
	}

	return &PromptOutput{Body: mapPromptResponse(prompt)}, nil
}

// === Mappers ===

func mapPromptResponse(p *domain.Prompt) PromptResponse {
	return PromptResponse{
		UUID:            p.UUID,
		Title:           p.Title,
		Tags:            p.Tags,
		CategoryPath:    p.CategoryPath,
		ProdVersionUUID: p.ProdVersionUUID,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}
