package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/promptkeepapp/promptkeep-server/internal/domain"
	"github.com/promptkeepapp/promptkeep-server/internal/service"
)

func (s *Server) registerProviderRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listProviders",
		Method:      http.MethodGet,
		Path:        "/api/v1/providers",
		Summary:     "List providers",
		Description: "Returns registered model providers",
		Tags:        []string{"Providers"},
	}, s.handleListProviders)

	huma.Register(s.api, huma.Operation{
		OperationID: "upsertProvider",
		Method:      http.MethodPut,
		Path:        "/api/v1/providers/{modelID}",
		Summary:     "Upsert provider",
		Description: "Registers a model or updates its display fields",
		Tags:        []string{"Providers"},
	}, s.handleUpsertProvider)

	huma.Register(s.api, huma.Operation{
		OperationID: "setProviderActive",
		Method:      http.MethodPatch,
		Path:        "/api/v1/providers/{modelID}/active",
		Summary:     "Set provider active",
		Description: "Toggles whether a model shows up in run-recording pickers",
		Tags:        []string{"Providers"},
	}, s.handleSetProviderActive)
}

// === DTOs ===

type ListProvidersInput struct {
	Active bool `query:"active" doc:"Return only active providers"`
}

type ProviderResponse struct {
	ID       int64  `json:"id" doc:"Row ID"`
	ModelID  string `json:"model_id" doc:"Stable model identifier"`
	Name     string `json:"name" doc:"Display name"`
	Provider string `json:"provider" doc:"Vendor name"`
	Active   bool   `json:"active" doc:"Whether the model is selectable"`
}

type ListProvidersResponse struct {
	Providers []ProviderResponse `json:"providers" doc:"Registered providers"`
}

type ListProvidersOutput struct {
	Body ListProvidersResponse
}

type UpsertProviderRequest struct {
	Name     string `json:"name" maxLength:"100" doc:"Display name"`
	Provider string `json:"provider" maxLength:"50" doc:"Vendor name"`
}

type UpsertProviderInput struct {
	ModelID string `path:"modelID" doc:"Stable model identifier"`
	Body    UpsertProviderRequest
}

type ProviderOutput struct {
	Body ProviderResponse
}

type SetProviderActiveRequest struct {
	Active bool `json:"active" doc:"New active state"`
}

type SetProviderActiveInput struct {
	ModelID string `path:"modelID" doc:"Stable model identifier"`
	Body    SetProviderActiveRequest
}

// === Handlers ===

func (s *Server) handleListProviders(ctx context.Context, input *ListProvidersInput) (*ListProvidersOutput, error) {
	providers, err := s.services.Provider.List(ctx, input.Active)
	if err != nil {
		return nil, err
	}

	resp := make([]ProviderResponse, len(providers))
	for i, p := range providers {
		resp[i] = mapProviderResponse(p)
	}

	return &ListProvidersOutput{Body: ListProvidersResponse{Providers: resp}}, nil
}

func (s *Server) handleUpsertProvider(ctx context.Context, input *UpsertProviderInput) (*ProviderOutput, error) {
	provider, _, err := s.services.Provider.Upsert(ctx, service.UpsertProviderRequest{
		ModelID:  input.ModelID,
		Name:     input.Body.Name,
		Provider: input.Body.Provider,
	})
	if err != nil {
		return nil, err
	}

	return &ProviderOutput{Body: mapProviderResponse(provider)}, nil
}

func (s *Server) handleSetProviderActive(ctx context.Context, input *SetProviderActiveInput) (*ProviderOutput, error) {
	provider, err := s.services.Provider.SetActive(ctx, input.ModelID, input.Body.Active)
	if err != nil {
		return nil, err
	}

	return &ProviderOutput{Body: mapProviderResponse(provider)}, nil
}

// === Mappers ===

func mapProviderResponse(p *domain.ModelProvider) ProviderResponse {
	return ProviderResponse{
		ID:       p.ID,
		ModelID:  p.ModelID,
		Name:     p.Name,
		Provider: p.Provider,
		Active:   p.Active,
	}
}
