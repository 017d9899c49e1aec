package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/promptkeepapp/promptkeep-server/internal/domain"
	"github.com/promptkeepapp/promptkeep-server/internal/errors"
	"github.com/promptkeepapp/promptkeep-server/internal/store"
	"github.com/promptkeepapp/promptkeep-server/internal/validation"
)

// ProviderService manages the model provider registry backing the
// GUI's model picker.
type ProviderService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewProviderService creates a new provider service.
func NewProviderService(store *store.Store, logger *slog.Logger) *ProviderService {
	return &ProviderService{
		store:  store,
		logger: logger,
	}
}

// List returns registered providers, optionally only active ones.
func (s *ProviderService) List(ctx context.Context, activeOnly bool) ([]*domain.ModelProvider, error) {
	return s.store.ListProviders(ctx, activeOnly)
}

// UpsertProviderRequest contains fields for registering a provider.
type UpsertProviderRequest struct {
	ModelID  string `json:"model_id"`
	Name     string `json:"name"`
	Provider string `json:"provider"`
}

// Upsert registers a model under its stable model_id, updating the
// display fields if the model is already known. The returned bool
// reports whether a new row was created.
func (s *ProviderService) Upsert(ctx context.Context, req UpsertProviderRequest) (*domain.ModelProvider, bool, error) {
	if err := validation.ValidateProviderInput(req.ModelID, req.Name, req.Provider); err != nil {
		return nil, false, err
	}

	provider, created, err := s.store.UpsertProvider(ctx, req.ModelID, req.Name, req.Provider)
	if err != nil {
		return nil, false, err
	}

	if created {
		s.logger.Info("provider registered", "model_id", req.ModelID, "provider", req.Provider)
	}
	return provider, created, nil
}

// SetActive toggles whether a model shows up in the picker.
func (s *ProviderService) SetActive(ctx context.Context, modelID string, active bool) (*domain.ModelProvider, error) {
	if strings.TrimSpace(modelID) == "" {
		return nil, errors.InvalidInput("model ID cannot be empty")
	}

	provider, err := s.store.SetProviderActive(ctx, modelID, active)
	if err != nil {
		return nil, err
	}

	s.logger.Info("provider active flag changed", "model_id", modelID, "active", active)
	return provider, nil
}
