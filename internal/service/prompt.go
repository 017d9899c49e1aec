// Package service provides the business logic layer between the HTTP
// handlers and the store. Services validate input, compose store calls,
// and log mutations; the store owns transactions and artifact sync.
package service

import (
	"context"
	"log/slog"

	"github.com/promptkeepapp/promptkeep-server/internal/domain"
	"github.com/promptkeepapp/promptkeep-server/internal/errors"
	"github.com/promptkeepapp/promptkeep-server/internal/store"
	"github.com/promptkeepapp/promptkeep-server/internal/validation"
)

// PromptService orchestrates prompt CRUD.
type PromptService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewPromptService creates a new prompt service.
func NewPromptService(store *store.Store, logger *slog.Logger) *PromptService {
	return &PromptService{
		store:  store,
		logger: logger,
	}
}

// CreatePromptRequest contains fields for creating a prompt.
type CreatePromptRequest struct {
	Title        string   `json:"title"`
	Body         string   `json:"body"`
	Tags         []string `json:"tags"`
	CategoryPath string   `json:"category_path"`
}

// Create validates the input and creates a prompt with its initial
// v1.0.0 version in one transaction.
func (s *PromptService) Create(ctx context.Context, req CreatePromptRequest) (*domain.Prompt, *domain.Version, error) {
	if err := validation.ValidatePromptInput(req.Title, req.Body, req.Tags); err != nil {
		return nil, nil, err
	}
	if req.CategoryPath != "" {
		if err := validation.ValidateCategoryPath(req.CategoryPath); err != nil {
			return nil, nil, err
		}
	}

	prompt, version, err := s.store.CreatePrompt(ctx, req.Title, req.Body, req.Tags, req.CategoryPath)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("prompt created", "uuid", prompt.UUID, "title", prompt.Title, "category", prompt.CategoryPath)
	return prompt, version, nil
}

// PromptDetail is a prompt together with its newest version.
type PromptDetail struct {
	Prompt        *domain.Prompt  `json:"prompt"`
	LatestVersion *domain.Version `json:"latest_version,omitempty"`
}

// Get returns a prompt and its latest version. A prompt whose versions
// have somehow all gone missing still resolves, with a nil version.
func (s *PromptService) Get(ctx context.Context, uuid string) (*PromptDetail, error) {
	if err := validation.ValidateUUID(uuid); err != nil {
		return nil, err
	}

	prompt, err := s.store.GetPrompt(ctx, uuid)
	if err != nil {
		return nil, err
	}

	latest, err := s.store.GetLatestVersion(ctx, uuid)
	if err != nil && !errors.Is(err, errors.ErrVersionNotFound) {
		return nil, err
	}

	return &PromptDetail{Prompt: prompt, LatestVersion: latest}, nil
}

// List returns prompts ordered by last update, optionally filtered by
// category subtree.
func (s *PromptService) List(ctx context.Context, params store.ListPromptsParams) ([]*domain.Prompt, error) {
	if params.CategoryPath != "" {
		if err := validation.ValidateCategoryPath(params.CategoryPath); err != nil {
			return nil, err
		}
	}
	return s.store.ListPrompts(ctx, params)
}

// UpdatePromptRequest contains the patchable prompt fields. Nil fields
// are left unchanged; Tags replaces the whole set when non-nil.
type UpdatePromptRequest struct {
	Title           *string  `json:"title"`
	Tags            []string `json:"tags"`
	ProdVersionUUID *string  `json:"prod_version_uuid"`
}

// Update patches prompt-level fields.
func (s *PromptService) Update(ctx context.Context, uuid string, req UpdatePromptRequest) (*domain.Prompt, error) {
	if err := validation.ValidateUUID(uuid); err != nil {
		return nil, err
	}
	if req.Title != nil {
		if err := validation.ValidateTitle(*req.Title); err != nil {
			return nil, err
		}
	}
	if req.Tags != nil {
		if err := validation.ValidateTags(req.Tags); err != nil {
			return nil, err
		}
	}
	if req.ProdVersionUUID != nil && *req.ProdVersionUUID != "" {
		if err := validation.ValidateUUID(*req.ProdVersionUUID); err != nil {
			return nil, err
		}
	}

	prompt, err := s.store.UpdatePrompt(ctx, uuid, store.UpdatePromptParams{
		Title:           req.Title,
		Tags:            req.Tags,
		ProdVersionUUID: req.ProdVersionUUID,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("prompt updated", "uuid", uuid)
	return prompt, nil
}

// ListTags returns every distinct tag in the library, lowercased and
// sorted.
func (s *PromptService) ListTags(ctx context.Context) ([]string, error) {
	return s.store.ListAllTags(ctx)
}
