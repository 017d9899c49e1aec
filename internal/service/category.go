package service

import (
	"context"
	"log/slog"

	"github.com/promptkeepapp/promptkeep-server/internal/domain"
	"github.com/promptkeepapp/promptkeep-server/internal/store"
	"github.com/promptkeepapp/promptkeep-server/internal/validation"
)

// CategoryService orchestrates the category hierarchy.
type CategoryService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(store *store.Store, logger *slog.Logger) *CategoryService {
	return &CategoryService{
		store:  store,
		logger: logger,
	}
}

// Tree returns the full category hierarchy with per-node prompt counts.
func (s *CategoryService) Tree(ctx context.Context) ([]*domain.CategoryNode, error) {
	return s.store.CategoryTree(ctx)
}

// Create registers an empty category so it shows up in the tree before
// any prompt lands in it.
func (s *CategoryService) Create(ctx context.Context, path string) error {
	if err := validation.ValidateCategoryPath(path); err != nil {
		return err
	}
	if err := s.store.CreateCategory(ctx, path); err != nil {
		return err
	}

	s.logger.Info("category created", "path", path)
	return nil
}

// RenameCategoryRequest contains fields for renaming a category.
type RenameCategoryRequest struct {
	OldPath string `json:"old_path"`
	NewPath string `json:"new_path"`
}

// Rename moves a category subtree to a new path and returns how many
// prompts moved with it.
func (s *CategoryService) Rename(ctx context.Context, req RenameCategoryRequest) (int64, error) {
	if err := validation.ValidateCategoryPath(req.OldPath); err != nil {
		return 0, err
	}
	if err := validation.ValidateCategoryPath(req.NewPath); err != nil {
		return 0, err
	}

	moved, err := s.store.RenameCategory(ctx, req.OldPath, req.NewPath)
	if err != nil {
		return 0, err
	}

	s.logger.Info("category renamed", "old", req.OldPath, "new", req.NewPath, "prompts_moved", moved)
	return moved, nil
}

// Delete removes a category level, splicing its prompts up to the
// parent path. Returns how many prompts were reassigned.
func (s *CategoryService) Delete(ctx context.Context, path string) (int64, error) {
	if err := validation.ValidateCategoryPath(path); err != nil {
		return 0, err
	}

	reassigned, err := s.store.DeleteCategory(ctx, path)
	if err != nil {
		return 0, err
	}

	s.logger.Info("category deleted", "path", path, "prompts_reassigned", reassigned)
	return reassigned, nil
}

// Assign moves a prompt into a category.
func (s *CategoryService) Assign(ctx context.Context, promptUUID, categoryPath string) (*domain.Prompt, error) {
	if err := validation.ValidateUUID(promptUUID); err != nil {
		return nil, err
	}
	if err := validation.ValidateCategoryPath(categoryPath); err != nil {
		return nil, err
	}

	prompt, err := s.store.AssignCategory(ctx, promptUUID, categoryPath)
	if err != nil {
		return nil, err
	}

	s.logger.Info("prompt recategorized", "uuid", promptUUID, "category", categoryPath)
	return prompt, nil
}
