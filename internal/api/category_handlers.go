package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/promptkeepapp/promptkeep-server/internal/domain"
	"github.com/promptkeepapp/promptkeep-server/internal/service"
)

func (s *Server) registerCategoryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "categoryTree",
		Method:      http.MethodGet,
		Path:        "/api/v1/categories",
		Summary:     "Category tree",
		Description: "Returns the category hierarchy with per-subtree prompt counts",
		Tags:        []string{"Categories"},
	}, s.handleCategoryTree)

	huma.Register(s.api, huma.Operation{
		OperationID: "createCategory",
		Method:      http.MethodPost,
		Path:        "/api/v1/categories",
		Summary:     "Create category",
		Description: "Reserves a category path so it shows up before any prompt is filed there",
		Tags:        []string{"Categories"},
	}, s.handleCreateCategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "renameCategory",
		Method:      http.MethodPost,
		Path:        "/api/v1/categories/rename",
		Summary:     "Rename category",
		Description: "Moves a category subtree to a new path",
		Tags:        []string{"Categories"},
	}, s.handleRenameCategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteCategory",
		Method:      http.MethodPost,
		Path:        "/api/v1/categories/delete",
		Summary:     "Delete category",
		Description: "Removes a category subtree; its prompts move to Uncategorized",
		Tags:        []string{"Categories"},
	}, s.handleDeleteCategory)

	huma.Register(s.api, huma.Operation{
		OperationID: "assignCategory",
		Method:      http.MethodPut,
		Path:        "/api/v1/prompts/{uuid}/category",
		Summary:     "Assign category",
		Description: "Files a prompt under a category path",
		Tags:        []string{"Categories"},
	}, s.handleAssignCategory)
}

// === DTOs ===

type MessageResponse struct {
	Message string `json:"message" doc:"Human-readable result"`
}

type MessageOutput struct {
	Body MessageResponse
}

type CategoryNodeResponse struct {
	Path     string                 `json:"path" doc:"Full category path"`
	Name     string                 `json:"name" doc:"Last path segment"`
	Count    int64                  `json:"count" doc:"Prompts in this subtree"`
	Children []CategoryNodeResponse `json:"children" doc:"Subcategories"`
}

type CategoryTreeResponse struct {
	Categories []CategoryNodeResponse `json:"categories" doc:"Root-level categories"`
}

type CategoryTreeOutput struct {
	Body CategoryTreeResponse
}

type CreateCategoryRequest struct {
	Path string `json:"path" maxLength:"255" doc:"Category path, segments joined with /"`
}

type CreateCategoryInput struct {
	Body CreateCategoryRequest
}

type RenameCategoryRequest struct {
	OldPath string `json:"old_path" maxLength:"255" doc:"Current path"`
	NewPath string `json:"new_path" maxLength:"255" doc:"New path"`
}

type RenameCategoryInput struct {
	Body RenameCategoryRequest
}

type RenameCategoryResponse struct {
	Moved int64 `json:"moved" doc:"Prompts whose path changed"`
}

type RenameCategoryOutput struct {
	Body RenameCategoryResponse
}

type DeleteCategoryRequest struct {
	Path string `json:"path" maxLength:"255" doc:"Category path to remove"`
}

type DeleteCategoryInput struct {
	Body DeleteCategoryRequest
}

type DeleteCategoryResponse struct {
	Reassigned int64 `json:"reassigned" doc:"Prompts moved to Uncategorized"`
}

type DeleteCategoryOutput struct {
	Body DeleteCategoryResponse
}

type AssignCategoryRequest struct {
	Path string `json:"path" maxLength:"255" doc:"Category path to file the prompt under"`
}

type AssignCategoryInput struct {
	UUID string `path:"uuid" doc:"Prompt UUID"`
	Body AssignCategoryRequest
}

// === Handlers ===

func (s *Server) handleCategoryTree(ctx context.Context, _ *struct{}) (*CategoryTreeOutput, error) {
	tree, err := s.services.Category.Tree(ctx)
	if err != nil {
		return nil, err
	}

	return &CategoryTreeOutput{Body: CategoryTreeResponse{Categories: mapCategoryNodes(tree)}}, nil
}

func (s *Server) handleCreateCategory(ctx context.Context, input *CreateCategoryInput) (*MessageOutput, error) {
	if err := s.services.Category.Create(ctx, input.Body.Path); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "category created"}}, nil
}

func (s *Server) handleRenameCategory(ctx context.Context, input *RenameCategoryInput) (*RenameCategoryOutput, error) {
	moved, err := s.services.Category.Rename(ctx, service.RenameCategoryRequest{
		OldPath: input.Body.OldPath,
		NewPath: input.Body.NewPath,
	})
	if err != nil {
		return nil, err
	}

	return &RenameCategoryOutput{Body: RenameCategoryResponse{Moved: moved}}, nil
}

func (s *Server) handleDeleteCategory(ctx context.Context, input *DeleteCategoryInput) (*DeleteCategoryOutput, error) {
	reassigned, err := s.services.Category.Delete(ctx, input.Body.Path)
	if err != nil {
		return nil, err
	}

	return &DeleteCategoryOutput{Body: DeleteCategoryResponse{Reassigned: reassigned}}, nil
}

func (s *Server) handleAssignCategory(ctx context.Context, input *AssignCategoryInput) (*PromptOutput, error) {
	prompt, err := s.services.Category.Assign(ctx, input.UUID, input.Body.Path)
	if err != nil {
		return nil, err
	}

	return &PromptOutput{Body: mapPromptResponse(prompt)}, nil
}

// === Mappers ===

func mapCategoryNodes(nodes []*domain.CategoryNode) []CategoryNodeResponse {
	resp := make([]CategoryNodeResponse, len(nodes))
	for i, n := range nodes {
		resp[i] = CategoryNodeResponse{
			Path:     n.Path,
			Name:     n.Name,
			Count:    n.Count,
			Children: mapCategoryNodes(n.Children),
		}
	}
	return resp
}
