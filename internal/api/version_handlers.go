package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/promptkeepapp/promptkeep-server/internal/domain"
	"github.com/promptkeepapp/promptkeep-server/internal/service"
)

func (s *Server) registerVersionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "saveVersion",
		Method:      http.MethodPost,
		Path:        "/api/v1/prompts/{uuid}/versions",
		Summary:     "Save version",
		Description: "Appends a new version to a prompt; identical content is rejected",
		Tags:        []string{"Versions"},
	}, s.handleSaveVersion)

	huma.Register(s.api, huma.Operation{
		OperationID: "listPromptVersions",
		Method:      http.MethodGet,
		Path:        "/api/v1/prompts/{uuid}/versions",
		Summary:     "List versions",
		Description: "Returns a prompt's versions, newest first",
		Tags:        []string{"Versions"},
	}, s.handleListPromptVersions)

	huma.Register(s.api, huma.Operation{
		OperationID: "rollbackPrompt",
		Method:      http.MethodPost,
		Path:        "/api/v1/prompts/{uuid}/rollback",
		Summary:     "Roll back prompt",
		Description: "Creates a new version whose content is copied from an older one",
		Tags:        []string{"Versions"},
	}, s.handleRollbackPrompt)

	huma.Register(s.api, huma.Operation{
		OperationID: "recentVersions",
		Method:      http.MethodGet,
		Path:        "/api/v1/versions/recent",
		Summary:     "Recent versions",
		Description: "Returns the newest versions across all prompts",
		Tags:        []string{"Versions"},
	}, s.handleRecentVersions)

	huma.Register(s.api, huma.Operation{
		OperationID: "getVersion",
		Method:      http.MethodGet,
		Path:        "/api/v1/versions/{uuid}",
		Summary:     "Get version",
		Description: "Returns a single version with its full body",
		Tags:        []string{"Versions"},
	}, s.handleGetVersion)

	huma.Register(s.api, huma.Operation{
		OperationID: "regenerateVersionFile",
		Method:      http.MethodPost,
		Path:        "/api/v1/versions/{uuid}/regenerate",
		Summary:     "Regenerate version file",
		Description: "Rewrites the markdown mirror file for a version from the database record",
		Tags:        []string{"Versions"},
	}, s.handleRegenerateVersionFile)

	huma.Register(s.api, huma.Operation{
		OperationID: "getVersionMetadata",
		Method:      http.MethodGet,
		Path:        "/api/v1/versions/{uuid}/metadata",
		Summary:     "Get version metadata",
		Description: "Returns the structured metadata of a version",
		Tags:        []string{"Versions"},
	}, s.handleGetVersionMetadata)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateVersionMetadata",
		Method:      http.MethodPatch,
		Path:        "/api/v1/versions/{uuid}/metadata",
		Summary:     "Update version metadata",
		Description: "Merges the given fields into a version's metadata",
		Tags:        []string{"Versions"},
	}, s.handleUpdateVersionMetadata)
}

// === DTOs ===

type SaveVersionRequest struct {
	Body     string                  `json:"body" doc:"Full prompt text of the new version"`
	Metadata *domain.VersionMetadata `json:"metadata,omitempty" doc:"Structured metadata stored with the version"`
}

type SaveVersionInput struct {
	UUID string `path:"uuid" doc:"Prompt UUID"`
	Body SaveVersionRequest
}

type VersionResponse struct {
	UUID       string                  `json:"uuid" doc:"Version UUID"`
	PromptUUID string                  `json:"prompt_uuid" doc:"Owning prompt"`
	Semver     string                  `json:"semver" doc:"Version number"`
	Body       string                  `json:"body" doc:"Prompt text"`
	Metadata   *domain.VersionMetadata `json:"metadata,omitempty" doc:"Structured metadata"`
	CreatedAt  time.Time               `json:"created_at" doc:"Creation time"`
	ParentUUID *string                 `json:"parent_uuid,omitempty" doc:"Version this one was derived from"`
}

type VersionOutput struct {
	Body VersionResponse
}

type ListVersionsInput struct {
	UUID  string `path:"uuid" doc:"Prompt UUID"`
	Limit int    `query:"limit" minimum:"0" doc:"Max versions to return; defaults to 5, capped at 50"`
}

type ListVersionsResponse struct {
	Versions []VersionResponse `json:"versions" doc:"Versions, newest first"`
}

type ListVersionsOutput struct {
	Body ListVersionsResponse
}

type RollbackRequest struct {
	VersionUUID string `json:"version_uuid" doc:"Version whose content to restore"`
}

type RollbackInput struct {
	UUID string `path:"uuid" doc:"Prompt UUID"`
	Body RollbackRequest
}

type RecentVersionsInput struct {
	Limit int `query:"limit" minimum:"0" doc:"Max versions to return; defaults to 100"`
}

type RecentVersionResponse struct {
	VersionUUID string    `json:"version_uuid" doc:"Version UUID"`
	PromptUUID  string    `json:"prompt_uuid" doc:"Owning prompt"`
	Title       string    `json:"title" doc:"Prompt title"`
	Semver      string    `json:"semver" doc:"Version number"`
	Snippet     string    `json:"snippet" doc:"Start of the version body"`
	CreatedAt   time.Time `json:"created_at" doc:"Creation time"`
}

type RecentVersionsResponse struct {
	Versions []RecentVersionResponse `json:"versions" doc:"Newest versions across all prompts"`
}

type RecentVersionsOutput struct {
	Body RecentVersionsResponse
}

type GetVersionInput struct {
	UUID string `path:"uuid" doc:"Version UUID"`
}

type RegenerateFileResponse struct {
	Path string `json:"path" doc:"Mirror file path that was rewritten"`
}

type RegenerateFileOutput struct {
	Body RegenerateFileResponse
}

type VersionMetadataInput struct {
	UUID string `path:"uuid" doc:"Version UUID"`
}

type UpdateVersionMetadataInput struct {
	UUID string `path:"uuid" doc:"Version UUID"`
	Body domain.VersionMetadata
}

type VersionMetadataOutput struct {
	Body domain.VersionMetadata
}

// === Handlers ===

func (s *Server) handleSaveVersion(ctx context.Context, input *SaveVersionInput) (*VersionOutput, error) {
	version, err := s.services.Version.Save(ctx, input.UUID, service.SaveVersionRequest{
		Body:     input.Body.Body,
		Metadata: input.Body.Metadata,
	})
	if err != nil {
		return nil, err
	}

	return &VersionOutput{Body: mapVersionResponse(version)}, nil
}

func (s *Server) handleListPromptVersions(ctx context.Context, input *ListVersionsInput) (*ListVersionsOutput, error) {
	versions, err := s.services.Version.ListForPrompt(ctx, input.UUID, input.Limit)
	if err != nil {
		return nil, err
	}

	resp := make([]VersionResponse, len(versions))
	for i, v := range versions {
		resp[i] = mapVersionResponse(v)
	}

	return &ListVersionsOutput{Body: ListVersionsResponse{Versions: resp}}, nil
}

func (s *Server) handleRollbackPrompt(ctx context.Context, input *RollbackInput) (*VersionOutput, error) {
	version, err := s.services.Version.Rollback(ctx, input.UUID, input.Body.VersionUUID)
	if err != nil {
		return nil, err
	}

	return &VersionOutput{Body: mapVersionResponse(version)}, nil
}

func (s *Server) handleRecentVersions(ctx context.Context, input *RecentVersionsInput) (*RecentVersionsOutput, error) {
	recent, err := s.services.Version.Recent(ctx, input.Limit)
	if err != nil {
		return nil, err
	}

	resp := make([]RecentVersionResponse, len(recent))
	for i, rv := range recent {
		resp[i] = RecentVersionResponse{
			VersionUUID: rv.VersionUUID,
			PromptUUID:  rv.PromptUUID,
			Title:       rv.Title,
			Semver:      rv.Semver,
			Snippet:     rv.Snippet,
			CreatedAt:   rv.CreatedAt,
		}
	}

	return &RecentVersionsOutput{Body: RecentVersionsResponse{Versions: resp}}, nil
}

func (s *Server) handleGetVersion(ctx context.Context, input *GetVersionInput) (*VersionOutput, error) {
	version, err := s.services.Version.Get(ctx, input.UUID)
	if err != nil {
		return nil, err
	}

	return &VersionOutput{Body: mapVersionResponse(version)}, nil
}

func (s *Server) handleRegenerateVersionFile(ctx context.Context, input *GetVersionInput) (*RegenerateFileOutput, error) {
	path, err := s.services.Version.RegenerateFile(ctx, input.UUID)
	if err != nil {
		return nil, err
	}

	return &RegenerateFileOutput{Body: RegenerateFileResponse{Path: path}}, nil
}

func (s *Server) handleGetVersionMetadata(ctx context.Context, input *VersionMetadataInput) (*VersionMetadataOutput, error) {
	meta, err := s.services.Version.GetMetadata(ctx, input.UUID)
	if err != nil {
		return nil, err
	}

	return &VersionMetadataOutput{Body: *meta}, nil
}

func (s *Server) handleUpdateVersionMetadata(ctx context.Context, input *UpdateVersionMetadataInput) (*VersionMetadataOutput, error) {
	meta, err := s.services.Version.UpdateMetadata(ctx, input.UUID, &input.Body)
	if err != nil {
		return nil, err
	}

	return &VersionMetadataOutput{Body: *meta}, nil
}

// === Mappers ===

func mapVersionResponse(v *domain.Version) VersionResponse {
	return VersionResponse{
		UUID:       v.UUID,
		PromptUUID: v.PromptUUID,
		Semver:     v.Semver,
		Body:       v.Body,
		Metadata:   v.Metadata,
		CreatedAt:  v.CreatedAt,
		ParentUUID: v.ParentUUID,
	}
}
