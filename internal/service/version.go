package service

import (
	"context"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/promptkeepapp/promptkeep-server/internal/domain"
	"github.com/promptkeepapp/promptkeep-server/internal/errors"
	"github.com/promptkeepapp/promptkeep-server/internal/mirror"
	"github.com/promptkeepapp/promptkeep-server/internal/store"
	"github.com/promptkeepapp/promptkeep-server/internal/validation"
)

// recentSnippetLen is how many characters of a body the recent feed
// shows per version.
const recentSnippetLen = 200

// VersionService orchestrates version history operations.
type VersionService struct {
	store  *store.Store
	mirror *mirror.Mirror
	logger *slog.Logger
}

// NewVersionService creates a new version service.
func NewVersionService(store *store.Store, mirror *mirror.Mirror, logger *slog.Logger) *VersionService {
	return &VersionService{
		store:  store,
		mirror: mirror,
		logger: logger,
	}
}

// SaveVersionRequest contains fields for saving a version.
type SaveVersionRequest struct {
	Body     string                  `json:"body"`
	Metadata *domain.VersionMetadata `json:"metadata,omitempty"`
}

// Save appends a new version to a prompt. Identical content is
// rejected; the version number is allocated by the store.
func (s *VersionService) Save(ctx context.Context, promptUUID string, req SaveVersionRequest) (*domain.Version, error) {
	if err := validation.ValidateUUID(promptUUID); err != nil {
		return nil, err
	}
	if err := validation.ValidateBody(req.Body); err != nil {
		return nil, err
	}
	if req.Metadata != nil {
		if err := validation.ValidateMetadata(req.Metadata); err != nil {
			return nil, err
		}
	}

	version, err := s.store.SaveVersion(ctx, promptUUID, req.Body, req.Metadata)
	if err != nil {
		return nil, err
	}

	s.logger.Info("version saved", "prompt", promptUUID, "version", version.UUID, "semver", version.Semver)
	return version, nil
}

// Get returns a single version.
func (s *VersionService) Get(ctx context.Context, uuid string) (*domain.Version, error) {
	if err := validation.ValidateUUID(uuid); err != nil {
		return nil, err
	}
	return s.store.GetVersion(ctx, uuid)
}

// ListForPrompt returns a prompt's newest versions. The prompt is
// looked up first so an unknown UUID reads as not-found rather than an
// empty history.
func (s *VersionService) ListForPrompt(ctx context.Context, promptUUID string, limit int) ([]*domain.Version, error) {
	if err := validation.ValidateUUID(promptUUID); err != nil {
		return nil, err
	}
	if _, err := s.store.GetPrompt(ctx, promptUUID); err != nil {
		return nil, err
	}
	return s.store.ListRecentVersions(ctx, promptUUID, limit)
}

// Rollback makes an old version current again by copying its body into
// a new version at the next patch number. The source version must
// belong to the given prompt.
func (s *VersionService) Rollback(ctx context.Context, promptUUID, versionUUID string) (*domain.Version, error) {
	if err := validation.ValidateUUID(promptUUID); err != nil {
		return nil, err
	}
	if err := validation.ValidateUUID(versionUUID); err != nil {
		return nil, err
	}

	source, err := s.store.GetVersion(ctx, versionUUID)
	if err != nil {
		return nil, err
	}
	if source.PromptUUID != promptUUID {
		return nil, errors.VersionNotFoundf("version %s does not belong to prompt %s", versionUUID, promptUUID)
	}

	version, err := s.store.RollbackTo(ctx, versionUUID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("rolled back to version", "prompt", promptUUID, "source", versionUUID, "version", version.UUID, "semver", version.Semver)
	return version, nil
}

// GetMetadata returns a version's metadata object. Versions without
// stored metadata read as the default category.
func (s *VersionService) GetMetadata(ctx context.Context, versionUUID string) (*domain.VersionMetadata, error) {
	if err := validation.ValidateUUID(versionUUID); err != nil {
		return nil, err
	}
	return s.store.GetVersionMetadata(ctx, versionUUID)
}

// UpdateMetadata merges a patch into a version's metadata. Title and
// tag changes propagate to the owning prompt.
func (s *VersionService) UpdateMetadata(ctx context.Context, versionUUID string, patch *domain.VersionMetadata) (*domain.VersionMetadata, error) {
	if err := validation.ValidateUUID(versionUUID); err != nil {
		return nil, err
	}
	if err := validation.ValidateMetadata(patch); err != nil {
		return nil, err
	}

	meta, err := s.store.UpdateVersionMetadata(ctx, versionUUID, patch)
	if err != nil {
		return nil, err
	}

	s.logger.Info("version metadata updated", "version", versionUUID)
	return meta, nil
}

// RecentVersion is one entry in the cross-prompt recent feed.
type RecentVersion struct {
	VersionUUID string    `json:"version_uuid"`
	PromptUUID  string    `json:"prompt_uuid"`
	Title       string    `json:"title"`
	Semver      string    `json:"semver"`
	Snippet     string    `json:"snippet"`
	CreatedAt   time.Time `json:"created_at"`
}

// Recent returns the newest versions across all prompts, each with a
// short body snippet.
func (s *VersionService) Recent(ctx context.Context, limit int) ([]RecentVersion, error) {
	rows, err := s.store.ListRecentVersionsAcrossPrompts(ctx, limit)
	if err != nil {
		return nil, err
	}

	recent := make([]RecentVersion, 0, len(rows))
	for _, row := range rows {
		recent = append(recent, RecentVersion{
			VersionUUID: row.Version.UUID,
			PromptUUID:  row.Prompt.UUID,
			Title:       row.Prompt.Title,
			Semver:      row.Version.Semver,
			Snippet:     snippetOf(row.Version.Body, recentSnippetLen),
			CreatedAt:   row.Version.CreatedAt,
		})
	}
	return recent, nil
}

// RegenerateFile rewrites a version's mirror file from the database and
// returns the path written.
func (s *VersionService) RegenerateFile(ctx context.Context, versionUUID string) (string, error) {
	if err := validation.ValidateUUID(versionUUID); err != nil {
		return "", err
	}

	version, err := s.store.GetVersion(ctx, versionUUID)
	if err != nil {
		return "", err
	}
	prompt, err := s.store.GetPrompt(ctx, version.PromptUUID)
	if err != nil {
		return "", err
	}

	path, err := s.mirror.WriteVersion(ctx, prompt, version)
	if err != nil {
		return "", err
	}

	s.logger.Info("regenerated mirror file", "version", versionUUID, "path", path)
	return path, nil
}

// snippetOf truncates s to at most max characters, not bytes, so a
// multibyte body never splits mid-rune.
func snippetOf(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}
