package store

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"github.com/promptkeepapp/promptkeep-server/internal/domain"
	"github.com/promptkeepapp/promptkeep-server/internal/errors"
	"github.com/promptkeepapp/promptkeep-server/internal/sse"
)

// defaultMetadata is what a version with no stored metadata reports.
func defaultMetadata() *domain.VersionMetadata {
	path := domain.DefaultCategoryPath
	return &domain.VersionMetadata{CategoryPath: &path}
}

// GetVersionMetadata returns a version's metadata. Versions that never
// had metadata written (or whose stored blob no longer parses) report
// the default rather than an error.
func (s *Store) GetVersionMetadata(ctx context.Context, versionUUID string) (*domain.VersionMetadata, error) {
	var raw sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT metadata FROM versions WHERE uuid = ?`, versionUUID).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, errors.VersionNotFoundf("version %s not found", versionUUID)
	}
	if err != nil {
		return nil, errors.Store(err)
	}

	if m := unmarshalMetadata(raw); m != nil {
		return m, nil
	}
	return defaultMetadata(), nil
}

// UpdateVersionMetadata merges patch into a version's metadata. Fields
// absent from the patch keep their stored value.
//
// Title and tags double as prompt-level fields: setting either in the
// patch also rewrites the owning prompt row so lists and search stay
// in step with the annotation.
func (s *Store) UpdateVersionMetadata(ctx context.Context, versionUUID string, patch *domain.VersionMetadata) (*domain.VersionMetadata, error) {
	var (
		merged     *domain.VersionMetadata
		promptUUID string
		propagated bool
	)

	err := s.withWrite(ctx, func(tx *sql.Tx) error {
		var raw sql.NullString
		err := tx.QueryRowContext(ctx,
			`SELECT metadata, prompt_uuid FROM versions WHERE uuid = ?`,
			versionUUID).Scan(&raw, &promptUUID)
		if err == sql.ErrNoRows {
			return errors.VersionNotFoundf("version %s not found", versionUUID)
		}
		if err != nil {
			return errors.Store(err)
		}

		m := unmarshalMetadata(raw)
		if m == nil {
			m = defaultMetadata()
		}
		m.Merge(patch)

		metadataJSON, err := marshalMetadata(m)
		if err != nil {
			return errors.Storef(err, "marshal metadata")
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE versions SET metadata = ? WHERE uuid = ?`,
			metadataJSON, versionUUID)
		if err != nil {
			return errors.Store(err)
		}

		now := formatTime(nowUTC())
		if patch != nil && patch.Title != nil {
			_, err = tx.ExecContext(ctx,
				`UPDATE prompts SET title = ?, updated_at = ? WHERE uuid = ?`,
				*patch.Title, now, promptUUID)
			if err != nil {
				return errors.Store(err)
			}
			propagated = true
		}
		if patch != nil && patch.Tags != nil {
			tagsJSON, err := marshalTags(patch.Tags)
			if err != nil {
				return errors.Storef(err, "marshal tags")
			}
			_, err = tx.ExecContext(ctx,
				`UPDATE prompts SET tags = ?, updated_at = ? WHERE uuid = ?`,
				tagsJSON, now, promptUUID)
			if err != nil {
				return errors.Store(err)
			}
			propagated = true
		}

		merged = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	prompt, err := s.GetPrompt(ctx, promptUUID)
	if err != nil {
		s.logger.Warn("reload prompt after metadata update failed", "prompt_uuid", promptUUID, "error", err)
		return merged, nil
	}

	if propagated {
		s.reindexPrompt(ctx, prompt)
		s.emitter.Emit(sse.NewPromptUpdatedEvent(prompt))
	} else if version, err := s.GetVersion(ctx, versionUUID); err == nil {
		if err := s.indexer.IndexVersion(ctx, prompt, version); err != nil {
			s.logger.Warn("search index update failed", "version_uuid", versionUUID, "error", err)
		}
	}

	return merged, nil
}

// ListAllTags returns every distinct tag across all prompts, folded to
// lower case and sorted.
func (s *Store) ListAllTags(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT tags FROM prompts`)
	if err != nil {
		return nil, errors.Store(err)
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	for rows.Next() {
		var tagsJSON string
		if err := rows.Scan(&tagsJSON); err != nil {
			return nil, errors.Store(err)
		}
		for _, tag := range unmarshalTags(tagsJSON) {
			tag = strings.ToLower(strings.TrimSpace(tag))
			if tag == "" {
				continue
			}
			seen[tag] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Store(err)
	}

	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags, nil
}
