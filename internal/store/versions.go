package store

import (
	"context"
	"database/sql"
	"encoding/json/v2"

	"github.com/promptkeepapp/promptkeep-server/internal/domain"
	"github.com/promptkeepapp/promptkeep-server/internal/errors"
	"github.com/promptkeepapp/promptkeep-server/internal/id"
	"github.com/promptkeepapp/promptkeep-server/internal/semver"
	"github.com/promptkeepapp/promptkeep-server/internal/sse"
)

const (
	// DefaultVersionListLimit is used when a version listing request
	// gives no limit.
	DefaultVersionListLimit = 5
	// MaxVersionListLimit caps version listing requests.
	MaxVersionListLimit = 50
	// MaxRecentListLimit caps the database-wide recent feed.
	MaxRecentListLimit = 100
)

// versionColumns is the ordered list of columns selected in version
// queries. Must match the scan order in scanVersion.
const versionColumns = `uuid, prompt_uuid, semver, body, metadata, created_at, parent_uuid`

// scanVersion scans a sql.Row (or sql.Rows via its Scan method) into a
// domain.Version.
func scanVersion(scanner interface{ Scan(dest ...any) error }) (*domain.Version, error) {
	var v domain.Version

	var (
		metadata  sql.NullString
		createdAt string
		parent    sql.NullString
	)

	err := scanner.Scan(&v.UUID, &v.PromptUUID, &v.Semver, &v.Body, &metadata, &createdAt, &parent)
	if err != nil {
		return nil, err
	}

	v.Metadata = unmarshalMetadata(metadata)
	v.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	if parent.Valid {
		v.ParentUUID = &parent.String
	}

	return &v, nil
}

// marshalMetadata serializes version metadata for storage. Nil metadata
// stores as NULL.
func marshalMetadata(m *domain.VersionMetadata) (sql.NullString, error) {
	if m == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}

// unmarshalMetadata parses the metadata column. NULL and unparseable
// values come back as nil rather than failing the row.
func unmarshalMetadata(ns sql.NullString) *domain.VersionMetadata {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	var m domain.VersionMetadata
	if err := json.Unmarshal([]byte(ns.String), &m); err != nil {
		return nil
	}
	return &m
}

// nextVersionSlot picks the semver and parent for a prompt's next
// version inside an open transaction.
//
// The happy path bumps the patch of the most recent version. If that
// slot is already taken (imports can land versions out of timestamp
// order), the allocator recomputes from the numeric maximum across all
// of the prompt's versions and tries that one slot. A second collision
// means another writer is racing us and the caller should surface it.
func nextVersionSlot(ctx context.Context, tx *sql.Tx, promptUUID string) (string, *string, error) {
	var (
		latestUUID   string
		latestSemver string
	)
	err := tx.QueryRowContext(ctx, `
		SELECT uuid, semver FROM versions
		WHERE prompt_uuid = ?
		ORDER BY created_at DESC, semver DESC
		LIMIT 1`, promptUUID).Scan(&latestUUID, &latestSemver)
	if err == sql.ErrNoRows {
		return semver.Initial, nil, nil
	}
	if err != nil {
		return "", nil, errors.Store(err)
	}

	next, err := semver.BumpPatch(latestSemver)
	if err != nil {
		return "", nil, errors.Storef(err, "stored semver %q is invalid", latestSemver)
	}

	taken, err := semverTaken(ctx, tx, promptUUID, next)
	if err != nil {
		return "", nil, err
	}
	if !taken {
		return next, &latestUUID, nil
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT semver FROM versions WHERE prompt_uuid = ?`, promptUUID)
	if err != nil {
		return "", nil, errors.Store(err)
	}
	defer rows.Close()

	var all []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return "", nil, errors.Store(err)
		}
		all = append(all, s)
	}
	if err := rows.Err(); err != nil {
		return "", nil, errors.Store(err)
	}

	highest := semver.Max(all)
	if highest == "" {
		return "", nil, errors.AllocationRace("no parseable versions to bump from")
	}
	next, err = semver.BumpPatch(highest)
	if err != nil {
		return "", nil, errors.Storef(err, "stored semver %q is invalid", highest)
	}

	taken, err = semverTaken(ctx, tx, promptUUID, next)
	if err != nil {
		return "", nil, err
	}
	if taken {
		return "", nil, errors.AllocationRace("version number allocation raced, retry the save")
	}
	return next, &latestUUID, nil
}

// semverTaken reports whether a prompt already has a version at semver.
func semverTaken(ctx context.Context, tx *sql.Tx, promptUUID, sv string) (bool, error) {
	var count int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM versions WHERE prompt_uuid = ? AND semver = ?`,
		promptUUID, sv).Scan(&count)
	if err != nil {
		return false, errors.Store(err)
	}
	return count > 0, nil
}

// SaveVersion snapshots body as a new version of the prompt.
//
// Saving a body byte-identical to any existing version of the prompt is
// rejected with a conflict naming the version that already holds it.
// On success the prompt's updated_at is bumped in the same transaction.
func (s *Store) SaveVersion(ctx context.Context, promptUUID, body string, metadata *domain.VersionMetadata) (*domain.Version, error) {
	metadataJSON, err := marshalMetadata(metadata)
	if err != nil {
		return nil, errors.Storef(err, "marshal metadata")
	}

	var (
		prompt  *domain.Prompt
		version *domain.Version
	)

	err = s.withWrite(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			`SELECT `+promptColumns+` FROM prompts WHERE uuid = ?`, promptUUID)
		p, err := scanPrompt(row)
		if err == sql.ErrNoRows {
			return errors.PromptNotFoundf("prompt %s not found", promptUUID)
		}
		if err != nil {
			return errors.Store(err)
		}

		var existing string
		err = tx.QueryRowContext(ctx, `
			SELECT semver FROM versions
			WHERE prompt_uuid = ? AND body = ?
			LIMIT 1`, promptUUID, body).Scan(&existing)
		if err == nil {
			return errors.DuplicateContentf("content already saved as version %s", existing)
		}
		if err != sql.ErrNoRows {
			return errors.Store(err)
		}

		next, parent, err := nextVersionSlot(ctx, tx, promptUUID)
		if err != nil {
			return err
		}

		v := domain.NewVersion(id.MustGenerateUUID(), promptUUID, next, body, parent)
		v.Metadata = metadata

		_, err = tx.ExecContext(ctx, `
			INSERT INTO versions (uuid, prompt_uuid, semver, body, metadata, created_at, parent_uuid)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			v.UUID, v.PromptUUID, v.Semver, v.Body, metadataJSON,
			formatTime(v.CreatedAt), nullableString(v.ParentUUID))
		if isUniqueViolation(err) {
			return errors.AllocationRace("version number allocation raced, retry the save")
		}
		if err != nil {
			return errors.Store(err)
		}

		p.Touch()
		_, err = tx.ExecContext(ctx,
			`UPDATE prompts SET updated_at = ? WHERE uuid = ?`,
			formatTime(p.UpdatedAt), promptUUID)
		if err != nil {
			return errors.Store(err)
		}

		prompt = p
		version = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.syncVersionArtifacts(ctx, prompt, version)
	s.emitter.Emit(sse.NewVersionCreatedEvent(version, sse.SourceSave))

	return version, nil
}

// RollbackTo creates a new version whose body is copied from an older
// one. History stays append-only: the new version's parent is the
// prompt's latest version at rollback time, not the version being
// restored.
func (s *Store) RollbackTo(ctx context.Context, versionUUID string) (*domain.Version, error) {
	var (
		prompt  *domain.Prompt
		version *domain.Version
	)

	err := s.withWrite(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			`SELECT `+versionColumns+` FROM versions WHERE uuid = ?`, versionUUID)
		target, err := scanVersion(row)
		if err == sql.ErrNoRows {
			return errors.VersionNotFoundf("version %s not found", versionUUID)
		}
		if err != nil {
			return errors.Store(err)
		}

		row = tx.QueryRowContext(ctx,
			`SELECT `+promptColumns+` FROM prompts WHERE uuid = ?`, target.PromptUUID)
		p, err := scanPrompt(row)
		if err == sql.ErrNoRows {
			return errors.PromptNotFoundf("prompt %s not found", target.PromptUUID)
		}
		if err != nil {
			return errors.Store(err)
		}

		next, parent, err := nextVersionSlot(ctx, tx, target.PromptUUID)
		if err != nil {
			return err
		}

		v := domain.NewVersion(id.MustGenerateUUID(), target.PromptUUID, next, target.Body, parent)

		_, err = tx.ExecContext(ctx, `
			INSERT INTO versions (uuid, prompt_uuid, semver, body, created_at, parent_uuid)
			VALUES (?, ?, ?, ?, ?, ?)`,
			v.UUID, v.PromptUUID, v.Semver, v.Body,
			formatTime(v.CreatedAt), nullableString(v.ParentUUID))
		if isUniqueViolation(err) {
			return errors.AllocationRace("version number allocation raced, retry the rollback")
		}
		if err != nil {
			return errors.Store(err)
		}

		p.Touch()
		_, err = tx.ExecContext(ctx,
			`UPDATE prompts SET updated_at = ? WHERE uuid = ?`,
			formatTime(p.UpdatedAt), target.PromptUUID)
		if err != nil {
			return errors.Store(err)
		}

		prompt = p
		version = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.syncVersionArtifacts(ctx, prompt, version)
	s.emitter.Emit(sse.NewVersionCreatedEvent(version, sse.SourceRollback))

	return version, nil
}

// GetVersion retrieves a version by UUID.
func (s *Store) GetVersion(ctx context.Context, uuid string) (*domain.Version, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+versionColumns+` FROM versions WHERE uuid = ?`, uuid)

	v, err := scanVersion(row)
	if err == sql.ErrNoRows {
		return nil, errors.VersionNotFoundf("version %s not found", uuid)
	}
	if err != nil {
		return nil, errors.Store(err)
	}
	return v, nil
}

// GetLatestVersion returns the most recent version of a prompt.
func (s *Store) GetLatestVersion(ctx context.Context, promptUUID string) (*domain.Version, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+versionColumns+` FROM versions
		WHERE prompt_uuid = ?
		ORDER BY created_at DESC, semver DESC
		LIMIT 1`, promptUUID)

	v, err := scanVersion(row)
	if err == sql.ErrNoRows {
		return nil, errors.VersionNotFoundf("prompt %s has no versions", promptUUID)
	}
	if err != nil {
		return nil, errors.Store(err)
	}
	return v, nil
}

// ListRecentVersions returns a prompt's newest versions. A zero or
// negative limit uses the default; anything above the cap is clamped.
func (s *Store) ListRecentVersions(ctx context.Context, promptUUID string, limit int) ([]*domain.Version, error) {
	if limit <= 0 {
		limit = DefaultVersionListLimit
	}
	if limit > MaxVersionListLimit {
		limit = MaxVersionListLimit
	}

	return s.queryVersions(ctx, `
		SELECT `+versionColumns+` FROM versions
		WHERE prompt_uuid = ?
		ORDER BY created_at DESC, semver DESC
		LIMIT ?`, promptUUID, limit)
}

// ListAllVersions returns every version of a prompt, newest first.
// Used when rebuilding derived state for a whole prompt.
func (s *Store) ListAllVersions(ctx context.Context, promptUUID string) ([]*domain.Version, error) {
	return s.queryVersions(ctx, `
		SELECT `+versionColumns+` FROM versions
		WHERE prompt_uuid = ?
		ORDER BY created_at DESC, semver DESC`, promptUUID)
}

// VersionWithPrompt pairs a version with its owning prompt for queries
// that need both sides of the join.
type VersionWithPrompt struct {
	Version *domain.Version
	Prompt  *domain.Prompt
}

// versionWithPromptColumns selects a version row joined to its prompt.
// Must match the scan order in scanVersionWithPrompt.
const versionWithPromptColumns = `
	v.uuid, v.prompt_uuid, v.semver, v.body, v.metadata, v.created_at, v.parent_uuid,
	p.uuid, p.title, p.tags, p.category_path, p.created_at, p.updated_at, p.prod_version_uuid`

func scanVersionWithPrompt(scanner interface{ Scan(dest ...any) error }) (*VersionWithPrompt, error) {
	var (
		v domain.Version
		p domain.Prompt
	)
	var (
		vMetadata  sql.NullString
		vCreatedAt string
		vParent    sql.NullString
		pTags      string
		pCategory  sql.NullString
		pCreatedAt string
		pUpdatedAt string
		pProdUUID  sql.NullString
	)

	err := scanner.Scan(
		&v.UUID, &v.PromptUUID, &v.Semver, &v.Body, &vMetadata, &vCreatedAt, &vParent,
		&p.UUID, &p.Title, &pTags, &pCategory, &pCreatedAt, &pUpdatedAt, &pProdUUID)
	if err != nil {
		return nil, err
	}

	v.Metadata = unmarshalMetadata(vMetadata)
	if v.CreatedAt, err = parseTime(vCreatedAt); err != nil {
		return nil, err
	}
	if vParent.Valid {
		v.ParentUUID = &vParent.String
	}

	p.Tags = unmarshalTags(pTags)
	if pCategory.Valid && pCategory.String != "" {
		p.CategoryPath = pCategory.String
	} else {
		p.CategoryPath = domain.DefaultCategoryPath
	}
	if p.CreatedAt, err = parseTime(pCreatedAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(pUpdatedAt); err != nil {
		return nil, err
	}
	if pProdUUID.Valid {
		p.ProdVersionUUID = &pProdUUID.String
	}

	return &VersionWithPrompt{Version: &v, Prompt: &p}, nil
}

// ListVersionsBySemver returns every version carrying the given semver,
// newest first, joined to its prompt. Mirror file recovery uses this to
// find which prompt a deleted file belonged to.
func (s *Store) ListVersionsBySemver(ctx context.Context, sv string) ([]*VersionWithPrompt, error) {
	return s.queryVersionsWithPrompt(ctx, `
		SELECT `+versionWithPromptColumns+`
		FROM versions v
		JOIN prompts p ON p.uuid = v.prompt_uuid
		WHERE v.semver = ?
		ORDER BY v.created_at DESC`, sv)
}

// ListRecentVersionsAcrossPrompts returns the newest versions across
// the whole database, joined to their prompts.
func (s *Store) ListRecentVersionsAcrossPrompts(ctx context.Context, limit int) ([]*VersionWithPrompt, error) {
	if limit <= 0 || limit > MaxRecentListLimit {
		limit = MaxRecentListLimit
	}
	return s.queryVersionsWithPrompt(ctx, `
		SELECT `+versionWithPromptColumns+`
		FROM versions v
		JOIN prompts p ON p.uuid = v.prompt_uuid
		ORDER BY v.created_at DESC
		LIMIT ?`, limit)
}

func (s *Store) queryVersionsWithPrompt(ctx context.Context, query string, args ...any) ([]*VersionWithPrompt, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Store(err)
	}
	defer rows.Close()

	var results []*VersionWithPrompt
	for rows.Next() {
		vp, err := scanVersionWithPrompt(rows)
		if err != nil {
			return nil, errors.Store(err)
		}
		results = append(results, vp)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Store(err)
	}
	return results, nil
}

// queryVersions runs a version query and scans all rows.
func (s *Store) queryVersions(ctx context.Context, query string, args ...any) ([]*domain.Version, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Store(err)
	}
	defer rows.Close()

	var versions []*domain.Version
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, errors.Store(err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Store(err)
	}
	return versions, nil
}
