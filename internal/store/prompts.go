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

// promptColumns is the ordered list of columns selected in prompt queries.
// Must match the scan order in scanPrompt.
const promptColumns = `uuid, title, tags, category_path, created_at, updated_at, prod_version_uuid`

// scanPrompt scans a sql.Row (or sql.Rows via its Scan method) into a domain.Prompt.
func scanPrompt(scanner interface{ Scan(dest ...any) error }) (*domain.Prompt, error) {
	var p domain.Prompt

	var (
		tagsJSON  string
		category  sql.NullString
		createdAt string
		updatedAt string
		prodUUID  sql.NullString
	)

	err := scanner.Scan(&p.UUID, &p.Title, &tagsJSON, &category, &createdAt, &updatedAt, &prodUUID)
	if err != nil {
		return nil, err
	}

	p.Tags = unmarshalTags(tagsJSON)
	if category.Valid && category.String != "" {
		p.CategoryPath = category.String
	} else {
		p.CategoryPath = domain.DefaultCategoryPath
	}

	p.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	p.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	if prodUUID.Valid {
		p.ProdVersionUUID = &prodUUID.String
	}

	return &p, nil
}

// marshalTags serializes a tag list to its JSON column form.
func marshalTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// unmarshalTags parses the tags column. Unparseable values collapse to
// an empty list rather than failing the row.
func unmarshalTags(tagsJSON string) []string {
	var tags []string
	if err := json.Unmarshal([]byte(tagsJSON), &tags); err != nil || tags == nil {
		return []string{}
	}
	return tags
}

// CreatePrompt inserts a prompt with its initial 1.0.0 version in one
// transaction. The version body is the prompt's first snapshot; its
// parent is nil.
func (s *Store) CreatePrompt(ctx context.Context, title, body string, tags []string, categoryPath string) (*domain.Prompt, *domain.Version, error) {
	prompt := domain.NewPrompt(id.MustGenerateUUID(), title, tags, categoryPath)
	version := domain.NewVersion(id.MustGenerateUUID(), prompt.UUID, semver.Initial, body, nil)
	version.CreatedAt = prompt.CreatedAt

	tagsJSON, err := marshalTags(prompt.Tags)
	if err != nil {
		return nil, nil, errors.Storef(err, "marshal tags")
	}

	err = s.withWrite(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO prompts (uuid, title, tags, category_path, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			prompt.UUID,
			prompt.Title,
			tagsJSON,
			prompt.CategoryPath,
			formatTime(prompt.CreatedAt),
			formatTime(prompt.UpdatedAt),
		)
		if err != nil {
			return errors.Store(err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO versions (uuid, prompt_uuid, semver, body, created_at)
			VALUES (?, ?, ?, ?, ?)`,
			version.UUID,
			version.PromptUUID,
			version.Semver,
			version.Body,
			formatTime(version.CreatedAt),
		)
		if err != nil {
			return errors.Store(err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.syncVersionArtifacts(ctx, prompt, version)
	s.emitter.Emit(sse.NewPromptCreatedEvent(prompt))
	s.emitter.Emit(sse.NewVersionCreatedEvent(version, sse.SourceSave))

	return prompt, version, nil
}

// GetPrompt retrieves a prompt by UUID.
func (s *Store) GetPrompt(ctx context.Context, uuid string) (*domain.Prompt, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+promptColumns+` FROM prompts WHERE uuid = ?`, uuid)

	p, err := scanPrompt(row)
	if err == sql.ErrNoRows {
		return nil, errors.PromptNotFoundf("prompt %s not found", uuid)
	}
	if err != nil {
		return nil, errors.Store(err)
	}
	return p, nil
}

// ListPromptsParams filters and pages a prompt listing. A zero value
// lists everything.
type ListPromptsParams struct {
	// CategoryPath restricts the listing to one category. The default
	// category matches exactly; any other path also matches its
	// subcategories.
	CategoryPath string
	// Limit of 0 or less means no limit.
	Limit  int
	Offset int
}

// ListPrompts returns prompts ordered by most recently updated.
func (s *Store) ListPrompts(ctx context.Context, params ListPromptsParams) ([]*domain.Prompt, error) {
	query := `SELECT ` + promptColumns + ` FROM prompts`
	var args []any

	switch {
	case params.CategoryPath == "":
	case params.CategoryPath == domain.DefaultCategoryPath:
		query += ` WHERE category_path = ?`
		args = append(args, params.CategoryPath)
	default:
		query += ` WHERE (category_path = ? OR category_path LIKE ?)`
		args = append(args, params.CategoryPath, params.CategoryPath+"/%")
	}

	// SQLite reads LIMIT -1 as unlimited, which OFFSET requires.
	limit := params.Limit
	if limit <= 0 {
		limit = -1
	}
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}
	query += ` ORDER BY updated_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	return s.queryPrompts(ctx, query, args...)
}

// queryPrompts runs a prompt query and scans all rows.
func (s *Store) queryPrompts(ctx context.Context, query string, args ...any) ([]*domain.Prompt, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Store(err)
	}
	defer rows.Close()

	var prompts []*domain.Prompt
	for rows.Next() {
		p, err := scanPrompt(rows)
		if err != nil {
			return nil, errors.Store(err)
		}
		prompts = append(prompts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Store(err)
	}
	return prompts, nil
}

// UpdatePromptParams holds the mutable fields of a prompt. Nil fields
// are left unchanged; a non-nil empty ProdVersionUUID clears the pin.
type UpdatePromptParams struct {
	Title           *string
	Tags            []string
	ProdVersionUUID *string
}

// UpdatePrompt applies the set fields of params to a prompt and bumps
// its updated_at. Pinning a production version verifies the version
// belongs to the prompt.
func (s *Store) UpdatePrompt(ctx context.Context, uuid string, params UpdatePromptParams) (*domain.Prompt, error) {
	var updated *domain.Prompt

	err := s.withWrite(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			`SELECT `+promptColumns+` FROM prompts WHERE uuid = ?`, uuid)
		p, err := scanPrompt(row)
		if err == sql.ErrNoRows {
			return errors.PromptNotFoundf("prompt %s not found", uuid)
		}
		if err != nil {
			return errors.Store(err)
		}

		if params.Title != nil {
			p.Title = *params.Title
		}
		if params.Tags != nil {
			p.Tags = params.Tags
		}
		if params.ProdVersionUUID != nil {
			if *params.ProdVersionUUID == "" {
				p.ProdVersionUUID = nil
			} else {
				var owner string
				err := tx.QueryRowContext(ctx,
					`SELECT prompt_uuid FROM versions WHERE uuid = ?`,
					*params.ProdVersionUUID).Scan(&owner)
				if err == sql.ErrNoRows || (err == nil && owner != uuid) {
					return errors.VersionNotFoundf("version %s does not belong to prompt %s", *params.ProdVersionUUID, uuid)
				}
				if err != nil {
					return errors.Store(err)
				}
				p.ProdVersionUUID = params.ProdVersionUUID
			}
		}
		p.Touch()

		tagsJSON, err := marshalTags(p.Tags)
		if err != nil {
			return errors.Storef(err, "marshal tags")
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE prompts
			SET title = ?, tags = ?, updated_at = ?, prod_version_uuid = ?
			WHERE uuid = ?`,
			p.Title,
			tagsJSON,
			formatTime(p.UpdatedAt),
			nullableString(p.ProdVersionUUID),
			uuid,
		)
		if err != nil {
			return errors.Store(err)
		}

		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	if params.Title != nil || params.Tags != nil {
		s.reindexPrompt(ctx, updated)
	}
	s.emitter.Emit(sse.NewPromptUpdatedEvent(updated))

	return updated, nil
}

// ImportVersionParams holds a version parsed from a mirror file.
type ImportVersionParams struct {
	PromptUUID string
	Title      string
	Tags       []string
	Semver     string
	Body       string
}

// ImportVersion applies a mirror file to the database: the prompt row
// takes the file's title and tags (and is created if the UUID is new),
// and the file's version is inserted under its declared semver unless
// that semver already exists. The skip keeps watcher echoes of our own
// writes from duplicating rows.
//
// The returned bool reports whether a new version row was inserted.
func (s *Store) ImportVersion(ctx context.Context, params ImportVersionParams) (*domain.Version, bool, error) {
	tagsJSON, err := marshalTags(params.Tags)
	if err != nil {
		return nil, false, errors.Storef(err, "marshal tags")
	}

	var (
		prompt   *domain.Prompt
		version  *domain.Version
		inserted bool
		created  bool
	)

	err = s.withWrite(ctx, func(tx *sql.Tx) error {
		now := nowUTC()

		row := tx.QueryRowContext(ctx,
			`SELECT `+promptColumns+` FROM prompts WHERE uuid = ?`, params.PromptUUID)
		p, err := scanPrompt(row)
		switch {
		case err == sql.ErrNoRows:
			p = domain.NewPrompt(params.PromptUUID, params.Title, params.Tags, "")
			created = true
			_, err = tx.ExecContext(ctx, `
				INSERT INTO prompts (uuid, title, tags, category_path, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?)`,
				p.UUID, p.Title, tagsJSON, p.CategoryPath,
				formatTime(p.CreatedAt), formatTime(p.UpdatedAt))
			if err != nil {
				return errors.Store(err)
			}
		case err != nil:
			return errors.Store(err)
		default:
			p.Title = params.Title
			p.Tags = params.Tags
			p.UpdatedAt = now
			_, err = tx.ExecContext(ctx, `
				UPDATE prompts SET title = ?, tags = ?, updated_at = ? WHERE uuid = ?`,
				p.Title, tagsJSON, formatTime(p.UpdatedAt), p.UUID)
			if err != nil {
				return errors.Store(err)
			}
		}
		prompt = p

		var count int
		err = tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM versions WHERE prompt_uuid = ? AND semver = ?`,
			params.PromptUUID, params.Semver).Scan(&count)
		if err != nil {
			return errors.Store(err)
		}
		if count > 0 {
			row := tx.QueryRowContext(ctx,
				`SELECT `+versionColumns+` FROM versions WHERE prompt_uuid = ? AND semver = ?`,
				params.PromptUUID, params.Semver)
			version, err = scanVersion(row)
			if err != nil {
				return errors.Store(err)
			}
			return nil
		}

		version = domain.NewVersion(id.MustGenerateUUID(), params.PromptUUID, params.Semver, params.Body, nil)
		version.CreatedAt = now
		_, err = tx.ExecContext(ctx, `
			INSERT INTO versions (uuid, prompt_uuid, semver, body, created_at)
			VALUES (?, ?, ?, ?, ?)`,
			version.UUID, version.PromptUUID, version.Semver, version.Body,
			formatTime(version.CreatedAt))
		if err != nil {
			return errors.Store(err)
		}
		inserted = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if inserted {
		if err := s.indexer.IndexVersion(ctx, prompt, version); err != nil {
			s.logger.Warn("search index update failed", "version_uuid", version.UUID, "error", err)
		}
		s.emitter.Emit(sse.NewVersionCreatedEvent(version, sse.SourceImport))
	}
	s.reindexPrompt(ctx, prompt)
	if created {
		s.emitter.Emit(sse.NewPromptCreatedEvent(prompt))
	} else {
		s.emitter.Emit(sse.NewPromptUpdatedEvent(prompt))
	}

	return version, inserted, nil
}
