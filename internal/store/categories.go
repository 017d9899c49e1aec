package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/promptkeepapp/promptkeep-server/internal/domain"
	"github.com/promptkeepapp/promptkeep-server/internal/errors"
	"github.com/promptkeepapp/promptkeep-server/internal/sse"
)

// CategoryTree derives the category tree from the paths materialized on
// prompt rows. Nothing is stored per category; an empty category only
// exists while prompts are filed under it.
func (s *Store) CategoryTree(ctx context.Context) ([]*domain.CategoryNode, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category_path, COUNT(*) FROM prompts
		WHERE category_path IS NOT NULL
		GROUP BY category_path`)
	if err != nil {
		return nil, errors.Store(err)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var (
			path  string
			count int64
		)
		if err := rows.Scan(&path, &count); err != nil {
			return nil, errors.Store(err)
		}
		counts[path] = count
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Store(err)
	}

	return domain.BuildCategoryTree(counts), nil
}

// AssignCategory files a prompt under categoryPath.
func (s *Store) AssignCategory(ctx context.Context, promptUUID, categoryPath string) (*domain.Prompt, error) {
	err := s.withWrite(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE prompts SET category_path = ?, updated_at = ? WHERE uuid = ?`,
			categoryPath, formatTime(nowUTC()), promptUUID)
		if err != nil {
			return errors.Store(err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return errors.Store(err)
		}
		if n == 0 {
			return errors.PromptNotFoundf("prompt %s not found", promptUUID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	prompt, err := s.GetPrompt(ctx, promptUUID)
	if err != nil {
		return nil, err
	}
	s.emitter.Emit(sse.NewPromptUpdatedEvent(prompt))
	return prompt, nil
}

// RenameCategory moves every prompt under oldPath (including
// subcategories) to the same position under newPath. Returns the number
// of prompts moved.
func (s *Store) RenameCategory(ctx context.Context, oldPath, newPath string) (int64, error) {
	if oldPath == domain.DefaultCategoryPath || newPath == domain.DefaultCategoryPath {
		return 0, errors.InvalidInputf("%q is reserved and cannot be renamed", domain.DefaultCategoryPath)
	}
	if oldPath == newPath {
		return 0, errors.InvalidInput("old and new category paths are identical")
	}

	var moved int64
	err := s.withWrite(ctx, func(tx *sql.Tx) error {
		var occupied int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM prompts WHERE category_path = ?`, newPath).Scan(&occupied)
		if err != nil {
			return errors.Store(err)
		}
		if occupied > 0 {
			return errors.AlreadyExistsf("category %q already exists", newPath)
		}

		now := formatTime(nowUTC())

		res, err := tx.ExecContext(ctx,
			`UPDATE prompts SET category_path = ?, updated_at = ? WHERE category_path = ?`,
			newPath, now, oldPath)
		if err != nil {
			return errors.Store(err)
		}
		exact, err := res.RowsAffected()
		if err != nil {
			return errors.Store(err)
		}

		// SUBSTR is 1-based; starting at len(oldPath)+1 keeps the
		// slash so "old/sub" becomes newPath + "/sub".
		res, err = tx.ExecContext(ctx, `
			UPDATE prompts
			SET category_path = ? || SUBSTR(category_path, ?), updated_at = ?
			WHERE category_path LIKE ?`,
			newPath, len(oldPath)+1, now, oldPath+"/%")
		if err != nil {
			return errors.Store(err)
		}
		subtree, err := res.RowsAffected()
		if err != nil {
			return errors.Store(err)
		}

		moved = exact + subtree
		if moved == 0 {
			return errors.CategoryNotFoundf("category %q not found", oldPath)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return moved, nil
}

// DeleteCategory removes a category level. Prompts filed at the exact
// path move to its parent (root categories fall back to the default);
// prompts in subcategories move up one level. Deleting a path no prompt
// uses is not an error.
func (s *Store) DeleteCategory(ctx context.Context, path string) (int64, error) {
	if path == domain.DefaultCategoryPath {
		return 0, errors.InvalidInputf("%q is reserved and cannot be deleted", domain.DefaultCategoryPath)
	}

	parent := domain.ParentPath(path)

	var moved int64
	err := s.withWrite(ctx, func(tx *sql.Tx) error {
		now := formatTime(nowUTC())

		res, err := tx.ExecContext(ctx,
			`UPDATE prompts SET category_path = ?, updated_at = ? WHERE category_path = ?`,
			parent, now, path)
		if err != nil {
			return errors.Store(err)
		}
		exact, err := res.RowsAffected()
		if err != nil {
			return errors.Store(err)
		}

		// Children splice out the deleted level: "path/sub" becomes
		// "parent/sub", or just "sub" when path is a root category.
		var subtreeRes sql.Result
		if !strings.Contains(path, "/") {
			subtreeRes, err = tx.ExecContext(ctx, `
				UPDATE prompts
				SET category_path = SUBSTR(category_path, ?), updated_at = ?
				WHERE category_path LIKE ?`,
				len(path)+2, now, path+"/%")
		} else {
			subtreeRes, err = tx.ExecContext(ctx, `
				UPDATE prompts
				SET category_path = ? || SUBSTR(category_path, ?), updated_at = ?
				WHERE category_path LIKE ?`,
				parent+"/", len(path)+2, now, path+"/%")
		}
		if err != nil {
			return errors.Store(err)
		}
		subtree, err := subtreeRes.RowsAffected()
		if err != nil {
			return errors.Store(err)
		}

		moved = exact + subtree
		return nil
	})
	if err != nil {
		return 0, err
	}

	if moved == 0 {
		s.logger.Warn("delete of unused category", "category_path", path)
	}
	return moved, nil
}

// CreateCategory checks that a category path is free to use. The tree
// is derived from prompt rows, so nothing is written; the new category
// materializes once a prompt is filed under it.
func (s *Store) CreateCategory(ctx context.Context, path string) error {
	if path == domain.DefaultCategoryPath {
		return errors.AlreadyExistsf("category %q already exists", path)
	}

	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM prompts
		WHERE category_path = ? OR category_path LIKE ?`,
		path, path+"/%").Scan(&count)
	if err != nil {
		return errors.Store(err)
	}
	if count > 0 {
		return errors.AlreadyExistsf("category %q already exists", path)
	}
	return nil
}
