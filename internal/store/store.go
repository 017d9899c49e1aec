// Package store provides SQLite-backed persistence for prompts, their
// version history, and everything hanging off them: run records, model
// providers, category paths, and version metadata.
//
// The database is the single source of truth. Markdown mirror files and
// the search index are derived artifacts kept in sync through the
// MirrorWriter and SearchIndexer hooks; a hook failure is logged and
// never fails the originating write.
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/promptkeepapp/promptkeep-server/internal/domain"
	"github.com/promptkeepapp/promptkeep-server/internal/errors"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// EventEmitter is the interface for emitting SSE events.
// Store uses this to broadcast changes without depending on SSE implementation details.
type EventEmitter interface {
	Emit(event any)
}

// NoopEmitter is a no-op implementation of EventEmitter for testing.
type NoopEmitter struct{}

// Emit implements EventEmitter.Emit as a no-op.
func (NoopEmitter) Emit(_ any) {}

// NewNoopEmitter creates a new no-op emitter for testing.
func NewNoopEmitter() EventEmitter {
	return NoopEmitter{}
}

// SearchIndexer is the interface for updating the search index.
// Store uses this to keep search in sync without depending on search implementation.
type SearchIndexer interface {
	// IndexVersion indexes one version, denormalizing the prompt's
	// title and tags into the document.
	IndexVersion(ctx context.Context, prompt *domain.Prompt, version *domain.Version) error
	// ReindexPrompt refreshes every version document of a prompt after
	// its title or tags changed.
	ReindexPrompt(ctx context.Context, prompt *domain.Prompt, versions []*domain.Version) error
}

// NoopSearchIndexer is a no-op implementation for testing.
type NoopSearchIndexer struct{}

// IndexVersion is a no-op.
func (NoopSearchIndexer) IndexVersion(context.Context, *domain.Prompt, *domain.Version) error {
	return nil
}

// ReindexPrompt is a no-op.
func (NoopSearchIndexer) ReindexPrompt(context.Context, *domain.Prompt, []*domain.Version) error {
	return nil
}

// NewNoopSearchIndexer creates a new no-op search indexer for testing.
func NewNoopSearchIndexer() SearchIndexer {
	return NoopSearchIndexer{}
}

// MirrorWriter is the interface for writing markdown mirror files.
// The store calls it after a version-producing transaction commits.
type MirrorWriter interface {
	// WriteVersion writes the markdown file for a version and returns
	// the path written. Writing an identical file twice is a no-op.
	WriteVersion(ctx context.Context, prompt *domain.Prompt, version *domain.Version) (string, error)
}

// NoopMirrorWriter is a no-op implementation for testing.
type NoopMirrorWriter struct{}

// WriteVersion is a no-op.
func (NoopMirrorWriter) WriteVersion(context.Context, *domain.Prompt, *domain.Version) (string, error) {
	return "", nil
}

// NewNoopMirrorWriter creates a new no-op mirror writer for testing.
func NewNoopMirrorWriter() MirrorWriter {
	return NoopMirrorWriter{}
}

// Store provides SQLite-backed persistence for the PromptKeep server.
type Store struct {
	db     *sql.DB
	logger *slog.Logger

	emitter EventEmitter
	indexer SearchIndexer
	mirror  MirrorWriter
}

// Open creates a new SQLite store at the given path.
// It configures WAL mode, sets pragmas, and runs schema migrations.
func Open(path string, logger *slog.Logger) (*Store, error) {
	// _txlock=immediate makes every transaction take the write lock up
	// front, so a writer never discovers a conflict at COMMIT time.
	db, err := sql.Open("sqlite", "file:"+path+"?_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite permits one writer; a single pooled connection serializes
	// all access and makes the in-transaction semver re-check sound.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("exec schema: %w", err)
	}

	s := &Store{
		db:      db,
		logger:  logger,
		emitter: NewNoopEmitter(),
		indexer: NewNoopSearchIndexer(),
		mirror:  NewNoopMirrorWriter(),
	}

	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SetEmitter sets the SSE event emitter used for broadcasting changes.
func (s *Store) SetEmitter(emitter EventEmitter) {
	s.emitter = emitter
}

// SetSearchIndexer sets the search indexer used for maintaining the search index.
// This is set after store creation to avoid circular dependencies
// (store needs to exist before the search service can be created).
func (s *Store) SetSearchIndexer(indexer SearchIndexer) {
	s.indexer = indexer
}

// SetMirrorWriter sets the markdown mirror writer.
func (s *Store) SetMirrorWriter(mirror MirrorWriter) {
	s.mirror = mirror
}

// withWrite runs fn inside a write transaction. The transaction holds
// the write lock from BEGIN, is rolled back if fn returns an error, and
// committed otherwise. Errors from fn pass through unwrapped so domain
// errors survive; transaction machinery failures come back as storage
// errors.
func (s *Store) withWrite(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Store(err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.Store(err)
	}
	return nil
}

// withRead runs fn inside a transaction used only for reads, giving
// multi-statement reads a single consistent snapshot.
func (s *Store) withRead(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Store(err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return errors.Store(err)
	}
	return nil
}

// syncVersionArtifacts updates the derived artifacts for a freshly
// committed version: the markdown mirror file and the search index.
// Failures are logged, never returned; the database row already exists
// and the reconciler or a rebuild can repair derived state later.
func (s *Store) syncVersionArtifacts(ctx context.Context, prompt *domain.Prompt, version *domain.Version) {
	if path, err := s.mirror.WriteVersion(ctx, prompt, version); err != nil {
		s.logger.Warn("mirror write failed",
			"prompt_uuid", prompt.UUID,
			"semver", version.Semver,
			"error", err)
	} else if path != "" {
		s.logger.Debug("mirror file written", "path", path)
	}

	if err := s.indexer.IndexVersion(ctx, prompt, version); err != nil {
		s.logger.Warn("search index update failed",
			"version_uuid", version.UUID,
			"error", err)
	}
}

// reindexPrompt refreshes all version documents of a prompt after its
// title or tags changed. Failures are logged, never returned.
func (s *Store) reindexPrompt(ctx context.Context, prompt *domain.Prompt) {
	versions, err := s.ListAllVersions(ctx, prompt.UUID)
	if err != nil {
		s.logger.Warn("reindex load failed", "prompt_uuid", prompt.UUID, "error", err)
		return
	}
	if err := s.indexer.ReindexPrompt(ctx, prompt, versions); err != nil {
		s.logger.Warn("search reindex failed", "prompt_uuid", prompt.UUID, "error", err)
	}
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// nowUTC returns the current time in UTC, the zone all stored
// timestamps use.
func nowUTC() time.Time {
	return time.Now().UTC()
}

// formatTime formats a time.Time to RFC3339Nano for storage.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime parses a RFC3339Nano string back to time.Time.
func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// nullableString returns a sql.NullString from a *string.
func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// nullableFloat returns a sql.NullFloat64 from a *float64.
func nullableFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

// nullableInt returns a sql.NullInt64 from an *int64.
func nullableInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
