// Package reconciler folds filesystem changes in the prompts directory
// back into the database. Files edited or dropped in by hand become
// versions; files deleted out from under us are regenerated, because
// the database is authoritative and a mirror file is never the only
// copy of anything.
package reconciler

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/promptkeepapp/promptkeep-server/internal/mirror"
	"github.com/promptkeepapp/promptkeep-server/internal/sse"
	"github.com/promptkeepapp/promptkeep-server/internal/store"
	"github.com/promptkeepapp/promptkeep-server/internal/validation"
	"github.com/promptkeepapp/promptkeep-server/internal/watcher"
)

// Reconciler processes watcher events for the prompts directory.
//
// Key design principles:
//   - Processes each event immediately (no batching)
//   - Uses per-path locking to deduplicate concurrent events
//   - A bad file is logged and skipped, never fatal
//   - Non-blocking (TryLock prevents queueing)
type Reconciler struct {
	store   *store.Store
	mirror  *mirror.Mirror
	emitter store.EventEmitter
	logger  *slog.Logger

	// locks holds one mutex per path so overlapping events for the
	// same file are handled once instead of queueing.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a Reconciler. A nil emitter disables event broadcasts.
func New(st *store.Store, mir *mirror.Mirror, emitter store.EventEmitter, logger *slog.Logger) *Reconciler {
	if emitter == nil {
		emitter = store.NewNoopEmitter()
	}
	return &Reconciler{
		store:   st,
		mirror:  mir,
		emitter: emitter,
		logger:  logger,
		locks:   make(map[string]*sync.Mutex),
	}
}

// ProcessEvent handles one watcher event.
//
// Processing flow:
//  1. Drop events for paths that cannot hold a mirror document
//  2. Acquire the per-path lock with TryLock (deduplicate concurrent events)
//  3. Created/Modified: parse the file and import it
//  4. Removed: recover the version from the database and rewrite the file
//
// If the path is already being reconciled the event is skipped
// (non-blocking). Our own regenerated files echo back through the
// watcher as creations; those imports land on a known (prompt, semver)
// pair and no-op, so the loop converges.
func (r *Reconciler) ProcessEvent(ctx context.Context, event watcher.Event) error {
	r.logger.Debug("processing event",
		"type", event.Type.String(),
		"path", event.Path,
	)

	if event.Type == watcher.EventOther {
		return nil
	}
	if !isMirrorCandidate(event.Path) {
		r.logger.Debug("ignoring file", "path", event.Path)
		return nil
	}

	lock := r.pathLock(event.Path)
	if !lock.TryLock() {
		// Already reconciling this path, skip.
		r.logger.Debug("path already being reconciled, skipping", "path", event.Path)
		return nil
	}
	defer lock.Unlock()

	switch event.Type {
	case watcher.EventCreated, watcher.EventModified:
		return r.handleFileChange(ctx, event.Path)
	case watcher.EventRemoved:
		return r.handleRemovedFile(ctx, event.Path)
	default:
		r.logger.Warn("unknown event type",
			"type", event.Type,
			"path", event.Path,
		)
		return nil
	}
}

// handleFileChange imports a created or modified file. Malformed or
// invalid documents are logged and skipped; the database keeps its
// version of the record until the file is fixed.
func (r *Reconciler) handleFileChange(ctx context.Context, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Deleted between the settle delay and now. The removal
			// event is either queued behind us or already handled.
			r.logger.Debug("file vanished before import", "path", path)
			return nil
		}
		return fmt.Errorf("read mirror file: %w", err)
	}

	doc, err := mirror.Parse(content)
	if err != nil {
		r.logger.Warn("skipping malformed mirror file", "path", path, "error", err)
		return nil
	}
	if err := validation.ValidatePromptInput(doc.Title, doc.Body, doc.Tags); err != nil {
		r.logger.Warn("skipping mirror file with invalid content", "path", path, "error", err)
		return nil
	}

	version, inserted, err := r.store.ImportVersion(ctx, store.ImportVersionParams{
		PromptUUID: doc.UUID,
		Title:      doc.Title,
		Tags:       doc.Tags,
		Semver:     doc.Semver,
		Body:       doc.Body,
	})
	if err != nil {
		return fmt.Errorf("import mirror file: %w", err)
	}

	if inserted {
		r.logger.Info("imported version from file",
			"path", path,
			"prompt_uuid", doc.UUID,
			"semver", version.Semver,
		)
	} else {
		r.logger.Debug("file version already known",
			"path", path,
			"prompt_uuid", doc.UUID,
			"semver", version.Semver,
		)
	}

	r.emitter.Emit(sse.NewFilesChangedEvent([]string{path}))
	return nil
}

// handleRemovedFile rebuilds a deleted mirror file from the database.
//
// The content is gone, so identity comes from the filename: the semver
// narrows the candidates and the title slug picks the prompt. The
// candidates arrive newest first, and the most recent version wearing
// the semver is almost always the file that was just deleted, so the
// scan usually stops at the first row.
func (r *Reconciler) handleRemovedFile(ctx context.Context, path string) error {
	parts, ok := mirror.ParseFilename(filepath.Base(path))
	if !ok {
		r.logger.Debug("removed file does not follow mirror naming, ignoring", "path", path)
		return nil
	}

	candidates, err := r.store.ListVersionsBySemver(ctx, parts.Semver)
	if err != nil {
		return fmt.Errorf("look up deleted version: %w", err)
	}

	var match *store.VersionWithPrompt
	for _, candidate := range candidates {
		if mirror.Slug(candidate.Prompt.Title) == parts.Slug {
			match = candidate
			break
		}
	}
	if match == nil {
		r.logger.Warn("no database entry for deleted mirror file",
			"path", path,
			"semver", parts.Semver,
		)
		r.emitter.Emit(sse.NewFilesDeletedEvent([]string{path}, nil))
		return nil
	}

	written, err := r.mirror.WriteVersion(ctx, match.Prompt, match.Version)
	if err != nil {
		r.emitter.Emit(sse.NewFilesDeletedEvent([]string{path}, nil))
		return fmt.Errorf("regenerate mirror file: %w", err)
	}

	r.logger.Info("regenerated deleted mirror file",
		"path", written,
		"prompt_uuid", match.Prompt.UUID,
		"semver", match.Version.Semver,
	)
	r.emitter.Emit(sse.NewFilesDeletedEvent([]string{path}, []string{written}))
	return nil
}

// isMirrorCandidate reports whether a path can hold a mirror document:
// a markdown file that is not hidden and not an editor backup. The
// watcher applies the same filter; keeping it here means events from
// any source are safe to feed in.
func isMirrorCandidate(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return false
	}
	return strings.EqualFold(filepath.Ext(base), ".md")
}

// pathLock returns the mutex guarding a path, creating it on first use.
func (r *Reconciler) pathLock(path string) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	lock, ok := r.locks[path]
	if !ok {
		lock = &sync.Mutex{}
		r.locks[path] = lock
	}
	return lock
}
