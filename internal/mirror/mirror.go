package mirror

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"

	"github.com/promptkeepapp/promptkeep-server/internal/domain"
)

// Mirror writes prompt versions into the watched markdown directory.
// Writes are atomic (temp file + rename) so the watcher never sees a
// half-written document, and idempotent so our own writes do not echo
// back as changes.
type Mirror struct {
	dir    string
	logger *slog.Logger
}

func New(dir string, logger *slog.Logger) *Mirror {
	return &Mirror{dir: dir, logger: logger}
}

// Dir returns the mirror directory.
func (m *Mirror) Dir() string {
	return m.dir
}

// VersionPath returns where a version's mirror file lives. The
// filename is derived from the version's creation date, the prompt
// title slug, and the semver, so a regenerated file lands at the same
// path as the original write.
func (m *Mirror) VersionPath(prompt *domain.Prompt, version *domain.Version) string {
	name := Filename(version.CreatedAt, Slug(prompt.Title), version.Semver)
	return filepath.Join(m.dir, name)
}

// WriteVersion renders a version to its mirror file. If the file
// already holds exactly this content the write is skipped, preserving
// the mtime.
func (m *Mirror) WriteVersion(_ context.Context, prompt *domain.Prompt, version *domain.Version) (string, error) {
	doc := &Document{
		UUID:     prompt.UUID,
		Semver:   version.Semver,
		Title:    prompt.Title,
		Tags:     prompt.Tags,
		Created:  version.CreatedAt,
		Modified: time.Now().UTC(),
		Body:     version.Body,
	}
	content := doc.Render()
	path := m.VersionPath(prompt, version)

	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return "", fmt.Errorf("create mirror dir: %w", err)
	}

	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, content) {
		m.logger.Debug("mirror file already current", "path", path)
		return path, nil
	}

	if err := atomic.WriteFile(path, bytes.NewReader(content)); err != nil {
		return "", fmt.Errorf("write mirror file: %w", err)
	}
	return path, nil
}
