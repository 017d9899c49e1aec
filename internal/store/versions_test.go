package store

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	domainerrors "github.com/promptkeepapp/promptkeep-server/internal/errors"
)

func TestSaveVersionFlow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	prompt, v1, err := s.CreatePrompt(ctx, "Greeting", "Hello", nil, "")
	if err != nil {
		t.Fatalf("CreatePrompt: %v", err)
	}
	if v1.Semver != "1.0.0" {
		t.Errorf("initial semver: got %q, want %q", v1.Semver, "1.0.0")
	}
	if v1.ParentUUID != nil {
		t.Errorf("initial parent: got %v, want nil", *v1.ParentUUID)
	}

	// Second save bumps the patch and chains to the first version.
	v2, err := s.SaveVersion(ctx, prompt.UUID, "Hello world", nil)
	if err != nil {
		t.Fatalf("SaveVersion: %v", err)
	}
	if v2.Semver != "1.0.1" {
		t.Errorf("second semver: got %q, want %q", v2.Semver, "1.0.1")
	}
	if v2.ParentUUID == nil || *v2.ParentUUID != v1.UUID {
		t.Errorf("second parent: got %v, want %q", v2.ParentUUID, v1.UUID)
	}

	// Saving the same body again is a conflict naming the holder.
	_, err = s.SaveVersion(ctx, prompt.UUID, "Hello world", nil)
	if err == nil {
		t.Fatal("expected duplicate content error, got nil")
	}
	if !errors.Is(err, domainerrors.ErrDuplicateContent) {
		t.Errorf("expected ErrDuplicateContent, got %v", err)
	}
	var domainErr *domainerrors.Error
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected *errors.Error, got %T", err)
	}
	if want := "1.0.1"; !strings.Contains(domainErr.Message, want) {
		t.Errorf("conflict message %q should name version %s", domainErr.Message, want)
	}

	// Rollback restores the old body as a fresh version on top of
	// history; the parent is the latest version, not the target.
	v3, err := s.RollbackTo(ctx, v1.UUID)
	if err != nil {
		t.Fatalf("RollbackTo: %v", err)
	}
	if v3.Semver != "1.0.2" {
		t.Errorf("rollback semver: got %q, want %q", v3.Semver, "1.0.2")
	}
	if v3.Body != "Hello" {
		t.Errorf("rollback body: got %q, want %q", v3.Body, "Hello")
	}
	if v3.ParentUUID == nil || *v3.ParentUUID != v2.UUID {
		t.Errorf("rollback parent: got %v, want %q", v3.ParentUUID, v2.UUID)
	}
}

func TestSaveVersion_PromptNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.SaveVersion(ctx, "00000000-0000-7000-8000-000000000000", "body", nil)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, domainerrors.ErrPromptNotFound) {
		t.Errorf("expected ErrPromptNotFound, got %v", err)
	}
}

func TestRollbackTo_VersionNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.RollbackTo(ctx, "00000000-0000-7000-8000-000000000000")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !errors.Is(err, domainerrors.ErrVersionNotFound) {
		t.Errorf("expected ErrVersionNotFound, got %v", err)
	}
}

func TestSaveVersion_RecomputesWhenBumpTaken(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	prompt, v1, err := s.CreatePrompt(ctx, "Branching", "Hello", nil, "")
	if err != nil {
		t.Fatalf("CreatePrompt: %v", err)
	}
	if _, err := s.SaveVersion(ctx, prompt.UUID, "Hello again", nil); err != nil {
		t.Fatalf("SaveVersion 1.0.1: %v", err)
	}

	// Push 1.0.0 to the front of the recency order. Its patch bump
	// (1.0.1) is taken, so the allocator must fall back to the
	// numeric maximum.
	future := formatTime(time.Now().Add(time.Hour))
	if _, err := s.db.Exec(`UPDATE versions SET created_at = ? WHERE uuid = ?`, future, v1.UUID); err != nil {
		t.Fatalf("reorder versions: %v", err)
	}

	v3, err := s.SaveVersion(ctx, prompt.UUID, "Hello a third time", nil)
	if err != nil {
		t.Fatalf("SaveVersion after reorder: %v", err)
	}
	if v3.Semver != "1.0.2" {
		t.Errorf("recomputed semver: got %q, want %q", v3.Semver, "1.0.2")
	}
	if v3.ParentUUID == nil || *v3.ParentUUID != v1.UUID {
		t.Errorf("parent should be the most recent version %q, got %v", v1.UUID, v3.ParentUUID)
	}
}

func TestListRecentVersions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	prompt, _, err := s.CreatePrompt(ctx, "History", "v0", nil, "")
	if err != nil {
		t.Fatalf("CreatePrompt: %v", err)
	}
	for i := 0; i < 6; i++ {
		if _, err := s.SaveVersion(ctx, prompt.UUID, "body "+string(rune('a'+i)), nil); err != nil {
			t.Fatalf("SaveVersion %d: %v", i, err)
		}
	}

	// Default limit is 5, newest first.
	got, err := s.ListRecentVersions(ctx, prompt.UUID, 0)
	if err != nil {
		t.Fatalf("ListRecentVersions: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("expected 5 versions, got %d", len(got))
	}
	if got[0].Semver != "1.0.6" {
		t.Errorf("newest semver: got %q, want %q", got[0].Semver, "1.0.6")
	}
	if got[4].Semver != "1.0.2" {
		t.Errorf("oldest returned semver: got %q, want %q", got[4].Semver, "1.0.2")
	}

	// Explicit limit below the default.
	got, err = s.ListRecentVersions(ctx, prompt.UUID, 2)
	if err != nil {
		t.Fatalf("ListRecentVersions(2): %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 versions, got %d", len(got))
	}

	// Oversized limits are clamped, which here returns everything.
	got, err = s.ListRecentVersions(ctx, prompt.UUID, 1000)
	if err != nil {
		t.Fatalf("ListRecentVersions(1000): %v", err)
	}
	if len(got) != 7 {
		t.Fatalf("expected all 7 versions, got %d", len(got))
	}
}

func TestGetVersionAndLatest(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	prompt, v1, err := s.CreatePrompt(ctx, "Lookup", "first", nil, "")
	if err != nil {
		t.Fatalf("CreatePrompt: %v", err)
	}
	v2, err := s.SaveVersion(ctx, prompt.UUID, "second", nil)
	if err != nil {
		t.Fatalf("SaveVersion: %v", err)
	}

	got, err := s.GetVersion(ctx, v1.UUID)
	if err != nil {
		t.Fatalf("GetVersion: %v", err)
	}
	if got.Body != "first" {
		t.Errorf("Body: got %q, want %q", got.Body, "first")
	}
	if got.CreatedAt.Unix() != v1.CreatedAt.Unix() {
		t.Errorf("CreatedAt: got %v, want %v", got.CreatedAt, v1.CreatedAt)
	}

	latest, err := s.GetLatestVersion(ctx, prompt.UUID)
	if err != nil {
		t.Fatalf("GetLatestVersion: %v", err)
	}
	if latest.UUID != v2.UUID {
		t.Errorf("latest: got %q, want %q", latest.UUID, v2.UUID)
	}

	_, err = s.GetVersion(ctx, "00000000-0000-7000-8000-000000000000")
	if !errors.Is(err, domainerrors.ErrVersionNotFound) {
		t.Errorf("expected ErrVersionNotFound, got %v", err)
	}
}

func TestListVersionsBySemver(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p1, _, err := s.CreatePrompt(ctx, "First", "alpha", nil, "")
	if err != nil {
		t.Fatalf("CreatePrompt p1: %v", err)
	}
	p2, _, err := s.CreatePrompt(ctx, "Second", "beta", nil, "")
	if err != nil {
		t.Fatalf("CreatePrompt p2: %v", err)
	}

	got, err := s.ListVersionsBySemver(ctx, "1.0.0")
	if err != nil {
		t.Fatalf("ListVersionsBySemver: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 versions at 1.0.0, got %d", len(got))
	}

	// Newest first, each joined to its prompt.
	if got[0].Prompt.UUID != p2.UUID {
		t.Errorf("first result prompt: got %q, want %q", got[0].Prompt.UUID, p2.UUID)
	}
	if got[1].Prompt.UUID != p1.UUID {
		t.Errorf("second result prompt: got %q, want %q", got[1].Prompt.UUID, p1.UUID)
	}
	if got[0].Prompt.Title != "Second" {
		t.Errorf("joined title: got %q, want %q", got[0].Prompt.Title, "Second")
	}
}

func TestListRecentVersionsAcrossPrompts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p1, _, err := s.CreatePrompt(ctx, "One", "alpha", nil, "")
	if err != nil {
		t.Fatalf("CreatePrompt: %v", err)
	}
	if _, _, err := s.CreatePrompt(ctx, "Two", "beta", nil, ""); err != nil {
		t.Fatalf("CreatePrompt: %v", err)
	}
	v3, err := s.SaveVersion(ctx, p1.UUID, "alpha two", nil)
	if err != nil {
		t.Fatalf("SaveVersion: %v", err)
	}

	got, err := s.ListRecentVersionsAcrossPrompts(ctx, 2)
	if err != nil {
		t.Fatalf("ListRecentVersionsAcrossPrompts: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if got[0].Version.UUID != v3.UUID {
		t.Errorf("newest version: got %q, want %q", got[0].Version.UUID, v3.UUID)
	}
	if got[0].Prompt.Title != "One" {
		t.Errorf("newest prompt title: got %q, want %q", got[0].Prompt.Title, "One")
	}
}
