package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/promptkeepapp/promptkeep-server/internal/errors"
	"github.com/promptkeepapp/promptkeep-server/internal/store"
)

func newRunService(t *testing.T) (*RunService, *store.Store) {
	t.Helper()
	st := newTestStore(t)
	return NewRunService(st, testLogger()), st
}

func TestRunService_Record(t *testing.T) {
	svc, st := newRunService(t)
	ctx := context.Background()

	_, version := createTestPrompt(t, st, "Greeter", "Say hello.")

	bleu := 0.82
	tokens := int64(135)
	run, err := svc.Record(ctx, version.UUID, RecordRunRequest{
		Model:        "gpt-4o",
		Input:        "Say hello.",
		Output:       "Hello there!",
		Bleu:         &bleu,
		PromptTokens: &tokens,
	})
	require.NoError(t, err)
	assert.Equal(t, version.UUID, run.VersionUUID)
	assert.Equal(t, "gpt-4o", run.Model)
	require.NotNil(t, run.Bleu)
	assert.InDelta(t, 0.82, *run.Bleu, 1e-9)
	assert.Nil(t, run.Rouge)

	runs, err := svc.List(ctx, version.UUID, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "Hello there!", runs[0].Output)
}

func TestRunService_Record_RejectsInvalidInput(t *testing.T) {
	svc, st := newRunService(t)
	ctx := context.Background()

	_, version := createTestPrompt(t, st, "Greeter", "Say hello.")

	_, err := svc.Record(ctx, "bad-uuid", RecordRunRequest{Model: "gpt-4o"})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)

	_, err = svc.Record(ctx, version.UUID, RecordRunRequest{Model: "   "})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)

	_, err = svc.Record(ctx, unknownUUID, RecordRunRequest{Model: "gpt-4o"})
	assert.ErrorIs(t, err, domainerrors.ErrVersionNotFound)
}

func TestRunService_List_UnknownVersion(t *testing.T) {
	svc, _ := newRunService(t)

	_, err := svc.List(context.Background(), unknownUUID, 0)
	assert.ErrorIs(t, err, domainerrors.ErrVersionNotFound)
}
