package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/promptkeepapp/promptkeep-server/internal/domain"
	"github.com/promptkeepapp/promptkeep-server/internal/errors"
	"github.com/promptkeepapp/promptkeep-server/internal/store"
	"github.com/promptkeepapp/promptkeep-server/internal/validation"
)

// RunService records and lists model evaluations of prompt versions.
type RunService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewRunService creates a new run service.
func NewRunService(store *store.Store, logger *slog.Logger) *RunService {
	return &RunService{
		store:  store,
		logger: logger,
	}
}

// RecordRunRequest contains one evaluation result as reported by the
// GUI. Only the model is required; all metrics are optional.
type RecordRunRequest struct {
	Model            string   `json:"model"`
	Input            string   `json:"input"`
	Output           string   `json:"output"`
	Bleu             *float64 `json:"bleu"`
	Rouge            *float64 `json:"rouge"`
	JudgeScore       *float64 `json:"judge_score"`
	PromptTokens     *int64   `json:"prompt_tokens"`
	CompletionTokens *int64   `json:"completion_tokens"`
	CostUSD          *float64 `json:"cost_usd"`
}

// Record stores a run against a version.
func (s *RunService) Record(ctx context.Context, versionUUID string, req RecordRunRequest) (*domain.Run, error) {
	if err := validation.ValidateUUID(versionUUID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Model) == "" {
		return nil, errors.InvalidInput("model cannot be empty")
	}

	run, err := s.store.RecordRun(ctx, store.RecordRunParams{
		VersionUUID:      versionUUID,
		Model:            req.Model,
		Input:            req.Input,
		Output:           req.Output,
		Bleu:             req.Bleu,
		Rouge:            req.Rouge,
		JudgeScore:       req.JudgeScore,
		PromptTokens:     req.PromptTokens,
		CompletionTokens: req.CompletionTokens,
		CostUSD:          req.CostUSD,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("run recorded", "version", versionUUID, "model", req.Model, "run", run.UUID)
	return run, nil
}

// List returns a version's runs, newest first. The version is looked
// up first so an unknown UUID reads as not-found rather than an empty
// history.
func (s *RunService) List(ctx context.Context, versionUUID string, limit int) ([]*domain.Run, error) {
	if err := validation.ValidateUUID(versionUUID); err != nil {
		return nil, err
	}
	if _, err := s.store.GetVersion(ctx, versionUUID); err != nil {
		return nil, err
	}
	return s.store.ListRuns(ctx, versionUUID, limit)
}
