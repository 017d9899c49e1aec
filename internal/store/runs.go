package store

import (
	"context"
	"database/sql"

	"github.com/promptkeepapp/promptkeep-server/internal/domain"
	"github.com/promptkeepapp/promptkeep-server/internal/errors"
	"github.com/promptkeepapp/promptkeep-server/internal/id"
)

const (
	// DefaultRunListLimit is used when a run listing request gives no
	// limit.
	DefaultRunListLimit = 50
	// MaxRunListLimit caps run listing requests.
	MaxRunListLimit = 50
)

const runColumns = `uuid, version_uuid, model, input, output, bleu, rouge, judge_score, prompt_tokens, completion_tokens, cost_usd, created_at`

func scanRun(scanner interface{ Scan(dest ...any) error }) (*domain.Run, error) {
	var r domain.Run

	var (
		input     sql.NullString
		output    sql.NullString
		bleu      sql.NullFloat64
		rouge     sql.NullFloat64
		judge     sql.NullFloat64
		promptTok sql.NullInt64
		complTok  sql.NullInt64
		costUSD   sql.NullFloat64
		createdAt string
	)

	err := scanner.Scan(&r.UUID, &r.VersionUUID, &r.Model, &input, &output,
		&bleu, &rouge, &judge, &promptTok, &complTok, &costUSD, &createdAt)
	if err != nil {
		return nil, err
	}

	r.Input = input.String
	r.Output = output.String
	if bleu.Valid {
		r.Bleu = &bleu.Float64
	}
	if rouge.Valid {
		r.Rouge = &rouge.Float64
	}
	if judge.Valid {
		r.JudgeScore = &judge.Float64
	}
	if promptTok.Valid {
		r.PromptTokens = &promptTok.Int64
	}
	if complTok.Valid {
		r.CompletionTokens = &complTok.Int64
	}
	if costUSD.Valid {
		r.CostUSD = &costUSD.Float64
	}

	r.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}

	return &r, nil
}

// RecordRunParams holds a run as reported by the GUI. Only the version
// and model are required.
type RecordRunParams struct {
	VersionUUID      string
	Model            string
	Input            string
	Output           string
	Bleu             *float64
	Rouge            *float64
	JudgeScore       *float64
	PromptTokens     *int64
	CompletionTokens *int64
	CostUSD          *float64
}

// RecordRun stores one evaluation of a version against a model.
func (s *Store) RecordRun(ctx context.Context, params RecordRunParams) (*domain.Run, error) {
	run := domain.NewRun(id.MustGenerateUUID(), params.VersionUUID, params.Model)
	run.Input = params.Input
	run.Output = params.Output
	run.Bleu = params.Bleu
	run.Rouge = params.Rouge
	run.JudgeScore = params.JudgeScore
	run.PromptTokens = params.PromptTokens
	run.CompletionTokens = params.CompletionTokens
	run.CostUSD = params.CostUSD

	err := s.withWrite(ctx, func(tx *sql.Tx) error {
		var count int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM versions WHERE uuid = ?`,
			params.VersionUUID).Scan(&count)
		if err != nil {
			return errors.Store(err)
		}
		if count == 0 {
			return errors.VersionNotFoundf("version %s not found", params.VersionUUID)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO runs (uuid, version_uuid, model, input, output,
				bleu, rouge, judge_score, prompt_tokens, completion_tokens, cost_usd, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.UUID, run.VersionUUID, run.Model, run.Input, run.Output,
			nullableFloat(run.Bleu), nullableFloat(run.Rouge), nullableFloat(run.JudgeScore),
			nullableInt(run.PromptTokens), nullableInt(run.CompletionTokens),
			nullableFloat(run.CostUSD), formatTime(run.CreatedAt))
		if err != nil {
			return errors.Store(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns a version's runs, newest first. A zero or negative
// limit uses the default; anything above the cap is clamped.
func (s *Store) ListRuns(ctx context.Context, versionUUID string, limit int) ([]*domain.Run, error) {
	if limit <= 0 {
		limit = DefaultRunListLimit
	}
	if limit > MaxRunListLimit {
		limit = MaxRunListLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+runColumns+` FROM runs
		WHERE version_uuid = ?
		ORDER BY created_at DESC
		LIMIT ?`, versionUUID, limit)
	if err != nil {
		return nil, errors.Store(err)
	}
	defer rows.Close()

	var runs []*domain.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, errors.Store(err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Store(err)
	}
	return runs, nil
}
