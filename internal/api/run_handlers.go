package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/promptkeepapp/promptkeep-server/internal/domain"
	"github.com/promptkeepapp/promptkeep-server/internal/service"
)

func (s *Server) registerRunRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "recordRun",
		Method:      http.MethodPost,
		Path:        "/api/v1/versions/{uuid}/runs",
		Summary:     "Record run",
		Description: "Stores an execution record with optional quality metrics against a version",
		Tags:        []string{"Runs"},
	}, s.handleRecordRun)

	huma.Register(s.api, huma.Operation{
		OperationID: "listRuns",
		Method:      http.MethodGet,
		Path:        "/api/v1/versions/{uuid}/runs",
		Summary:     "List runs",
		Description: "Returns a version's runs, newest first",
		Tags:        []string{"Runs"},
	}, s.handleListRuns)
}

// === DTOs ===

type RecordRunRequest struct {
	Model            string   `json:"model" maxLength:"100" doc:"Model the prompt was run against"`
	Input            string   `json:"input,omitempty" doc:"Input fed to the model"`
	Output           string   `json:"output,omitempty" doc:"Model output"`
	Bleu             *float64 `json:"bleu,omitempty" doc:"BLEU score"`
	Rouge            *float64 `json:"rouge,omitempty" doc:"ROUGE score"`
	JudgeScore       *float64 `json:"judge_score,omitempty" doc:"LLM-judge score"`
	PromptTokens     *int64   `json:"prompt_tokens,omitempty" doc:"Tokens in the prompt"`
	CompletionTokens *int64   `json:"completion_tokens,omitempty" doc:"Tokens in the completion"`
	CostUSD          *float64 `json:"cost_usd,omitempty" doc:"Cost of the run in USD"`
}

type RecordRunInput struct {
	UUID string `path:"uuid" doc:"Version UUID"`
	Body RecordRunRequest
}

type RunResponse struct {
	UUID             string    `json:"uuid" doc:"Run UUID"`
	VersionUUID      string    `json:"version_uuid" doc:"Version the run was recorded against"`
	Model            string    `json:"model" doc:"Model identifier"`
	Input            string    `json:"input,omitempty" doc:"Input fed to the model"`
	Output           string    `json:"output,omitempty" doc:"Model output"`
	Bleu             *float64  `json:"bleu,omitempty" doc:"BLEU score"`
	Rouge            *float64  `json:"rouge,omitempty" doc:"ROUGE score"`
	JudgeScore       *float64  `json:"judge_score,omitempty" doc:"LLM-judge score"`
	PromptTokens     *int64    `json:"prompt_tokens,omitempty" doc:"Tokens in the prompt"`
	CompletionTokens *int64    `json:"completion_tokens,omitempty" doc:"Tokens in the completion"`
	CostUSD          *float64  `json:"cost_usd,omitempty" doc:"Cost of the run in USD"`
	CreatedAt        time.Time `json:"created_at" doc:"When the run was recorded"`
}

type RunOutput struct {
	Body RunResponse
}

type ListRunsInput struct {
	UUID  string `path:"uuid" doc:"Version UUID"`
	Limit int    `query:"limit" minimum:"0" doc:"Max runs to return; defaults to 50"`
}

type ListRunsResponse struct {
	Runs []RunResponse `json:"runs" doc:"Runs, newest first"`
}

type ListRunsOutput struct {
	Body ListRunsResponse
}

// === Handlers ===

func (s *Server) handleRecordRun(ctx context.Context, input *RecordRunInput) (*RunOutput, error) {
	run, err := s.services.Run.Record(ctx, input.UUID, service.RecordRunRequest{
		Model:            input.Body.Model,
		Input:            input.Body.Input,
		Output:           input.Body.Output,
		Bleu:             input.Body.Bleu,
		Rouge:            input.Body.Rouge,
		JudgeScore:       input.Body.JudgeScore,
		PromptTokens:     input.Body.PromptTokens,
		CompletionTokens: input.Body.CompletionTokens,
		CostUSD:          input.Body.CostUSD,
	})
	if err != nil {
		return nil, err
	}

	return &RunOutput{Body: mapRunResponse(run)}, nil
}

func (s *Server) handleListRuns(ctx context.Context, input *ListRunsInput) (*ListRunsOutput, error) {
	runs, err := s.services.Run.List(ctx, input.UUID, input.Limit)
	if err != nil {
		return nil, err
	}

	resp := make([]RunResponse, len(runs))
	for i, r := range runs {
		resp[i] = mapRunResponse(r)
	}

	return &ListRunsOutput{Body: ListRunsResponse{Runs: resp}}, nil
}

// === Mappers ===

func mapRunResponse(r *domain.Run) RunResponse {
	return RunResponse{
		UUID:             r.UUID,
		VersionUUID:      r.VersionUUID,
		Model:            r.Model,
		Input:            r.Input,
		Output:           r.Output,
		Bleu:             r.Bleu,
		Rouge:            r.Rouge,
		JudgeScore:       r.JudgeScore,
		PromptTokens:     r.PromptTokens,
		CompletionTokens: r.CompletionTokens,
		CostUSD:          r.CostUSD,
		CreatedAt:        r.CreatedAt,
	}
}
