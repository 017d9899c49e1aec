package domain

import "time"

// Run records one evaluation of a prompt version against a model.
// The GUI produces these; the server only stores them and never calls
// a model itself.
type Run struct {
	UUID        string `json:"uuid"`
	VersionUUID string `json:"version_uuid"`
	Model       string `json:"model"`
	Input       string `json:"input,omitempty"`
	Output      string `json:"output,omitempty"`
	// Quality metrics, all optional: whichever the evaluation produced.
	Bleu             *float64  `json:"bleu,omitempty"`
	Rouge            *float64  `json:"rouge,omitempty"`
	JudgeScore       *float64  `json:"judge_score,omitempty"`
	PromptTokens     *int64    `json:"prompt_tokens,omitempty"`
	CompletionTokens *int64    `json:"completion_tokens,omitempty"`
	CostUSD          *float64  `json:"cost_usd,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// NewRun creates a run record with a fresh timestamp.
func NewRun(uuid, versionUUID, model string) *Run {
	return &Run{
		UUID:        uuid,
		VersionUUID: versionUUID,
		Model:       model,
		CreatedAt:   time.Now().UTC(),
	}
}

// TotalTokens returns prompt + completion tokens, or nil when neither
// side was recorded.
func (r *Run) TotalTokens() *int64 {
	if r.PromptTokens == nil && r.CompletionTokens == nil {
		return nil
	}
	var total int64
	if r.PromptTokens != nil {
		total += *r.PromptTokens
	}
	if r.CompletionTokens != nil {
		total += *r.CompletionTokens
	}
	return &total
}
