package domain

// ModelProvider is a bookkeeping entry for the GUI's model picker.
// model_id is the stable key (e.g. "gpt-4o", "claude-sonnet"); the
// server never talks to the provider.
type ModelProvider struct {
	ID       int64  `json:"id"`
	ModelID  string `json:"model_id"`
	Name     string `json:"name"`
	Provider string `json:"provider"`
	Active   bool   `json:"active"`
}
