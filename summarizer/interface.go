package summarizer

import (
	"context"
	"time"
)

// Service condenses transcript text to a bullet-style summary near a target
// word budget. The budget is a prompt hint only; output is never truncated
// or verified against it.
type Service interface {
	Summarize(ctx context.Context, text string, targetWords int) (*Result, error)
}

// Result is the summary produced for one request. Immutable once returned.
type Result struct {
	Text         string `json:"text"`
	Model        string `json:"model"`
	FinishReason string `json:"finish_reason,omitempty"`
}

type Config struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}
