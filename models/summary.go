package models

import (
	"time"
)

type Status string

const (
	StatusPending     Status = "pending"
	StatusFetching    Status = "fetching"
	StatusSummarizing Status = "summarizing"
	StatusGenerating  Status = "generating"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
)

// Stage names the pipeline step a failed job stopped at. Stages run strictly
// in order; a failure at one stage means later stages were never invoked.
type Stage string

const (
	StageFetch     Stage = "fetch"
	StageSummarize Stage = "summarize"
)

// Summary is one summarization job: the submitted URL, the derived video
// identifier, pipeline progress, and the results once present. Transcript
// and summary text are kept on the record so polling clients never trigger
// recomputation; artifact files live on disk, referenced by name.
type Summary struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	VideoID     string `json:"video_id"`
	Status      Status `json:"status"`
	FailedStage Stage  `json:"failed_stage,omitempty"`
	Error       string `json:"error,omitempty"`
	Warning     string `json:"warning,omitempty"`

	WordBudget  int    `json:"word_budget"`
	Language    string `json:"language,omitempty"`
	Transcript  string `json:"transcript,omitempty"`
	SummaryText string `json:"summary,omitempty"`

	AudioFile string `json:"-"`
	PDFFile   string `json:"-"`
	DocxFile  string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Summary) IsCompleted() bool { return s.Status == StatusCompleted }
func (s *Summary) IsFailed() bool    { return s.Status == StatusFailed }

func (s *Summary) IsProcessing() bool {
	switch s.Status {
	case StatusPending, StatusFetching, StatusSummarizing, StatusGenerating:
		return true
	}
	return false
}

// IsStale reports whether a job has been stuck mid-pipeline longer than
// timeout, which makes it eligible for reprocessing.
func (s *Summary) IsStale(timeout time.Duration) bool {
	if !s.IsProcessing() {
		return false
	}
	return time.Since(s.UpdatedAt) > timeout
}
