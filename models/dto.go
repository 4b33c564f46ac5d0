package models

import (
	"tubebrief/youtube"
)

// SummaryRequest is the incoming request to summarize a video.
type SummaryRequest struct {
	URL        string `json:"url"`
	WordBudget int    `json:"word_count"`

	// Optional derived artifacts. Both default to off; neither affects the
	// summary itself.
	GenerateAudio     bool `json:"audio"`
	GenerateDocuments bool `json:"documents"`
}

// SummaryResponse is the API view of a job, with the derived rendering
// fields (thumbnail, share link, artifact availability) attached.
type SummaryResponse struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	VideoID     string `json:"video_id,omitempty"`
	Status      Status `json:"status"`
	FailedStage Stage  `json:"failed_stage,omitempty"`
	Error       string `json:"error,omitempty"`
	Warning     string `json:"warning,omitempty"`

	WordBudget  int    `json:"word_count"`
	Language    string `json:"language,omitempty"`
	Transcript  string `json:"transcript,omitempty"`
	SummaryText string `json:"summary,omitempty"`

	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	ShareLink    string `json:"share_link,omitempty"`

	HasAudio bool `json:"has_audio"`
	HasPDF   bool `json:"has_pdf"`
	HasDocx  bool `json:"has_docx"`
}

// NewSummaryResponse creates a response from a job record.
func NewSummaryResponse(s *Summary) *SummaryResponse {
	resp := &SummaryResponse{
		ID:          s.ID,
		URL:         s.URL,
		VideoID:     s.VideoID,
		Status:      s.Status,
		FailedStage: s.FailedStage,
		Error:       s.Error,
		Warning:     s.Warning,
		WordBudget:  s.WordBudget,
		Language:    s.Language,
		Transcript:  s.Transcript,
		SummaryText: s.SummaryText,
		HasAudio:    s.AudioFile != "",
		HasPDF:      s.PDFFile != "",
		HasDocx:     s.DocxFile != "",
	}

	if s.VideoID != "" {
		resp.ThumbnailURL = youtube.ThumbnailURL(s.VideoID)
	}
	if s.SummaryText != "" {
		resp.ShareLink = youtube.ShareLink(s.SummaryText)
	}

	return resp
}
