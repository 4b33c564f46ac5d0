package models

import (
	"strings"
	"testing"
	"time"
)

func TestIsStale(t *testing.T) {
	tests := []struct {
		name   string
		status Status
		age    time.Duration
		want   bool
	}{
		{"fresh processing", StatusFetching, time.Second, false},
		{"stuck processing", StatusSummarizing, time.Hour, true},
		{"old completed", StatusCompleted, time.Hour, false},
		{"old failed", StatusFailed, time.Hour, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Summary{Status: tt.status, UpdatedAt: time.Now().Add(-tt.age)}
			if got := s.IsStale(time.Minute); got != tt.want {
				t.Errorf("IsStale() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewSummaryResponse(t *testing.T) {
	s := &Summary{
		ID:          "job-1",
		URL:         "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		VideoID:     "dQw4w9WgXcQ",
		Status:      StatusCompleted,
		WordBudget:  400,
		SummaryText: "- point one",
		AudioFile:   "summary.mp3",
	}

	resp := NewSummaryResponse(s)

	if !strings.Contains(resp.ThumbnailURL, "dQw4w9WgXcQ") {
		t.Errorf("thumbnail not derived from video id: %q", resp.ThumbnailURL)
	}
	if resp.ShareLink == "" {
		t.Error("share link missing for completed summary")
	}
	if !resp.HasAudio || resp.HasPDF || resp.HasDocx {
		t.Errorf("artifact flags wrong: audio=%v pdf=%v docx=%v", resp.HasAudio, resp.HasPDF, resp.HasDocx)
	}
}

func TestNewSummaryResponsePending(t *testing.T) {
	s := &Summary{ID: "job-2", URL: "u", Status: StatusPending}
	resp := NewSummaryResponse(s)
	if resp.ThumbnailURL != "" || resp.ShareLink != "" {
		t.Error("derived fields must be absent before extraction/summarization")
	}
}
