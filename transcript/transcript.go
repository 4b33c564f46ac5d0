// Package transcript fetches the caption track for a video from the
// platform's captions service and exposes it as an ordered sequence of
// timed entries.
package transcript

import (
	"errors"
	"strings"
)

// Sentinel outcomes a caller must be able to tell apart. Both are terminal
// for the request; neither is retryable.
var (
	// ErrTranscriptsDisabled means the content owner turned captions off.
	ErrTranscriptsDisabled = errors.New("transcripts are disabled for this video")

	// ErrNoTranscriptFound means captions exist, but none in any requested
	// language. Distinct from ErrTranscriptsDisabled.
	ErrNoTranscriptFound = errors.New("no transcript found in the requested languages")
)

// Entry is a single caption line as returned by the service.
type Entry struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

// Transcript holds the caption entries for one video in service order.
// It is created once by the fetcher and never mutated.
type Transcript struct {
	VideoID  string  `json:"video_id"`
	Language string  `json:"language"`
	Entries  []Entry `json:"entries"`
}

// Text returns the entry texts joined with single spaces, preserving the
// order the service returned them in.
func (t *Transcript) Text() string {
	parts := make([]string, 0, len(t.Entries))
	for _, e := range t.Entries {
		if e.Text != "" {
			parts = append(parts, e.Text)
		}
	}
	return strings.Join(parts, " ")
}

// WordCount counts whitespace-separated words across all entries.
func (t *Transcript) WordCount() int {
	n := 0
	for _, e := range t.Entries {
		n += len(strings.Fields(e.Text))
	}
	return n
}
