package summary

import (
	"context"
	"time"

	"tubebrief/models"
	"tubebrief/repository"
	"tubebrief/transcript"
)

// Service runs the summarization pipeline: one Create per user action, with
// results held on the job record so polling never recomputes.
type Service interface {
	// Create starts a new summarization job or returns the existing one for
	// the same URL.
	Create(ctx context.Context, req models.SummaryRequest) (*models.Summary, error)

	// Get retrieves a job by ID.
	Get(ctx context.Context, id string) (*models.Summary, error)

	// ArtifactPath resolves a generated artifact file for download.
	ArtifactPath(ctx context.Context, id string, kind ArtifactKind) (string, error)
}

type ArtifactKind string

const (
	ArtifactAudio ArtifactKind = "audio"
	ArtifactPDF   ArtifactKind = "pdf"
	ArtifactDocx  ArtifactKind = "docx"
)

type Repository = repository.SummaryRepository

// TranscriptFetcher is the captions collaborator.
type TranscriptFetcher interface {
	Fetch(ctx context.Context, videoID string) (*transcript.Transcript, error)
}

// Narrator synthesizes speech into a job directory.
type Narrator interface {
	Narrate(ctx context.Context, text, languageTag, destDir string) (string, error)
}

// DocumentExporter writes a paginated document into a job directory.
type DocumentExporter interface {
	Export(title, text, destDir string) (string, error)
}

type Config struct {
	// ProcessTimeout bounds one background pipeline run end to end.
	ProcessTimeout time.Duration

	// SoftWordLimit is the advisory transcript size above which the job
	// carries a warning. Summarization proceeds regardless.
	SoftWordLimit int
}
