package summary

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"tubebrief/artifacts"
	"tubebrief/errors"
	"tubebrief/models"
	"tubebrief/summarizer"
	"tubebrief/transcript"
	"tubebrief/validation"
)

type fakeRepo struct {
	mu   sync.Mutex
	byID map[string]models.Summary
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: make(map[string]models.Summary)}
}

func (r *fakeRepo) Save(ctx context.Context, s *models.Summary) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[s.ID] = *s
	return nil
}

func (r *fakeRepo) Find(ctx context.Context, id string) (*models.Summary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return nil, errors.NotFound("fakeRepo.Find", nil, "Summary not found")
	}
	copied := s
	return &copied, nil
}

func (r *fakeRepo) FindByURL(ctx context.Context, url string) (*models.Summary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.byID {
		if s.URL == url {
			copied := s
			return &copied, nil
		}
	}
	return nil, errors.NotFound("fakeRepo.FindByURL", nil, "Summary not found")
}

type fakeFetcher struct {
	transcript *transcript.Transcript
	err        error
	calls      int
}

func (f *fakeFetcher) Fetch(ctx context.Context, videoID string) (*transcript.Transcript, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.transcript, nil
}

type fakeSummarizer struct {
	result *summarizer.Result
	err    error
	block  bool
	calls  int
}

func (f *fakeSummarizer) Summarize(ctx context.Context, text string, targetWords int) (*summarizer.Result, error) {
	f.calls++
	if f.block {
		<-ctx.Done()
		return nil, errors.TransportFailure("fakeSummarizer.Summarize", ctx.Err(), "Summarization timed out")
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeNarrator struct {
	err   error
	calls int
}

func (f *fakeNarrator) Narrate(ctx context.Context, text, languageTag, destDir string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	name := "summary.mp3"
	if err := os.WriteFile(filepath.Join(destDir, name), []byte("mp3"), 0644); err != nil {
		return "", err
	}
	return name, nil
}

type fakeExporter struct {
	name  string
	err   error
	calls int
}

func (f *fakeExporter) Export(title, text, destDir string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if err := os.WriteFile(filepath.Join(destDir, f.name), []byte(title), 0644); err != nil {
		return "", err
	}
	return f.name, nil
}

type testHarness struct {
	service    Service
	repo       *fakeRepo
	fetcher    *fakeFetcher
	summarizer *fakeSummarizer
	narrator   *fakeNarrator
	pdf        *fakeExporter
	docx       *fakeExporter
	store      *artifacts.Store
}

func newHarness(t *testing.T) *testHarness {
	t.Helper()

	store, err := artifacts.NewStore(t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	h := &testHarness{
		repo: newFakeRepo(),
		fetcher: &fakeFetcher{
			transcript: &transcript.Transcript{
				VideoID:  "dQw4w9WgXcQ",
				Language: "en",
				Entries: []transcript.Entry{
					{Text: "hello there", Start: 0, Duration: 1.5},
					{Text: "welcome to the video", Start: 1.5, Duration: 2},
				},
			},
		},
		summarizer: &fakeSummarizer{
			result: &summarizer.Result{Text: "- key point", Model: "test-model"},
		},
		narrator: &fakeNarrator{},
		pdf:      &fakeExporter{name: "summary.pdf"},
		docx:     &fakeExporter{name: "summary.docx"},
		store:    store,
	}

	h.service = NewService(
		h.repo, h.fetcher, h.summarizer, h.narrator, h.pdf, h.docx,
		store, validation.NewValidator(),
		Config{ProcessTimeout: 5 * time.Second, SoftWordLimit: 10},
		zerolog.Nop(),
	)
	return h
}

// waitForTerminal polls until the job reaches completed or failed.
func waitForTerminal(t *testing.T, repo *fakeRepo, id string) *models.Summary {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		job, err := repo.Find(context.Background(), id)
		if err == nil && (job.IsCompleted() || job.IsFailed()) {
			return job
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("job never reached a terminal status")
	return nil
}

func TestCreateRunsPipeline(t *testing.T) {
	h := newHarness(t)

	job, err := h.service.Create(context.Background(), models.SummaryRequest{
		URL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if job.VideoID != "dQw4w9WgXcQ" {
		t.Errorf("VideoID = %q, want dQw4w9WgXcQ", job.VideoID)
	}
	if job.WordBudget != validation.DefaultWordBudget {
		t.Errorf("WordBudget = %d, want default %d", job.WordBudget, validation.DefaultWordBudget)
	}

	done := waitForTerminal(t, h.repo, job.ID)
	if done.Status != models.StatusCompleted {
		t.Fatalf("Status = %q (error %q), want completed", done.Status, done.Error)
	}
	if done.Transcript != "hello there welcome to the video" {
		t.Errorf("Transcript = %q", done.Transcript)
	}
	if done.SummaryText != "- key point" {
		t.Errorf("SummaryText = %q", done.SummaryText)
	}
	if h.narrator.calls != 0 || h.pdf.calls != 0 {
		t.Error("artifacts were generated without being requested")
	}
}

func TestCreateRejectsBadInput(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  models.SummaryRequest
	}{
		{"empty URL", models.SummaryRequest{}},
		{"non-YouTube host", models.SummaryRequest{URL: "https://example.com/watch?v=abc"}},
		{"no extractable ID", models.SummaryRequest{URL: "https://www.youtube.com/feed/library"}},
		{"bad word count", models.SummaryRequest{URL: "https://youtu.be/dQw4w9WgXcQ", WordBudget: 123}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.service.Create(ctx, tt.req)
			if !errors.IsInvalidInput(err) {
				t.Errorf("Create() error = %v, want invalid input", err)
			}
		})
	}

	if h.fetcher.calls != 0 {
		t.Error("fetcher was invoked for rejected input")
	}
}

func TestFetchFailureStopsPipeline(t *testing.T) {
	h := newHarness(t)
	h.fetcher.err = errors.UpstreamUnavailable("test", transcript.ErrTranscriptsDisabled,
		"Transcripts are disabled for this video")

	job, err := h.service.Create(context.Background(), models.SummaryRequest{
		URL:           "https://youtu.be/dQw4w9WgXcQ",
		GenerateAudio: true,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	done := waitForTerminal(t, h.repo, job.ID)
	if done.Status != models.StatusFailed {
		t.Fatalf("Status = %q, want failed", done.Status)
	}
	if done.FailedStage != models.StageFetch {
		t.Errorf("FailedStage = %q, want fetch", done.FailedStage)
	}
	if done.Error != "Transcripts are disabled for this video" {
		t.Errorf("Error = %q", done.Error)
	}
	if h.summarizer.calls != 0 {
		t.Error("summarizer was invoked after fetch failed")
	}
	if h.narrator.calls != 0 {
		t.Error("narrator was invoked after fetch failed")
	}
}

func TestSummarizeFailureStopsPipeline(t *testing.T) {
	h := newHarness(t)
	h.summarizer.err = errors.UpstreamUnavailable("test", nil, "Generation returned no candidates")

	job, err := h.service.Create(context.Background(), models.SummaryRequest{
		URL:               "https://youtu.be/dQw4w9WgXcQ",
		GenerateDocuments: true,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	done := waitForTerminal(t, h.repo, job.ID)
	if done.FailedStage != models.StageSummarize {
		t.Errorf("FailedStage = %q, want summarize", done.FailedStage)
	}
	if h.pdf.calls != 0 || h.docx.calls != 0 {
		t.Error("exporters were invoked after summarization failed")
	}
}

func TestProcessTimeoutPersistsFailure(t *testing.T) {
	h := newHarness(t)
	h.summarizer.block = true

	svc := NewService(
		h.repo, h.fetcher, h.summarizer, h.narrator, h.pdf, h.docx,
		h.store, validation.NewValidator(),
		Config{ProcessTimeout: 30 * time.Millisecond, SoftWordLimit: 10},
		zerolog.Nop(),
	)

	job, err := svc.Create(context.Background(), models.SummaryRequest{
		URL: "https://youtu.be/dQw4w9WgXcQ",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	done := waitForTerminal(t, h.repo, job.ID)
	if done.Status != models.StatusFailed {
		t.Fatalf("Status = %q, want failed after process timeout", done.Status)
	}
	if done.FailedStage != models.StageSummarize {
		t.Errorf("FailedStage = %q, want summarize", done.FailedStage)
	}
	if done.Error == "" {
		t.Error("expected an error message on the timed-out job")
	}
}

func TestArtifactGeneration(t *testing.T) {
	h := newHarness(t)

	job, err := h.service.Create(context.Background(), models.SummaryRequest{
		URL:               "https://youtu.be/dQw4w9WgXcQ",
		GenerateAudio:     true,
		GenerateDocuments: true,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	done := waitForTerminal(t, h.repo, job.ID)
	if done.Status != models.StatusCompleted {
		t.Fatalf("Status = %q, want completed", done.Status)
	}
	if done.AudioFile != "summary.mp3" || done.PDFFile != "summary.pdf" || done.DocxFile != "summary.docx" {
		t.Errorf("artifact names = %q %q %q", done.AudioFile, done.PDFFile, done.DocxFile)
	}

	for _, kind := range []ArtifactKind{ArtifactAudio, ArtifactPDF, ArtifactDocx} {
		path, err := h.service.ArtifactPath(context.Background(), job.ID, kind)
		if err != nil {
			t.Errorf("ArtifactPath(%s) error = %v", kind, err)
			continue
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("ArtifactPath(%s) = %q, not on disk: %v", kind, path, err)
		}
	}
}

func TestArtifactFailureDoesNotFailJob(t *testing.T) {
	h := newHarness(t)
	h.narrator.err = stderrors.New("speech synthesis unreachable")

	job, err := h.service.Create(context.Background(), models.SummaryRequest{
		URL:               "https://youtu.be/dQw4w9WgXcQ",
		GenerateAudio:     true,
		GenerateDocuments: true,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	done := waitForTerminal(t, h.repo, job.ID)
	if done.Status != models.StatusCompleted {
		t.Fatalf("Status = %q, want completed despite audio failure", done.Status)
	}
	if done.AudioFile != "" {
		t.Errorf("AudioFile = %q, want empty after narration failure", done.AudioFile)
	}
	if done.PDFFile != "summary.pdf" {
		t.Errorf("PDFFile = %q, documents branch should be unaffected", done.PDFFile)
	}

	if _, err := h.service.ArtifactPath(context.Background(), job.ID, ArtifactAudio); !errors.IsNotFound(err) {
		t.Errorf("ArtifactPath(audio) error = %v, want not found", err)
	}
}

func TestCreateDeduplicatesByURL(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	url := "https://youtu.be/dQw4w9WgXcQ"

	first, err := h.service.Create(ctx, models.SummaryRequest{URL: url})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	waitForTerminal(t, h.repo, first.ID)

	second, err := h.service.Create(ctx, models.SummaryRequest{URL: url})
	if err != nil {
		t.Fatalf("second Create() error = %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("second Create() started a new job %q, want existing %q", second.ID, first.ID)
	}
	if h.fetcher.calls != 1 {
		t.Errorf("fetcher calls = %d, want 1", h.fetcher.calls)
	}
}

func TestLongTranscriptWarning(t *testing.T) {
	h := newHarness(t)

	var entries []transcript.Entry
	for i := 0; i < 10; i++ {
		entries = append(entries, transcript.Entry{Text: "one two three", Start: float64(i)})
	}
	h.fetcher.transcript = &transcript.Transcript{VideoID: "dQw4w9WgXcQ", Language: "en", Entries: entries}

	job, err := h.service.Create(context.Background(), models.SummaryRequest{
		URL: "https://youtu.be/dQw4w9WgXcQ",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	done := waitForTerminal(t, h.repo, job.ID)
	if done.Status != models.StatusCompleted {
		t.Fatalf("Status = %q, want completed", done.Status)
	}
	if done.Warning == "" {
		t.Error("expected a warning for a transcript over the soft limit")
	}
}

func TestArtifactPathForIncompleteJob(t *testing.T) {
	h := newHarness(t)

	job := &models.Summary{ID: "job-1", URL: "u", Status: models.StatusFetching, UpdatedAt: time.Now()}
	if err := h.repo.Save(context.Background(), job); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	_, err := h.service.ArtifactPath(context.Background(), "job-1", ArtifactPDF)
	if !errors.IsInvalidInput(err) {
		t.Errorf("ArtifactPath() error = %v, want invalid input", err)
	}
}

func TestGetMissingJob(t *testing.T) {
	h := newHarness(t)

	_, err := h.service.Get(context.Background(), "no-such-id")
	if !errors.IsNotFound(err) {
		t.Errorf("Get() error = %v, want not found", err)
	}
}
