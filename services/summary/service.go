package summary

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"tubebrief/artifacts"
	"tubebrief/errors"
	"tubebrief/models"
	"tubebrief/summarizer"
	"tubebrief/validation"
	"tubebrief/youtube"
)

// terminalSaveTimeout bounds the record write for a finished job.
const terminalSaveTimeout = 10 * time.Second

type service struct {
	repo       Repository
	fetcher    TranscriptFetcher
	summarizer summarizer.Service
	narrator   Narrator
	pdf        DocumentExporter
	docx       DocumentExporter
	store      *artifacts.Store
	validator  *validation.Validator
	config     Config
	logger     zerolog.Logger
}

func NewService(
	repo Repository,
	fetcher TranscriptFetcher,
	summarizerService summarizer.Service,
	narrator Narrator,
	pdfExporter DocumentExporter,
	docxExporter DocumentExporter,
	store *artifacts.Store,
	validator *validation.Validator,
	config Config,
	log zerolog.Logger,
) Service {
	if config.SoftWordLimit <= 0 {
		config.SoftWordLimit = 10000
	}
	if config.ProcessTimeout <= 0 {
		config.ProcessTimeout = 5 * time.Minute
	}
	return &service{
		repo:       repo,
		fetcher:    fetcher,
		summarizer: summarizerService,
		narrator:   narrator,
		pdf:        pdfExporter,
		docx:       docxExporter,
		store:      store,
		validator:  validator,
		config:     config,
		logger:     log.With().Str("component", "summary_service").Logger(),
	}
}

// Create validates the request, derives the video identifier, and starts
// background processing. A URL that already has a completed job with the
// same word budget is answered from the record; a job stuck in processing
// past the timeout is re-run.
func (s *service) Create(ctx context.Context, req models.SummaryRequest) (*models.Summary, error) {
	const op = "SummaryService.Create"
	logger := s.logger.With().Str("url", req.URL).Logger()

	if err := s.validator.ValidateURL(req.URL); err != nil {
		logger.Info().Err(err).Msg("URL validation failed")
		return nil, err
	}
	if err := s.validator.ValidateWordBudget(req.WordBudget); err != nil {
		return nil, err
	}

	videoID, ok := youtube.ExtractVideoID(req.URL)
	if !ok {
		// Expected outcome for unrecognized URL shapes, reported inline.
		return nil, errors.InvalidInput(op, nil,
			"Could not extract a video ID from the URL")
	}

	budget := req.WordBudget
	if budget == 0 {
		budget = validation.DefaultWordBudget
	}

	if existing, err := s.repo.FindByURL(ctx, req.URL); err == nil {
		if existing.IsCompleted() && existing.WordBudget == budget {
			logger.Debug().Str("job_id", existing.ID).Msg("Serving completed job from record")
			return existing, nil
		}
		if existing.IsProcessing() && !existing.IsStale(s.config.ProcessTimeout) {
			return existing, nil
		}
		// Failed, stale, or different budget: fall through and reprocess.
		s.store.Remove(existing.ID)
	}

	now := time.Now()
	job := &models.Summary{
		ID:         uuid.New().String(),
		URL:        req.URL,
		VideoID:    videoID,
		Status:     models.StatusPending,
		WordBudget: budget,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Save(ctx, job); err != nil {
		return nil, err
	}

	logger.Info().Str("job_id", job.ID).Str("video_id", videoID).Msg("Starting summarization job")

	// The pipeline goroutine owns the job record from here; the caller gets
	// a snapshot of the initial state.
	snapshot := *job
	go s.process(job, req.GenerateAudio, req.GenerateDocuments)

	return &snapshot, nil
}

func (s *service) Get(ctx context.Context, id string) (*models.Summary, error) {
	const op = "SummaryService.Get"

	if id == "" {
		return nil, errors.InvalidInput(op, nil, "ID is required")
	}
	return s.repo.Find(ctx, id)
}

// ArtifactPath resolves a derived file for download. Artifacts only exist
// for completed jobs and only until cleanup removes them.
func (s *service) ArtifactPath(ctx context.Context, id string, kind ArtifactKind) (string, error) {
	const op = "SummaryService.ArtifactPath"

	job, err := s.repo.Find(ctx, id)
	if err != nil {
		return "", err
	}
	if !job.IsCompleted() {
		return "", errors.InvalidInput(op, nil, "Summary is not ready yet")
	}

	var name string
	switch kind {
	case ArtifactAudio:
		name = job.AudioFile
	case ArtifactPDF:
		name = job.PDFFile
	case ArtifactDocx:
		name = job.DocxFile
	default:
		return "", errors.InvalidInput(op, nil, "Unknown artifact kind")
	}

	if name == "" {
		return "", errors.NotFound(op, nil, "This artifact was not generated")
	}
	if !s.store.Exists(job.ID, name) {
		return "", errors.NotFound(op, nil, "Artifact has expired")
	}

	return s.store.Path(job.ID, name), nil
}

// process runs the pipeline stages strictly in order. A stage runs only if
// the previous one produced a result; on absence the job moves to
// failed(stage) and stops. No stage mutates shared state, so there is
// nothing to roll back.
func (s *service) process(job *models.Summary, wantAudio, wantDocuments bool) {
	logger := s.logger.With().Str("job_id", job.ID).Str("video_id", job.VideoID).Logger()

	ctx, cancel := context.WithTimeout(context.Background(), s.config.ProcessTimeout)
	defer cancel()

	fail := func(stage models.Stage, err error) {
		message := err.Error()
		if appErr, ok := errors.As(err); ok {
			message = appErr.Message
		}
		logger.Error().Err(err).Str("stage", string(stage)).Msg("Pipeline stage failed")

		job.Status = models.StatusFailed
		job.FailedStage = stage
		job.Error = message
		s.saveTerminal(job, logger)
		s.store.Remove(job.ID)
	}

	// Fetch
	job.Status = models.StatusFetching
	s.saveJob(ctx, job, logger)

	tr, err := s.fetcher.Fetch(ctx, job.VideoID)
	if err != nil {
		fail(models.StageFetch, err)
		return
	}

	job.Transcript = tr.Text()
	job.Language = tr.Language
	if words := tr.WordCount(); words > s.config.SoftWordLimit {
		job.Warning = fmt.Sprintf(
			"The transcript is very long (%d words); summarization may be less effective.", words)
	}

	// Summarize
	job.Status = models.StatusSummarizing
	s.saveJob(ctx, job, logger)

	result, err := s.summarizer.Summarize(ctx, job.Transcript, job.WordBudget)
	if err != nil {
		fail(models.StageSummarize, err)
		return
	}
	job.SummaryText = result.Text

	// Artifacts: independent branches, both gated on the summary. A failed
	// artifact is reported and absent; the summary itself still completes.
	if wantAudio || wantDocuments {
		job.Status = models.StatusGenerating
		s.saveJob(ctx, job, logger)
		s.generateArtifacts(ctx, job, wantAudio, wantDocuments, logger)
	}

	job.Status = models.StatusCompleted
	s.saveTerminal(job, logger)

	logger.Info().
		Int("transcript_chars", len(job.Transcript)).
		Int("summary_chars", len(job.SummaryText)).
		Msg("Summarization job completed")
}

// generateArtifacts runs the audio and document branches concurrently; they
// share no state and have no ordering dependency on each other.
func (s *service) generateArtifacts(
	ctx context.Context,
	job *models.Summary,
	wantAudio, wantDocuments bool,
	logger zerolog.Logger,
) {
	dir, err := s.store.Dir(job.ID)
	if err != nil {
		logger.Warn().Err(err).Msg("Skipping artifacts: no job directory")
		return
	}

	title := "Video Summary: " + job.VideoID

	var wg sync.WaitGroup

	if wantAudio {
		wg.Add(1)
		go func() {
			defer wg.Done()
			lang := job.Language
			if lang == "" {
				lang = "en"
			}
			name, err := s.narrator.Narrate(ctx, job.SummaryText, lang, dir)
			if err != nil {
				logger.Warn().Err(err).Msg("Audio narration failed; continuing without it")
				return
			}
			job.AudioFile = name
		}()
	}

	if wantDocuments {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if name, err := s.pdf.Export(title, job.SummaryText, dir); err != nil {
				logger.Warn().Err(err).Msg("PDF export failed; continuing without it")
			} else {
				job.PDFFile = name
			}

			if name, err := s.docx.Export(title, job.SummaryText, dir); err != nil {
				logger.Warn().Err(err).Msg("DOCX export failed; continuing without it")
			} else {
				job.DocxFile = name
			}
		}()
	}

	wg.Wait()
}

func (s *service) saveJob(ctx context.Context, job *models.Summary, logger zerolog.Logger) {
	job.UpdatedAt = time.Now()
	if err := s.repo.Save(ctx, job); err != nil {
		logger.Error().Err(err).Msg("Failed to save job record")
	}
}

// saveTerminal persists completed and failed states on a fresh context. The
// pipeline context may already be expired when a job reaches its terminal
// state; saving with it would lose the final status.
func (s *service) saveTerminal(job *models.Summary, logger zerolog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), terminalSaveTimeout)
	defer cancel()
	s.saveJob(ctx, job, logger)
}
