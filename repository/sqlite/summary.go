package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"

	"tubebrief/errors"
	"tubebrief/models"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) (*Repository, error) {
	return &Repository{db: db}, nil
}

const upsertQuery = `
INSERT INTO summaries (
    id, url, video_id, status, failed_stage, error, warning,
    word_budget, language, transcript, summary,
    audio_file, pdf_file, docx_file, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(url) DO UPDATE SET
    id = excluded.id,
    video_id = excluded.video_id,
    status = excluded.status,
    failed_stage = excluded.failed_stage,
    error = excluded.error,
    warning = excluded.warning,
    word_budget = excluded.word_budget,
    language = excluded.language,
    transcript = excluded.transcript,
    summary = excluded.summary,
    audio_file = excluded.audio_file,
    pdf_file = excluded.pdf_file,
    docx_file = excluded.docx_file,
    updated_at = excluded.updated_at
`

const selectColumns = `
SELECT id, url, video_id, status, failed_stage, error, warning,
       word_budget, language, transcript, summary,
       audio_file, pdf_file, docx_file, created_at, updated_at
FROM summaries
`

func (r *Repository) Save(ctx context.Context, summary *models.Summary) error {
	const op = "SQLiteRepository.Save"

	for i := 0; i < 3; i++ {
		err := r.save(ctx, summary)
		if err == nil {
			return nil
		}
		if !isLockError(err) {
			return errors.Internal(op, err, "Failed to save summary")
		}
		time.Sleep(time.Duration(i+1) * 100 * time.Millisecond)
	}
	return errors.Internal(op, nil, "Failed to save summary after retries")
}

func (r *Repository) save(ctx context.Context, summary *models.Summary) error {
	_, err := r.db.ExecContext(ctx, upsertQuery,
		summary.ID,
		summary.URL,
		summary.VideoID,
		string(summary.Status),
		string(summary.FailedStage),
		summary.Error,
		summary.Warning,
		summary.WordBudget,
		summary.Language,
		summary.Transcript,
		summary.SummaryText,
		summary.AudioFile,
		summary.PDFFile,
		summary.DocxFile,
		summary.CreatedAt,
		summary.UpdatedAt,
	)
	return pkgerrors.Wrap(err, "upsert summary")
}

func (r *Repository) Find(ctx context.Context, id string) (*models.Summary, error) {
	const op = "SQLiteRepository.Find"

	row := r.db.QueryRowContext(ctx, selectColumns+"WHERE id = ?", id)
	summary, err := scanSummary(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound(op, err, "Summary not found")
	}
	if err != nil {
		return nil, errors.Internal(op, err, "Failed to find summary")
	}
	return summary, nil
}

func (r *Repository) FindByURL(ctx context.Context, url string) (*models.Summary, error) {
	const op = "SQLiteRepository.FindByURL"

	row := r.db.QueryRowContext(ctx, selectColumns+"WHERE url = ?", url)
	summary, err := scanSummary(row)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound(op, err, "Summary not found")
	}
	if err != nil {
		return nil, errors.Internal(op, err, "Failed to find summary")
	}
	return summary, nil
}

func scanSummary(row *sql.Row) (*models.Summary, error) {
	var s models.Summary
	var status, failedStage string

	err := row.Scan(
		&s.ID,
		&s.URL,
		&s.VideoID,
		&status,
		&failedStage,
		&s.Error,
		&s.Warning,
		&s.WordBudget,
		&s.Language,
		&s.Transcript,
		&s.SummaryText,
		&s.AudioFile,
		&s.PDFFile,
		&s.DocxFile,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.Status = models.Status(status)
	s.FailedStage = models.Stage(failedStage)
	return &s, nil
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "database table is locked")
}
