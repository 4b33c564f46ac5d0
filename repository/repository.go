package repository

import (
	"context"

	"tubebrief/models"
)

// SummaryRepository stores summarization job records so polling clients get
// results without re-running the pipeline.
type SummaryRepository interface {
	Save(ctx context.Context, summary *models.Summary) error
	Find(ctx context.Context, id string) (*models.Summary, error)
	FindByURL(ctx context.Context, url string) (*models.Summary, error)
}
