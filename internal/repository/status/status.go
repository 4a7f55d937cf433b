package status

import (
	"context"

	"github.com/clipseek/clipseek/internal/model"
)

// Repository defines persistence operations for AnalysisStatus records.
// Status rows are mutable: the same analysis id is upserted repeatedly as
// progress advances.
type Repository interface {
	// Upsert writes the full status row keyed by analysis id
	Upsert(ctx context.Context, status *model.AnalysisStatus) error

	// GetByID returns the status for an analysis id, or nil when absent
	GetByID(ctx context.Context, analysisID string) (*model.AnalysisStatus, error)

	// ListByVideoPath returns all statuses for a video, most recently started first
	ListByVideoPath(ctx context.Context, videoPath string) ([]*model.AnalysisStatus, error)
}
