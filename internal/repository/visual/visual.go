package visual

import (
	"context"

	"github.com/clipseek/clipseek/internal/model"
)

// Repository defines persistence operations for VisualAnalysisResult records
type Repository interface {
	// Save upserts a record keyed by analysis id
	Save(ctx context.Context, result *model.VisualAnalysisResult) error

	// GetLatestByVideoPath returns the most recently created record for the
	// path, or nil (with nil error) when none exists. Callers checking the
	// cache must also compare the stored sampling fps against the requested
	// one; a record sampled at a different rate is a miss.
	GetLatestByVideoPath(ctx context.Context, videoPath string) (*model.VisualAnalysisResult, error)

	// GetByID returns the record with the given analysis id, or nil when absent.
	GetByID(ctx context.Context, analysisID string) (*model.VisualAnalysisResult, error)
}
