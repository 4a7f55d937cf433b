package speech

import (
	"context"

	"github.com/clipseek/clipseek/internal/model"
)

// Repository defines persistence operations for SpeechAnalysisResult records
type Repository interface {
	// Save upserts a record keyed by analysis id. Older records for the same
	// video path are kept; lookups by path return the newest.
	Save(ctx context.Context, result *model.SpeechAnalysisResult) error

	// GetLatestByVideoPath returns the most recently created record for the
	// path, or nil (with nil error) when none exists.
	GetLatestByVideoPath(ctx context.Context, videoPath string) (*model.SpeechAnalysisResult, error)

	// GetByID returns the record with the given analysis id, or nil when absent.
	GetByID(ctx context.Context, analysisID string) (*model.SpeechAnalysisResult, error)
}
