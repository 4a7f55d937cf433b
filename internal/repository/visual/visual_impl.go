package visual

import (
	"context"
	"encoding/json"
	"errors"

	apperrors "github.com/clipseek/clipseek/internal/errors"
	"github.com/clipseek/clipseek/internal/model"
	"github.com/clipseek/clipseek/internal/repository/common"
	"github.com/jackc/pgx/v5"
)

// visualRepository implements Repository using PostgreSQL
type visualRepository struct {
	pool common.Pool
}

// NewRepository creates a new instance of Repository
func NewRepository(pool common.Pool) Repository {
	return &visualRepository{
		pool: pool,
	}
}

// Save upserts a visual analysis record keyed by analysis_id. The frame
// sequence is stored as one JSONB blob.
func (r *visualRepository) Save(ctx context.Context, result *model.VisualAnalysisResult) error {
	frames, err := json.Marshal(result.Frames)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to encode frame analyses")
	}

	return common.Upsert(ctx, r.pool, "visual_analyses", "analysis_id",
		[]string{"analysis_id", "video_path", "duration", "fps", "frames_analyzed", "frames", "created_at"},
		[]any{result.AnalysisID, result.VideoPath, result.Duration, result.FPS, result.FramesAnalyzed, frames, result.CreatedAt},
	)
}

// GetLatestByVideoPath returns the most recently created record for a video path
func (r *visualRepository) GetLatestByVideoPath(ctx context.Context, videoPath string) (*model.VisualAnalysisResult, error) {
	sql := `SELECT analysis_id, video_path, duration, fps, frames_analyzed, frames, created_at
		FROM visual_analyses WHERE video_path = $1
		ORDER BY created_at DESC LIMIT 1`
	return r.scanOne(r.pool.QueryRow(ctx, sql, videoPath))
}

// GetByID returns a record by analysis id
func (r *visualRepository) GetByID(ctx context.Context, analysisID string) (*model.VisualAnalysisResult, error) {
	sql := `SELECT analysis_id, video_path, duration, fps, frames_analyzed, frames, created_at
		FROM visual_analyses WHERE analysis_id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, sql, analysisID))
}

func (r *visualRepository) scanOne(row pgx.Row) (*model.VisualAnalysisResult, error) {
	var result model.VisualAnalysisResult
	var frames []byte

	err := row.Scan(
		&result.AnalysisID,
		&result.VideoPath,
		&result.Duration,
		&result.FPS,
		&result.FramesAnalyzed,
		&frames,
		&result.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, common.HandlePostgreSQLError(err, "failed to get visual analysis")
	}

	if err := json.Unmarshal(frames, &result.Frames); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to decode frame analyses")
	}

	return &result, nil
}
