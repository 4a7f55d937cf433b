package status

import (
	"context"
	"errors"

	"github.com/clipseek/clipseek/internal/model"
	"github.com/clipseek/clipseek/internal/repository/common"
	"github.com/jackc/pgx/v5"
)

// statusRepository implements Repository using PostgreSQL
type statusRepository struct {
	pool common.Pool
}

// NewRepository creates a new instance of Repository
func NewRepository(pool common.Pool) Repository {
	return &statusRepository{
		pool: pool,
	}
}

// Upsert writes the full status row keyed by analysis_id
func (r *statusRepository) Upsert(ctx context.Context, status *model.AnalysisStatus) error {
	return common.Upsert(ctx, r.pool, "analysis_status", "analysis_id",
		[]string{"analysis_id", "video_path", "type", "status", "progress", "error", "started_at", "completed_at"},
		[]any{status.AnalysisID, status.VideoPath, status.Type, status.Status, status.Progress, status.Error, status.StartedAt, status.CompletedAt},
	)
}

// GetByID returns the status for an analysis id
func (r *statusRepository) GetByID(ctx context.Context, analysisID string) (*model.AnalysisStatus, error) {
	sql := `SELECT analysis_id, video_path, type, status, progress, error, started_at, completed_at
		FROM analysis_status WHERE analysis_id = $1`
	row := r.pool.QueryRow(ctx, sql, analysisID)

	var status model.AnalysisStatus
	err := row.Scan(
		&status.AnalysisID,
		&status.VideoPath,
		&status.Type,
		&status.Status,
		&status.Progress,
		&status.Error,
		&status.StartedAt,
		&status.CompletedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, common.HandlePostgreSQLError(err, "failed to get analysis status")
	}

	return &status, nil
}

// ListByVideoPath returns all statuses for a video, most recently started first
func (r *statusRepository) ListByVideoPath(ctx context.Context, videoPath string) ([]*model.AnalysisStatus, error) {
	sql := `SELECT analysis_id, video_path, type, status, progress, error, started_at, completed_at
		FROM analysis_status WHERE video_path = $1
		ORDER BY started_at DESC`
	rows, err := r.pool.Query(ctx, sql, videoPath)
	if err != nil {
		return nil, common.HandlePostgreSQLError(err, "failed to list analysis statuses")
	}
	defer rows.Close()

	var statuses []*model.AnalysisStatus
	for rows.Next() {
		var status model.AnalysisStatus
		err := rows.Scan(
			&status.AnalysisID,
			&status.VideoPath,
			&status.Type,
			&status.Status,
			&status.Progress,
			&status.Error,
			&status.StartedAt,
			&status.CompletedAt,
		)
		if err != nil {
			return nil, common.HandlePostgreSQLError(err, "failed to scan analysis status")
		}
		statuses = append(statuses, &status)
	}

	return statuses, nil
}
