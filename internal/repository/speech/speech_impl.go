package speech

import (
	"context"
	"encoding/json"
	"errors"

	apperrors "github.com/clipseek/clipseek/internal/errors"
	"github.com/clipseek/clipseek/internal/model"
	"github.com/clipseek/clipseek/internal/repository/common"
	"github.com/jackc/pgx/v5"
)

// speechRepository implements Repository using PostgreSQL
type speechRepository struct {
	pool common.Pool
}

// NewRepository creates a new instance of Repository
func NewRepository(pool common.Pool) Repository {
	return &speechRepository{
		pool: pool,
	}
}

// Save upserts a speech analysis record keyed by analysis_id. Segments and
// words are stored as JSONB blobs so nested sequences round-trip exactly.
func (r *speechRepository) Save(ctx context.Context, result *model.SpeechAnalysisResult) error {
	segments, err := json.Marshal(result.Segments)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to encode transcript segments")
	}
	words, err := json.Marshal(result.Words)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeInternal, "failed to encode word timestamps")
	}

	return common.Upsert(ctx, r.pool, "speech_analyses", "analysis_id",
		[]string{"analysis_id", "video_path", "duration", "language", "segments", "words", "created_at"},
		[]any{result.AnalysisID, result.VideoPath, result.Duration, result.Language, segments, words, result.CreatedAt},
	)
}

// GetLatestByVideoPath returns the most recently created record for a video path
func (r *speechRepository) GetLatestByVideoPath(ctx context.Context, videoPath string) (*model.SpeechAnalysisResult, error) {
	sql := `SELECT analysis_id, video_path, duration, language, segments, words, created_at
		FROM speech_analyses WHERE video_path = $1
		ORDER BY created_at DESC LIMIT 1`
	return r.scanOne(r.pool.QueryRow(ctx, sql, videoPath))
}

// GetByID returns a record by analysis id
func (r *speechRepository) GetByID(ctx context.Context, analysisID string) (*model.SpeechAnalysisResult, error) {
	sql := `SELECT analysis_id, video_path, duration, language, segments, words, created_at
		FROM speech_analyses WHERE analysis_id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, sql, analysisID))
}

func (r *speechRepository) scanOne(row pgx.Row) (*model.SpeechAnalysisResult, error) {
	var result model.SpeechAnalysisResult
	var segments, words []byte

	err := row.Scan(
		&result.AnalysisID,
		&result.VideoPath,
		&result.Duration,
		&result.Language,
		&segments,
		&words,
		&result.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Absence is not an error: callers decide whether to trigger analysis
			return nil, nil
		}
		return nil, common.HandlePostgreSQLError(err, "failed to get speech analysis")
	}

	if err := json.Unmarshal(segments, &result.Segments); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to decode transcript segments")
	}
	if err := json.Unmarshal(words, &result.Words); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to decode word timestamps")
	}

	return &result, nil
}
