//go:build integration

package speech

import (
	"context"
	"testing"
	"time"

	"github.com/clipseek/clipseek/internal/model"
	"github.com/clipseek/clipseek/internal/repository/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSpeechRepository_Integration tests the speech repository with real PostgreSQL
func TestSpeechRepository_Integration(t *testing.T) {
	pool := common.SetupTestDB(t)
	repo := NewRepository(pool)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	result := &model.SpeechAnalysisResult{
		AnalysisID: "speech-int-1",
		VideoPath:  "/videos/integration.mp4",
		Duration:   42.5,
		Language:   "en",
		Segments: []model.TranscriptSegment{
			{ID: 0, Start: 0, End: 5, Text: "we launched the product today"},
		},
		Words: []model.WordTimestamp{
			{Word: "product", Start: 2.1, End: 2.6, Confidence: 0.98},
		},
		CreatedAt: model.NowMillis(),
	}

	t.Run("Save and GetByID", func(t *testing.T) {
		require.NoError(t, repo.Save(ctx, result))

		got, err := repo.GetByID(ctx, result.AnalysisID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, result, got)
	})

	t.Run("Save is idempotent per analysis id", func(t *testing.T) {
		updated := *result
		updated.Language = "ja"
		require.NoError(t, repo.Save(ctx, &updated))

		got, err := repo.GetByID(ctx, result.AnalysisID)
		require.NoError(t, err)
		assert.Equal(t, "ja", got.Language)
	})

	t.Run("GetLatestByVideoPath returns newest record", func(t *testing.T) {
		newer := &model.SpeechAnalysisResult{
			AnalysisID: "speech-int-2",
			VideoPath:  result.VideoPath,
			Duration:   42.5,
			Language:   "en",
			Segments:   []model.TranscriptSegment{},
			Words:      []model.WordTimestamp{},
			CreatedAt:  model.NowMillis() + 1000,
		}
		require.NoError(t, repo.Save(ctx, newer))

		got, err := repo.GetLatestByVideoPath(ctx, result.VideoPath)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, newer.AnalysisID, got.AnalysisID)
	})

	t.Run("absent video path yields nil without error", func(t *testing.T) {
		got, err := repo.GetLatestByVideoPath(ctx, "/videos/never-analyzed.mp4")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
