//go:build integration

package speech

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/clipseek/clipseek/internal/model"
	"github.com/clipseek/clipseek/internal/repository"
	repocommon "github.com/clipseek/clipseek/internal/repository/common"
)

// stubEngineIntegration returns a canned transcript
type stubEngineIntegration struct {
	result *model.WhisperResult
}

func (s *stubEngineIntegration) Transcribe(ctx context.Context, audioPath string, modelSize string, language string) (*model.WhisperResult, error) {
	return s.result, nil
}

// stubExtractorIntegration stands in for ffmpeg/ffprobe
type stubExtractorIntegration struct{}

func (s *stubExtractorIntegration) ProbeDuration(ctx context.Context, videoPath string) (float64, error) {
	return 42.5, nil
}

func (s *stubExtractorIntegration) ExtractAudio(ctx context.Context, videoPath string, outputDir string) (string, error) {
	return outputDir + "/audio.wav", nil
}

func (s *stubExtractorIntegration) ExtractFrames(ctx context.Context, videoPath string, outputDir string, fps, startTime, endTime float64) ([]string, error) {
	return nil, nil
}

func TestSpeechAnalyzer_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	pgContainer, err := postgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		postgres.WithDatabase("clipseek_test"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	defer func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Fatalf("Failed to terminate container: %v", err)
		}
	}()

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	dbPool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)
	defer dbPool.Close()

	require.NoError(t, repocommon.RunMigrations(connStr))

	store := repository.NewStore()
	require.NoError(t, store.Open(dbPool))
	defer store.Close()

	engine := &stubEngineIntegration{result: &model.WhisperResult{
		Language: "en",
		Segments: []model.WhisperSegment{
			{ID: 0, Start: 0, End: 5, Text: "we launched the product today",
				Words: []model.WhisperWord{{Word: "product", Start: 2.1, End: 2.6, Probability: 0.98}}},
		},
	}}

	analyzer := NewAnalyzer(store, engine, &stubExtractorIntegration{})

	// First run persists a fresh record
	result, err := analyzer.Analyze(ctx, "/videos/integration.mp4", AnalyzeOptions{})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "en", result.Language)
	assert.Equal(t, 42.5, result.Duration)

	// The status row for the run ends completed at 100
	status, err := store.GetAnalysisStatus(ctx, result.AnalysisID)
	require.NoError(t, err)
	require.NotNil(t, status)
	assert.Equal(t, model.StatusCompleted, status.Status)
	assert.Equal(t, 100.0, status.Progress)

	// Second run is served from the database, same analysis id
	again, err := analyzer.Analyze(ctx, "/videos/integration.mp4", AnalyzeOptions{})
	require.NoError(t, err)
	assert.Equal(t, result.AnalysisID, again.AnalysisID)
	assert.Equal(t, result.Segments, again.Segments)
	assert.Equal(t, result.Words, again.Words)
}
