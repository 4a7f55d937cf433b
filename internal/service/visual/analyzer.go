// Package visual runs cache-aware visual analysis: frame sampling via
// ffmpeg, batched vision engine calls, persistence of per-frame
// descriptions, and status tracking across the run.
package visual

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/clipseek/clipseek/internal/errors"
	"github.com/clipseek/clipseek/internal/model"
	"github.com/clipseek/clipseek/internal/service/media"
	"github.com/google/uuid"
)

const (
	// MaxFrames bounds one analysis run; longer spans are truncated with a
	// warning rather than rejected.
	MaxFrames = 500

	defaultBatchSize = 5
	defaultFPS       = 1.0

	// Courtesy pause between batches so the vision endpoint is not hammered
	interBatchDelay = 500 * time.Millisecond
)

// Store is the slice of the analysis record store the analyzer needs
type Store interface {
	GetVisualAnalysis(ctx context.Context, videoPath string) (*model.VisualAnalysisResult, error)
	SaveVisualAnalysis(ctx context.Context, result *model.VisualAnalysisResult) error
	UpdateAnalysisStatus(ctx context.Context, status *model.AnalysisStatus) error
}

// AnalyzeOptions configures one visual analysis run. Zero FPS and BatchSize
// fall back to defaults; zero EndTime means the full video duration.
type AnalyzeOptions struct {
	FPS            float64
	StartTime      float64
	EndTime        float64
	Prompt         string
	BatchSize      int
	ForceReanalyze bool
}

// Analyzer defines the visual analysis orchestration
type Analyzer interface {
	// Analyze returns the cached frame descriptions for the video, or
	// samples frames and runs the vision engine to produce fresh ones
	Analyze(ctx context.Context, videoPath string, opts AnalyzeOptions) (*model.VisualAnalysisResult, error)
}

// analyzer implements Analyzer
type analyzer struct {
	store     Store
	engine    Engine
	extractor media.Extractor
	logger    *slog.Logger
}

// NewAnalyzer creates a visual Analyzer
func NewAnalyzer(store Store, engine Engine, extractor media.Extractor) Analyzer {
	return &analyzer{
		store:     store,
		engine:    engine,
		extractor: extractor,
		logger:    slog.Default(),
	}
}

// Analyze is cache-first, but a cache hit additionally requires the stored
// sampling rate to match the requested one exactly: a record sampled at a
// different fps is a miss.
func (a *analyzer) Analyze(ctx context.Context, videoPath string, opts AnalyzeOptions) (*model.VisualAnalysisResult, error) {
	if videoPath == "" {
		return nil, errors.New(errors.CodeInvalidArg, "video path is required")
	}
	if opts.FPS <= 0 {
		opts.FPS = defaultFPS
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}

	if !opts.ForceReanalyze {
		cached, err := a.store.GetVisualAnalysis(ctx, videoPath)
		if err != nil {
			return nil, err
		}
		if cached != nil && cached.FPS == opts.FPS {
			return cached, nil
		}
	}

	status := &model.AnalysisStatus{
		AnalysisID: uuid.NewString(),
		VideoPath:  videoPath,
		Type:       model.AnalysisTypeVisual,
		Status:     model.StatusProcessing,
		Progress:   0,
		StartedAt:  model.NowMillis(),
	}
	if err := a.store.UpdateAnalysisStatus(ctx, status); err != nil {
		return nil, err
	}

	result, err := a.run(ctx, videoPath, opts, status)
	if err != nil {
		a.fail(ctx, status, err)
		return nil, err
	}
	return result, nil
}

func (a *analyzer) run(ctx context.Context, videoPath string, opts AnalyzeOptions, status *model.AnalysisStatus) (*model.VisualAnalysisResult, error) {
	duration, err := a.extractor.ProbeDuration(ctx, videoPath)
	if err != nil {
		return nil, err
	}

	startTime := opts.StartTime
	endTime := opts.EndTime
	if endTime <= 0 || endTime > duration {
		endTime = duration
	}

	frameDir, err := os.MkdirTemp("", "clipseek-frames-*")
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to create frame directory")
	}
	defer os.RemoveAll(frameDir)

	framePaths, err := a.extractor.ExtractFrames(ctx, videoPath, frameDir, opts.FPS, startTime, endTime)
	if err != nil {
		return nil, err
	}
	if len(framePaths) > MaxFrames {
		a.logger.Warn("frame extraction truncated",
			"video", videoPath,
			"extracted", len(framePaths),
			"cap", MaxFrames)
		framePaths = framePaths[:MaxFrames]
	}
	a.progress(ctx, status, 10)

	frames, err := a.describeFrames(ctx, framePaths, startTime, opts, status)
	if err != nil {
		return nil, err
	}

	result := &model.VisualAnalysisResult{
		AnalysisID:     status.AnalysisID,
		VideoPath:      videoPath,
		Duration:       duration,
		FPS:            opts.FPS,
		FramesAnalyzed: len(frames),
		Frames:         frames,
		CreatedAt:      model.NowMillis(),
	}
	if err := a.store.SaveVisualAnalysis(ctx, result); err != nil {
		return nil, err
	}

	now := model.NowMillis()
	status.Status = model.StatusCompleted
	status.Progress = 100
	status.CompletedAt = &now
	if err := a.store.UpdateAnalysisStatus(ctx, status); err != nil {
		return nil, err
	}

	return result, nil
}

// describeFrames processes frames in fixed-size batches. Engine calls fan
// out concurrently within one batch and join before the next starts, so the
// batch size bounds peak concurrent requests to the vision endpoint.
func (a *analyzer) describeFrames(ctx context.Context, framePaths []string, startTime float64, opts AnalyzeOptions, status *model.AnalysisStatus) ([]model.FrameAnalysis, error) {
	total := len(framePaths)
	frames := make([]model.FrameAnalysis, total)
	frameErrs := make([]error, total)

	for batchStart := 0; batchStart < total; batchStart += opts.BatchSize {
		batchEnd := batchStart + opts.BatchSize
		if batchEnd > total {
			batchEnd = total
		}

		var wg sync.WaitGroup
		for i := batchStart; i < batchEnd; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				frames[i], frameErrs[i] = a.describeFrame(ctx, framePaths[i], frameTimestamp(startTime, i, opts.FPS), opts.Prompt)
			}(i)
		}
		wg.Wait()

		for i := batchStart; i < batchEnd; i++ {
			if frameErrs[i] != nil {
				return nil, frameErrs[i]
			}
		}

		a.progress(ctx, status, 10+90*float64(batchEnd)/float64(total))

		if batchEnd < total {
			select {
			case <-time.After(interBatchDelay):
			case <-ctx.Done():
				return nil, errors.Wrap(ctx.Err(), errors.CodeExternal, "visual analysis canceled")
			}
		}
	}

	return frames, nil
}

// describeFrame calls the engine for one frame. Replies that fail to parse
// as the structured shape degrade gracefully: the raw text becomes the
// description and the batch continues.
func (a *analyzer) describeFrame(ctx context.Context, framePath string, timestamp float64, prompt string) (model.FrameAnalysis, error) {
	imageData, err := os.ReadFile(framePath)
	if err != nil {
		return model.FrameAnalysis{}, errors.Wrap(err, errors.CodeInternal, fmt.Sprintf("failed to read frame %s", framePath))
	}

	raw, err := a.engine.DescribeFrame(ctx, imageData, prompt)
	if err != nil {
		return model.FrameAnalysis{}, err
	}

	decoded := DecodeFrameDescription(raw)
	if !decoded.Parsed {
		a.logger.Warn("unstructured vision reply, keeping raw text", "frame", framePath)
	}

	return model.FrameAnalysis{
		Timestamp:   timestamp,
		FramePath:   framePath,
		Description: decoded.Description,
		Objects:     decoded.Objects,
		Scene:       decoded.Scene,
	}, nil
}

func (a *analyzer) progress(ctx context.Context, status *model.AnalysisStatus, progress float64) {
	status.Progress = progress
	_ = a.store.UpdateAnalysisStatus(ctx, status)
}

func (a *analyzer) fail(ctx context.Context, status *model.AnalysisStatus, cause error) {
	now := model.NowMillis()
	msg := cause.Error()
	status.Status = model.StatusFailed
	status.Error = &msg
	status.CompletedAt = &now
	_ = a.store.UpdateAnalysisStatus(ctx, status)
}

// frameTimestamp maps the i-th sampled frame back to source time
func frameTimestamp(startTime float64, i int, fps float64) float64 {
	return startTime + float64(i)/fps
}
