// Package speech runs cache-aware speech analysis: it checks the analysis
// record store, invokes the Whisper engine on miss, persists the transcript,
// and tracks status transitions across the run.
package speech

import (
	"context"
	"os"

	"github.com/clipseek/clipseek/internal/errors"
	"github.com/clipseek/clipseek/internal/model"
	"github.com/clipseek/clipseek/internal/service/media"
	"github.com/google/uuid"
)

// Store is the slice of the analysis record store the analyzer needs
type Store interface {
	GetSpeechAnalysis(ctx context.Context, videoPath string) (*model.SpeechAnalysisResult, error)
	SaveSpeechAnalysis(ctx context.Context, result *model.SpeechAnalysisResult) error
	UpdateAnalysisStatus(ctx context.Context, status *model.AnalysisStatus) error
}

// AnalyzeOptions configures one speech analysis run
type AnalyzeOptions struct {
	ModelSize      string // tiny, base, small, medium, large
	Language       string // language code or "auto"
	ForceReanalyze bool
}

// Analyzer defines the speech analysis orchestration
type Analyzer interface {
	// Analyze returns the cached transcript for the video, or runs the
	// Whisper engine and persists a fresh one
	Analyze(ctx context.Context, videoPath string, opts AnalyzeOptions) (*model.SpeechAnalysisResult, error)
}

// analyzer implements Analyzer
type analyzer struct {
	store     Store
	engine    Engine
	extractor media.Extractor
}

// NewAnalyzer creates a speech Analyzer
func NewAnalyzer(store Store, engine Engine, extractor media.Extractor) Analyzer {
	return &analyzer{
		store:     store,
		engine:    engine,
		extractor: extractor,
	}
}

// Analyze is cache-first: with ForceReanalyze unset, an existing record for
// the video path is returned immediately without touching the engine or
// status records.
func (a *analyzer) Analyze(ctx context.Context, videoPath string, opts AnalyzeOptions) (*model.SpeechAnalysisResult, error) {
	if videoPath == "" {
		return nil, errors.New(errors.CodeInvalidArg, "video path is required")
	}

	if !opts.ForceReanalyze {
		cached, err := a.store.GetSpeechAnalysis(ctx, videoPath)
		if err != nil {
			return nil, err
		}
		if cached != nil {
			return cached, nil
		}
	}

	status := &model.AnalysisStatus{
		AnalysisID: uuid.NewString(),
		VideoPath:  videoPath,
		Type:       model.AnalysisTypeSpeech,
		Status:     model.StatusProcessing,
		Progress:   0,
		StartedAt:  model.NowMillis(),
	}
	if err := a.store.UpdateAnalysisStatus(ctx, status); err != nil {
		return nil, err
	}

	result, err := a.run(ctx, videoPath, opts, status)
	if err != nil {
		// Terminal status must land before the error propagates so status
		// queries stay accurate
		a.fail(ctx, status, err)
		return nil, err
	}
	return result, nil
}

func (a *analyzer) run(ctx context.Context, videoPath string, opts AnalyzeOptions, status *model.AnalysisStatus) (*model.SpeechAnalysisResult, error) {
	tempDir, err := os.MkdirTemp("", "clipseek-audio-*")
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to create temp directory")
	}
	defer os.RemoveAll(tempDir)

	audioPath, err := a.extractor.ExtractAudio(ctx, videoPath, tempDir)
	if err != nil {
		return nil, err
	}
	a.progress(ctx, status, 10)

	duration, err := a.extractor.ProbeDuration(ctx, videoPath)
	if err != nil {
		return nil, err
	}

	whisperResult, err := a.engine.Transcribe(ctx, audioPath, opts.ModelSize, opts.Language)
	if err != nil {
		return nil, err
	}
	a.progress(ctx, status, 90)

	result := &model.SpeechAnalysisResult{
		AnalysisID: status.AnalysisID,
		VideoPath:  videoPath,
		Duration:   duration,
		Language:   whisperResult.Language,
		Segments:   convertSegments(whisperResult.Segments),
		Words:      flattenWords(whisperResult.Segments),
		CreatedAt:  model.NowMillis(),
	}
	if err := a.store.SaveSpeechAnalysis(ctx, result); err != nil {
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

func (a *analyzer) progress(ctx context.Context, status *model.AnalysisStatus, progress float64) {
	status.Progress = progress
	// Progress writes are advisory; a failed upsert must not abort the run
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

// convertSegments renumbers engine segments sequentially; ids are stable
// within one analysis.
func convertSegments(segments []model.WhisperSegment) []model.TranscriptSegment {
	out := make([]model.TranscriptSegment, len(segments))
	for i, seg := range segments {
		out[i] = model.TranscriptSegment{
			ID:    i,
			Start: seg.Start,
			End:   seg.End,
			Text:  seg.Text,
		}
	}
	return out
}

// flattenWords collects word timings across all segments, in order. Engines
// without word timing yield an empty slice.
func flattenWords(segments []model.WhisperSegment) []model.WordTimestamp {
	var out []model.WordTimestamp
	for _, seg := range segments {
		for _, word := range seg.Words {
			out = append(out, model.WordTimestamp{
				Word:       word.Word,
				Start:      word.Start,
				End:        word.End,
				Confidence: word.Probability,
			})
		}
	}
	if out == nil {
		return []model.WordTimestamp{}
	}
	return out
}
