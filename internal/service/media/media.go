// Package media wraps the ffmpeg/ffprobe CLIs for audio extraction, frame
// sampling, and duration probing.
package media

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	apperrors "github.com/clipseek/clipseek/internal/errors"
	"github.com/clipseek/clipseek/internal/service/common"
)

// Extractor defines media extraction operations backed by ffmpeg/ffprobe
type Extractor interface {
	// ProbeDuration returns the container duration in seconds
	ProbeDuration(ctx context.Context, videoPath string) (float64, error)

	// ExtractAudio writes mono 16kHz WAV audio into outputDir and returns
	// the audio file path
	ExtractAudio(ctx context.Context, videoPath string, outputDir string) (string, error)

	// ExtractFrames samples frames at fps over [startTime, endTime] into
	// outputDir and returns the frame paths in timestamp order
	ExtractFrames(ctx context.Context, videoPath string, outputDir string, fps, startTime, endTime float64) ([]string, error)
}

// extractor implements Extractor via CmdRunner
type extractor struct {
	cmdRunner common.CmdRunner
}

// NewExtractor creates an Extractor using the real CmdRunner
func NewExtractor() Extractor {
	return &extractor{cmdRunner: common.NewCmdRunner()}
}

// NewExtractorWithCmdRunner creates an Extractor with a custom CmdRunner (for testing)
func NewExtractorWithCmdRunner(cmdRunner common.CmdRunner) Extractor {
	return &extractor{cmdRunner: cmdRunner}
}

// ProbeDuration returns the container duration in seconds
func (e *extractor) ProbeDuration(ctx context.Context, videoPath string) (float64, error) {
	out, err := e.cmdRunner.Run(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		videoPath,
	)
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.CodeExternal, fmt.Sprintf("ffprobe failed: %s", strings.TrimSpace(string(out))))
	}

	s := strings.TrimSpace(string(out))
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, apperrors.Wrap(err, apperrors.CodeExternal, fmt.Sprintf("failed to parse ffprobe duration %q", s))
	}
	return sec, nil
}

// ExtractAudio writes mono 16kHz WAV audio suitable for Whisper
func (e *extractor) ExtractAudio(ctx context.Context, videoPath string, outputDir string) (string, error) {
	if videoPath == "" {
		return "", apperrors.New(apperrors.CodeInvalidArg, "video path is required")
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeInternal, "failed to create output directory")
	}

	audioPath := filepath.Join(outputDir, "audio.wav")
	out, err := e.cmdRunner.Run(ctx, "ffmpeg",
		"-y",
		"-i", videoPath,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-f", "wav",
		audioPath,
	)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeExternal, fmt.Sprintf("ffmpeg audio extraction failed: %s", strings.TrimSpace(string(out))))
	}
	return audioPath, nil
}

// ExtractFrames samples still frames at the given rate. Frame files are
// named frame_%05d.jpg so lexical order equals timestamp order.
func (e *extractor) ExtractFrames(ctx context.Context, videoPath string, outputDir string, fps, startTime, endTime float64) ([]string, error) {
	if videoPath == "" {
		return nil, apperrors.New(apperrors.CodeInvalidArg, "video path is required")
	}
	if fps <= 0 {
		return nil, apperrors.New(apperrors.CodeInvalidArg, "fps must be positive")
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to create output directory")
	}

	args := []string{"-y", "-ss", formatSeconds(startTime)}
	if endTime > startTime {
		args = append(args, "-to", formatSeconds(endTime))
	}
	args = append(args,
		"-i", videoPath,
		"-vf", fmt.Sprintf("fps=%g", fps),
		"-q:v", "2",
		filepath.Join(outputDir, "frame_%05d.jpg"),
	)

	out, err := e.cmdRunner.Run(ctx, "ffmpeg", args...)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeExternal, fmt.Sprintf("ffmpeg frame extraction failed: %s", strings.TrimSpace(string(out))))
	}

	matches, err := filepath.Glob(filepath.Join(outputDir, "frame_*.jpg"))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to list extracted frames")
	}
	sort.Strings(matches)
	return matches, nil
}

func formatSeconds(sec float64) string {
	return strconv.FormatFloat(sec, 'f', 3, 64)
}
