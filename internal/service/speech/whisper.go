package speech

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/clipseek/clipseek/internal/errors"
	"github.com/clipseek/clipseek/internal/model"
	"github.com/clipseek/clipseek/internal/service/common"
)

// Engine defines operations for Whisper transcription
type Engine interface {
	// Transcribe transcribes an audio file using the Whisper CLI
	Transcribe(ctx context.Context, audioPath string, modelSize string, language string) (*model.WhisperResult, error)
}

// whisperEngine implements Engine using the Whisper CLI
type whisperEngine struct {
	cmdRunner common.CmdRunner
}

// NewWhisperEngine creates a new Engine with the default CmdRunner
func NewWhisperEngine() Engine {
	return &whisperEngine{cmdRunner: common.NewCmdRunner()}
}

// NewWhisperEngineWithCmdRunner creates a new Engine with a custom CmdRunner (for testing)
func NewWhisperEngineWithCmdRunner(cmdRunner common.CmdRunner) Engine {
	return &whisperEngine{cmdRunner: cmdRunner}
}

// Transcribe runs the Whisper CLI with word timestamps enabled and parses
// the JSON document it writes. An unparsable document is a hard failure.
func (e *whisperEngine) Transcribe(ctx context.Context, audioPath string, modelSize string, language string) (*model.WhisperResult, error) {
	if audioPath == "" {
		return nil, errors.New(errors.CodeInvalidArg, "audio path is required")
	}
	if modelSize == "" {
		modelSize = "base"
	}

	tempDir, err := os.MkdirTemp("", "clipseek-whisper-*")
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "failed to create temp directory")
	}
	defer os.RemoveAll(tempDir)

	args := []string{
		audioPath,
		"--model", modelSize,
		"--output_format", "json",
		"--output_dir", tempDir,
		"--word_timestamps", "True",
		"--temperature", "0",
	}

	// Language parameter only when not auto-detecting
	if language != "" && language != "auto" {
		args = append(args, "--language", language)
	}

	if out, err := e.cmdRunner.Run(ctx, "whisper", args...); err != nil {
		// The hint mapping needs whisper's own output; the exec error alone
		// is just "exit status 1"
		detail := strings.TrimSpace(string(out))
		if detail == "" {
			detail = err.Error()
		}
		return nil, errors.Wrap(err, errors.CodeExternal, formatWhisperError(detail, modelSize, language))
	}

	baseName := filepath.Base(audioPath)
	baseName = strings.TrimSuffix(baseName, filepath.Ext(baseName))
	jsonPath := filepath.Join(tempDir, baseName+".json")

	jsonData, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeExternal, "failed to read whisper output")
	}

	var result model.WhisperResult
	if err := json.Unmarshal(jsonData, &result); err != nil {
		return nil, errors.Wrap(err, errors.CodeMalformed, "failed to parse whisper output")
	}

	return &result, nil
}

// formatWhisperError provides user-friendly error messages for Whisper
// failures. The engine output is kept verbatim after the hint so the real
// cause is never lost.
func formatWhisperError(output string, modelSize, language string) string {
	var hint string

	switch {
	case strings.Contains(output, "executable file not found"),
		strings.Contains(output, "No such file or directory") && strings.Contains(output, "whisper"):
		hint = "Whisper is not installed. Please install OpenAI Whisper: pip install openai-whisper"
	case strings.Contains(output, "No module named"):
		hint = "Whisper dependencies missing. Please reinstall: pip install --upgrade openai-whisper"
	case strings.Contains(output, "not enough memory"), strings.Contains(output, "OutOfMemoryError"):
		hint = fmt.Sprintf("insufficient memory for model '%s'. Try a smaller model (tiny, base, small)", modelSize)
	case strings.Contains(output, "Invalid language"):
		hint = fmt.Sprintf("unsupported language '%s'. Use language codes like 'en', 'ja', 'es' or 'auto'", language)
	case strings.Contains(output, "Invalid model"):
		hint = fmt.Sprintf("unsupported model '%s'. Available models: tiny, base, small, medium, large", modelSize)
	default:
		return "whisper execution failed: " + output
	}

	return hint + ": " + output
}
