package visual

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/clipseek/clipseek/internal/errors"
)

// DefaultPrompt is the instruction sent with every frame when the caller
// supplies none.
const DefaultPrompt = `Describe this video frame. Respond with JSON: {"description": "<one sentence>", "objects": ["<object>", ...], "scene": "<scene type>"}`

const requestTimeout = 90 * time.Second

// Engine defines the vision-description engine: one still image in, one
// free-text (ideally JSON) description out.
type Engine interface {
	DescribeFrame(ctx context.Context, imageData []byte, prompt string) (string, error)
}

// httpEngine implements Engine against an OpenAI-compatible chat completions
// endpoint (OpenRouter, LM Studio, etc.)
type httpEngine struct {
	baseURL string
	model   string
	apiKey  string
	client  *http.Client
}

// NewHTTPEngine creates a vision Engine for the given endpoint
func NewHTTPEngine(baseURL, model, apiKey string) Engine {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		baseURL = "https://openrouter.ai"
	}
	return &httpEngine{
		baseURL: baseURL,
		model:   model,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 5 * time.Minute},
	}
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// DescribeFrame sends the frame as a base64 data URL and returns the model's
// raw text reply. Interpreting that reply is the caller's concern (see
// DecodeFrameDescription).
func (e *httpEngine) DescribeFrame(ctx context.Context, imageData []byte, prompt string) (string, error) {
	if len(imageData) == 0 {
		return "", errors.New(errors.CodeInvalidArg, "image data is required")
	}
	if prompt == "" {
		prompt = DefaultPrompt
	}

	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(imageData)
	payload := map[string]any{
		"model":  e.model,
		"stream": false,
		"messages": []map[string]any{
			{
				"role": "user",
				"content": []map[string]any{
					{"type": "text", "text": prompt},
					{"type": "image_url", "image_url": map[string]any{"url": dataURL}},
				},
			},
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeInternal, "failed to marshal vision request")
	}

	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, e.baseURL+"/api/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, errors.CodeInternal, "failed to build vision request")
	}
	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, errors.CodeExternal, "vision engine request failed")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", errors.Wrap(err, errors.CodeExternal, "failed to read vision engine response")
	}
	if resp.StatusCode != http.StatusOK {
		return "", errors.New(errors.CodeExternal, fmt.Sprintf("vision engine returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody))))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", errors.Wrap(err, errors.CodeMalformed, "failed to parse vision engine response")
	}
	if parsed.Error != nil {
		return "", errors.New(errors.CodeExternal, "vision engine error: "+parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New(errors.CodeMalformed, "vision engine returned no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}
