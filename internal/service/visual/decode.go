package visual

import (
	"encoding/json"
	"strings"
)

// UnknownScene is the sentinel scene for replies that could not be parsed
// as the structured shape.
const UnknownScene = "unknown"

// FrameDescription is the tolerant-decode result for one engine reply.
// Parsed reports whether the structured shape was recovered; when false,
// Description holds the raw reply, Objects is empty, and Scene is the
// "unknown" sentinel.
type FrameDescription struct {
	Description string
	Objects     []string
	Scene       string
	Parsed      bool
}

type framePayload struct {
	Description string   `json:"description"`
	Objects     []string `json:"objects"`
	Scene       string   `json:"scene"`
}

// DecodeFrameDescription interprets a vision engine reply. Models often fence
// JSON in markdown code blocks; fences are stripped before decoding. This
// never fails: an unparsable reply degrades to the raw text.
func DecodeFrameDescription(raw string) FrameDescription {
	text := stripCodeFence(strings.TrimSpace(raw))

	var payload framePayload
	if err := json.Unmarshal([]byte(text), &payload); err == nil && payload.Description != "" {
		if payload.Objects == nil {
			payload.Objects = []string{}
		}
		if payload.Scene == "" {
			payload.Scene = UnknownScene
		}
		return FrameDescription{
			Description: payload.Description,
			Objects:     payload.Objects,
			Scene:       payload.Scene,
			Parsed:      true,
		}
	}

	return FrameDescription{
		Description: strings.TrimSpace(raw),
		Objects:     []string{},
		Scene:       UnknownScene,
	}
}

// stripCodeFence removes a surrounding ```...``` block, with or without a
// language tag.
func stripCodeFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}

	trimmed := strings.TrimPrefix(text, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		// Drop the opening fence line ("```json" etc.)
		trimmed = trimmed[idx+1:]
	}
	if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
		trimmed = trimmed[:idx]
	}
	return strings.TrimSpace(trimmed)
}
