package model

import "time"

// Analysis status values. Same lifecycle for speech and visual analyses:
// pending -> processing -> completed | failed.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Analysis type values
const (
	AnalysisTypeSpeech = "speech"
	AnalysisTypeVisual = "visual"
)

// TranscriptSegment is one contiguous span of transcribed speech.
// Immutable once produced by the speech engine.
type TranscriptSegment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"` // seconds
	End   float64 `json:"end"`   // seconds, >= Start
	Text  string  `json:"text"`
}

// WordTimestamp is word-level timing from the speech engine. Optional:
// engines without word timing produce an empty slice.
type WordTimestamp struct {
	Word       string  `json:"word"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"` // [0,1]
}

// SpeechAnalysisResult is the full transcript record for one video.
// The store keeps every record but lookups by video path return the one
// with the greatest CreatedAt.
type SpeechAnalysisResult struct {
	AnalysisID string              `json:"analysis_id"`
	VideoPath  string              `json:"video_path"`
	Duration   float64             `json:"duration"`
	Language   string              `json:"language"`
	Segments   []TranscriptSegment `json:"segments"`
	Words      []WordTimestamp     `json:"words"`
	CreatedAt  int64               `json:"created_at"` // epoch millis
}

// FrameAnalysis describes one sampled video frame. FramePath points into a
// temporary extraction directory and is not guaranteed to survive cleanup.
type FrameAnalysis struct {
	Timestamp   float64  `json:"timestamp"`
	FramePath   string   `json:"frame_path"`
	Description string   `json:"description"`
	Objects     []string `json:"objects"`
	Scene       string   `json:"scene"`
}

// VisualAnalysisResult is the per-frame description record for one video,
// sampled at FPS frames per second. Same latest-wins lookup rule as speech.
type VisualAnalysisResult struct {
	AnalysisID     string          `json:"analysis_id"`
	VideoPath      string          `json:"video_path"`
	Duration       float64         `json:"duration"`
	FPS            float64         `json:"fps"`
	FramesAnalyzed int             `json:"frames_analyzed"`
	Frames         []FrameAnalysis `json:"frames"` // sorted by Timestamp
	CreatedAt      int64           `json:"created_at"`
}

// AnalysisStatus tracks progress of one analysis run. The same AnalysisID
// row is upserted as progress advances; completed and failed are terminal.
type AnalysisStatus struct {
	AnalysisID  string  `json:"analysis_id"`
	VideoPath   string  `json:"video_path"`
	Type        string  `json:"type"`   // speech | visual
	Status      string  `json:"status"` // pending | processing | completed | failed
	Progress    float64 `json:"progress"`
	Error       *string `json:"error,omitempty"`
	StartedAt   int64   `json:"started_at"`
	CompletedAt *int64  `json:"completed_at,omitempty"`
}

// FoundSegment is a matched time range ready for timeline insertion.
// Never persisted; computed fresh per query.
type FoundSegment struct {
	Start          float64 `json:"start"`
	End            float64 `json:"end"`
	Duration       float64 `json:"duration"` // always End - Start
	MatchType      string  `json:"match_type"`
	MatchedContent string  `json:"matched_content"`
	Confidence     float64 `json:"confidence"`
	Context        string  `json:"context"`
}

// NowMillis returns the current time as epoch milliseconds, the timestamp
// representation used across analysis records.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
