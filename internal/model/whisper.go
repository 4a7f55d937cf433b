package model

// WhisperResult is the top-level JSON document written by the Whisper CLI.
type WhisperResult struct {
	Text     string           `json:"text"`
	Language string           `json:"language"`
	Segments []WhisperSegment `json:"segments"`
}

// WhisperSegment is one transcript segment in Whisper's output. Words is
// only populated when the CLI runs with word timestamps enabled.
type WhisperSegment struct {
	ID    int           `json:"id"`
	Start float64       `json:"start"`
	End   float64       `json:"end"`
	Text  string        `json:"text"`
	Words []WhisperWord `json:"words,omitempty"`
}

// WhisperWord is word-level timing with the model's probability score.
type WhisperWord struct {
	Word        string  `json:"word"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Probability float64 `json:"probability"`
}
