package whisper

import "context"

// Segment is a time-bounded span of recognized speech.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Output is the normalized result of one model invocation.
type Output struct {
	Language            string
	LanguageProbability float64
	Segments            []Segment
}

// Model is the contract this system consumes from the speech-recognition
// model: load once, then transcribe files with word-level timing.
type Model interface {
	// Load materializes the model. Idempotent; a second call is a no-op.
	Load(ctx context.Context) error
	// Transcribe runs the model on the audio file at path.
	Transcribe(ctx context.Context, path string) (Output, error)
}
