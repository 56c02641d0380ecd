package transcribe

import "casper/internal/services/whisper"

// TimestampFormat is the fixed wall-clock format stamped on every result and
// written to the CSV reports.
const TimestampFormat = "2006-01-02 15:04:05"

// Result is the outcome of transcribing one file. It is exactly one of two
// variants: a transcription (Err empty) or an error record (Err set), and is
// never mutated after creation except for the caller stamping ProcessingTime.
type Result struct {
	// Filename is the base name of the audio file.
	Filename string
	// Duration is the maximum segment end time in seconds. This is a
	// deliberate approximation of the audio length: trailing silence after
	// the last recognized segment is not counted.
	Duration float64
	// Language is the detected language code.
	Language string
	// LanguageProbability is the model's confidence in [0,1].
	LanguageProbability float64
	// Transcription is all segment texts joined by single spaces.
	Transcription string
	// Segments are the recognized spans in order.
	Segments []whisper.Segment
	// ModelTime is the seconds the transcriber measured around the model
	// invocation.
	ModelTime float64
	// ProcessingTime is the wall-clock seconds the pipeline measured around
	// the whole per-file call. Stamped by the pipeline; this is the value
	// the reports carry.
	ProcessingTime float64
	// Timestamp records when the file was processed, in TimestampFormat.
	Timestamp string
	// Model is the model size that produced this result.
	Model string
	// Device is the inference device that produced this result.
	Device string
	// Err is the failure message for the error variant, empty on success.
	Err string
}

// Errored reports whether this is the error variant.
func (r Result) Errored() bool {
	return r.Err != ""
}
