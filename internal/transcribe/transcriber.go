package transcribe

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"casper/internal/logging"
	"casper/internal/services/whisper"
)

// Transcriber wraps one call into the recognition model and normalizes its
// output (or failure) into a Result.
type Transcriber struct {
	model     whisper.Model
	modelSize string
	device    string
	logger    *slog.Logger
	loaded    bool
}

// New creates a Transcriber around the given model. modelSize and device are
// recorded on every successful result.
func New(model whisper.Model, modelSize, device string, logger *slog.Logger) *Transcriber {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Transcriber{
		model:     model,
		modelSize: modelSize,
		device:    device,
		logger:    logger,
	}
}

// LoadModel materializes the model. Idempotent; the model stays resident for
// the rest of the process.
func (t *Transcriber) LoadModel(ctx context.Context) error {
	if t.loaded {
		return nil
	}
	start := time.Now()
	if err := t.model.Load(ctx); err != nil {
		return err
	}
	t.logger.Info("model ready", slog.Duration("load_time", time.Since(start)))
	t.loaded = true
	return nil
}

// Transcribe runs the model on the audio file at path. Any failure is caught
// and returned as the error variant rather than propagated; this is the one
// recovery point in the system and no retry is attempted.
func (t *Transcriber) Transcribe(ctx context.Context, path string) Result {
	filename := filepath.Base(path)
	timestamp := time.Now().Format(TimestampFormat)

	if !t.loaded {
		if err := t.LoadModel(ctx); err != nil {
			t.logger.Error("model load failed", slog.String("file", filename), slog.Any("error", err))
			return Result{Filename: filename, Err: err.Error(), Timestamp: timestamp}
		}
	}

	t.logger.Info("transcribing", slog.String("file", path))

	start := time.Now()
	output, err := t.model.Transcribe(ctx, path)
	elapsed := time.Since(start).Seconds()
	if err != nil {
		t.logger.Error("transcription failed", slog.String("file", filename), slog.Any("error", err))
		return Result{Filename: filename, Err: err.Error(), Timestamp: timestamp}
	}

	result := Result{
		Filename:            filename,
		Language:            output.Language,
		LanguageProbability: output.LanguageProbability,
		Segments:            output.Segments,
		ModelTime:           elapsed,
		Timestamp:           timestamp,
		Model:               t.modelSize,
		Device:              t.device,
	}

	texts := make([]string, 0, len(output.Segments))
	for _, segment := range output.Segments {
		texts = append(texts, segment.Text)
		if segment.End > result.Duration {
			result.Duration = segment.End
		}
	}
	result.Transcription = strings.TrimSpace(strings.Join(texts, " "))

	return result
}
