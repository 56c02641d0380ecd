package whisper

import (
	"bufio"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	"casper/internal/logging"
)

//go:embed worker.py
var workerScript []byte

var commandContext = exec.CommandContext

// Config holds the settings the worker binds the model to.
type Config struct {
	// Model is the whisper model size (tiny, base, ...).
	Model string
	// Device is the inference device, cuda or cpu.
	Device string
	// ComputeType is the numeric precision (float16, float32, int8).
	ComputeType string
	// Python is the interpreter used to launch the worker script.
	Python string
}

// Worker runs the faster-whisper model in a Python subprocess and speaks
// line-delimited JSON over its stdio. The process is started once and lives
// until the parent exits; there is no unload operation.
type Worker struct {
	cfg    Config
	logger *slog.Logger

	mu      sync.Mutex
	stdin   io.WriteCloser
	scanner *bufio.Scanner
	loaded  bool
}

// NewWorker creates a worker bound to the given model settings.
func NewWorker(cfg Config, logger *slog.Logger) *Worker {
	if cfg.Python == "" {
		cfg.Python = "python3"
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Worker{cfg: cfg, logger: logger}
}

type workerEvent struct {
	Event               string    `json:"event"`
	LoadTimeSec         float64   `json:"load_time_sec"`
	Language            string    `json:"language"`
	LanguageProbability float64   `json:"language_probability"`
	Segments            []Segment `json:"segments"`
	Error               string    `json:"error"`
}

// Load starts the worker process and waits for the model-ready event.
// Idempotent: once the model is up, further calls return immediately.
func (w *Worker) Load(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.loaded {
		return nil
	}

	scriptPath := filepath.Join(os.TempDir(), "casper_whisper_worker.py")
	if err := os.WriteFile(scriptPath, workerScript, 0o755); err != nil {
		return fmt.Errorf("write worker script: %w", err)
	}

	w.logger.Info("loading whisper model",
		slog.String("model", w.cfg.Model),
		slog.String("device", w.cfg.Device),
		slog.String("compute_type", w.cfg.ComputeType),
	)

	cmd := commandContext(ctx, w.cfg.Python, scriptPath,
		"--model", w.cfg.Model,
		"--device", w.cfg.Device,
		"--compute-type", w.cfg.ComputeType,
	) //nolint:gosec
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start whisper worker: %w", err)
	}

	scanner := bufio.NewScanner(stdout)
	// Transcripts of long recordings can exceed the default token size.
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	if !scanner.Scan() {
		_ = cmd.Process.Kill()
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("read worker ready event: %w", err)
		}
		return fmt.Errorf("whisper worker exited before becoming ready")
	}
	var ready workerEvent
	if err := json.Unmarshal(scanner.Bytes(), &ready); err != nil {
		_ = cmd.Process.Kill()
		return fmt.Errorf("parse worker ready event: %w", err)
	}
	if ready.Error != "" {
		_ = cmd.Process.Kill()
		return fmt.Errorf("load whisper model: %s", ready.Error)
	}
	if ready.Event != "ready" {
		_ = cmd.Process.Kill()
		return fmt.Errorf("unexpected worker event %q", ready.Event)
	}

	w.logger.Info("whisper model loaded", slog.Float64("load_time_sec", ready.LoadTimeSec))

	w.stdin = stdin
	w.scanner = scanner
	w.loaded = true
	return nil
}

// Transcribe sends one file to the worker and waits for its result. Per-file
// model failures arrive in-band and are returned as errors.
func (w *Worker) Transcribe(ctx context.Context, path string) (Output, error) {
	if err := w.Load(ctx); err != nil {
		return Output{}, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	request, err := json.Marshal(struct {
		Path string `json:"path"`
	}{Path: path})
	if err != nil {
		return Output{}, fmt.Errorf("encode request: %w", err)
	}
	if _, err := w.stdin.Write(append(request, '\n')); err != nil {
		return Output{}, fmt.Errorf("write to whisper worker: %w", err)
	}

	if !w.scanner.Scan() {
		if err := w.scanner.Err(); err != nil {
			return Output{}, fmt.Errorf("read worker response: %w", err)
		}
		return Output{}, fmt.Errorf("whisper worker exited unexpectedly")
	}

	var response workerEvent
	if err := json.Unmarshal(w.scanner.Bytes(), &response); err != nil {
		return Output{}, fmt.Errorf("parse worker response: %w", err)
	}
	if response.Error != "" {
		return Output{}, fmt.Errorf("%s", response.Error)
	}

	return Output{
		Language:            response.Language,
		LanguageProbability: response.LanguageProbability,
		Segments:            response.Segments,
	}, nil
}

var _ Model = (*Worker)(nil)
