package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"casper/internal/history"
	"casper/internal/language"
	"casper/internal/logging"
	"casper/internal/transcribe"
)

const lockName = ".casper.lock"

// audioExtensions is the fixed allow-list of audio file suffixes, matched
// case-insensitively against immediate files of each person folder.
var audioExtensions = []string{".wav", ".opus", ".mp3", ".m4a", ".ogg", ".flac"}

// Options configures one pipeline run.
type Options struct {
	InputDir  string
	OutputDir string
	ModelSize string
	Device    string
}

// Pipeline walks the input tree, transcribes every audio file, and writes the
// per-folder and aggregate reports. One file at a time, one folder at a time;
// a file-level failure is recorded and iteration continues.
type Pipeline struct {
	opts        Options
	transcriber *transcribe.Transcriber
	store       *history.Store
	logger      *slog.Logger
	stats       *Stats
}

// New assembles a pipeline. store may be nil to skip run-history recording.
func New(opts Options, transcriber *transcribe.Transcriber, store *history.Store, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Pipeline{
		opts:        opts,
		transcriber: transcriber,
		store:       store,
		logger:      logger,
		stats:       NewStats(),
	}
}

// Stats exposes the run accumulator, mainly for tests and the CLI summary.
func (p *Pipeline) Stats() *Stats {
	return p.stats
}

// Run executes the full sequence: output root, run lock, model load,
// pre-count, per-folder processing, then the summary and master reports.
func (p *Pipeline) Run(ctx context.Context) error {
	p.stats.StartTime = time.Now()

	p.logger.Info("starting transcription pipeline",
		slog.String("input", p.opts.InputDir),
		slog.String("output", p.opts.OutputDir),
		slog.String("model", p.opts.ModelSize),
		slog.String("device", p.opts.Device),
	)

	if err := os.MkdirAll(p.opts.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	lock := flock.New(filepath.Join(p.opts.OutputDir, lockName))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another casper run is already writing to %s", p.opts.OutputDir)
	}
	defer func() { _ = lock.Unlock() }()

	if err := p.transcriber.LoadModel(ctx); err != nil {
		return fmt.Errorf("load model: %w", err)
	}

	totalFiles, err := p.countAudioFiles()
	if err != nil {
		return err
	}
	p.logger.Info("input scanned", slog.Int("audio_files", totalFiles))

	entries, err := os.ReadDir(p.opts.InputDir)
	if err != nil {
		return fmt.Errorf("read input directory: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if err := p.processPersonFolder(ctx, filepath.Join(p.opts.InputDir, entry.Name()), totalFiles); err != nil {
			return err
		}
	}

	p.stats.EndTime = time.Now()

	p.logSummary()

	if err := writeSummary(filepath.Join(p.opts.OutputDir, summaryName), p.stats); err != nil {
		return err
	}
	if err := writeMasterLog(filepath.Join(p.opts.OutputDir, masterLogName), p.stats); err != nil {
		return err
	}

	p.recordHistory(ctx)

	p.logger.Info("transcription pipeline completed",
		slog.Int("files", p.stats.TotalFiles),
		slog.Int("folders", len(p.stats.Folders)),
	)
	return nil
}

// countAudioFiles makes one pass over all immediate subdirectories to count
// matching files. Used only for progress reporting.
func (p *Pipeline) countAudioFiles() (int, error) {
	entries, err := os.ReadDir(p.opts.InputDir)
	if err != nil {
		return 0, fmt.Errorf("read input directory: %w", err)
	}
	total := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		files, err := os.ReadDir(filepath.Join(p.opts.InputDir, entry.Name()))
		if err != nil {
			return 0, fmt.Errorf("read folder %s: %w", entry.Name(), err)
		}
		for _, file := range files {
			if !file.IsDir() && isAudioFile(file.Name()) {
				total++
			}
		}
	}
	return total, nil
}

// processPersonFolder transcribes every matching file directly inside one
// person folder and writes the folder CSV when at least one file matched.
func (p *Pipeline) processPersonFolder(ctx context.Context, folderPath string, totalFiles int) error {
	folderName := filepath.Base(folderPath)
	folderStart := time.Now()

	p.logger.Info("processing folder", slog.String("folder", folderName))

	personOutputDir := filepath.Join(p.opts.OutputDir, folderName)
	if err := os.MkdirAll(personOutputDir, 0o755); err != nil {
		return fmt.Errorf("create folder output directory: %w", err)
	}

	files, err := os.ReadDir(folderPath)
	if err != nil {
		return fmt.Errorf("read folder %s: %w", folderName, err)
	}

	matching := 0
	for _, file := range files {
		if !file.IsDir() && isAudioFile(file.Name()) {
			matching++
		}
	}
	bar := newFolderBar(folderName, matching)

	var results []transcribe.Result
	for _, file := range files {
		if file.IsDir() || !isAudioFile(file.Name()) {
			continue
		}
		result := p.processFile(ctx, filepath.Join(folderPath, file.Name()), folderName)
		results = append(results, result)
		if bar != nil {
			_ = bar.Add(1)
		}
		p.logger.Debug("progress",
			slog.Int("processed", p.stats.TotalFiles),
			slog.Int("total", totalFiles),
		)
	}
	if bar != nil {
		_ = bar.Finish()
	}

	if len(results) > 0 {
		csvPath := filepath.Join(personOutputDir, folderName+"_transcriptions.csv")
		if err := writeFolderCSV(csvPath, results); err != nil {
			return err
		}
		p.logger.Info("folder csv written", slog.String("path", csvPath))
	}

	p.logger.Info("folder completed",
		slog.String("folder", folderName),
		slog.Int("files", len(results)),
		slog.Duration("elapsed", time.Since(folderStart)),
	)
	return nil
}

// processFile delegates to the transcriber and folds the outcome into the run
// and folder counters. The wall-clock time around the whole call is what the
// reports carry, distinct from the model's own measured time.
func (p *Pipeline) processFile(ctx context.Context, path, folderName string) transcribe.Result {
	start := time.Now()
	result := p.transcriber.Transcribe(ctx, path)
	result.ProcessingTime = time.Since(start).Seconds()

	p.stats.RecordFile(folderName, result)

	if result.Errored() {
		p.logger.Error("file failed",
			slog.String("file", result.Filename),
			slog.String("folder", folderName),
			slog.String("error", result.Err),
		)
		return result
	}

	p.logger.Info("file transcribed",
		slog.String("file", result.Filename),
		slog.String("folder", folderName),
		slog.String("language", language.Describe(result.Language)),
		slog.Float64("duration_sec", result.Duration),
		slog.Float64("processing_sec", result.ProcessingTime),
	)
	return result
}

func (p *Pipeline) logSummary() {
	p.logger.Info("run summary",
		slog.Time("start", p.stats.StartTime),
		slog.Time("end", p.stats.EndTime),
		slog.Int("folders", len(p.stats.Folders)),
		slog.Int("files", p.stats.TotalFiles),
		slog.Int("successful", p.stats.SuccessfulFiles),
		slog.Int("errors", p.stats.FilesWithErrors),
		slog.Float64("avg_time_per_file_sec", p.stats.AverageTimePerFile()),
		slog.Float64("real_time_factor", p.stats.RTF()),
	)
}

// recordHistory appends the finished run to the history database.
// Best-effort: a history failure never fails a run whose reports are already
// on disk.
func (p *Pipeline) recordHistory(ctx context.Context) {
	if p.store == nil {
		return
	}
	run := history.Run{
		ID:                uuid.New().String(),
		StartedAt:         p.stats.StartTime,
		FinishedAt:        p.stats.EndTime,
		Model:             p.opts.ModelSize,
		Device:            p.opts.Device,
		Folders:           len(p.stats.Folders),
		Files:             p.stats.TotalFiles,
		Successful:        p.stats.SuccessfulFiles,
		Errors:            p.stats.FilesWithErrors,
		AudioDurationSec:  p.stats.TotalAudioDuration,
		ProcessingTimeSec: p.stats.TotalProcessingTime,
	}
	if err := p.store.RecordRun(ctx, run); err != nil {
		p.logger.Warn("record run history", slog.Any("error", err))
	}
}

func isAudioFile(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range audioExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// newFolderBar returns a per-folder progress bar when stderr is a terminal,
// nil otherwise.
func newFolderBar(folderName string, total int) *progressbar.ProgressBar {
	if total == 0 || !isatty.IsTerminal(os.Stderr.Fd()) {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetDescription("Processing "+folderName),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(os.Stderr) }),
	)
}
