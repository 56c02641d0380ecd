package pipeline

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"casper/internal/transcribe"
)

const (
	masterLogName = "master_transcription_log.csv"
	summaryName   = "transcription_summary.txt"
)

// Field sets for the per-folder CSVs. The choice between them is made once
// per folder: a folder with at least one successful result uses the success
// shape, a folder of nothing but errors uses the error shape. Rows of the
// other variant leave inapplicable columns blank.
var (
	successFields = []string{
		"filename", "transcription", "language", "language_probability",
		"duration", "timestamp", "processing_time", "model", "device", "segments",
	}
	errorFields = []string{
		"filename", "transcription", "error", "processing_time", "timestamp",
	}
)

// writeFolderCSV serializes one folder's results. Callers only invoke it for
// non-empty result slices.
func writeFolderCSV(path string, results []transcribe.Result) error {
	hasSuccess := false
	for _, result := range results {
		if !result.Errored() {
			hasSuccess = true
			break
		}
	}
	fields := errorFields
	if hasSuccess {
		fields = successFields
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create folder csv: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(fields); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, result := range results {
		row := make([]string, len(fields))
		for i, field := range fields {
			row[i] = fieldValue(field, result)
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func fieldValue(field string, result transcribe.Result) string {
	switch field {
	case "filename":
		return result.Filename
	case "processing_time":
		return formatFixed(result.ProcessingTime, 2)
	case "timestamp":
		return result.Timestamp
	case "error":
		return result.Err
	}
	// Success-only columns stay blank on error rows.
	if result.Errored() {
		return ""
	}
	switch field {
	case "transcription":
		return result.Transcription
	case "language":
		return result.Language
	case "language_probability":
		return formatFixed(result.LanguageProbability, 4)
	case "duration":
		return formatFixed(result.Duration, 2)
	case "model":
		return result.Model
	case "device":
		return result.Device
	case "segments":
		return segmentsJSON(result)
	}
	return ""
}

func segmentsJSON(result transcribe.Result) string {
	if len(result.Segments) == 0 {
		return ""
	}
	encoded, err := json.Marshal(result.Segments)
	if err != nil {
		return ""
	}
	return string(encoded)
}

// writeMasterLog writes one summary row per folder, alphabetically sorted.
func writeMasterLog(path string, stats *Stats) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create master log: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	header := []string{
		"folder_name", "files_processed", "successful_files", "files_with_errors",
		"total_audio_duration_sec", "processing_time_sec",
		"real_time_factor", "average_time_per_file_sec",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write master header: %w", err)
	}

	for _, name := range stats.FolderNames() {
		fs := stats.Folders[name]
		row := []string{
			name,
			strconv.Itoa(fs.FileCount),
			strconv.Itoa(fs.SuccessCount),
			strconv.Itoa(fs.ErrorCount),
			formatFixed(fs.AudioDuration, 2),
			formatFixed(fs.ProcessingTime, 2),
			formatFixed(fs.RTF(), 4),
			formatFixed(fs.AverageTimePerFile(), 2),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write master row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush master log: %w", err)
	}
	return nil
}

// writeSummary writes the run-wide human-readable report.
func writeSummary(path string, stats *Stats) error {
	banner := strings.Repeat("=", 50)
	var b strings.Builder
	fmt.Fprintln(&b, banner)
	fmt.Fprintln(&b, "TRANSCRIPTION PIPELINE SUMMARY")
	fmt.Fprintln(&b, banner)
	fmt.Fprintf(&b, "Start Time: %s\n", stats.StartTime.Format(transcribe.TimestampFormat))
	fmt.Fprintf(&b, "End Time: %s\n", stats.EndTime.Format(transcribe.TimestampFormat))
	fmt.Fprintf(&b, "Total Pipeline Duration: %.2fs\n", stats.EndTime.Sub(stats.StartTime).Seconds())
	fmt.Fprintf(&b, "Folders Processed: %d\n", len(stats.Folders))
	fmt.Fprintf(&b, "Total Files Processed: %d\n", stats.TotalFiles)
	fmt.Fprintf(&b, "Successful Files: %d\n", stats.SuccessfulFiles)
	fmt.Fprintf(&b, "Files With Errors: %d\n", stats.FilesWithErrors)
	fmt.Fprintf(&b, "Average Processing Time Per File: %.2fs\n", stats.AverageTimePerFile())
	fmt.Fprintf(&b, "Overall Real-time Factor: %.4fx (lower is better)\n", stats.RTF())
	fmt.Fprintln(&b, banner)

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}
	return nil
}

func formatFixed(value float64, precision int) string {
	return strconv.FormatFloat(value, 'f', precision, 64)
}
