package pipeline

import (
	"sort"
	"time"

	"casper/internal/transcribe"
)

// FolderStats accumulates per-folder counters. Created on the first file seen
// in a folder and mutated additively as each file completes.
type FolderStats struct {
	FileCount      int
	AudioDuration  float64
	ProcessingTime float64
	SuccessCount   int
	ErrorCount     int
}

// RTF is the folder's real-time factor, 0 when no audio duration accumulated.
func (f *FolderStats) RTF() float64 {
	if f.AudioDuration <= 0 {
		return 0
	}
	return f.ProcessingTime / f.AudioDuration
}

// AverageTimePerFile is processing time per file, 0 when the folder is empty.
func (f *FolderStats) AverageTimePerFile() float64 {
	if f.FileCount == 0 {
		return 0
	}
	return f.ProcessingTime / float64(f.FileCount)
}

// Stats is the process-wide accumulator for one pipeline run.
type Stats struct {
	StartTime time.Time
	EndTime   time.Time

	TotalFiles          int
	SuccessfulFiles     int
	FilesWithErrors     int
	TotalAudioDuration  float64
	TotalProcessingTime float64

	Folders map[string]*FolderStats
}

// NewStats returns an empty accumulator.
func NewStats() *Stats {
	return &Stats{Folders: make(map[string]*FolderStats)}
}

// RecordFile folds one completed file into the run and folder counters. The
// result must already carry its wall-clock ProcessingTime.
func (s *Stats) RecordFile(folder string, result transcribe.Result) {
	s.TotalFiles++
	s.TotalProcessingTime += result.ProcessingTime

	fs := s.Folders[folder]
	if fs == nil {
		fs = &FolderStats{}
		s.Folders[folder] = fs
	}
	fs.FileCount++
	fs.ProcessingTime += result.ProcessingTime

	if result.Errored() {
		s.FilesWithErrors++
		fs.ErrorCount++
		return
	}
	s.SuccessfulFiles++
	s.TotalAudioDuration += result.Duration
	fs.SuccessCount++
	fs.AudioDuration += result.Duration
}

// FolderNames returns the processed folder names in alphabetical order.
func (s *Stats) FolderNames() []string {
	names := make([]string, 0, len(s.Folders))
	for name := range s.Folders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RTF is the run-wide real-time factor, 0 when no audio duration accumulated.
func (s *Stats) RTF() float64 {
	if s.TotalAudioDuration <= 0 {
		return 0
	}
	return s.TotalProcessingTime / s.TotalAudioDuration
}

// AverageTimePerFile is the run-wide processing time per file, 0 when no
// files were processed.
func (s *Stats) AverageTimePerFile() float64 {
	if s.TotalFiles == 0 {
		return 0
	}
	return s.TotalProcessingTime / float64(s.TotalFiles)
}
