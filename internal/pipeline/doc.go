// Package pipeline sequences one batch transcription run.
//
// The phases are strictly linear: walk the immediate subdirectories of the
// input tree, transcribe each matching audio file through the Transcriber,
// accumulate run and folder counters, write one CSV per non-empty folder,
// then finish with the master log and the run summary. A per-file failure is
// recorded and iteration continues; only setup errors abort a run.
package pipeline
