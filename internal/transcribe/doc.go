// Package transcribe turns model invocations into uniform per-file results.
//
// A Result is one of two variants, a transcription or an error record, and
// the Transcriber is the single place where model failures are caught and
// converted instead of propagated.
package transcribe
