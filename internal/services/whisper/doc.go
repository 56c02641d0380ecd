// Package whisper wraps the external faster-whisper recognition model.
//
// The model runs in a Python worker process that is started once per run and
// then serves transcription requests as line-delimited JSON over stdio. This
// package owns that protocol and normalizes results into Output values; it
// does not interpret them beyond decoding.
//
// The worker holds the model for the life of the process. There is no unload:
// resources are reclaimed when the parent exits and the worker's stdin
// closes.
package whisper
