// Package language maps whisper language codes to human-readable names for
// logs and summaries.
package language
