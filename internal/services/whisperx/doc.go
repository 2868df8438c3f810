// Package whisperx runs a local WhisperX model through uvx and converts its
// JSON segments into a plain-text transcript.
//
// It is the offline transcription provider: no API key is needed, only uvx
// on PATH (and optionally CUDA).
package whisperx
