// Package transcription turns preprocessed audio into a lightly redacted
// plain-text transcript.
//
// Three providers are available: "llm" sends the audio inline to the shared
// chat completion endpoint, "openai" uses the Whisper transcription API and
// "whisperx" runs WhisperX locally. The stage operation writes the trimmed
// transcript followed by a newline.
package transcription
