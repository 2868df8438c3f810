// Package llm provides a chat completion client for OpenAI-compatible
// endpoints (OpenRouter by default, Gemini's compatibility endpoint when a
// Gemini key is configured).
//
// Used by:
//   - Transcription: Client.CompleteWithAudio sends the recording inline
//   - Compose: Client.Complete turns a transcript into a blog post
//   - Preflight: Client.HealthCheck verifies key and model
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx, network timeouts and empty
// completions with exponential backoff (base 1s, max 10s, up to 5 attempts by
// default). Context cancellation aborts retries immediately.
package llm
