// Package config loads, normalizes, and validates voiceblog configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, loads a working-directory .env file, and
// honours credential fallbacks such as OPENROUTER_API_KEY, GEMINI_API_KEY,
// OPENAI_API_KEY, and ANTHROPIC_API_KEY.
//
// Credentials are validated per stage through CheckCredentials rather than at
// load time, so preprocessing works on a machine with no keys at all.
package config
