// Package preprocess cleans up a raw recording with an ffmpeg filter chain
// before transcription: downmix to mono, trim long silences, reduce
// background noise, normalise loudness, compress dynamics and resample for
// speech models.
//
// Each filter can be toggled; they are always applied in the same order.
package preprocess
