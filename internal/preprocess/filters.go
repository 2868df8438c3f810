package preprocess

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"voiceblog/internal/config"
	"voiceblog/internal/services"
)

// Filter names.
const (
	FilterMono      = "mono"
	FilterSilence   = "silence"
	FilterNoise     = "noise"
	FilterNormalize = "normalize"
	FilterCompress  = "compress"
	FilterOptimize  = "optimize"
)

// Options is the resolved filter chain configuration.
type Options struct {
	Binary                string
	Filters               []string
	SilenceThresholdDB    float64
	MinSilenceMillis      int
	SilencePaddingMillis  int
	NoiseReductionDB      float64
	TargetLoudness        float64
	CompressorThresholdDB float64
	CompressorRatio       float64
	CompressorAttackMs    float64
	CompressorReleaseMs   float64
	SampleRate            int
	Bitrate               string
}

// OptionsFromConfig copies the preprocess section of cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	p := cfg.Preprocess
	return Options{
		Binary:                cfg.FFmpegBinary(),
		Filters:               slices.Clone(p.Filters),
		SilenceThresholdDB:    p.SilenceThresholdDB,
		MinSilenceMillis:      p.MinSilenceMillis,
		SilencePaddingMillis:  p.SilencePaddingMillis,
		NoiseReductionDB:      p.NoiseReductionDB,
		TargetLoudness:        p.TargetLoudness,
		CompressorThresholdDB: p.CompressorThresholdDB,
		CompressorRatio:       p.CompressorRatio,
		CompressorAttackMs:    p.CompressorAttackMs,
		CompressorReleaseMs:   p.CompressorReleaseMs,
		SampleRate:            p.SampleRate,
		Bitrate:               p.Bitrate,
	}
}

// ParseFilters validates a comma separated filter list. "all" selects every
// filter and "none" selects none.
func ParseFilters(value string) ([]string, error) {
	value = strings.TrimSpace(strings.ToLower(value))
	switch value {
	case "", "all":
		return slices.Clone(config.DefaultFilters), nil
	case "none":
		return []string{}, nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		if !slices.Contains(config.DefaultFilters, name) {
			return nil, services.Wrap(services.ErrValidation, "preprocess", "parse filters",
				fmt.Sprintf("unknown filter %q (valid: %s)", name, strings.Join(config.DefaultFilters, ", ")), nil)
		}
		if !slices.Contains(out, name) {
			out = append(out, name)
		}
	}
	return out, nil
}

func (o Options) enabled(name string) bool {
	return slices.Contains(o.Filters, name)
}

// audioFilterChain renders the -af value in fixed order. Mono and resampling
// are output options rather than filters and are handled in BuildArgs.
func (o Options) audioFilterChain() string {
	var chain []string
	if o.enabled(FilterSilence) {
		stop := formatSeconds(o.MinSilenceMillis)
		threshold := formatDB(o.SilenceThresholdDB)
		// start_silence/stop_silence keep that much quiet around speech so
		// pauses between sentences survive.
		pad := formatFloat(float64(max(o.SilencePaddingMillis, 0)) / 1000)
		chain = append(chain, fmt.Sprintf(
			"silenceremove=start_periods=1:start_threshold=%s:start_silence=%s:stop_periods=-1:stop_duration=%s:stop_threshold=%s:stop_silence=%s",
			threshold, pad, stop, threshold, pad))
	}
	if o.enabled(FilterNoise) {
		chain = append(chain, "afftdn=nr="+formatFloat(o.NoiseReductionDB))
	}
	if o.enabled(FilterNormalize) {
		chain = append(chain, fmt.Sprintf("loudnorm=I=%s:TP=-1.5:LRA=11", formatFloat(o.TargetLoudness)))
	}
	if o.enabled(FilterCompress) {
		chain = append(chain, fmt.Sprintf("acompressor=threshold=%s:ratio=%s:attack=%s:release=%s",
			formatDB(o.CompressorThresholdDB), formatFloat(o.CompressorRatio),
			formatFloat(o.CompressorAttackMs), formatFloat(o.CompressorReleaseMs)))
	}
	return strings.Join(chain, ",")
}

// BuildArgs returns the ffmpeg arguments turning input into an mp3 at output.
func BuildArgs(o Options, input, output string) []string {
	args := []string{"-y", "-hide_banner", "-nostdin", "-loglevel", "warning", "-i", input, "-vn"}
	if o.enabled(FilterMono) {
		args = append(args, "-ac", "1")
	}
	if chain := o.audioFilterChain(); chain != "" {
		args = append(args, "-af", chain)
	}
	if o.enabled(FilterOptimize) {
		rate := o.SampleRate
		if rate <= 0 {
			rate = 16000
		}
		args = append(args, "-ar", strconv.Itoa(rate))
	}
	bitrate := o.Bitrate
	if bitrate == "" {
		bitrate = "128k"
	}
	args = append(args, "-codec:a", "libmp3lame", "-b:a", bitrate, "-f", "mp3", output)
	return args
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatDB(v float64) string {
	return formatFloat(v) + "dB"
}

func formatSeconds(ms int) string {
	if ms <= 0 {
		ms = 500
	}
	return formatFloat(float64(ms) / 1000)
}
