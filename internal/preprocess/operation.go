package preprocess

import (
	"context"
	"fmt"
	"io"
	"os"

	"voiceblog/internal/deps"
	"voiceblog/internal/stage"
)

// Operation runs the ffmpeg filter chain as an out-of-process command.
type Operation struct {
	stage.Command
	opts Options
}

// NewOperation builds the preprocess operation for opts.
func NewOperation(opts Options) *Operation {
	return &Operation{
		Command: stage.Command{
			Binary: opts.Binary,
			Args: func(input, output string) []string {
				return BuildArgs(opts, input, output)
			},
		},
		opts: opts,
	}
}

// Invoke runs ffmpeg.
func (o *Operation) Invoke(ctx context.Context, input, output string, diag io.Writer) error {
	if diag != nil {
		fmt.Fprintf(diag, "filters: %v\n", o.opts.Filters)
	}
	return o.Command.Invoke(ctx, input, output, diag)
}

// HealthCheck reports whether the ffmpeg binary resolves.
func (o *Operation) HealthCheck(context.Context) stage.Health {
	status := deps.CheckFFmpeg(o.opts.Binary)
	if !status.Available {
		return stage.Unhealthy(stage.Preprocess.String(), status.Detail)
	}
	return stage.Healthy(stage.Preprocess.String())
}

// ValidateMP3 checks that path starts with an ID3 tag or an MPEG audio frame
// sync word.
func ValidateMP3(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	header := make([]byte, 3)
	if _, err := io.ReadFull(f, header); err != nil {
		return fmt.Errorf("read mp3 header: %w", err)
	}
	if string(header) == "ID3" {
		return nil
	}
	if header[0] == 0xFF && header[1]&0xE0 == 0xE0 {
		return nil
	}
	return fmt.Errorf("%s is not an mp3 stream", path)
}
