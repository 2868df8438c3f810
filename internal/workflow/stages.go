package workflow

import (
	"voiceblog/internal/compose"
	"voiceblog/internal/config"
	"voiceblog/internal/preprocess"
	"voiceblog/internal/stage"
	"voiceblog/internal/transcription"
)

// NewStageSet builds the in-process operations for cfg.
func NewStageSet(cfg *config.Config) (StageSet, error) {
	transcriber, err := transcription.New(cfg)
	if err != nil {
		return StageSet{}, err
	}
	composer, err := compose.New(cfg)
	if err != nil {
		return StageSet{}, err
	}
	return StageSet{
		Preprocess: preprocess.NewOperation(preprocess.OptionsFromConfig(cfg)),
		Transcribe: transcription.NewOperation(transcriber),
		Compose:    compose.NewOperation(composer),
	}, nil
}

// IsolatedStageSet runs every stage as a child process of executable, using
// the single-stage subcommands. globalArgs are passed before the subcommand.
func IsolatedStageSet(executable string, globalArgs ...string) StageSet {
	command := func(kind stage.Kind) stage.Command {
		return stage.Command{
			Binary: executable,
			Args: func(input, output string) []string {
				args := append([]string{}, globalArgs...)
				return append(args, kind.String(), "--input", input, "--output", output, "--force")
			},
		}
	}
	return StageSet{
		Preprocess: command(stage.Preprocess),
		Transcribe: command(stage.Transcribe),
		Compose:    command(stage.Compose),
	}
}
