package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"voiceblog/internal/config"
	"voiceblog/internal/preprocess"
	"voiceblog/internal/stage"
	"voiceblog/internal/workflow"
)

func newStageCommand(ctx *commandContext, kind stage.Kind) *cobra.Command {
	var input string
	var output string
	var folder string
	var all bool
	var force bool
	var filters string

	cmd := &cobra.Command{
		Use:   kind.String(),
		Short: stageShort(kind),
		Long: fmt.Sprintf(`Run the %s stage on its own.

With --input and --output the stage runs directly against those paths.
With --folder or --all it runs through the orchestrator, which checks that
the previous stage's output exists first.`, kind) + stageNotes(kind),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if kind == stage.Preprocess && cmd.Flags().Changed("filters") {
				if err := applyFilters(cfg, filters); err != nil {
					return err
				}
			}

			input, output = strings.TrimSpace(input), strings.TrimSpace(output)
			direct := input != "" || output != ""
			if direct {
				if input == "" || output == "" {
					return errors.New("--input and --output must be given together")
				}
				if strings.TrimSpace(folder) != "" || all {
					return errors.New("--input/--output cannot be combined with --folder or --all")
				}
				// Direct runs are also the entry point for isolated child
				// processes, so they always execute in-process.
				return ctx.withManager(cmd, false, func(runCtx context.Context, mgr *workflow.Manager) error {
					result := mgr.RunStage(runCtx, kind, input, output, force)
					fmt.Fprintln(cmd.OutOrStdout(), renderStageResult(result))
					return result.Err
				})
			}

			if err := selectorError(folder, all); err != nil {
				return err
			}
			// Child processes load filters from the config file, not the flag.
			isolate := !cmd.Flags().Changed("filters")
			return ctx.withManager(cmd, isolate, func(runCtx context.Context, mgr *workflow.Manager) error {
				return runFolders(runCtx, cmd, mgr, strings.TrimSpace(folder), all, stage.Set{kind}, force)
			})
		},
	}

	cmd.Flags().StringVar(&input, "input", "", "Input file for a direct run")
	cmd.Flags().StringVar(&output, "output", "", "Output file for a direct run")
	cmd.Flags().StringVar(&folder, "folder", "", "Recording folder label under the input root")
	cmd.Flags().BoolVar(&all, "all", false, "Run this stage for every folder that holds raw.mp3")
	cmd.Flags().BoolVar(&force, "force", false, "Regenerate the output if it already exists")
	if kind == stage.Preprocess {
		cmd.Flags().StringVar(&filters, "filters", strings.Join(config.DefaultFilters, ","), "Comma separated ffmpeg filters to apply")
	}
	return cmd
}

func stageShort(kind stage.Kind) string {
	switch kind {
	case stage.Preprocess:
		return "Clean up raw.mp3 into processed.mp3 with ffmpeg"
	case stage.Transcribe:
		return "Transcribe processed.mp3 into transcript.txt"
	case stage.Compose:
		return "Compose blog_post.md from transcript.txt"
	default:
		return kind.Label()
	}
}

func stageNotes(kind stage.Kind) string {
	if kind != stage.Compose {
		return ""
	}
	return `

A reply without a level-one title gets one from its opening sentence; an
empty reply fails the stage.`
}

func applyFilters(cfg *config.Config, value string) error {
	filters, err := preprocess.ParseFilters(value)
	if err != nil {
		return err
	}
	cfg.Preprocess.Filters = filters
	return nil
}
