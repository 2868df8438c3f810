package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"voiceblog/internal/stage"
	"voiceblog/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var folder string
	var all bool
	var steps []string
	var force bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the pipeline for one recording folder or all of them",
		Long: `Run preprocess, transcribe and compose for a recording folder.

Stages whose output already exists are skipped unless --force is given, so a
rerun resumes after the last completed stage. The first failing stage stops
the run.`,
		Example: `  voiceblog run --folder 7
  voiceblog run --folder 7 --steps 2,3 --force
  voiceblog run --all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := selectorError(folder, all); err != nil {
				return err
			}
			set, err := stage.ParseSet(steps...)
			if err != nil {
				return err
			}
			return ctx.withManager(cmd, true, func(runCtx context.Context, mgr *workflow.Manager) error {
				return runFolders(runCtx, cmd, mgr, strings.TrimSpace(folder), all, set, force)
			})
		},
	}

	cmd.Flags().StringVar(&folder, "folder", "", "Recording folder label under the input root")
	cmd.Flags().BoolVar(&all, "all", false, "Process every folder that holds raw.mp3")
	cmd.Flags().StringSliceVar(&steps, "steps", nil, "Steps to run: 1,2,3, stage names, or all (default all)")
	cmd.Flags().BoolVar(&force, "force", false, "Regenerate outputs that already exist")
	return cmd
}

// runFolders runs steps for one folder, or for every discovered folder when
// all is set, and renders the outcome.
func runFolders(ctx context.Context, cmd *cobra.Command, mgr *workflow.Manager, folder string, all bool, steps stage.Set, force bool) error {
	out := cmd.OutOrStdout()
	if !all {
		report := mgr.Run(ctx, workflow.Request{Label: folder, Steps: steps, Force: force})
		fmt.Fprint(out, renderReport(report))
		return report.Err()
	}

	reports, err := mgr.RunAll(ctx, steps, force)
	if len(reports) == 0 && err == nil {
		fmt.Fprintf(out, "No recordings found under %s\n", mgr.Layout().InputRoot)
		return nil
	}
	if len(reports) > 0 {
		fmt.Fprint(out, renderBatch(reports))
	}
	if err != nil {
		return err
	}
	failed := 0
	for _, r := range reports {
		if !r.Succeeded() {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d folders failed", failed, len(reports))
	}
	return nil
}
