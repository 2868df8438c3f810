package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"voiceblog/internal/job"
	"voiceblog/internal/preflight"
	"voiceblog/internal/stage"
	"voiceblog/internal/workflow"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var folder string
	var steps []string
	var offline bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show readiness checks and a folder's artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			set, err := stage.ParseSet(steps...)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			return ctx.withManager(cmd, false, func(runCtx context.Context, mgr *workflow.Manager) error {
				var lines []string
				lines = append(lines, renderSectionHeader("Preflight", colorize)...)
				for _, result := range preflight.RunAll(runCtx, cfg, set, preflight.Options{Offline: offline}) {
					lines = append(lines, preflightStatusLine(result, colorize))
				}
				if !offline {
					lines = append(lines, "")
					lines = append(lines, renderSectionHeader("Stages", colorize)...)
					for _, health := range mgr.StageHealth(runCtx, set) {
						lines = append(lines, healthStatusLine(health, colorize))
					}
				}
				fmt.Fprintln(out, strings.Join(lines, "\n"))

				folder = strings.TrimSpace(folder)
				if folder == "" {
					return nil
				}
				j, err := mgr.Layout().Resolve(folder)
				if err != nil {
					return err
				}
				fmt.Fprintln(out)
				fmt.Fprintln(out, strings.Join(renderSectionHeader("Folder "+j.Label, colorize), "\n"))
				fmt.Fprintln(out, renderManifest(j, workflow.BuildManifest(j, mgr.Checker()), mgr.Checker().Exists(j.RawAudio)))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&folder, "folder", "", "Recording folder label to inspect")
	cmd.Flags().StringSliceVar(&steps, "steps", nil, "Limit checks to these steps (default all)")
	cmd.Flags().BoolVar(&offline, "offline", false, "Skip checks that contact remote APIs")
	return cmd
}

func renderManifest(j job.Job, manifest workflow.Manifest, rawPresent bool) string {
	rows := [][]string{{"0", "Input", j.RawAudio, presence(rawPresent), "-"}}
	for _, entry := range manifest.Entries {
		size := "-"
		if entry.Exists {
			size = formatBytes(entry.Size)
		}
		rows = append(rows, []string{
			strconv.Itoa(int(entry.Kind)),
			entry.Kind.Label(),
			entry.Path,
			presence(entry.Exists),
			size,
		})
	}
	table := renderTable(
		[]string{"Step", "Stage", "Path", "State", "Size"},
		rows,
		1, 5,
	)
	if manifest.Complete() {
		return table + "\nAll outputs present"
	}
	return table
}

func presence(ok bool) string {
	if ok {
		return "present"
	}
	return "missing"
}
