package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"voiceblog/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var folder string
	var limit int
	var runID string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent pipeline runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			path := cfg.HistoryPath()
			if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			store, err := history.Open(path)
			if err != nil {
				return fmt.Errorf("open run history: %w", err)
			}
			defer store.Close()

			if id := strings.TrimSpace(runID); id != "" {
				run, err := store.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				if run == nil {
					return fmt.Errorf("run %s not found", id)
				}
				fmt.Fprint(out, renderRunDetail(*run))
				return nil
			}

			runs, err := store.List(cmd.Context(), history.ListOptions{Folder: strings.TrimSpace(folder), Limit: limit})
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			fmt.Fprintln(out, renderRuns(runs))
			return nil
		},
	}

	cmd.Flags().StringVar(&folder, "folder", "", "Only show runs for this folder")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show")
	cmd.Flags().StringVar(&runID, "run", "", "Show per-stage detail for one run id")
	return cmd
}

func renderRuns(runs []history.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		failed := ""
		if run.Status == history.StatusFailed {
			failed = run.Reason
			if run.FailedStage > 0 {
				failed = fmt.Sprintf("step %d: %s", run.FailedStage, run.Reason)
			}
		}
		rows = append(rows, []string{
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Folder,
			run.Steps,
			string(run.Status),
			failed,
			runDuration(run),
			shortID(run.ID),
		})
	}
	return renderTable(
		[]string{"Started", "Folder", "Steps", "Status", "Failure", "Duration", "Run"},
		rows,
		6,
	)
}

func renderRunDetail(run history.Run) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run:      %s\n", run.ID)
	fmt.Fprintf(&b, "Folder:   %s\n", run.Folder)
	fmt.Fprintf(&b, "Steps:    %s\n", run.Steps)
	fmt.Fprintf(&b, "Force:    %s\n", yesNo(run.Force))
	fmt.Fprintf(&b, "Status:   %s\n", run.Status)
	fmt.Fprintf(&b, "Started:  %s\n", run.StartedAt.Local().Format(time.RFC3339))
	fmt.Fprintf(&b, "Duration: %s\n", runDuration(run))
	if run.Error != "" {
		fmt.Fprintf(&b, "Error:    %s\n", run.Error)
	}
	if len(run.Stages) == 0 {
		return b.String()
	}
	rows := make([][]string, 0, len(run.Stages))
	for _, rec := range run.Stages {
		rows = append(rows, []string{
			strconv.Itoa(rec.Stage),
			rec.Name,
			rec.Outcome,
			rec.Reason,
			formatDuration(rec.Duration),
		})
	}
	b.WriteString(renderTable(
		[]string{"Step", "Stage", "Outcome", "Reason", "Duration"},
		rows,
		1, 5,
	))
	b.WriteByte('\n')
	return b.String()
}

func runDuration(run history.Run) string {
	if run.FinishedAt.IsZero() {
		return "running"
	}
	return formatDuration(run.FinishedAt.Sub(run.StartedAt))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
