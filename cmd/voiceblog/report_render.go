package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"voiceblog/internal/stage"
	"voiceblog/internal/stageexec"
	"voiceblog/internal/workflow"
)

func renderReport(report workflow.Report) string {
	var b strings.Builder
	if len(report.Results) > 0 {
		rows := make([][]string, 0, len(report.Results))
		for _, res := range report.Results {
			rows = append(rows, []string{
				strconv.Itoa(int(res.Kind)),
				res.Kind.Label(),
				res.Outcome.String(),
				formatDuration(res.Duration),
				resultDetail(res),
			})
		}
		b.WriteString(renderTable(
			[]string{"Step", "Stage", "Outcome", "Duration", "Detail"},
			rows,
			1, 4,
		))
		b.WriteByte('\n')
	}

	label := report.Job.Label
	if label == "" {
		label = "?"
	}
	if !report.Succeeded() {
		fmt.Fprintf(&b, "Folder %s failed (%s)\n", label, report.Reason)
		return b.String()
	}
	skipped, succeeded, _ := report.Counts()
	fmt.Fprintf(&b, "Folder %s complete: %d produced, %d already present (%s)\n",
		label, succeeded, skipped, formatDuration(report.Duration))
	if report.Manifest != nil {
		for _, path := range report.Manifest.Existing() {
			fmt.Fprintf(&b, "  %s\n", path)
		}
	}
	return b.String()
}

func renderBatch(reports []workflow.Report) string {
	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		result := "done"
		failedStep := ""
		if !r.Succeeded() {
			result = "failed"
			if r.FailedStage.Valid() {
				failedStep = fmt.Sprintf("%d (%s)", int(r.FailedStage), r.FailedStage)
			} else {
				failedStep = "init"
			}
		}
		rows = append(rows, []string{r.Job.Label, result, failedStep, r.Reason, formatDuration(r.Duration)})
	}
	return renderTable(
		[]string{"Folder", "Result", "Failed Step", "Reason", "Duration"},
		rows,
		5,
	) + "\n"
}

func renderStageResult(res stageexec.Result) string {
	line := fmt.Sprintf("%s: %s", res.Kind.Label(), res.Outcome)
	if res.Outcome != stage.Skipped {
		line += fmt.Sprintf(" (%s)", formatDuration(res.Duration))
	}
	if detail := resultDetail(res); detail != "" {
		line += " " + detail
	}
	return line
}

func resultDetail(res stageexec.Result) string {
	switch res.Outcome {
	case stage.Failed:
		return string(res.Reason)
	case stage.Succeeded:
		if res.Artifact.Exists {
			return fmt.Sprintf("%s (%s)", res.Artifact.Path, formatBytes(res.Artifact.Size))
		}
		return res.Artifact.Path
	case stage.Skipped:
		return "output present"
	default:
		return ""
	}
}

func formatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}

func formatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.IBytes(uint64(n))
}
