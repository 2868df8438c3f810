package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Status is the terminal state of a run.
type Status string

const (
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

// Run is one orchestrator invocation for a folder.
type Run struct {
	ID          string
	Folder      string
	Steps       string
	Force       bool
	Status      Status
	FailedStage int
	Reason      string
	Error       string
	StartedAt   time.Time
	FinishedAt  time.Time
	Stages      []StageRecord
}

// StageRecord is the outcome of one stage within a run.
type StageRecord struct {
	Stage    int
	Name     string
	Outcome  string
	Reason   string
	Duration time.Duration
	Error    string
}

// ListOptions filters List.
type ListOptions struct {
	Folder string
	Limit  int
}

const defaultListLimit = 20

// timeLayout keeps a fixed-width fraction so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Begin inserts a run in the running state.
func (s *Store) Begin(ctx context.Context, run Run) error {
	if strings.TrimSpace(run.ID) == "" {
		return errors.New("history: run id required")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	_, err := s.exec(ctx,
		`INSERT INTO runs (id, folder, steps, force, status, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Folder, run.Steps, boolToInt(run.Force), string(StatusRunning), run.StartedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("history: begin run %s: %w", run.ID, err)
	}
	return nil
}

// RecordStage stores the outcome of one stage. Recording the same stage
// twice replaces the earlier row.
func (s *Store) RecordStage(ctx context.Context, runID string, rec StageRecord) error {
	_, err := s.exec(ctx,
		`INSERT OR REPLACE INTO stage_results (run_id, stage, name, outcome, reason, duration_ms, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, rec.Stage, rec.Name, rec.Outcome, rec.Reason, rec.Duration.Milliseconds(), rec.Error,
	)
	if err != nil {
		return fmt.Errorf("history: record stage %d of %s: %w", rec.Stage, runID, err)
	}
	return nil
}

// Finish marks a run terminal.
func (s *Store) Finish(ctx context.Context, run Run) error {
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now()
	}
	res, err := s.exec(ctx,
		`UPDATE runs SET status = ?, failed_stage = ?, reason = ?, error = ?, finished_at = ? WHERE id = ?`,
		string(run.Status), run.FailedStage, run.Reason, run.Error, run.FinishedAt.UTC().Format(timeLayout), run.ID,
	)
	if err != nil {
		return fmt.Errorf("history: finish run %s: %w", run.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("history: finish run %s: not found", run.ID)
	}
	return nil
}

// List returns the most recent runs, newest first, with their stages.
func (s *Store) List(ctx context.Context, opts ListOptions) ([]Run, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	query := `SELECT id, folder, steps, force, status, failed_stage, reason, error, started_at, finished_at FROM runs`
	args := []any{}
	if folder := strings.TrimSpace(opts.Folder); folder != "" {
		query += ` WHERE folder = ?`
		args = append(args, folder)
	}
	query += ` ORDER BY started_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("history: list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: list runs: %w", err)
	}
	for i := range runs {
		stages, err := s.stages(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Stages = stages
	}
	return runs, nil
}

// Get returns one run, or nil when the id is unknown.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, folder, steps, force, status, failed_stage, reason, error, started_at, finished_at FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if run.Stages, err = s.stages(ctx, id); err != nil {
		return nil, err
	}
	return &run, nil
}

func (s *Store) stages(ctx context.Context, runID string) ([]StageRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT stage, name, outcome, reason, duration_ms, error FROM stage_results WHERE run_id = ? ORDER BY stage`, runID)
	if err != nil {
		return nil, fmt.Errorf("history: load stages of %s: %w", runID, err)
	}
	defer rows.Close()
	var out []StageRecord
	for rows.Next() {
		var (
			rec        StageRecord
			durationMS int64
		)
		if err := rows.Scan(&rec.Stage, &rec.Name, &rec.Outcome, &rec.Reason, &durationMS, &rec.Error); err != nil {
			return nil, fmt.Errorf("history: scan stage: %w", err)
		}
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		out = append(out, rec)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run        Run
		force      int
		status     string
		startedAt  string
		finishedAt sql.NullString
	)
	if err := row.Scan(&run.ID, &run.Folder, &run.Steps, &force, &status, &run.FailedStage,
		&run.Reason, &run.Error, &startedAt, &finishedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return run, err
		}
		return run, fmt.Errorf("history: scan run: %w", err)
	}
	run.Force = force != 0
	run.Status = Status(status)
	run.StartedAt = parseTime(startedAt)
	if finishedAt.Valid {
		run.FinishedAt = parseTime(finishedAt.String)
	}
	return run, nil
}

func parseTime(value string) time.Time {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
