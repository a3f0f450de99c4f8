package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store manages run history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the ledger database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure ledger directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// BeginRun inserts a running row for a new run.
func (s *Store) BeginRun(ctx context.Context, id, environment, root string) (*Run, error) {
	if id == "" {
		return nil, errors.New("run id is required")
	}
	now := time.Now().UTC()
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO runs (id, environment, root, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		id,
		environment,
		root,
		StatusRunning,
		now.Format(timeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return s.GetRun(ctx, id)
}

// FinishRun stores the terminal status of a run.
func (s *Store) FinishRun(ctx context.Context, id string, status Status, errorMessage string) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE runs SET status = ?, error_message = ?, finished_at = ? WHERE id = ?`,
		status,
		nullableString(errorMessage),
		now.Format(timeLayout),
		id,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("finish run: run %s not found", id)
	}
	return nil
}

// GetRun fetches a run by identifier. A missing run returns nil, nil.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first. A limit <= 0 returns all runs.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// StartStage appends a running stage event and returns its identifier.
func (s *Store) StartStage(ctx context.Context, runID, stage string) (int64, error) {
	res, err := s.db.ExecContext(
		ctx,
		`INSERT INTO stage_events (run_id, stage, status, started_at) VALUES (?, ?, ?, ?)`,
		runID,
		stage,
		StatusRunning,
		time.Now().UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("insert stage event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// FinishStage stores the terminal status of a stage event.
func (s *Store) FinishStage(ctx context.Context, eventID int64, status Status, detail string) error {
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE stage_events SET status = ?, detail = ?, finished_at = ? WHERE id = ?`,
		status,
		nullableString(detail),
		time.Now().UTC().Format(timeLayout),
		eventID,
	)
	if err != nil {
		return fmt.Errorf("finish stage event: %w", err)
	}
	return nil
}

// StageEvents returns the stage events of a run in execution order.
func (s *Store) StageEvents(ctx context.Context, runID string) ([]StageEvent, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, run_id, stage, status, detail, started_at, finished_at
         FROM stage_events WHERE run_id = ? ORDER BY id`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query stage events: %w", err)
	}
	defer rows.Close()

	var events []StageEvent
	for rows.Next() {
		var (
			event       StageEvent
			statusStr   string
			detail      sql.NullString
			startedRaw  string
			finishedRaw sql.NullString
		)
		if err := rows.Scan(&event.ID, &event.RunID, &event.Stage, &statusStr, &detail, &startedRaw, &finishedRaw); err != nil {
			return nil, err
		}
		event.Status = Status(statusStr)
		event.Detail = detail.String
		if started, err := parseTimeString(startedRaw); err == nil {
			event.StartedAt = started
		}
		if finishedRaw.Valid {
			if finished, err := parseTimeString(finishedRaw.String); err == nil {
				event.FinishedAt = &finished
			}
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// RecordPlacements stores placements in a single transaction.
func (s *Store) RecordPlacements(ctx context.Context, placements []Placement) error {
	if len(placements) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin placements tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO placements (run_id, stage, split, label, file) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare placement insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range placements {
		if _, err := stmt.ExecContext(ctx, p.RunID, p.Stage, p.Split, p.Label, p.File); err != nil {
			return fmt.Errorf("insert placement %s: %w", p.File, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit placements: %w", err)
	}
	return nil
}

// Placements returns the placements a stage recorded for a run, ordered by
// split, label and file.
func (s *Store) Placements(ctx context.Context, runID, stage string) ([]Placement, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT run_id, stage, split, label, file FROM placements
         WHERE run_id = ? AND stage = ? ORDER BY split, label, file`,
		runID,
		stage,
	)
	if err != nil {
		return nil, fmt.Errorf("query placements: %w", err)
	}
	defer rows.Close()

	var out []Placement
	for rows.Next() {
		var p Placement
		if err := rows.Scan(&p.RunID, &p.Stage, &p.Split, &p.Label, &p.File); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// PlacementCounts returns split -> label -> count for a run and stage.
func (s *Store) PlacementCounts(ctx context.Context, runID, stage string) (map[string]map[string]int, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT split, label, COUNT(1) FROM placements WHERE run_id = ? AND stage = ? GROUP BY split, label`,
		runID,
		stage,
	)
	if err != nil {
		return nil, fmt.Errorf("placement counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]map[string]int)
	for rows.Next() {
		var (
			split string
			label string
			n     int
		)
		if err := rows.Scan(&split, &label, &n); err != nil {
			return nil, err
		}
		if counts[split] == nil {
			counts[split] = make(map[string]int)
		}
		counts[split][label] = n
	}
	return counts, rows.Err()
}

const runColumns = "id, environment, root, status, error_message, started_at, finished_at"

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run          Run
		statusStr    string
		errorMessage sql.NullString
		startedRaw   string
		finishedRaw  sql.NullString
	)
	if err := scanner.Scan(&run.ID, &run.Environment, &run.Root, &statusStr, &errorMessage, &startedRaw, &finishedRaw); err != nil {
		return nil, err
	}
	run.Status = Status(statusStr)
	run.ErrorMessage = errorMessage.String
	if started, err := parseTimeString(startedRaw); err == nil {
		run.StartedAt = started
	}
	if finishedRaw.Valid {
		if finished, err := parseTimeString(finishedRaw.String); err == nil {
			run.FinishedAt = &finished
		}
	}
	return &run, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

// timeLayout keeps a fixed fraction width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
