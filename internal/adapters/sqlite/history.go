package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"quickshelf/internal/domain"
	"quickshelf/internal/ports"

	_ "modernc.org/sqlite"
)

const schemaVersion = "1"

// History implements ports.HistoryStore using SQLite. Timestamps are
// stored as unix nanoseconds so range queries stay simple integer
// comparisons.
type History struct {
	db     *sql.DB
	dbPath string
}

// Ensure History implements HistoryStore
var _ ports.HistoryStore = (*History)(nil)

// Open opens (creating if needed) the history database at path.
func Open(path string) (*History, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// Performance pragmas + schema in single batch (reduces round-trips)
	_, err = db.Exec(`
		PRAGMA synchronous = NORMAL;
		PRAGMA cache_size = -64000;
		PRAGMA temp_store = MEMORY;
		PRAGMA busy_timeout = 5000;

		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			root TEXT NOT NULL,
			started_at INTEGER NOT NULL,
			finished_at INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS actions (
			run_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			source TEXT NOT NULL,
			destination TEXT NOT NULL,
			category TEXT NOT NULL,
			status TEXT NOT NULL,
			reason TEXT NOT NULL DEFAULT '',
			detail TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (run_id, position)
		);
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
		CREATE INDEX IF NOT EXISTS idx_actions_status ON actions(status);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to setup history database: %w", err)
	}

	_, err = db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)`, schemaVersion)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to stamp schema version: %w", err)
	}

	return &History{db: db, dbPath: path}, nil
}

// Close closes the database connection
func (h *History) Close() error {
	if h.db != nil {
		return h.db.Close()
	}
	return nil
}

// Path returns the location of the backing database file.
func (h *History) Path() string {
	return h.dbPath
}

// Append records a completed run and its actions in one transaction.
func (h *History) Append(ctx context.Context, run *domain.Run) error {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, root, started_at, finished_at)
		VALUES (?, ?, ?, ?)
	`, run.ID, run.Root, run.StartedAt.UnixNano(), run.FinishedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", run.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO actions (run_id, position, source, destination, category, status, reason, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare action insert: %w", err)
	}
	defer stmt.Close()

	for i, action := range run.Actions {
		_, err := stmt.ExecContext(ctx, run.ID, i, action.Source, action.Destination,
			action.Category, string(action.Status), string(action.Reason), action.Detail)
		if err != nil {
			return fmt.Errorf("failed to insert action %d of run %s: %w", i, run.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run %s: %w", run.ID, err)
	}
	return nil
}

// AllRuns returns runs in chronological order, most recent last. A limit
// of 0 returns the full log.
func (h *History) AllRuns(ctx context.Context, limit int) ([]domain.Run, error) {
	query := `SELECT id, root, started_at, finished_at FROM runs ORDER BY started_at DESC, id DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.Run
	for rows.Next() {
		var run domain.Run
		var started, finished int64
		if err := rows.Scan(&run.ID, &run.Root, &started, &finished); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.StartedAt = time.Unix(0, started).UTC()
		run.FinishedAt = time.Unix(0, finished).UTC()
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := h.attachActions(ctx, runs); err != nil {
		return nil, err
	}

	// Flip from query order (newest first) to chronological.
	for i, j := 0, len(runs)-1; i < j; i, j = i+1, j-1 {
		runs[i], runs[j] = runs[j], runs[i]
	}
	return runs, nil
}

// LatestRun returns the most recent run, or nil when the log is empty.
func (h *History) LatestRun(ctx context.Context) (*domain.Run, error) {
	runs, err := h.AllRuns(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}

// attachActions loads the actions for every run in the slice, in the
// order they were recorded.
func (h *History) attachActions(ctx context.Context, runs []domain.Run) error {
	if len(runs) == 0 {
		return nil
	}

	index := make(map[string]int, len(runs))
	args := make([]any, 0, len(runs))
	for i, run := range runs {
		index[run.ID] = i
		args = append(args, run.ID)
	}

	query := fmt.Sprintf(`
		SELECT run_id, source, destination, category, status, reason, detail
		FROM actions
		WHERE run_id IN (%s)
		ORDER BY run_id, position
	`, makePlaceholders(len(runs)))

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query actions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var runID, status, reason string
		var action domain.MoveAction
		err := rows.Scan(&runID, &action.Source, &action.Destination,
			&action.Category, &status, &reason, &action.Detail)
		if err != nil {
			return fmt.Errorf("failed to scan action: %w", err)
		}

		parsed, ok := domain.ParseActionStatus(status)
		if !ok {
			return fmt.Errorf("unknown action status %q in run %s", status, runID)
		}
		action.Status = parsed
		action.Reason = domain.FailureReason(reason)

		i, ok := index[runID]
		if !ok {
			continue
		}
		runs[i].Actions = append(runs[i].Actions, action)
	}
	return rows.Err()
}

// RecentMoves returns successful moves from runs started at or after the
// cutoff, most recent run first.
func (h *History) RecentMoves(ctx context.Context, since time.Time) ([]domain.RunAction, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT a.run_id, a.source, a.destination, a.category, r.finished_at
		FROM actions a
		JOIN runs r ON r.id = a.run_id
		WHERE a.status = ? AND r.started_at >= ?
		ORDER BY r.started_at DESC, r.id DESC, a.position
	`, string(domain.StatusSucceeded), since.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("failed to query recent moves: %w", err)
	}
	defer rows.Close()

	var moves []domain.RunAction
	for rows.Next() {
		var move domain.RunAction
		var finished int64
		err := rows.Scan(&move.RunID, &move.Source, &move.Destination, &move.Category, &finished)
		if err != nil {
			return nil, fmt.Errorf("failed to scan move: %w", err)
		}
		move.Status = domain.StatusSucceeded
		move.MovedAt = time.Unix(0, finished).UTC()
		moves = append(moves, move)
	}
	return moves, rows.Err()
}

// CategoryCounts aggregates successful moves per category, busiest first.
func (h *History) CategoryCounts(ctx context.Context) ([]domain.CategoryCount, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT category, COUNT(1)
		FROM actions
		WHERE status = ?
		GROUP BY category
		ORDER BY COUNT(1) DESC, category
	`, string(domain.StatusSucceeded))
	if err != nil {
		return nil, fmt.Errorf("failed to query category counts: %w", err)
	}
	defer rows.Close()

	var counts []domain.CategoryCount
	for rows.Next() {
		var count domain.CategoryCount
		if err := rows.Scan(&count.Category, &count.Files); err != nil {
			return nil, fmt.Errorf("failed to scan category count: %w", err)
		}
		counts = append(counts, count)
	}
	return counts, rows.Err()
}

// ActivityByDay aggregates successful moves per UTC calendar day over the
// trailing window. Days without activity are absent from the result.
func (h *History) ActivityByDay(ctx context.Context, days int) ([]domain.DayCount, error) {
	if days < 1 {
		return nil, fmt.Errorf("activity window must be at least 1 day, got %d", days)
	}

	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, -(days - 1))

	rows, err := h.db.QueryContext(ctx, `
		SELECT date(r.started_at / 1000000000, 'unixepoch') AS day, COUNT(1)
		FROM actions a
		JOIN runs r ON r.id = a.run_id
		WHERE a.status = ? AND r.started_at >= ?
		GROUP BY day
		ORDER BY day
	`, string(domain.StatusSucceeded), start.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("failed to query activity: %w", err)
	}
	defer rows.Close()

	var activity []domain.DayCount
	for rows.Next() {
		var day domain.DayCount
		if err := rows.Scan(&day.Day, &day.Files); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activity = append(activity, day)
	}
	return activity, rows.Err()
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
