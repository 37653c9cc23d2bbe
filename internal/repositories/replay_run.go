package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/playsync/internal/models"
	"github.com/desertthunder/playsync/internal/shared"
)

var _ models.Repository[*models.ReplayRun] = (*RunRepository)(nil)

// RunRepository implements models.Repository[*models.ReplayRun] for the replay journal.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

const runColumns = `
	id, sequence, input_path, status, records_total, tracks_processed,
	plays_added, tracks_skipped, tracks_not_found, started_at, finished_at,
	created_at, updated_at
`

// Create inserts a new run into the database with generated ID and sequence
func (r *RunRepository) Create(run *models.ReplayRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "replay_runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	run.SetID(id)
	run.SetSequence(sequence)

	stats := run.Stats()
	query := `INSERT INTO replay_runs (` + runColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = r.db.Exec(query,
		id,
		sequence,
		run.InputPath(),
		run.Status(),
		stats.TotalRecords,
		stats.TracksProcessed,
		stats.PlaysAdded,
		stats.TracksSkipped,
		stats.TracksNotFound,
		run.StartedAt(),
		run.FinishedAt(),
		run.CreatedAt(),
		run.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	return nil
}

// Get retrieves a run by ID
func (r *RunRepository) Get(id string) (*models.ReplayRun, error) {
	query := `SELECT ` + runColumns + ` FROM replay_runs WHERE id = ?`
	return r.scanOne(r.db.QueryRow(query, id))
}

// GetBySequence retrieves a run by its sequence number, as shown by `history list`
func (r *RunRepository) GetBySequence(sequence int) (*models.ReplayRun, error) {
	query := `SELECT ` + runColumns + ` FROM replay_runs WHERE sequence = ?`
	return r.scanOne(r.db.QueryRow(query, sequence))
}

// Update writes the run's status, counters and timestamps
func (r *RunRepository) Update(run *models.ReplayRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	run.SetUpdatedAt(now)
	stats := run.Stats()

	query := `
		UPDATE replay_runs
		SET status = ?, records_total = ?, tracks_processed = ?, plays_added = ?,
			tracks_skipped = ?, tracks_not_found = ?, finished_at = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query,
		run.Status(),
		stats.TotalRecords,
		stats.TracksProcessed,
		stats.PlaysAdded,
		stats.TracksSkipped,
		stats.TracksNotFound,
		run.FinishedAt(),
		now,
		run.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrRunNotFound, run.ID())
	}

	return nil
}

// Delete removes a run and, through the foreign key, its events
func (r *RunRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM replay_runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrRunNotFound, id)
	}

	return nil
}

// List retrieves runs matching the given criteria, newest first.
//
// Supported criteria: "status" (string), "input_path" (string), "limit" (int).
func (r *RunRepository) List(criteria map[string]any) ([]*models.ReplayRun, error) {
	query := `SELECT ` + runColumns + ` FROM replay_runs WHERE 1 = 1`
	args := []any{}

	if status, ok := criteria["status"].(string); ok && status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}

	if inputPath, ok := criteria["input_path"].(string); ok && inputPath != "" {
		query += " AND input_path = ?"
		args = append(args, inputPath)
	}

	query += " ORDER BY sequence DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.ReplayRun
	for rows.Next() {
		run, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

// scanOne scans a single [sql.Row] into a [models.ReplayRun]
func (r *RunRepository) scanOne(row *sql.Row) (*models.ReplayRun, error) {
	run, err := r.scan(row)
	if err == sql.ErrNoRows {
		return nil, shared.ErrRunNotFound
	}
	return run, err
}

type scanner interface {
	Scan(dest ...any) error
}

// scan reads one row from either [sql.Row] or [sql.Rows]
func (r *RunRepository) scan(row scanner) (*models.ReplayRun, error) {
	var (
		id         string
		sequence   int
		inputPath  string
		status     string
		stats      models.RunStatistics
		startedAt  time.Time
		finishedAt sql.NullTime
		createdAt  time.Time
		updatedAt  time.Time
	)

	err := row.Scan(
		&id, &sequence, &inputPath, &status, &stats.TotalRecords, &stats.TracksProcessed,
		&stats.PlaysAdded, &stats.TracksSkipped, &stats.TracksNotFound, &startedAt, &finishedAt,
		&createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	run := models.NewReplayRun(sequence, inputPath)
	run.SetID(id)
	run.SetStatus(status)
	run.SetStartedAt(startedAt)
	run.SetCreatedAt(createdAt)
	run.SetUpdatedAt(updatedAt)

	stats.StartedAt = startedAt
	stats.Stopped = status == models.RunStatusStopped
	if finishedAt.Valid {
		run.SetFinishedAt(&finishedAt.Time)
		stats.FinishedAt = finishedAt.Time
	}
	run.SetStats(stats)

	return run, nil
}
