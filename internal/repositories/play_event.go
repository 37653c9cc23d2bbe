package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/playsync/internal/models"
	"github.com/desertthunder/playsync/internal/shared"
)

var _ models.Repository[*models.PlayEvent] = (*PlayEventRepository)(nil)

// PlayEventRepository implements models.Repository[*models.PlayEvent].
//
// Events are append-only: Update is not supported.
type PlayEventRepository struct {
	db *sql.DB
}

// NewPlayEventRepository creates a new PlayEventRepository with the given database connection
func NewPlayEventRepository(db *sql.DB) *PlayEventRepository {
	return &PlayEventRepository{db: db}
}

const eventColumns = `
	id, run_id, record_index, title, artist, attempt, success, recoverable,
	message, track_id, created_at
`

// Create inserts a new event with a generated ID
func (r *PlayEventRepository) Create(ev *models.PlayEvent) error {
	if err := ev.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	id := shared.GenerateID()
	ev.SetID(id)

	query := `INSERT INTO play_events (` + eventColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.Exec(query,
		id,
		ev.RunID(),
		ev.RecordIndex(),
		ev.Title(),
		ev.Artist(),
		ev.Attempt(),
		ev.Success(),
		ev.Recoverable(),
		ev.Message(),
		ev.TrackID(),
		ev.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert play event: %w", err)
	}

	return nil
}

// Get retrieves an event by ID
func (r *PlayEventRepository) Get(id string) (*models.PlayEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM play_events WHERE id = ?`

	ev, err := r.scan(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("play event not found: %s", id)
	}
	return ev, err
}

// Update always fails; recorded attempts are never rewritten.
func (r *PlayEventRepository) Update(ev *models.PlayEvent) error {
	return fmt.Errorf("%w: play events are append-only", shared.ErrNotImplemented)
}

// Delete removes a single event
func (r *PlayEventRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM play_events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete play event: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("play event not found: %s", id)
	}

	return nil
}

// List retrieves events in the order they were made.
//
// Supported criteria: "run_id" (string), "success" (bool), "record_index" (int).
func (r *PlayEventRepository) List(criteria map[string]any) ([]*models.PlayEvent, error) {
	query := `SELECT ` + eventColumns + ` FROM play_events WHERE 1 = 1`
	args := []any{}

	if runID, ok := criteria["run_id"].(string); ok && runID != "" {
		query += " AND run_id = ?"
		args = append(args, runID)
	}

	if success, ok := criteria["success"].(bool); ok {
		query += " AND success = ?"
		args = append(args, success)
	}

	if idx, ok := criteria["record_index"].(int); ok && idx > 0 {
		query += " AND record_index = ?"
		args = append(args, idx)
	}

	query += " ORDER BY record_index ASC, attempt ASC, created_at ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query play events: %w", err)
	}
	defer rows.Close()

	var events []*models.PlayEvent
	for rows.Next() {
		ev, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return events, nil
}

func (r *PlayEventRepository) scan(row scanner) (*models.PlayEvent, error) {
	var (
		id          string
		runID       string
		recordIndex int
		title       string
		artist      string
		attempt     int
		success     bool
		recoverable bool
		message     string
		trackID     string
		createdAt   time.Time
	)

	err := row.Scan(
		&id, &runID, &recordIndex, &title, &artist, &attempt, &success, &recoverable,
		&message, &trackID, &createdAt,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan play event: %w", err)
	}

	return models.RestorePlayEvent(id, runID, recordIndex, title, artist, attempt, success, recoverable, message, trackID, createdAt), nil
}
