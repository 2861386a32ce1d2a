package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/loreweave/loreweave/internal/models"
)

// Change-event repository errors.
var (
	ErrEventNotFound = errors.New("event not found")
	ErrInvalidEvent  = errors.New("invalid event")
)

// ChangeEventRepository handles the attribute-change event log.
// Rows are totally ordered by (timestamp, id), the same order the
// resolver uses to break same-timestamp ties.
type ChangeEventRepository struct {
	db *DB
}

// NewChangeEventRepository creates a new ChangeEventRepository.
func NewChangeEventRepository(db *DB) *ChangeEventRepository {
	return &ChangeEventRepository{db: db}
}

// ChangeEventQuery defines filters for querying the event log.
type ChangeEventQuery struct {
	ObjectID    *string  // Filter by object
	AttributeID *string  // Filter by attribute
	Since       *float64 // Events at or after this story time (inclusive)
	Until       *float64 // Events before this story time (exclusive)
	Cursor      string   // Pagination cursor (event ID)
	Limit       int      // Max results to return
}

// ChangeEventPage is a page of query results.
type ChangeEventPage struct {
	Events     []*models.ChangeEvent
	NextCursor string
}

// Append validates and stores a new event, assigning an ID when the
// caller left it empty.
func (r *ChangeEventRepository) Append(ctx context.Context, event *models.ChangeEvent) error {
	if err := event.Validate(); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidEvent, err)
	}

	if event.ID == "" {
		event.ID = uuid.New().String()
	}

	newValueJSON, err := json.Marshal(event.NewValue)
	if err != nil {
		return fmt.Errorf("failed to marshal new value: %w", err)
	}

	var oldValueJSON *string
	if event.OldValue != nil {
		data, err := json.Marshal(event.OldValue)
		if err != nil {
			return fmt.Errorf("failed to marshal old value: %w", err)
		}
		s := string(data)
		oldValueJSON = &s
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO change_events (
			id, timestamp, object_id, attribute_id, new_value_json, old_value_json
		) VALUES (?, ?, ?, ?, ?, ?)
	`,
		event.ID,
		event.Timestamp,
		event.ObjectID,
		event.AttributeID,
		string(newValueJSON),
		oldValueJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to insert change event: %w", err)
	}
	return nil
}

// Get retrieves an event by ID. Returns ErrEventNotFound when absent.
func (r *ChangeEventRepository) Get(ctx context.Context, id string) (*models.ChangeEvent, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, timestamp, object_id, attribute_id, new_value_json, old_value_json
		FROM change_events WHERE id = ?
	`, id)
	return r.scanEvent(row.Scan)
}

// Query retrieves events matching the filters, ordered by
// (timestamp, id), with cursor pagination.
func (r *ChangeEventRepository) Query(ctx context.Context, q ChangeEventQuery) (*ChangeEventPage, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT id, timestamp, object_id, attribute_id, new_value_json, old_value_json FROM change_events WHERE 1=1`
	args := []any{}

	if q.ObjectID != nil {
		query += ` AND object_id = ?`
		args = append(args, *q.ObjectID)
	}
	if q.AttributeID != nil {
		query += ` AND attribute_id = ?`
		args = append(args, *q.AttributeID)
	}
	if q.Since != nil {
		query += ` AND timestamp >= ?`
		args = append(args, *q.Since)
	}
	if q.Until != nil {
		query += ` AND timestamp < ?`
		args = append(args, *q.Until)
	}
	if q.Cursor != "" {
		query += ` AND (timestamp, id) > (SELECT timestamp, id FROM change_events WHERE id = ?)`
		args = append(args, q.Cursor)
	}

	query += ` ORDER BY timestamp, id LIMIT ?`
	args = append(args, limit+1) // one extra row decides whether a next page exists

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query change events: %w", err)
	}
	defer rows.Close()

	var events []*models.ChangeEvent
	for rows.Next() {
		event, err := r.scanEvent(rows.Scan)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating change events: %w", err)
	}

	page := &ChangeEventPage{}
	if len(events) > limit {
		page.Events = events[:limit]
		page.NextCursor = events[limit-1].ID
	} else {
		page.Events = events
	}
	return page, nil
}

// ListByObject retrieves every event for one object, ordered by
// (timestamp, id). This is the resolver's input.
func (r *ChangeEventRepository) ListByObject(ctx context.Context, objectID string) ([]models.ChangeEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, timestamp, object_id, attribute_id, new_value_json, old_value_json
		FROM change_events
		WHERE object_id = ?
		ORDER BY timestamp, id
	`, objectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query change events: %w", err)
	}
	defer rows.Close()

	var events []models.ChangeEvent
	for rows.Next() {
		event, err := r.scanEvent(rows.Scan)
		if err != nil {
			return nil, err
		}
		events = append(events, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating change events: %w", err)
	}
	return events, nil
}

// Retime rewrites an event's timestamp in place, preserving its ID so
// the same-timestamp tie-break identity survives drag-driven moves.
func (r *ChangeEventRepository) Retime(ctx context.Context, id string, timestamp float64) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE change_events SET timestamp = ? WHERE id = ?
	`, timestamp, id)
	if err != nil {
		return fmt.Errorf("failed to retime change event: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrEventNotFound, id)
	}
	return nil
}

// Delete removes an event by ID.
func (r *ChangeEventRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM change_events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete change event: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrEventNotFound, id)
	}
	return nil
}

// DeleteByObject removes every event referencing an object. Used when
// the application chooses to cascade an object deletion.
func (r *ChangeEventRepository) DeleteByObject(ctx context.Context, objectID string) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM change_events WHERE object_id = ?`, objectID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete change events: %w", err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get deleted count: %w", err)
	}
	return count, nil
}

// Count returns the total number of events in the log.
func (r *ChangeEventRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM change_events`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count change events: %w", err)
	}
	return count, nil
}

func (r *ChangeEventRepository) scanEvent(scan func(...any) error) (*models.ChangeEvent, error) {
	var event models.ChangeEvent
	var newValueJSON string
	var oldValueJSON sql.NullString

	if err := scan(
		&event.ID,
		&event.Timestamp,
		&event.ObjectID,
		&event.AttributeID,
		&newValueJSON,
		&oldValueJSON,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to scan change event: %w", err)
	}

	if err := json.Unmarshal([]byte(newValueJSON), &event.NewValue); err != nil {
		return nil, fmt.Errorf("failed to parse new value: %w", err)
	}
	if oldValueJSON.Valid {
		var old models.Value
		if err := json.Unmarshal([]byte(oldValueJSON.String), &old); err != nil {
			r.db.logger.Warn().Err(err).Str("event_id", event.ID).Msg("failed to parse old value")
		} else {
			event.OldValue = &old
		}
	}
	return &event, nil
}
