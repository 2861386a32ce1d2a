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

// ErrTimelineEventNotFound is returned for queries on unknown
// narrative event IDs.
var ErrTimelineEventNotFound = errors.New("timeline event not found")

// TimelineEventRepository handles narrative interval persistence.
type TimelineEventRepository struct {
	db *DB
}

// NewTimelineEventRepository creates a new TimelineEventRepository.
func NewTimelineEventRepository(db *DB) *TimelineEventRepository {
	return &TimelineEventRepository{db: db}
}

// Create validates and stores a narrative event, assigning an ID when
// the caller left it empty. Inverted intervals never reach the table.
func (r *TimelineEventRepository) Create(ctx context.Context, event *models.TimelineEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}
	if event.ID == "" {
		event.ID = uuid.New().String()
	}

	participantsJSON, err := marshalParticipants(event.Participants)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO timeline_events (id, title, start_time, end_time, category, participants_json)
		VALUES (?, ?, ?, ?, ?, ?)
	`, event.ID, event.Title, event.Start, event.End, event.Category, participantsJSON)
	if err != nil {
		return fmt.Errorf("failed to insert timeline event: %w", err)
	}
	return nil
}

// Get retrieves a narrative event by ID.
func (r *TimelineEventRepository) Get(ctx context.Context, id string) (*models.TimelineEvent, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, start_time, end_time, category, participants_json
		FROM timeline_events WHERE id = ?
	`, id)
	return r.scanEvent(row.Scan)
}

// List retrieves all narrative events ordered by (start, id), the
// same total order the track assignor sorts by.
func (r *TimelineEventRepository) List(ctx context.Context) ([]models.TimelineEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, start_time, end_time, category, participants_json
		FROM timeline_events
		ORDER BY start_time, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query timeline events: %w", err)
	}
	defer rows.Close()

	var events []models.TimelineEvent
	for rows.Next() {
		event, err := r.scanEvent(rows.Scan)
		if err != nil {
			return nil, err
		}
		events = append(events, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating timeline events: %w", err)
	}
	return events, nil
}

// Update replaces an existing narrative event's fields.
func (r *TimelineEventRepository) Update(ctx context.Context, event *models.TimelineEvent) error {
	if err := event.Validate(); err != nil {
		return err
	}

	participantsJSON, err := marshalParticipants(event.Participants)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE timeline_events
		SET title = ?, start_time = ?, end_time = ?, category = ?, participants_json = ?
		WHERE id = ?
	`, event.Title, event.Start, event.End, event.Category, participantsJSON, event.ID)
	if err != nil {
		return fmt.Errorf("failed to update timeline event: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrTimelineEventNotFound, event.ID)
	}
	return nil
}

// Retime moves a narrative event to a new start, preserving ID and
// duration. End is nil for instantaneous events.
func (r *TimelineEventRepository) Retime(ctx context.Context, id string, start float64, end *float64) error {
	if end != nil && *end < start {
		return fmt.Errorf("retime %s: end %g before start %g", id, *end, start)
	}
	result, err := r.db.ExecContext(ctx, `
		UPDATE timeline_events SET start_time = ?, end_time = ? WHERE id = ?
	`, start, end, id)
	if err != nil {
		return fmt.Errorf("failed to retime timeline event: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrTimelineEventNotFound, id)
	}
	return nil
}

// Delete removes a narrative event by ID.
func (r *TimelineEventRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM timeline_events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete timeline event: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrTimelineEventNotFound, id)
	}
	return nil
}

func (r *TimelineEventRepository) scanEvent(scan func(...any) error) (*models.TimelineEvent, error) {
	var event models.TimelineEvent
	var endTime sql.NullFloat64
	var category sql.NullString
	var participantsJSON sql.NullString

	if err := scan(
		&event.ID,
		&event.Title,
		&event.Start,
		&endTime,
		&category,
		&participantsJSON,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTimelineEventNotFound
		}
		return nil, fmt.Errorf("failed to scan timeline event: %w", err)
	}

	if endTime.Valid {
		end := endTime.Float64
		event.End = &end
	}
	if category.Valid {
		event.Category = category.String
	}
	if participantsJSON.Valid && participantsJSON.String != "" {
		if err := json.Unmarshal([]byte(participantsJSON.String), &event.Participants); err != nil {
			r.db.logger.Warn().Err(err).Str("event_id", event.ID).Msg("failed to parse participants")
		}
	}
	return &event, nil
}

func marshalParticipants(participants []string) (*string, error) {
	if len(participants) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(participants)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal participants: %w", err)
	}
	s := string(data)
	return &s, nil
}
