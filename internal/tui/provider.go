package tui

import (
	"context"

	"github.com/loreweave/loreweave/internal/db"
	"github.com/loreweave/loreweave/internal/models"
)

// Provider supplies the editor with world data and applies edits.
// Tests substitute an in-memory implementation.
type Provider interface {
	// Spans returns every narrative span in (start, id) order.
	Spans(ctx context.Context) ([]models.TimelineEvent, error)

	// RetimeSpan moves a span to a new start, keeping its identity.
	RetimeSpan(ctx context.Context, id string, start float64, end *float64) error

	// Object fetches a world object by ID.
	Object(ctx context.Context, id string) (*models.Object, error)

	// ChangeEvents returns an object's change events in (timestamp, id)
	// order, ready for attribute resolution.
	ChangeEvents(ctx context.Context, objectID string) ([]models.ChangeEvent, error)
}

// DatabaseProvider serves the editor from the SQLite database.
type DatabaseProvider struct {
	spans   *db.TimelineEventRepository
	objects *db.ObjectRepository
	events  *db.ChangeEventRepository
}

// NewDatabaseProvider wraps the database repositories behind Provider.
func NewDatabaseProvider(database *db.DB) *DatabaseProvider {
	return &DatabaseProvider{
		spans:   db.NewTimelineEventRepository(database),
		objects: db.NewObjectRepository(database),
		events:  db.NewChangeEventRepository(database),
	}
}

func (p *DatabaseProvider) Spans(ctx context.Context) ([]models.TimelineEvent, error) {
	return p.spans.List(ctx)
}

func (p *DatabaseProvider) RetimeSpan(ctx context.Context, id string, start float64, end *float64) error {
	return p.spans.Retime(ctx, id, start, end)
}

func (p *DatabaseProvider) Object(ctx context.Context, id string) (*models.Object, error) {
	return p.objects.Get(ctx, id)
}

func (p *DatabaseProvider) ChangeEvents(ctx context.Context, objectID string) ([]models.ChangeEvent, error) {
	return p.events.ListByObject(ctx, objectID)
}
