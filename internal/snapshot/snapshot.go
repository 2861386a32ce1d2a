// Package snapshot exports and imports the whole world (objects,
// change events, and narrative events) as a single YAML document.
package snapshot

import (
	"context"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/loreweave/loreweave/internal/db"
	"github.com/loreweave/loreweave/internal/models"
)

// FormatVersion identifies the snapshot layout. Bumped on breaking
// changes so imports can refuse documents they do not understand.
const FormatVersion = 1

// World is the full exportable state.
type World struct {
	Version        int                    `yaml:"version"`
	Objects        []models.Object        `yaml:"objects,omitempty"`
	ChangeEvents   []models.ChangeEvent   `yaml:"change_events,omitempty"`
	TimelineEvents []models.TimelineEvent `yaml:"timeline_events,omitempty"`
}

// Collect reads the entire world out of the database.
func Collect(ctx context.Context, database *db.DB) (*World, error) {
	world := &World{Version: FormatVersion}

	objects, err := db.NewObjectRepository(database).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to collect objects: %w", err)
	}
	for _, obj := range objects {
		world.Objects = append(world.Objects, *obj)
	}

	eventRepo := db.NewChangeEventRepository(database)
	cursor := ""
	for {
		page, err := eventRepo.Query(ctx, db.ChangeEventQuery{Cursor: cursor, Limit: 500})
		if err != nil {
			return nil, fmt.Errorf("failed to collect change events: %w", err)
		}
		for _, ev := range page.Events {
			world.ChangeEvents = append(world.ChangeEvents, *ev)
		}
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	timelineEvents, err := db.NewTimelineEventRepository(database).List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to collect timeline events: %w", err)
	}
	world.TimelineEvents = timelineEvents

	return world, nil
}

// Restore writes a world into the database. Existing rows with the
// same IDs cause errors; restoring into a fresh database is the
// supported path.
func Restore(ctx context.Context, database *db.DB, world *World) error {
	if err := Validate(world); err != nil {
		return err
	}

	objectRepo := db.NewObjectRepository(database)
	for i := range world.Objects {
		if err := objectRepo.Create(ctx, &world.Objects[i]); err != nil {
			return fmt.Errorf("failed to restore object %s: %w", world.Objects[i].ID, err)
		}
	}

	eventRepo := db.NewChangeEventRepository(database)
	for i := range world.ChangeEvents {
		if err := eventRepo.Append(ctx, &world.ChangeEvents[i]); err != nil {
			return fmt.Errorf("failed to restore change event %s: %w", world.ChangeEvents[i].ID, err)
		}
	}

	timelineRepo := db.NewTimelineEventRepository(database)
	for i := range world.TimelineEvents {
		if err := timelineRepo.Create(ctx, &world.TimelineEvents[i]); err != nil {
			return fmt.Errorf("failed to restore timeline event %s: %w", world.TimelineEvents[i].ID, err)
		}
	}
	return nil
}

// Write encodes a world as YAML.
func Write(w io.Writer, world *World) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(world); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return encoder.Close()
}

// Read decodes and validates a YAML world document.
func Read(r io.Reader) (*World, error) {
	var world World
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&world); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if err := Validate(&world); err != nil {
		return nil, err
	}
	return &world, nil
}

// Validate checks a world document entity by entity so a malformed
// import is rejected before anything touches the database.
func Validate(world *World) error {
	if world.Version > FormatVersion {
		return fmt.Errorf("snapshot version %d is newer than supported version %d", world.Version, FormatVersion)
	}
	for i := range world.Objects {
		if err := world.Objects[i].Validate(); err != nil {
			return fmt.Errorf("invalid object %s: %w", world.Objects[i].ID, err)
		}
	}
	for i := range world.ChangeEvents {
		if err := world.ChangeEvents[i].Validate(); err != nil {
			return fmt.Errorf("invalid change event %s: %w", world.ChangeEvents[i].ID, err)
		}
	}
	for i := range world.TimelineEvents {
		if err := world.TimelineEvents[i].Validate(); err != nil {
			return fmt.Errorf("invalid timeline event %s: %w", world.TimelineEvents[i].ID, err)
		}
	}
	return nil
}
