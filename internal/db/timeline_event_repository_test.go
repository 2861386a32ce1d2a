package db

import (
	"context"
	"errors"
	"testing"

	"github.com/loreweave/loreweave/internal/models"
)

func TestTimelineEventRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewTimelineEventRepository(openTestDB(t))

	end := 30.0
	event := &models.TimelineEvent{
		Title:        "The Siege of Bramblekeep",
		Start:        12,
		End:          &end,
		Category:     "war",
		Participants: []string{"aldric", "bramblekeep"},
	}
	if err := repo.Create(ctx, event); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if event.ID == "" {
		t.Fatal("Create did not set event ID")
	}

	got, err := repo.Get(ctx, event.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != event.Title || got.Start != 12 || got.Category != "war" {
		t.Fatalf("unexpected event: %+v", got)
	}
	if got.End == nil || *got.End != 30 {
		t.Fatalf("unexpected end: %+v", got.End)
	}
	if len(got.Participants) != 2 || got.Participants[0] != "aldric" {
		t.Fatalf("unexpected participants: %+v", got.Participants)
	}
}

func TestTimelineEventRepositoryInstantaneous(t *testing.T) {
	ctx := context.Background()
	repo := NewTimelineEventRepository(openTestDB(t))

	event := &models.TimelineEvent{ID: "tl-1", Title: "Coronation", Start: 5}
	if err := repo.Create(ctx, event); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.Get(ctx, "tl-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.End != nil {
		t.Fatalf("expected nil end, got %v", *got.End)
	}
	if got.EndOrStart() != 5 {
		t.Fatalf("expected zero-width interval at 5, got %g", got.EndOrStart())
	}
}

func TestTimelineEventRepositoryRejectsInvertedInterval(t *testing.T) {
	ctx := context.Background()
	repo := NewTimelineEventRepository(openTestDB(t))

	end := 4.0
	event := &models.TimelineEvent{Title: "Backwards", Start: 10, End: &end}
	if err := repo.Create(ctx, event); err == nil {
		t.Fatal("expected validation error")
	}

	if err := repo.Retime(ctx, "any", 10, &end); err == nil {
		t.Fatal("expected retime error for inverted interval")
	}
}

func TestTimelineEventRepositoryListOrdersByStartThenID(t *testing.T) {
	ctx := context.Background()
	repo := NewTimelineEventRepository(openTestDB(t))

	for _, ev := range []models.TimelineEvent{
		{ID: "b", Title: "Second at 10", Start: 10},
		{ID: "a", Title: "First at 10", Start: 10},
		{ID: "c", Title: "Earlier", Start: 5},
	} {
		ev := ev
		if err := repo.Create(ctx, &ev); err != nil {
			t.Fatalf("Create %s: %v", ev.ID, err)
		}
	}

	events, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"c", "a", "b"}
	for i, ev := range events {
		if ev.ID != want[i] {
			t.Fatalf("expected order %v, got %s at %d", want, ev.ID, i)
		}
	}
}

func TestTimelineEventRepositoryRetime(t *testing.T) {
	ctx := context.Background()
	repo := NewTimelineEventRepository(openTestDB(t))

	end := 20.0
	event := &models.TimelineEvent{ID: "tl-1", Title: "War", Start: 10, End: &end}
	if err := repo.Create(ctx, event); err != nil {
		t.Fatalf("Create: %v", err)
	}

	newEnd := 60.0
	if err := repo.Retime(ctx, "tl-1", 50, &newEnd); err != nil {
		t.Fatalf("Retime: %v", err)
	}

	got, err := repo.Get(ctx, "tl-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Start != 50 || got.End == nil || *got.End != 60 {
		t.Fatalf("retime not applied: %+v", got)
	}
	if got.Duration() != 10 {
		t.Fatalf("duration changed: %g", got.Duration())
	}

	if err := repo.Retime(ctx, "missing", 1, nil); !errors.Is(err, ErrTimelineEventNotFound) {
		t.Fatalf("expected ErrTimelineEventNotFound, got %v", err)
	}
}

func TestTimelineEventRepositoryDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewTimelineEventRepository(openTestDB(t))

	event := &models.TimelineEvent{ID: "tl-1", Title: "War", Start: 10}
	if err := repo.Create(ctx, event); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Delete(ctx, "tl-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.Get(ctx, "tl-1"); !errors.Is(err, ErrTimelineEventNotFound) {
		t.Fatalf("expected ErrTimelineEventNotFound, got %v", err)
	}
}
