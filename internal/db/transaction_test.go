package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/loreweave/loreweave/internal/models"
)

func TestWithRetryRetriesOnBusy(t *testing.T) {
	ctx := context.Background()
	attempts := 0

	err := withRetry(ctx, 3, time.Millisecond, func() error {
		attempts++
		if attempts < 3 {
			return errors.New("database is locked")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestWithRetryStopsOnNonBusy(t *testing.T) {
	ctx := context.Background()
	attempts := 0

	err := withRetry(ctx, 3, time.Millisecond, func() error {
		attempts++
		return errors.New("boom")
	})

	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestWithRetryStopsAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	attempts := 0

	err := withRetry(ctx, 2, time.Millisecond, func() error {
		attempts++
		return errors.New("database is busy")
	})

	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
}

func TestTransactionWithRetry(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()
	attempts := 0

	err := database.TransactionWithRetry(ctx, 3, time.Millisecond, func(tx *sql.Tx) error {
		attempts++
		if attempts < 2 {
			return errors.New("database is locked")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
}

func TestObjectPurgeRemovesObjectAndEvents(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	objects := NewObjectRepository(database)
	events := NewChangeEventRepository(database)

	obj := testPerson("aldric")
	if err := objects.Create(ctx, obj); err != nil {
		t.Fatalf("failed to create object: %v", err)
	}
	event := &models.ChangeEvent{
		Timestamp:   10,
		ObjectID:    obj.ID,
		AttributeID: "age",
		NewValue:    models.NumberValue(18),
	}
	if err := events.Append(ctx, event); err != nil {
		t.Fatalf("failed to append event: %v", err)
	}

	if err := objects.Purge(ctx, obj.ID); err != nil {
		t.Fatalf("failed to purge object: %v", err)
	}

	if _, err := objects.Get(ctx, obj.ID); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("expected ErrObjectNotFound, got %v", err)
	}
	remaining, err := events.Count(ctx)
	if err != nil {
		t.Fatalf("failed to count events: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("expected 0 events after purge, got %d", remaining)
	}
}

func TestObjectPurgeMissingObject(t *testing.T) {
	database := openTestDB(t)

	err := NewObjectRepository(database).Purge(context.Background(), "nobody")
	if !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("expected ErrObjectNotFound, got %v", err)
	}
}
