package db

import (
	"context"
	"errors"
	"testing"

	"github.com/loreweave/loreweave/internal/models"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()

	database, err := OpenInMemory()
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if _, err := database.MigrateUp(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return database
}

func testPerson(id string) *models.Object {
	return &models.Object{
		ID:   id,
		Name: "Aldric",
		Kind: models.ObjectKindPerson,
		Attributes: []models.Attribute{
			{ID: "age", Name: "Age", Type: models.ValueTypeNumber, Value: models.NumberValue(17)},
			{
				ID: "status", Name: "Status", Type: models.ValueTypeEnum,
				Value:      models.EnumValue("alive"),
				EnumValues: []string{"alive", "dead"},
			},
		},
	}
}

func TestObjectRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewObjectRepository(openTestDB(t))

	obj := testPerson("aldric")
	if err := repo.Create(ctx, obj); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.Get(ctx, "aldric")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "Aldric" || got.Kind != models.ObjectKindPerson {
		t.Fatalf("unexpected object: %+v", got)
	}
	if len(got.Attributes) != 2 {
		t.Fatalf("expected 2 attributes, got %d", len(got.Attributes))
	}
	status, ok := got.Attribute("status")
	if !ok {
		t.Fatal("status attribute missing")
	}
	if !status.Value.Equal(models.EnumValue("alive")) {
		t.Fatalf("unexpected status value: %+v", status.Value)
	}
}

func TestObjectRepositoryCreateDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := NewObjectRepository(openTestDB(t))

	if err := repo.Create(ctx, testPerson("aldric")); err != nil {
		t.Fatalf("Create: %v", err)
	}
	err := repo.Create(ctx, testPerson("aldric"))
	if !errors.Is(err, ErrObjectExists) {
		t.Fatalf("expected ErrObjectExists, got %v", err)
	}
}

func TestObjectRepositoryCreateRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	repo := NewObjectRepository(openTestDB(t))

	invalid := &models.Object{ID: "x", Name: "", Kind: models.ObjectKindPerson}
	if err := repo.Create(ctx, invalid); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestObjectRepositoryUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewObjectRepository(openTestDB(t))

	obj := testPerson("aldric")
	if err := repo.Create(ctx, obj); err != nil {
		t.Fatalf("Create: %v", err)
	}

	obj.Name = "Aldric the Bold"
	if err := repo.Update(ctx, obj); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := repo.Get(ctx, "aldric")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "Aldric the Bold" {
		t.Fatalf("update not applied: %+v", got)
	}

	if err := repo.Delete(ctx, "aldric"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := repo.Get(ctx, "aldric"); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("expected ErrObjectNotFound, got %v", err)
	}
	if err := repo.Delete(ctx, "aldric"); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("expected ErrObjectNotFound on second delete, got %v", err)
	}
}

func TestObjectRepositoryListOrdersByID(t *testing.T) {
	ctx := context.Background()
	repo := NewObjectRepository(openTestDB(t))

	for _, id := range []string{"citadel", "aldric", "bramble"} {
		obj := testPerson(id)
		if err := repo.Create(ctx, obj); err != nil {
			t.Fatalf("Create %s: %v", id, err)
		}
	}

	objects, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(objects) != 3 {
		t.Fatalf("expected 3 objects, got %d", len(objects))
	}
	want := []string{"aldric", "bramble", "citadel"}
	for i, obj := range objects {
		if obj.ID != want[i] {
			t.Fatalf("expected order %v, got %s at %d", want, obj.ID, i)
		}
	}
}
