package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/loreweave/loreweave/internal/models"
)

// Object repository errors.
var (
	ErrObjectNotFound = errors.New("object not found")
	ErrObjectExists   = errors.New("object already exists")
)

// ObjectRepository handles world object persistence.
type ObjectRepository struct {
	db *DB
}

// NewObjectRepository creates a new ObjectRepository.
func NewObjectRepository(db *DB) *ObjectRepository {
	return &ObjectRepository{db: db}
}

// Create stores a new object. The object must validate and its ID
// must be unused.
func (r *ObjectRepository) Create(ctx context.Context, obj *models.Object) error {
	if err := obj.Validate(); err != nil {
		return err
	}

	attributesJSON, err := marshalAttributes(obj.Attributes)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO objects (id, name, kind, attributes_json)
		VALUES (?, ?, ?, ?)
	`, obj.ID, obj.Name, string(obj.Kind), attributesJSON)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrObjectExists, obj.ID)
		}
		return fmt.Errorf("failed to insert object: %w", err)
	}
	return nil
}

// Get retrieves an object by ID. Returns ErrObjectNotFound when absent.
func (r *ObjectRepository) Get(ctx context.Context, id string) (*models.Object, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, kind, attributes_json FROM objects WHERE id = ?
	`, id)
	return r.scanObject(row.Scan)
}

// List retrieves all objects ordered by ID.
func (r *ObjectRepository) List(ctx context.Context) ([]*models.Object, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, kind, attributes_json FROM objects ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query objects: %w", err)
	}
	defer rows.Close()

	var objects []*models.Object
	for rows.Next() {
		obj, err := r.scanObject(rows.Scan)
		if err != nil {
			return nil, err
		}
		objects = append(objects, obj)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating objects: %w", err)
	}
	return objects, nil
}

// Update replaces an existing object's fields.
func (r *ObjectRepository) Update(ctx context.Context, obj *models.Object) error {
	if err := obj.Validate(); err != nil {
		return err
	}

	attributesJSON, err := marshalAttributes(obj.Attributes)
	if err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE objects SET name = ?, kind = ?, attributes_json = ? WHERE id = ?
	`, obj.Name, string(obj.Kind), attributesJSON, obj.ID)
	if err != nil {
		return fmt.Errorf("failed to update object: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrObjectNotFound, obj.ID)
	}
	return nil
}

// Delete removes an object. The caller decides whether to cascade to
// events referencing it; the repository does not.
func (r *ObjectRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM objects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrObjectNotFound, id)
	}
	return nil
}

// Purge deletes an object together with its change events in a single
// transaction, retrying on a busy database.
func (r *ObjectRepository) Purge(ctx context.Context, id string) error {
	return r.db.TransactionWithRetry(ctx, 0, 0, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM change_events WHERE object_id = ?`, id); err != nil {
			return fmt.Errorf("failed to delete change events: %w", err)
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM objects WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete object: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get affected rows: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("%w: %s", ErrObjectNotFound, id)
		}
		return nil
	})
}

func (r *ObjectRepository) scanObject(scan func(...any) error) (*models.Object, error) {
	var obj models.Object
	var kind string
	var attributesJSON sql.NullString

	if err := scan(&obj.ID, &obj.Name, &kind, &attributesJSON); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to scan object: %w", err)
	}

	obj.Kind = models.ObjectKind(kind)
	if attributesJSON.Valid && attributesJSON.String != "" {
		if err := json.Unmarshal([]byte(attributesJSON.String), &obj.Attributes); err != nil {
			return nil, fmt.Errorf("failed to parse object attributes: %w", err)
		}
	}
	return &obj, nil
}

func marshalAttributes(attributes []models.Attribute) (*string, error) {
	if len(attributes) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(attributes)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal attributes: %w", err)
	}
	s := string(data)
	return &s, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	// modernc.org/sqlite surfaces constraint failures as plain errors.
	return strings.Contains(err.Error(), "constraint failed")
}
