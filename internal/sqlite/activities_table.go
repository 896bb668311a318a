package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/docket/pkg/types"
)

var _ types.Table = (*activitiesTable)(nil)

const activityColumns = "activity_id, case_id, kind, description, due_at, done, created_at"

var activityFilterColumns = map[string]bool{
	"activity_id": true,
	"case_id":     true,
	"kind":        true,
	"done":        true,
}

// activitiesTable implements the Table interface for case activities.
type activitiesTable struct {
	backend *Backend
}

// Get retrieves an activity by ID.
func (at *activitiesTable) Get(id string) (any, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	var a *types.Activity
	err := at.backend.withDB(func(db *sql.DB) error {
		row := db.QueryRow("SELECT "+activityColumns+" FROM activities WHERE activity_id = ?", id)
		got, err := hydrateActivity(row)
		if errors.Is(err, sql.ErrNoRows) {
			return types.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("getting activity %s: %w", id, err)
		}
		a = got
		return nil
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Set creates or updates an activity. The case must exist.
func (at *activitiesTable) Set(id string, data any) (string, error) {
	a, ok := data.(*types.Activity)
	if !ok {
		return "", types.ErrInvalidData
	}
	if err := a.Validate(); err != nil {
		return "", err
	}

	err := at.backend.withWriteDB(func(db *sql.DB) error {
		found, err := exists(db, "cases", "case_id", a.CaseID)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("case %s: %w", a.CaseID, types.ErrMissingParent)
		}

		if id == "" {
			newID, err := newUUID()
			if err != nil {
				return err
			}
			id = newID
			a.CreatedAt = time.Now().UTC()
		}
		a.ActivityID = id
		if a.CreatedAt.IsZero() {
			a.CreatedAt = time.Now().UTC()
		}

		_, err = db.Exec(`
			INSERT INTO activities (`+activityColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(activity_id) DO UPDATE SET
				case_id = excluded.case_id,
				kind = excluded.kind,
				description = excluded.description,
				due_at = excluded.due_at,
				done = excluded.done`,
			a.ActivityID, a.CaseID, a.Kind, a.Description, formatNullTime(a.DueAt), boolToInt(a.Done),
			formatTime(a.CreatedAt))
		if err != nil {
			return fmt.Errorf("persisting activity: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Delete removes an activity.
func (at *activitiesTable) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	return at.backend.withWriteDB(func(db *sql.DB) error {
		res, err := db.Exec("DELETE FROM activities WHERE activity_id = ?", id)
		if err != nil {
			return fmt.Errorf("deleting activity: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("deleting activity: %w", err)
		}
		if n == 0 {
			return types.ErrNotFound
		}
		return nil
	})
}

// Fetch returns activities matching the filter. Activities with a due date
// come first in due order, then undated ones in creation order.
func (at *activitiesTable) Fetch(filter types.Filter) ([]any, error) {
	where, args, err := buildWhere(filter, activityFilterColumns)
	if err != nil {
		return nil, err
	}
	var result []any
	err = at.backend.withDB(func(db *sql.DB) error {
		rows, err := db.Query("SELECT "+activityColumns+" FROM activities"+where+
			" ORDER BY due_at IS NULL, due_at, created_at, activity_id", args...)
		if err != nil {
			return fmt.Errorf("fetching activities: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			a, err := hydrateActivity(rows)
			if err != nil {
				return fmt.Errorf("scanning activity: %w", err)
			}
			result = append(result, a)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func hydrateActivity(row rowScanner) (*types.Activity, error) {
	var a types.Activity
	var due sql.NullString
	var createdAt string
	if err := row.Scan(&a.ActivityID, &a.CaseID, &a.Kind, &a.Description, &due, &a.Done,
		&createdAt); err != nil {
		return nil, err
	}
	var err error
	if a.DueAt, err = parseNullTime(due); err != nil {
		return nil, err
	}
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &a, nil
}
