package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/docket/pkg/types"
)

var _ types.Table = (*casesTable)(nil)

const caseColumns = "case_id, client_id, number, title, kind, state, court, folder, amount, " +
	"installments, period_days, agreement_date, notes, created_at, updated_at"

var caseFilterColumns = map[string]bool{
	"case_id":   true,
	"client_id": true,
	"number":    true,
	"kind":      true,
	"state":     true,
}

// casesTable implements the Table interface for cases. Deleting a case
// cascades to its parties and activities.
type casesTable struct {
	backend *Backend
}

// Get retrieves a case by ID.
func (ct *casesTable) Get(id string) (any, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	var c *types.Case
	err := ct.backend.withDB(func(db *sql.DB) error {
		row := db.QueryRow("SELECT "+caseColumns+" FROM cases WHERE case_id = ?", id)
		got, err := hydrateCase(row)
		if errors.Is(err, sql.ErrNoRows) {
			return types.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("getting case %s: %w", id, err)
		}
		c = got
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Set creates or updates a case. New cases default to the open state and
// the "other" kind. The client must exist and the case number must be
// unique across cases.
func (ct *casesTable) Set(id string, data any) (string, error) {
	c, ok := data.(*types.Case)
	if !ok {
		return "", types.ErrInvalidData
	}
	if c.State == "" {
		c.State = types.CaseStateOpen
	}
	if c.Kind == "" {
		c.Kind = types.CaseKindOther
	}
	if err := c.Validate(); err != nil {
		return "", err
	}

	err := ct.backend.withWriteDB(func(db *sql.DB) error {
		found, err := exists(db, "clients", "client_id", c.ClientID)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("client %s: %w", c.ClientID, types.ErrMissingParent)
		}

		now := time.Now().UTC()
		if id == "" {
			newID, err := newUUID()
			if err != nil {
				return err
			}
			id = newID
			c.CreatedAt = now
		}

		var other string
		err = db.QueryRow("SELECT case_id FROM cases WHERE number = ? AND case_id <> ?", c.Number, id).Scan(&other)
		if err == nil {
			return fmt.Errorf("case number %q: %w", c.Number, types.ErrDuplicate)
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("checking case number: %w", err)
		}

		c.CaseID = id
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		c.UpdatedAt = now

		_, err = db.Exec(`
			INSERT INTO cases (`+caseColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(case_id) DO UPDATE SET
				client_id = excluded.client_id,
				number = excluded.number,
				title = excluded.title,
				kind = excluded.kind,
				state = excluded.state,
				court = excluded.court,
				folder = excluded.folder,
				amount = excluded.amount,
				installments = excluded.installments,
				period_days = excluded.period_days,
				agreement_date = excluded.agreement_date,
				notes = excluded.notes,
				updated_at = excluded.updated_at`,
			c.CaseID, c.ClientID, c.Number, c.Title, c.Kind, c.State, c.Court, c.Folder,
			c.Amount, c.Installments, c.PeriodDays, formatNullTime(c.AgreementDate), c.Notes,
			formatTime(c.CreatedAt), formatTime(c.UpdatedAt))
		if err != nil {
			return fmt.Errorf("persisting case: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Delete removes a case together with its parties and activities.
func (ct *casesTable) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	return ct.backend.withWriteDB(func(db *sql.DB) error {
		found, err := exists(db, "cases", "case_id", id)
		if err != nil {
			return err
		}
		if !found {
			return types.ErrNotFound
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("beginning transaction: %w", err)
		}
		defer tx.Rollback()

		if _, err := tx.Exec("DELETE FROM parties WHERE case_id = ?", id); err != nil {
			return fmt.Errorf("deleting case parties: %w", err)
		}
		if _, err := tx.Exec("DELETE FROM activities WHERE case_id = ?", id); err != nil {
			return fmt.Errorf("deleting case activities: %w", err)
		}
		if _, err := tx.Exec("DELETE FROM cases WHERE case_id = ?", id); err != nil {
			return fmt.Errorf("deleting case: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing case deletion: %w", err)
		}
		return nil
	})
}

// Fetch returns cases matching the filter, ordered by case number.
func (ct *casesTable) Fetch(filter types.Filter) ([]any, error) {
	where, args, err := buildWhere(filter, caseFilterColumns)
	if err != nil {
		return nil, err
	}
	var result []any
	err = ct.backend.withDB(func(db *sql.DB) error {
		rows, err := db.Query("SELECT "+caseColumns+" FROM cases"+where+" ORDER BY number", args...)
		if err != nil {
			return fmt.Errorf("fetching cases: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			c, err := hydrateCase(rows)
			if err != nil {
				return fmt.Errorf("scanning case: %w", err)
			}
			result = append(result, c)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func hydrateCase(row rowScanner) (*types.Case, error) {
	var c types.Case
	var agreement sql.NullString
	var createdAt, updatedAt string
	if err := row.Scan(&c.CaseID, &c.ClientID, &c.Number, &c.Title, &c.Kind, &c.State,
		&c.Court, &c.Folder, &c.Amount, &c.Installments, &c.PeriodDays, &agreement,
		&c.Notes, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if c.AgreementDate, err = parseNullTime(agreement); err != nil {
		return nil, err
	}
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
