package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/docket/pkg/types"
)

var _ types.Table = (*consultationsTable)(nil)

const consultationColumns = "consultation_id, prospect_id, date, topic, facts, reformulated_facts, notes, created_at, updated_at"

var consultationFilterColumns = map[string]bool{
	"consultation_id": true,
	"prospect_id":     true,
	"topic":           true,
}

// consultationsTable implements the Table interface for consultations.
type consultationsTable struct {
	backend *Backend
}

// Get retrieves a consultation by ID.
func (ct *consultationsTable) Get(id string) (any, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	var c *types.Consultation
	err := ct.backend.withDB(func(db *sql.DB) error {
		row := db.QueryRow("SELECT "+consultationColumns+" FROM consultations WHERE consultation_id = ?", id)
		got, err := hydrateConsultation(row)
		if errors.Is(err, sql.ErrNoRows) {
			return types.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("getting consultation %s: %w", id, err)
		}
		c = got
		return nil
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Set creates or updates a consultation. The prospect must exist. A zero
// Date defaults to the creation time.
func (ct *consultationsTable) Set(id string, data any) (string, error) {
	c, ok := data.(*types.Consultation)
	if !ok {
		return "", types.ErrInvalidData
	}
	if err := c.Validate(); err != nil {
		return "", err
	}

	err := ct.backend.withWriteDB(func(db *sql.DB) error {
		found, err := exists(db, "prospects", "prospect_id", c.ProspectID)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("prospect %s: %w", c.ProspectID, types.ErrMissingParent)
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
		c.ConsultationID = id
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		if c.Date.IsZero() {
			c.Date = c.CreatedAt
		}
		c.UpdatedAt = now

		_, err = db.Exec(`
			INSERT INTO consultations (`+consultationColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(consultation_id) DO UPDATE SET
				prospect_id = excluded.prospect_id,
				date = excluded.date,
				topic = excluded.topic,
				facts = excluded.facts,
				reformulated_facts = excluded.reformulated_facts,
				notes = excluded.notes,
				updated_at = excluded.updated_at`,
			c.ConsultationID, c.ProspectID, formatTime(c.Date), c.Topic, c.Facts,
			c.ReformulatedFacts, c.Notes, formatTime(c.CreatedAt), formatTime(c.UpdatedAt))
		if err != nil {
			return fmt.Errorf("persisting consultation: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Delete removes a consultation.
func (ct *consultationsTable) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	return ct.backend.withWriteDB(func(db *sql.DB) error {
		res, err := db.Exec("DELETE FROM consultations WHERE consultation_id = ?", id)
		if err != nil {
			return fmt.Errorf("deleting consultation: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("deleting consultation: %w", err)
		}
		if n == 0 {
			return types.ErrNotFound
		}
		return nil
	})
}

// Fetch returns consultations matching the filter, most recent first.
func (ct *consultationsTable) Fetch(filter types.Filter) ([]any, error) {
	where, args, err := buildWhere(filter, consultationFilterColumns)
	if err != nil {
		return nil, err
	}
	var result []any
	err = ct.backend.withDB(func(db *sql.DB) error {
		rows, err := db.Query("SELECT "+consultationColumns+" FROM consultations"+where+
			" ORDER BY date DESC, consultation_id DESC", args...)
		if err != nil {
			return fmt.Errorf("fetching consultations: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			c, err := hydrateConsultation(rows)
			if err != nil {
				return fmt.Errorf("scanning consultation: %w", err)
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

func hydrateConsultation(row rowScanner) (*types.Consultation, error) {
	var c types.Consultation
	var date, createdAt, updatedAt string
	if err := row.Scan(&c.ConsultationID, &c.ProspectID, &date, &c.Topic, &c.Facts,
		&c.ReformulatedFacts, &c.Notes, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if c.Date, err = parseTime(date); err != nil {
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
