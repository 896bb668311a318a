package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/docket/pkg/types"
)

var _ types.Table = (*prospectsTable)(nil)

const prospectColumns = "prospect_id, name, phone, email, source, state, client_id, created_at, updated_at"

var prospectFilterColumns = map[string]bool{
	"prospect_id": true,
	"name":        true,
	"state":       true,
	"source":      true,
	"client_id":   true,
}

// prospectsTable implements the Table interface for prospects. Deleting a
// prospect cascades to its consultations.
type prospectsTable struct {
	backend *Backend
}

// Get retrieves a prospect by ID.
func (pt *prospectsTable) Get(id string) (any, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	var p *types.Prospect
	err := pt.backend.withDB(func(db *sql.DB) error {
		row := db.QueryRow("SELECT "+prospectColumns+" FROM prospects WHERE prospect_id = ?", id)
		got, err := hydrateProspect(row)
		if errors.Is(err, sql.ErrNoRows) {
			return types.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("getting prospect %s: %w", id, err)
		}
		p = got
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Set creates or updates a prospect. New prospects start in the "new" state.
func (pt *prospectsTable) Set(id string, data any) (string, error) {
	p, ok := data.(*types.Prospect)
	if !ok {
		return "", types.ErrInvalidData
	}
	if p.State == "" {
		p.State = types.ProspectStateNew
	}
	if err := p.Validate(); err != nil {
		return "", err
	}

	err := pt.backend.withWriteDB(func(db *sql.DB) error {
		now := time.Now().UTC()
		if id == "" {
			newID, err := newUUID()
			if err != nil {
				return err
			}
			id = newID
			p.CreatedAt = now
		}
		p.ProspectID = id
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		p.UpdatedAt = now

		_, err := db.Exec(`
			INSERT INTO prospects (`+prospectColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(prospect_id) DO UPDATE SET
				name = excluded.name,
				phone = excluded.phone,
				email = excluded.email,
				source = excluded.source,
				state = excluded.state,
				client_id = excluded.client_id,
				updated_at = excluded.updated_at`,
			p.ProspectID, p.Name, p.Phone, p.Email, p.Source, p.State, p.ClientID,
			formatTime(p.CreatedAt), formatTime(p.UpdatedAt))
		if err != nil {
			return fmt.Errorf("persisting prospect: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Delete removes a prospect and its consultations.
func (pt *prospectsTable) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	return pt.backend.withWriteDB(func(db *sql.DB) error {
		found, err := exists(db, "prospects", "prospect_id", id)
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

		if _, err := tx.Exec("DELETE FROM consultations WHERE prospect_id = ?", id); err != nil {
			return fmt.Errorf("deleting prospect consultations: %w", err)
		}
		if _, err := tx.Exec("DELETE FROM prospects WHERE prospect_id = ?", id); err != nil {
			return fmt.Errorf("deleting prospect: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing prospect deletion: %w", err)
		}
		return nil
	})
}

// Fetch returns prospects matching the filter, newest first.
func (pt *prospectsTable) Fetch(filter types.Filter) ([]any, error) {
	where, args, err := buildWhere(filter, prospectFilterColumns)
	if err != nil {
		return nil, err
	}
	var result []any
	err = pt.backend.withDB(func(db *sql.DB) error {
		rows, err := db.Query("SELECT "+prospectColumns+" FROM prospects"+where+
			" ORDER BY created_at DESC, prospect_id DESC", args...)
		if err != nil {
			return fmt.Errorf("fetching prospects: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			p, err := hydrateProspect(rows)
			if err != nil {
				return fmt.Errorf("scanning prospect: %w", err)
			}
			result = append(result, p)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func hydrateProspect(row rowScanner) (*types.Prospect, error) {
	var p types.Prospect
	var createdAt, updatedAt string
	if err := row.Scan(&p.ProspectID, &p.Name, &p.Phone, &p.Email, &p.Source, &p.State,
		&p.ClientID, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
