package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/docket/pkg/types"
)

var _ types.Table = (*partiesTable)(nil)

const partyColumns = "party_id, case_id, role, name, id_number, address, represents_id, side, created_at"

var partyFilterColumns = map[string]bool{
	"party_id":      true,
	"case_id":       true,
	"role":          true,
	"represents_id": true,
}

// partiesTable implements the Table interface for case parties.
type partiesTable struct {
	backend *Backend
}

// Get retrieves a party by ID.
func (pt *partiesTable) Get(id string) (any, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	var p *types.Party
	err := pt.backend.withDB(func(db *sql.DB) error {
		row := db.QueryRow("SELECT "+partyColumns+" FROM parties WHERE party_id = ?", id)
		got, err := hydrateParty(row)
		if errors.Is(err, sql.ErrNoRows) {
			return types.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("getting party %s: %w", id, err)
		}
		p = got
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Set creates or updates a party. The case must exist, and a representative
// naming RepresentsID must point at a principal of the same case.
func (pt *partiesTable) Set(id string, data any) (string, error) {
	p, ok := data.(*types.Party)
	if !ok {
		return "", types.ErrInvalidData
	}
	if id != "" {
		p.PartyID = id
	}
	if err := p.Validate(); err != nil {
		return "", err
	}

	err := pt.backend.withWriteDB(func(db *sql.DB) error {
		found, err := exists(db, "cases", "case_id", p.CaseID)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("case %s: %w", p.CaseID, types.ErrMissingParent)
		}
		if p.RepresentsID != "" {
			if err := checkPrincipal(db, p.CaseID, p.RepresentsID); err != nil {
				return err
			}
		}

		if id == "" {
			newID, err := newUUID()
			if err != nil {
				return err
			}
			id = newID
			p.CreatedAt = time.Now().UTC()
		}
		p.PartyID = id
		if p.CreatedAt.IsZero() {
			p.CreatedAt = time.Now().UTC()
		}

		_, err = db.Exec(`
			INSERT INTO parties (`+partyColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(party_id) DO UPDATE SET
				case_id = excluded.case_id,
				role = excluded.role,
				name = excluded.name,
				id_number = excluded.id_number,
				address = excluded.address,
				represents_id = excluded.represents_id,
				side = excluded.side`,
			p.PartyID, p.CaseID, p.Role, p.Name, p.IDNumber, p.Address, p.RepresentsID,
			p.Side, formatTime(p.CreatedAt))
		if err != nil {
			return fmt.Errorf("persisting party: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// checkPrincipal verifies that partyID is an actor or defendant of caseID.
func checkPrincipal(q querier, caseID, partyID string) error {
	var role, owner string
	err := q.QueryRow("SELECT role, case_id FROM parties WHERE party_id = ?", partyID).Scan(&role, &owner)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("represented party %s: %w", partyID, types.ErrMissingParent)
	}
	if err != nil {
		return fmt.Errorf("checking represented party: %w", err)
	}
	if owner != caseID || (role != types.RoleActor && role != types.RoleDefendant) {
		return fmt.Errorf("represented party %s: %w", partyID, types.ErrInvalidSide)
	}
	return nil
}

// Delete removes a party. Representatives acting for it lose the link and
// become unassigned.
func (pt *partiesTable) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	return pt.backend.withWriteDB(func(db *sql.DB) error {
		found, err := exists(db, "parties", "party_id", id)
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

		if _, err := tx.Exec("UPDATE parties SET represents_id = '' WHERE represents_id = ?", id); err != nil {
			return fmt.Errorf("unlinking representatives: %w", err)
		}
		if _, err := tx.Exec("DELETE FROM parties WHERE party_id = ?", id); err != nil {
			return fmt.Errorf("deleting party: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing party deletion: %w", err)
		}
		return nil
	})
}

// Fetch returns parties matching the filter in creation order.
func (pt *partiesTable) Fetch(filter types.Filter) ([]any, error) {
	where, args, err := buildWhere(filter, partyFilterColumns)
	if err != nil {
		return nil, err
	}
	var result []any
	err = pt.backend.withDB(func(db *sql.DB) error {
		rows, err := db.Query("SELECT "+partyColumns+" FROM parties"+where+
			" ORDER BY created_at, party_id", args...)
		if err != nil {
			return fmt.Errorf("fetching parties: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			p, err := hydrateParty(rows)
			if err != nil {
				return fmt.Errorf("scanning party: %w", err)
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

func hydrateParty(row rowScanner) (*types.Party, error) {
	var p types.Party
	var createdAt string
	if err := row.Scan(&p.PartyID, &p.CaseID, &p.Role, &p.Name, &p.IDNumber, &p.Address,
		&p.RepresentsID, &p.Side, &createdAt); err != nil {
		return nil, err
	}
	var err error
	if p.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &p, nil
}
