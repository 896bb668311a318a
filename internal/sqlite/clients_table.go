package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/docket/pkg/types"
)

var _ types.Table = (*clientsTable)(nil)

const clientColumns = "client_id, name, id_number, phone, email, address, notes, created_at, updated_at"

var clientFilterColumns = map[string]bool{
	"client_id": true,
	"name":      true,
	"id_number": true,
	"email":     true,
}

// clientsTable implements the Table interface for clients.
type clientsTable struct {
	backend *Backend
}

// Get retrieves a client by ID.
func (ct *clientsTable) Get(id string) (any, error) {
	if id == "" {
		return nil, types.ErrInvalidID
	}
	var client *types.Client
	err := ct.backend.withDB(func(db *sql.DB) error {
		row := db.QueryRow("SELECT "+clientColumns+" FROM clients WHERE client_id = ?", id)
		c, err := hydrateClient(row)
		if errors.Is(err, sql.ErrNoRows) {
			return types.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("getting client %s: %w", id, err)
		}
		client = c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Set creates or updates a client. An empty id creates a new client with a
// generated UUID v7.
func (ct *clientsTable) Set(id string, data any) (string, error) {
	c, ok := data.(*types.Client)
	if !ok {
		return "", types.ErrInvalidData
	}
	if err := c.Validate(); err != nil {
		return "", err
	}

	err := ct.backend.withWriteDB(func(db *sql.DB) error {
		now := time.Now().UTC()
		if id == "" {
			newID, err := newUUID()
			if err != nil {
				return err
			}
			id = newID
			c.CreatedAt = now
		}
		c.ClientID = id
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		c.UpdatedAt = now

		_, err := db.Exec(`
			INSERT INTO clients (`+clientColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(client_id) DO UPDATE SET
				name = excluded.name,
				id_number = excluded.id_number,
				phone = excluded.phone,
				email = excluded.email,
				address = excluded.address,
				notes = excluded.notes,
				updated_at = excluded.updated_at`,
			c.ClientID, c.Name, c.IDNumber, c.Phone, c.Email, c.Address, c.Notes,
			formatTime(c.CreatedAt), formatTime(c.UpdatedAt))
		if err != nil {
			return fmt.Errorf("persisting client: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Delete removes a client. Clients that still own cases are not removed;
// the call fails with ErrHasDependents.
func (ct *clientsTable) Delete(id string) error {
	if id == "" {
		return types.ErrInvalidID
	}
	return ct.backend.withWriteDB(func(db *sql.DB) error {
		found, err := exists(db, "clients", "client_id", id)
		if err != nil {
			return err
		}
		if !found {
			return types.ErrNotFound
		}
		hasCases, err := exists(db, "cases", "client_id", id)
		if err != nil {
			return err
		}
		if hasCases {
			return fmt.Errorf("client %s: %w", id, types.ErrHasDependents)
		}
		if _, err := db.Exec("DELETE FROM clients WHERE client_id = ?", id); err != nil {
			return fmt.Errorf("deleting client: %w", err)
		}
		return nil
	})
}

// Fetch returns clients matching the filter, ordered by name.
func (ct *clientsTable) Fetch(filter types.Filter) ([]any, error) {
	where, args, err := buildWhere(filter, clientFilterColumns)
	if err != nil {
		return nil, err
	}
	var result []any
	err = ct.backend.withDB(func(db *sql.DB) error {
		rows, err := db.Query("SELECT "+clientColumns+" FROM clients"+where+" ORDER BY name, client_id", args...)
		if err != nil {
			return fmt.Errorf("fetching clients: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			c, err := hydrateClient(rows)
			if err != nil {
				return fmt.Errorf("scanning client: %w", err)
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

func hydrateClient(row rowScanner) (*types.Client, error) {
	var c types.Client
	var createdAt, updatedAt string
	if err := row.Scan(&c.ClientID, &c.Name, &c.IDNumber, &c.Phone, &c.Email,
		&c.Address, &c.Notes, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	var err error
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
