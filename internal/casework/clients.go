package casework

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/docket/pkg/types"
)

// Clients manages client records.
type Clients struct {
	table types.Table
	cases types.Table
	log   *zap.Logger
}

func normalizeClient(c *types.Client) {
	c.Name = normalizeName(c.Name)
	c.IDNumber = strings.ToUpper(strings.TrimSpace(c.IDNumber))
	c.Phone = strings.TrimSpace(c.Phone)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Address = strings.TrimSpace(c.Address)
	c.Notes = strings.TrimSpace(c.Notes)
}

// Add validates and stores a new client.
func (m *Clients) Add(c *types.Client) (*types.Client, error) {
	normalizeClient(c)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	id, err := m.table.Set("", c)
	if err != nil {
		return nil, fmt.Errorf("adding client: %w", err)
	}
	m.log.Info("client added", zap.String("client_id", id), zap.String("name", c.Name))
	return c, nil
}

// Get returns a client by ID.
func (m *Clients) Get(id string) (*types.Client, error) {
	return getAs[types.Client](m.table, id)
}

// List returns all clients ordered by name.
func (m *Clients) List() ([]*types.Client, error) {
	return fetchAs[types.Client](m.table, nil)
}

// Update stores changes to an existing client.
func (m *Clients) Update(c *types.Client) (*types.Client, error) {
	if _, err := m.Get(c.ClientID); err != nil {
		return nil, err
	}
	normalizeClient(c)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if _, err := m.table.Set(c.ClientID, c); err != nil {
		return nil, fmt.Errorf("updating client %s: %w", c.ClientID, err)
	}
	m.log.Info("client updated", zap.String("client_id", c.ClientID))
	return c, nil
}

// Cases returns the cases owned by a client.
func (m *Clients) Cases(clientID string) ([]*types.Case, error) {
	if _, err := m.Get(clientID); err != nil {
		return nil, err
	}
	return fetchAs[types.Case](m.cases, types.Filter{"client_id": clientID})
}

// Delete removes a client. Clients that still own cases cannot be deleted.
func (m *Clients) Delete(id string) error {
	if err := m.table.Delete(id); err != nil {
		return fmt.Errorf("deleting client %s: %w", id, err)
	}
	m.log.Info("client deleted", zap.String("client_id", id))
	return nil
}
