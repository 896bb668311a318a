package casework

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/docket/pkg/types"
)

// Prospects manages potential clients.
type Prospects struct {
	table   types.Table
	clients *Clients
	log     *zap.Logger
}

func normalizeProspect(p *types.Prospect) {
	p.Name = normalizeName(p.Name)
	p.Phone = strings.TrimSpace(p.Phone)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	p.Source = strings.TrimSpace(p.Source)
}

// Add stores a new prospect in the "new" state.
func (m *Prospects) Add(p *types.Prospect) (*types.Prospect, error) {
	normalizeProspect(p)
	p.State = types.ProspectStateNew
	p.ClientID = ""
	if err := p.Validate(); err != nil {
		return nil, err
	}
	id, err := m.table.Set("", p)
	if err != nil {
		return nil, fmt.Errorf("adding prospect: %w", err)
	}
	m.log.Info("prospect added", zap.String("prospect_id", id), zap.String("name", p.Name))
	return p, nil
}

// Get returns a prospect by ID.
func (m *Prospects) Get(id string) (*types.Prospect, error) {
	return getAs[types.Prospect](m.table, id)
}

// List returns prospects, newest first, optionally only those in state.
func (m *Prospects) List(state string) ([]*types.Prospect, error) {
	var filter types.Filter
	if state != "" {
		filter = types.Filter{"state": state}
	}
	return fetchAs[types.Prospect](m.table, filter)
}

// Update stores changes to an existing prospect. State changes go through
// Contact, Convert and Discard.
func (m *Prospects) Update(p *types.Prospect) (*types.Prospect, error) {
	cur, err := m.Get(p.ProspectID)
	if err != nil {
		return nil, err
	}
	normalizeProspect(p)
	p.State, p.ClientID = cur.State, cur.ClientID
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if _, err := m.table.Set(p.ProspectID, p); err != nil {
		return nil, fmt.Errorf("updating prospect %s: %w", p.ProspectID, err)
	}
	return p, nil
}

// Contact records that the prospect has been reached.
func (m *Prospects) Contact(id string) (*types.Prospect, error) {
	p, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	if err := p.Contact(); err != nil {
		return nil, fmt.Errorf("prospect is %s: %w", p.State, err)
	}
	if _, err := m.table.Set(id, p); err != nil {
		return nil, fmt.Errorf("saving prospect %s: %w", id, err)
	}
	return p, nil
}

// Discard closes a prospect without engagement.
func (m *Prospects) Discard(id string) (*types.Prospect, error) {
	p, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	if err := p.Discard(); err != nil {
		return nil, fmt.Errorf("prospect is %s: %w", p.State, err)
	}
	if _, err := m.table.Set(id, p); err != nil {
		return nil, fmt.Errorf("saving prospect %s: %w", id, err)
	}
	m.log.Info("prospect discarded", zap.String("prospect_id", id))
	return p, nil
}

// Convert turns a prospect into a client. The new client copies the
// prospect's contact details and the prospect records its ID. Converting a
// converted or discarded prospect fails with ErrInvalidTransition.
func (m *Prospects) Convert(id string) (*types.Client, error) {
	p, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	if p.Closed() {
		return nil, fmt.Errorf("prospect is %s: %w", p.State, types.ErrInvalidTransition)
	}

	c := &types.Client{Name: p.Name, Phone: p.Phone, Email: p.Email}
	if p.Source != "" {
		c.Notes = "Origen: " + p.Source
	}
	if _, err := m.clients.Add(c); err != nil {
		return nil, fmt.Errorf("converting prospect %s: %w", id, err)
	}

	if err := p.Convert(c.ClientID); err != nil {
		return nil, err
	}
	if _, err := m.table.Set(id, p); err != nil {
		if delErr := m.clients.Delete(c.ClientID); delErr != nil {
			m.log.Warn("rollback of converted client failed", zap.String("client_id", c.ClientID), zap.Error(delErr))
		}
		return nil, fmt.Errorf("saving converted prospect %s: %w", id, err)
	}
	m.log.Info("prospect converted", zap.String("prospect_id", id), zap.String("client_id", c.ClientID))
	return c, nil
}

// Delete removes a prospect and its consultations.
func (m *Prospects) Delete(id string) error {
	if err := m.table.Delete(id); err != nil {
		return fmt.Errorf("deleting prospect %s: %w", id, err)
	}
	m.log.Info("prospect deleted", zap.String("prospect_id", id))
	return nil
}
