package casework

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/docket/pkg/types"
)

// Parties manages the actors, defendants and representatives of cases.
type Parties struct {
	table types.Table
	log   *zap.Logger
}

// Add stores a party on a case.
func (m *Parties) Add(p *types.Party) (*types.Party, error) {
	p.Name = normalizeName(p.Name)
	p.IDNumber = strings.ToUpper(strings.TrimSpace(p.IDNumber))
	p.Address = strings.TrimSpace(p.Address)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	id, err := m.table.Set("", p)
	if err != nil {
		return nil, fmt.Errorf("adding party: %w", err)
	}
	m.log.Info("party added",
		zap.String("party_id", id),
		zap.String("case_id", p.CaseID),
		zap.String("role", p.Role))
	return p, nil
}

// Get returns a party by ID.
func (m *Parties) Get(id string) (*types.Party, error) {
	return getAs[types.Party](m.table, id)
}

// List returns the parties of a case in the order they were added.
func (m *Parties) List(caseID string) ([]*types.Party, error) {
	return fetchAs[types.Party](m.table, types.Filter{"case_id": caseID})
}

// Representation assigns the representatives of a case to its principals.
func (m *Parties) Representation(caseID string) (*Representation, error) {
	parties, err := m.List(caseID)
	if err != nil {
		return nil, err
	}
	return AssignRepresentatives(parties), nil
}

// Remove deletes a party. Representatives acting for it become
// unassigned.
func (m *Parties) Remove(id string) error {
	if err := m.table.Delete(id); err != nil {
		return fmt.Errorf("removing party %s: %w", id, err)
	}
	m.log.Info("party removed", zap.String("party_id", id))
	return nil
}
