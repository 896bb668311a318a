package casework

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/docket/pkg/types"
)

// Consultations manages consultation intake for prospects.
type Consultations struct {
	table types.Table
	log   *zap.Logger
}

// Add stores a consultation for an existing prospect.
func (m *Consultations) Add(c *types.Consultation) (*types.Consultation, error) {
	c.Topic = strings.TrimSpace(c.Topic)
	c.Facts = strings.TrimSpace(c.Facts)
	c.Notes = strings.TrimSpace(c.Notes)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	id, err := m.table.Set("", c)
	if err != nil {
		return nil, fmt.Errorf("adding consultation: %w", err)
	}
	m.log.Info("consultation added", zap.String("consultation_id", id), zap.String("prospect_id", c.ProspectID))
	return c, nil
}

// Get returns a consultation by ID.
func (m *Consultations) Get(id string) (*types.Consultation, error) {
	return getAs[types.Consultation](m.table, id)
}

// List returns the consultations of a prospect, or all when prospectID is
// empty.
func (m *Consultations) List(prospectID string) ([]*types.Consultation, error) {
	var filter types.Filter
	if prospectID != "" {
		filter = types.Filter{"prospect_id": prospectID}
	}
	return fetchAs[types.Consultation](m.table, filter)
}

// SaveReformulation stores the reformulated facts of a consultation.
func (m *Consultations) SaveReformulation(id, text string) (*types.Consultation, error) {
	c, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	c.ReformulatedFacts = strings.TrimSpace(text)
	if _, err := m.table.Set(id, c); err != nil {
		return nil, fmt.Errorf("saving reformulation for %s: %w", id, err)
	}
	m.log.Info("reformulation saved", zap.String("consultation_id", id), zap.Int("chars", len(c.ReformulatedFacts)))
	return c, nil
}

// Delete removes a consultation.
func (m *Consultations) Delete(id string) error {
	if err := m.table.Delete(id); err != nil {
		return fmt.Errorf("deleting consultation %s: %w", id, err)
	}
	return nil
}
