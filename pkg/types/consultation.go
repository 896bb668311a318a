package types

import (
	"strings"
	"time"
)

// Consultation is an intake interview with a prospect. Facts holds the
// account as told; ReformulatedFacts holds the rewritten version produced
// by the reformulation service.
type Consultation struct {
	ConsultationID    string    `json:"consultation_id"`
	ProspectID        string    `json:"prospect_id"`
	Date              time.Time `json:"date"`
	Topic             string    `json:"topic"`
	Facts             string    `json:"facts"`
	ReformulatedFacts string    `json:"reformulated_facts"`
	Notes             string    `json:"notes"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Validate checks that the consultation names a prospect and has facts.
func (c *Consultation) Validate() error {
	if c.ProspectID == "" {
		return ErrMissingParent
	}
	if strings.TrimSpace(c.Facts) == "" {
		return ErrMissingFacts
	}
	return nil
}
