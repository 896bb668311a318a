package types

import (
	"strings"
	"time"
)

// Prospect states. A prospect starts as new, may be contacted, and ends
// either converted into a client or discarded.
const (
	ProspectStateNew       = "new"
	ProspectStateContacted = "contacted"
	ProspectStateConverted = "converted"
	ProspectStateDiscarded = "discarded"
)

var validProspectStates = map[string]bool{
	ProspectStateNew:       true,
	ProspectStateContacted: true,
	ProspectStateConverted: true,
	ProspectStateDiscarded: true,
}

// Prospect is a potential client in initial consultation, prior to formal
// engagement. ClientID is set once the prospect is converted.
type Prospect struct {
	ProspectID string    `json:"prospect_id"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone"`
	Email      string    `json:"email"`
	Source     string    `json:"source"`
	State      string    `json:"state"`
	ClientID   string    `json:"client_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Validate checks the prospect's name, contact formats and state.
func (p *Prospect) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrInvalidName
	}
	if p.State != "" && !validProspectStates[p.State] {
		return ErrInvalidState
	}
	if err := ValidateEmail(p.Email); err != nil {
		return err
	}
	return ValidatePhone(p.Phone)
}

// Closed reports whether the prospect reached a terminal state.
func (p *Prospect) Closed() bool {
	return p.State == ProspectStateConverted || p.State == ProspectStateDiscarded
}

// Contact records that the practice reached out to the prospect.
func (p *Prospect) Contact() error {
	if p.Closed() {
		return ErrInvalidTransition
	}
	p.State = ProspectStateContacted
	p.UpdatedAt = time.Now()
	return nil
}

// Convert links the prospect to the client created from it. Terminal
// prospects cannot be converted.
func (p *Prospect) Convert(clientID string) error {
	if p.Closed() {
		return ErrInvalidTransition
	}
	if clientID == "" {
		return ErrInvalidID
	}
	p.State = ProspectStateConverted
	p.ClientID = clientID
	p.UpdatedAt = time.Now()
	return nil
}

// Discard drops the prospect. Converted prospects cannot be discarded;
// discarding twice is a no-op.
func (p *Prospect) Discard() error {
	if p.State == ProspectStateConverted {
		return ErrInvalidTransition
	}
	p.State = ProspectStateDiscarded
	p.UpdatedAt = time.Now()
	return nil
}
