package types

import (
	"strings"
	"time"
)

// Case states.
const (
	CaseStateOpen      = "open"
	CaseStateSuspended = "suspended"
	CaseStateClosed    = "closed"
)

// Case kinds.
const (
	CaseKindMediation = "mediation"
	CaseKindLabor     = "labor"
	CaseKindCivil     = "civil"
	CaseKindFamily    = "family"
	CaseKindOther     = "other"
)

var validCaseStates = map[string]bool{
	CaseStateOpen:      true,
	CaseStateSuspended: true,
	CaseStateClosed:    true,
}

// CaseKinds lists the recognized case kinds in display order.
var CaseKinds = []string{
	CaseKindMediation,
	CaseKindLabor,
	CaseKindCivil,
	CaseKindFamily,
	CaseKindOther,
}

// Case is a matter handled for a client. Amount is kept in cents.
// Installments and PeriodDays describe how the agreed amount is paid.
type Case struct {
	CaseID        string     `json:"case_id"`
	ClientID      string     `json:"client_id"`
	Number        string     `json:"number"`
	Title         string     `json:"title"`
	Kind          string     `json:"kind"`
	State         string     `json:"state"`
	Court         string     `json:"court"`
	Folder        string     `json:"folder"`
	Amount        int64      `json:"amount"`
	Installments  int        `json:"installments"`
	PeriodDays    int        `json:"period_days"`
	AgreementDate *time.Time `json:"agreement_date,omitempty"`
	Notes         string     `json:"notes"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Validate checks required fields and enumerated values. An empty State or
// Kind is accepted; the backend fills in the defaults on create.
func (c *Case) Validate() error {
	if strings.TrimSpace(c.Number) == "" {
		return ErrInvalidNumber
	}
	if strings.TrimSpace(c.Title) == "" {
		return ErrInvalidTitle
	}
	if c.ClientID == "" {
		return ErrMissingParent
	}
	if c.State != "" && !validCaseStates[c.State] {
		return ErrInvalidState
	}
	if c.Kind != "" && !IsCaseKind(c.Kind) {
		return ErrInvalidKind
	}
	if c.Amount < 0 || c.Installments < 0 || c.PeriodDays < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// IsCaseKind reports whether kind is one of CaseKinds.
func IsCaseKind(kind string) bool {
	for _, k := range CaseKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Close marks the case as closed. Closing a closed case fails with
// ErrInvalidTransition.
func (c *Case) Close() error {
	if c.State == CaseStateClosed {
		return ErrInvalidTransition
	}
	c.State = CaseStateClosed
	c.UpdatedAt = time.Now()
	return nil
}

// Suspend pauses an open case.
func (c *Case) Suspend() error {
	if c.State != CaseStateOpen {
		return ErrInvalidTransition
	}
	c.State = CaseStateSuspended
	c.UpdatedAt = time.Now()
	return nil
}

// Reopen returns a suspended or closed case to the open state.
func (c *Case) Reopen() error {
	if c.State == CaseStateOpen {
		return ErrInvalidTransition
	}
	c.State = CaseStateOpen
	c.UpdatedAt = time.Now()
	return nil
}
