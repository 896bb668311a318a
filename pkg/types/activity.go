package types

import (
	"strings"
	"time"
)

// Activity kinds.
const (
	ActivityNote     = "note"
	ActivityCall     = "call"
	ActivityHearing  = "hearing"
	ActivityDocument = "document"
	ActivityDeadline = "deadline"
)

// ActivityKinds lists the recognized activity kinds in display order.
var ActivityKinds = []string{
	ActivityNote,
	ActivityCall,
	ActivityHearing,
	ActivityDocument,
	ActivityDeadline,
}

// Activity is a dated entry in a case's log: notes, calls, hearings,
// generated documents and deadlines.
type Activity struct {
	ActivityID  string     `json:"activity_id"`
	CaseID      string     `json:"case_id"`
	Kind        string     `json:"kind"`
	Description string     `json:"description"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	Done        bool       `json:"done"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Validate checks the case reference, kind and description.
func (a *Activity) Validate() error {
	if a.CaseID == "" {
		return ErrMissingParent
	}
	if !IsActivityKind(a.Kind) {
		return ErrInvalidKind
	}
	if strings.TrimSpace(a.Description) == "" {
		return ErrMissingDesc
	}
	return nil
}

// IsActivityKind reports whether kind is one of ActivityKinds.
func IsActivityKind(kind string) bool {
	for _, k := range ActivityKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Complete marks the activity as done. Idempotent.
func (a *Activity) Complete() {
	a.Done = true
}

// DueWithin reports whether the activity is pending and due in [from, to].
func (a *Activity) DueWithin(from, to time.Time) bool {
	if a.Done || a.DueAt == nil {
		return false
	}
	return !a.DueAt.Before(from) && !a.DueAt.After(to)
}
