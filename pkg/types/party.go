package types

import (
	"strings"
	"time"
)

// Party roles.
const (
	RoleActor          = "actor"
	RoleDefendant      = "defendant"
	RoleRepresentative = "representative"
)

var validRoles = map[string]bool{
	RoleActor:          true,
	RoleDefendant:      true,
	RoleRepresentative: true,
}

// Party is a person or entity associated with a case. Actors and defendants
// are principals; a representative acts for one of them, named either
// directly through RepresentsID or loosely through Side.
type Party struct {
	PartyID      string    `json:"party_id"`
	CaseID       string    `json:"case_id"`
	Role         string    `json:"role"`
	Name         string    `json:"name"`
	IDNumber     string    `json:"id_number"`
	Address      string    `json:"address"`
	RepresentsID string    `json:"represents_id"`
	Side         string    `json:"side"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsPrincipal reports whether the party is an actor or defendant.
func (p *Party) IsPrincipal() bool {
	return p.Role == RoleActor || p.Role == RoleDefendant
}

// Validate checks role, name and representation fields. Only
// representatives may carry RepresentsID or Side, and Side must name a
// principal role.
func (p *Party) Validate() error {
	if p.CaseID == "" {
		return ErrMissingParent
	}
	if !validRoles[p.Role] {
		return ErrInvalidRole
	}
	if strings.TrimSpace(p.Name) == "" {
		return ErrInvalidName
	}
	if p.Role != RoleRepresentative {
		if p.RepresentsID != "" || p.Side != "" {
			return ErrInvalidSide
		}
		return nil
	}
	if p.Side != "" && p.Side != RoleActor && p.Side != RoleDefendant {
		return ErrInvalidSide
	}
	if p.PartyID != "" && p.RepresentsID == p.PartyID {
		return ErrSelfReference
	}
	return nil
}
