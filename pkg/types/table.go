package types

import "errors"

// Table provides uniform CRUD operations for a single entity type.
// Get and Fetch return any; callers type-assert to the concrete entity struct.
type Table interface {
	// Get retrieves the entity with the given ID.
	// Returns ErrNotFound if no entity exists with that ID.
	Get(id string) (any, error)

	// Set creates or updates an entity. When id is empty a new UUID v7 is
	// generated. Returns the actual ID used (generated or provided).
	Set(id string, data any) (string, error)

	// Delete removes the entity with the given ID.
	// Returns ErrNotFound if no entity exists with that ID.
	Delete(id string) error

	// Fetch returns all entities matching the filter. An empty filter
	// returns every entity in the table.
	Fetch(filter Filter) ([]any, error)
}

// Filter maps column names to the values they must equal. Keys are the
// JSON field names of the entity (e.g. "case_id", "state").
type Filter map[string]any

// Table operation errors.
var (
	ErrNotFound      = errors.New("entity not found")
	ErrInvalidID     = errors.New("invalid entity ID")
	ErrInvalidData   = errors.New("invalid entity data")
	ErrInvalidFilter = errors.New("invalid filter")
	ErrDuplicate     = errors.New("entity already exists")
	ErrHasDependents = errors.New("entity has dependent records")
	ErrMissingParent = errors.New("referenced entity does not exist")
)

// Entity method and validation errors.
var (
	ErrInvalidState      = errors.New("invalid state value")
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrInvalidName       = errors.New("name must not be empty")
	ErrInvalidEmail      = errors.New("invalid email address")
	ErrInvalidPhone      = errors.New("invalid phone number")
	ErrInvalidKind       = errors.New("invalid kind")
	ErrInvalidRole       = errors.New("invalid party role")
	ErrInvalidAmount     = errors.New("amount must not be negative")
	ErrInvalidNumber     = errors.New("case number must not be empty")
	ErrInvalidTitle      = errors.New("case title must not be empty")
	ErrMissingFacts      = errors.New("consultation facts must not be empty")
	ErrMissingDesc       = errors.New("description must not be empty")
	ErrInvalidSide       = errors.New("invalid representation side")
	ErrSelfReference     = errors.New("party cannot represent itself")
)
