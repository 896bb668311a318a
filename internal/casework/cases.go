package casework

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/docket/internal/convert"
	"github.com/mesh-intelligence/docket/pkg/types"
)

// Cases manages cases and their folders on disk.
type Cases struct {
	table    types.Table
	clients  types.Table
	casesDir string
	log      *zap.Logger
}

// CaseFilter narrows List. Empty fields match everything.
type CaseFilter struct {
	ClientID string
	State    string
	Kind     string
}

func normalizeCase(c *types.Case) {
	c.Number = strings.TrimSpace(c.Number)
	c.Title = strings.Join(strings.Fields(c.Title), " ")
	c.Court = strings.TrimSpace(c.Court)
	c.Notes = strings.TrimSpace(c.Notes)
}

// FolderName derives the folder of a case: "<number>-<title>", both
// slugged. Case 12/2024 "Pérez vs. Acme" lives in "12-2024-perez-vs-acme".
func FolderName(number, title string) string {
	n, t := convert.Slug(number), convert.Slug(title)
	switch {
	case n == "":
		return t
	case t == "":
		return n
	}
	return n + "-" + t
}

// Open stores a new case and creates its folder under the cases root. The
// folder name is derived from the number and title unless one is given.
func (m *Cases) Open(c *types.Case) (*types.Case, error) {
	normalizeCase(c)
	c.State = types.CaseStateOpen
	if c.Folder == "" {
		c.Folder = FolderName(c.Number, c.Title)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	id, err := m.table.Set("", c)
	if err != nil {
		return nil, fmt.Errorf("opening case %s: %w", c.Number, err)
	}

	if m.casesDir != "" {
		if err := os.MkdirAll(m.FolderPath(c), 0o755); err != nil {
			if delErr := m.table.Delete(id); delErr != nil {
				m.log.Warn("rollback of case failed", zap.String("case_id", id), zap.Error(delErr))
			}
			return nil, fmt.Errorf("creating folder for case %s: %w", c.Number, err)
		}
	}
	m.log.Info("case opened",
		zap.String("case_id", id),
		zap.String("number", c.Number),
		zap.String("folder", c.Folder))
	return c, nil
}

// FolderPath returns the absolute folder of a case.
func (m *Cases) FolderPath(c *types.Case) string {
	if filepath.IsAbs(c.Folder) {
		return c.Folder
	}
	return filepath.Join(m.casesDir, c.Folder)
}

// Get returns a case by ID.
func (m *Cases) Get(id string) (*types.Case, error) {
	return getAs[types.Case](m.table, id)
}

// ByNumber returns the case with the given number.
func (m *Cases) ByNumber(number string) (*types.Case, error) {
	found, err := fetchAs[types.Case](m.table, types.Filter{"number": strings.TrimSpace(number)})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, fmt.Errorf("case %s: %w", number, types.ErrNotFound)
	}
	return found[0], nil
}

// Resolve finds a case by ID or, failing that, by number.
func (m *Cases) Resolve(ref string) (*types.Case, error) {
	c, err := m.Get(ref)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, types.ErrNotFound) && !errors.Is(err, types.ErrInvalidID) {
		return nil, err
	}
	return m.ByNumber(ref)
}

// List returns the cases matching f ordered by number.
func (m *Cases) List(f CaseFilter) ([]*types.Case, error) {
	filter := types.Filter{}
	if f.ClientID != "" {
		filter["client_id"] = f.ClientID
	}
	if f.State != "" {
		filter["state"] = f.State
	}
	if f.Kind != "" {
		filter["kind"] = f.Kind
	}
	return fetchAs[types.Case](m.table, filter)
}

// Client returns the client that owns a case.
func (m *Cases) Client(c *types.Case) (*types.Client, error) {
	cl, err := getAs[types.Client](m.clients, c.ClientID)
	if err != nil {
		return nil, fmt.Errorf("client of case %s: %w", c.Number, err)
	}
	return cl, nil
}

// Update stores changes to an existing case. The folder is not renamed
// when the number or title change.
func (m *Cases) Update(c *types.Case) (*types.Case, error) {
	if _, err := m.Get(c.CaseID); err != nil {
		return nil, err
	}
	normalizeCase(c)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if _, err := m.table.Set(c.CaseID, c); err != nil {
		return nil, fmt.Errorf("updating case %s: %w", c.Number, err)
	}
	m.log.Info("case updated", zap.String("case_id", c.CaseID))
	return c, nil
}

// Close marks a case closed.
func (m *Cases) Close(id string) (*types.Case, error) {
	return m.transition(id, "closed", (*types.Case).Close)
}

// Suspend puts an open case on hold.
func (m *Cases) Suspend(id string) (*types.Case, error) {
	return m.transition(id, "suspended", (*types.Case).Suspend)
}

// Reopen moves a closed or suspended case back to open.
func (m *Cases) Reopen(id string) (*types.Case, error) {
	return m.transition(id, "reopened", (*types.Case).Reopen)
}

func (m *Cases) transition(id, verb string, apply func(*types.Case) error) (*types.Case, error) {
	c, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	from := c.State
	if err := apply(c); err != nil {
		return nil, fmt.Errorf("case %s is %s: %w", c.Number, from, err)
	}
	if _, err := m.table.Set(c.CaseID, c); err != nil {
		return nil, fmt.Errorf("saving case %s: %w", c.Number, err)
	}
	m.log.Info("case "+verb, zap.String("case_id", id), zap.String("from", from))
	return c, nil
}

// Delete removes a case with its parties and activities. The case folder
// and the documents in it are left on disk.
func (m *Cases) Delete(id string) error {
	if err := m.table.Delete(id); err != nil {
		return fmt.Errorf("deleting case %s: %w", id, err)
	}
	m.log.Info("case deleted", zap.String("case_id", id))
	return nil
}
