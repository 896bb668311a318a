package casework

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/docket/pkg/types"
)

// Activities manages the log and agenda of cases.
type Activities struct {
	table types.Table
	now   func() time.Time
	log   *zap.Logger
}

// Add stores an activity on a case.
func (m *Activities) Add(a *types.Activity) (*types.Activity, error) {
	a.Description = strings.TrimSpace(a.Description)
	if err := a.Validate(); err != nil {
		return nil, err
	}
	id, err := m.table.Set("", a)
	if err != nil {
		return nil, fmt.Errorf("adding activity: %w", err)
	}
	m.log.Info("activity added",
		zap.String("activity_id", id),
		zap.String("case_id", a.CaseID),
		zap.String("kind", a.Kind))
	return a, nil
}

// Record adds a completed activity, used to log what docket itself did on
// a case such as generating a document.
func (m *Activities) Record(caseID, kind, description string) (*types.Activity, error) {
	return m.Add(&types.Activity{CaseID: caseID, Kind: kind, Description: description, Done: true})
}

// List returns the activities of a case, dated ones first. Completed
// activities are left out unless includeDone is set.
func (m *Activities) List(caseID string, includeDone bool) ([]*types.Activity, error) {
	filter := types.Filter{"case_id": caseID}
	if !includeDone {
		filter["done"] = false
	}
	return fetchAs[types.Activity](m.table, filter)
}

// Complete marks an activity done.
func (m *Activities) Complete(id string) (*types.Activity, error) {
	a, err := getAs[types.Activity](m.table, id)
	if err != nil {
		return nil, err
	}
	a.Complete()
	if _, err := m.table.Set(id, a); err != nil {
		return nil, fmt.Errorf("completing activity %s: %w", id, err)
	}
	return a, nil
}

// Upcoming returns pending activities of every case due between now and
// now+horizon, soonest first.
func (m *Activities) Upcoming(now time.Time, horizon time.Duration) ([]*types.Activity, error) {
	pending, err := fetchAs[types.Activity](m.table, types.Filter{"done": false})
	if err != nil {
		return nil, err
	}
	until := now.Add(horizon)
	var due []*types.Activity
	for _, a := range pending {
		if a.DueWithin(now, until) {
			due = append(due, a)
		}
	}
	return due, nil
}

// Overdue returns pending activities whose due date has passed.
func (m *Activities) Overdue() ([]*types.Activity, error) {
	pending, err := fetchAs[types.Activity](m.table, types.Filter{"done": false})
	if err != nil {
		return nil, err
	}
	now := m.now()
	var late []*types.Activity
	for _, a := range pending {
		if a.DueAt != nil && a.DueAt.Before(now) {
			late = append(late, a)
		}
	}
	return late, nil
}

// Delete removes an activity.
func (m *Activities) Delete(id string) error {
	if err := m.table.Delete(id); err != nil {
		return fmt.Errorf("deleting activity %s: %w", id, err)
	}
	return nil
}
