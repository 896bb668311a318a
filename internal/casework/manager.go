// Package casework holds the business rules of the practice: one manager
// per entity over the store tables, plus search and representative
// assignment.
package casework

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/docket/internal/convert"
	"github.com/mesh-intelligence/docket/pkg/types"
)

// ErrEmptyQuery is returned by Search for a blank query.
var ErrEmptyQuery = errors.New("empty search query")

// Options configures a Manager.
type Options struct {
	CasesDir string           // root of the per-case folders
	Log      *zap.Logger      // defaults to a no-op logger
	Now      func() time.Time // defaults to time.Now
}

// Manager groups the per-entity managers over one store.
type Manager struct {
	Clients       *Clients
	Cases         *Cases
	Prospects     *Prospects
	Consultations *Consultations
	Parties       *Parties
	Activities    *Activities

	log *zap.Logger
}

// New resolves the store tables and builds the managers.
func New(store types.Store, opts Options) (*Manager, error) {
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	tables := make(map[string]types.Table, len(types.StandardTableNames))
	for _, name := range types.StandardTableNames {
		t, err := store.GetTable(name)
		if err != nil {
			return nil, fmt.Errorf("resolving table %s: %w", name, err)
		}
		tables[name] = t
	}

	m := &Manager{log: opts.Log}
	m.Clients = &Clients{table: tables[types.TableClients], cases: tables[types.TableCases], log: opts.Log}
	m.Cases = &Cases{
		table:    tables[types.TableCases],
		clients:  tables[types.TableClients],
		casesDir: opts.CasesDir,
		log:      opts.Log,
	}
	m.Consultations = &Consultations{table: tables[types.TableConsultations], log: opts.Log}
	m.Prospects = &Prospects{table: tables[types.TableProspects], clients: m.Clients, log: opts.Log}
	m.Parties = &Parties{table: tables[types.TableParties], log: opts.Log}
	m.Activities = &Activities{table: tables[types.TableActivities], now: opts.Now, log: opts.Log}
	return m, nil
}

// getAs loads one entity and asserts its concrete type.
func getAs[T any](table types.Table, id string) (*T, error) {
	v, err := table.Get(id)
	if err != nil {
		return nil, err
	}
	e, ok := v.(*T)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected %T", types.ErrInvalidData, v)
	}
	return e, nil
}

// fetchAs runs a filtered fetch and asserts every row's type.
func fetchAs[T any](table types.Table, filter types.Filter) ([]*T, error) {
	rows, err := table.Fetch(filter)
	if err != nil {
		return nil, err
	}
	out := make([]*T, 0, len(rows))
	for _, v := range rows {
		e, ok := v.(*T)
		if !ok {
			return nil, fmt.Errorf("%w: unexpected %T", types.ErrInvalidData, v)
		}
		out = append(out, e)
	}
	return out, nil
}

// normalizeName collapses whitespace and, when the name was typed all in
// one case, title-cases it. Mixed-case input such as "Acme S.A. de C.V."
// is kept as written.
func normalizeName(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == strings.ToLower(s) || s == strings.ToUpper(s) {
		return convert.TitleCase(s)
	}
	return s
}
