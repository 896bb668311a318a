// Package agreement generates mediation agreements and other case
// documents from the template catalog.
package agreement

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/docket/internal/casework"
	"github.com/mesh-intelligence/docket/internal/convert"
	"github.com/mesh-intelligence/docket/internal/docgen"
	"github.com/mesh-intelligence/docket/pkg/types"
)

// Prerequisite errors, checked in this order.
var (
	ErrCaseClosed       = errors.New("case is closed")
	ErrNoClient         = errors.New("case has no client")
	ErrMissingActor     = errors.New("case has no actor")
	ErrMissingDefendant = errors.New("case has no defendant")
	ErrInvalidTerms     = errors.New("invalid agreement terms")
	ErrWrongKind        = errors.New("template kind does not match")
)

// Firm identifies the practice in generated documents.
type Firm struct {
	Name   string
	Lawyer string
}

// Options configures a Generator.
type Options struct {
	Firm     Firm
	Currency convert.Currency
	Now      func() time.Time
	Log      *zap.Logger
}

// Generator renders case documents.
type Generator struct {
	work     *casework.Manager
	catalog  *docgen.Catalog
	renderer *docgen.Renderer
	build    contextBuilder
	now      func() time.Time
	log      *zap.Logger
}

// New creates a Generator.
func New(work *casework.Manager, catalog *docgen.Catalog, renderer *docgen.Renderer, opts Options) *Generator {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Log == nil {
		opts.Log = zap.NewNop()
	}
	if opts.Currency == (convert.Currency{}) {
		opts.Currency = convert.DefaultCurrency
	}
	return &Generator{
		work:     work,
		catalog:  catalog,
		renderer: renderer,
		build:    contextBuilder{firm: opts.Firm, currency: opts.Currency},
		now:      opts.Now,
		log:      opts.Log,
	}
}

// Result describes a generated document.
type Result struct {
	Path       string        `json:"path"`
	Template   string        `json:"template"`
	CaseID     string        `json:"case_id"`
	ActivityID string        `json:"activity_id,omitempty"`
	Unassigned []string      `json:"unassigned,omitempty"`
	Schedule   []Installment `json:"schedule,omitempty"`
	Case       *types.Case   `json:"-"`
}

// Request asks for one agreement.
type Request struct {
	CaseRef   string // case ID or number
	Template  string // catalog name; empty picks the first agreement template
	Overwrite bool
}

// Agreement runs the mediation-agreement pipeline for a case:
//
//  1. the case exists and is not closed;
//  2. the case has a client;
//  3. it has at least one actor and one defendant;
//  4. amount > 0, at least one installment, and a period when there are
//     several;
//  5. the agreement date defaults to today;
//  6. the template data is built, with representatives per principal and
//     the installment schedule;
//  7. the document is written to the case folder, and only then is a
//     defaulted agreement date saved on the case;
//  8. a document activity is recorded on the case.
func (g *Generator) Agreement(req Request) (*Result, error) {
	c, err := g.work.Cases.Resolve(req.CaseRef)
	if err != nil {
		return nil, err
	}
	if c.State == types.CaseStateClosed {
		return nil, fmt.Errorf("case %s: %w", c.Number, ErrCaseClosed)
	}
	client, err := g.work.Cases.Client(c)
	if errors.Is(err, types.ErrNotFound) {
		return nil, fmt.Errorf("case %s: %w", c.Number, ErrNoClient)
	}
	if err != nil {
		return nil, err
	}

	rep, err := g.work.Parties.Representation(c.CaseID)
	if err != nil {
		return nil, err
	}
	if len(rep.Actors) == 0 {
		return nil, fmt.Errorf("case %s: %w", c.Number, ErrMissingActor)
	}
	if len(rep.Defendants) == 0 {
		return nil, fmt.Errorf("case %s: %w", c.Number, ErrMissingDefendant)
	}

	if err := checkTerms(c); err != nil {
		return nil, fmt.Errorf("case %s: %w", c.Number, err)
	}

	today := convert.DateOnly(g.now())
	date := today
	if c.AgreementDate != nil {
		date = *c.AgreementDate
	}

	tmpl, err := g.pickTemplate(req.Template, docgen.KindAgreement)
	if err != nil {
		return nil, err
	}

	// The date only reaches the store once the document exists.
	draft := *c
	draft.AgreementDate = &date
	plan := Schedule(c.Amount, c.Installments, c.PeriodDays, date)
	data := g.build.base(&draft, client, today)
	g.build.parties(data, rep)
	g.build.schedule(data, plan)

	job, err := g.job(c, tmpl, data, "Acuerdo "+c.Number, req.Overwrite)
	if err != nil {
		return nil, err
	}
	if err := g.renderer.Render(job); err != nil {
		return nil, err
	}
	if c.AgreementDate == nil {
		c.AgreementDate = &date
		if c, err = g.work.Cases.Update(c); err != nil {
			return nil, fmt.Errorf("saving agreement date: %w", err)
		}
	}
	res := &Result{Path: job.Output, Template: tmpl.Name, CaseID: c.CaseID, Case: c}
	if err := g.record(res); err != nil {
		return nil, err
	}
	res.Schedule = plan
	for _, p := range rep.Unassigned {
		res.Unassigned = append(res.Unassigned, p.Name)
	}
	if len(res.Unassigned) > 0 {
		g.log.Warn("representatives without principal",
			zap.String("case_id", c.CaseID), zap.Strings("names", res.Unassigned))
	}
	return res, nil
}

func checkTerms(c *types.Case) error {
	switch {
	case c.Amount <= 0:
		return fmt.Errorf("%w: amount must be greater than zero", ErrInvalidTerms)
	case c.Installments < 1:
		return fmt.Errorf("%w: at least one installment is required", ErrInvalidTerms)
	case c.Installments > 1 && c.PeriodDays <= 0:
		return fmt.Errorf("%w: a period is required for %d installments", ErrInvalidTerms, c.Installments)
	}
	return nil
}

// Generic renders a generic catalog template for a case. No party
// minimums apply.
func (g *Generator) Generic(caseRef, templateName string, overwrite bool) (*Result, error) {
	c, client, rep, err := g.load(caseRef)
	if err != nil {
		return nil, err
	}
	tmpl, err := g.pickTemplate(templateName, docgen.KindGeneric)
	if err != nil {
		return nil, err
	}
	data := g.build.base(c, client, convert.DateOnly(g.now()))
	g.build.parties(data, rep)
	return g.render(c, tmpl, data, tmpl.Name+" "+c.Number, overwrite)
}

// GenericBatch renders several generic templates for one case
// concurrently. Repeated names are rendered once. Activities are recorded
// only when every document was written; on failure the documents the
// batch created are removed.
func (g *Generator) GenericBatch(ctx context.Context, caseRef string, names []string, overwrite bool) ([]*Result, error) {
	names = uniqueNames(names)
	c, client, rep, err := g.load(caseRef)
	if err != nil {
		return nil, err
	}
	data := g.build.base(c, client, convert.DateOnly(g.now()))
	g.build.parties(data, rep)

	jobs := make([]docgen.Job, 0, len(names))
	results := make([]*Result, 0, len(names))
	for _, name := range names {
		tmpl, err := g.pickTemplate(name, docgen.KindGeneric)
		if err != nil {
			return nil, err
		}
		job, err := g.job(c, tmpl, data, tmpl.Name+" "+c.Number, overwrite)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
		results = append(results, &Result{Path: job.Output, Template: tmpl.Name, CaseID: c.CaseID, Case: c})
	}
	if err := g.renderer.RenderBatch(ctx, jobs, 0); err != nil {
		return nil, err
	}
	for _, r := range results {
		if err := g.record(r); err != nil {
			return nil, err
		}
	}
	return results, nil
}

// uniqueNames drops repeated template names, keeping the first of each.
func uniqueNames(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

func (g *Generator) load(caseRef string) (*types.Case, *types.Client, *casework.Representation, error) {
	c, err := g.work.Cases.Resolve(caseRef)
	if err != nil {
		return nil, nil, nil, err
	}
	client, err := g.work.Cases.Client(c)
	if errors.Is(err, types.ErrNotFound) {
		return nil, nil, nil, fmt.Errorf("case %s: %w", c.Number, ErrNoClient)
	}
	if err != nil {
		return nil, nil, nil, err
	}
	rep, err := g.work.Parties.Representation(c.CaseID)
	if err != nil {
		return nil, nil, nil, err
	}
	return c, client, rep, nil
}

func (g *Generator) pickTemplate(name, kind string) (docgen.Template, error) {
	if name == "" {
		return g.catalog.FirstOfKind(kind)
	}
	t, err := g.catalog.Lookup(name)
	if err != nil {
		return docgen.Template{}, err
	}
	if t.Kind != kind {
		return docgen.Template{}, fmt.Errorf("%w: %s is %s, want %s", ErrWrongKind, t.Name, t.Kind, kind)
	}
	return t, nil
}

func (g *Generator) job(c *types.Case, tmpl docgen.Template, data map[string]any, fallback string, overwrite bool) (docgen.Job, error) {
	if err := docgen.CheckRequired(tmpl, data); err != nil {
		return docgen.Job{}, err
	}
	name, err := docgen.OutputName(tmpl, data, fallback)
	if err != nil {
		return docgen.Job{}, err
	}
	return docgen.Job{
		Template:  g.catalog.Path(tmpl),
		Output:    filepath.Join(g.work.Cases.FolderPath(c), name),
		Data:      data,
		Overwrite: overwrite,
	}, nil
}

func (g *Generator) render(c *types.Case, tmpl docgen.Template, data map[string]any, fallback string, overwrite bool) (*Result, error) {
	job, err := g.job(c, tmpl, data, fallback, overwrite)
	if err != nil {
		return nil, err
	}
	if err := g.renderer.Render(job); err != nil {
		return nil, err
	}
	res := &Result{Path: job.Output, Template: tmpl.Name, CaseID: c.CaseID, Case: c}
	if err := g.record(res); err != nil {
		return nil, err
	}
	return res, nil
}

func (g *Generator) record(res *Result) error {
	a, err := g.work.Activities.Record(res.CaseID, types.ActivityDocument,
		"Documento generado: "+filepath.Base(res.Path))
	if err != nil {
		return fmt.Errorf("recording document on case: %w", err)
	}
	res.ActivityID = a.ActivityID
	g.log.Info("document generated",
		zap.String("case_id", res.CaseID),
		zap.String("template", res.Template),
		zap.String("path", res.Path))
	return nil
}
