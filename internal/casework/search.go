package casework

import (
	"strings"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/docket/internal/convert"
)

// Result kinds returned by Search.
const (
	ResultClient       = "client"
	ResultCase         = "case"
	ResultProspect     = "prospect"
	ResultConsultation = "consultation"
)

// Result is one search hit.
type Result struct {
	Kind   string `json:"kind"`
	ID     string `json:"id"`
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
}

// Search finds clients, cases and prospects whose names, numbers, titles
// or contact details contain every word of query, and consultations whose
// topic, facts or notes do. Matching ignores case and accents.
func (m *Manager) Search(query string) ([]Result, error) {
	terms := strings.Fields(convert.Fold(query))
	if len(terms) == 0 {
		return nil, ErrEmptyQuery
	}

	var results []Result
	clients, err := m.Clients.List()
	if err != nil {
		return nil, err
	}
	for _, c := range clients {
		if matchAll(terms, c.Name, c.IDNumber, c.Email, c.Phone) {
			results = append(results, Result{Kind: ResultClient, ID: c.ClientID, Title: c.Name, Detail: c.Email})
		}
	}

	cases, err := m.Cases.List(CaseFilter{})
	if err != nil {
		return nil, err
	}
	for _, c := range cases {
		if matchAll(terms, c.Number, c.Title, c.Court) {
			results = append(results, Result{Kind: ResultCase, ID: c.CaseID, Title: c.Number + " " + c.Title, Detail: c.State})
		}
	}

	prospects, err := m.Prospects.List("")
	if err != nil {
		return nil, err
	}
	for _, p := range prospects {
		if matchAll(terms, p.Name, p.Email, p.Phone, p.Source) {
			results = append(results, Result{Kind: ResultProspect, ID: p.ProspectID, Title: p.Name, Detail: p.State})
		}
	}

	consultations, err := m.Consultations.List("")
	if err != nil {
		return nil, err
	}
	for _, c := range consultations {
		if matchAll(terms, c.Topic, c.Facts, c.ReformulatedFacts, c.Notes) {
			results = append(results, Result{
				Kind:   ResultConsultation,
				ID:     c.ConsultationID,
				Title:  c.Date.Format("2006-01-02") + " " + c.Topic,
				Detail: c.ProspectID,
			})
		}
	}
	m.log.Debug("search", zap.String("query", query), zap.Int("results", len(results)))
	return results, nil
}

// matchAll reports whether each term occurs in at least one field.
func matchAll(terms []string, fields ...string) bool {
	hay := convert.Fold(strings.Join(fields, " "))
	for _, t := range terms {
		if !strings.Contains(hay, t) {
			return false
		}
	}
	return true
}
