package agreement

import (
	"strings"
	"time"

	"github.com/mesh-intelligence/docket/internal/casework"
	"github.com/mesh-intelligence/docket/internal/convert"
	"github.com/mesh-intelligence/docket/pkg/types"
)

// Installment is one payment of an agreed amount.
type Installment struct {
	Number int       `json:"number"`
	Amount int64     `json:"amount"` // cents
	Due    time.Time `json:"due"`
}

// Schedule splits amount into n payments, periodDays apart, the first one
// due on start. Cents that do not divide evenly go to the last payment.
func Schedule(amount int64, n, periodDays int, start time.Time) []Installment {
	if n < 1 {
		n = 1
	}
	base := amount / int64(n)
	out := make([]Installment, n)
	for i := range out {
		out[i] = Installment{
			Number: i + 1,
			Amount: base,
			Due:    start.AddDate(0, 0, i*periodDays),
		}
	}
	out[n-1].Amount += amount - base*int64(n)
	return out
}

// contextBuilder turns stored records into template data.
type contextBuilder struct {
	firm     Firm
	currency convert.Currency
}

func (b contextBuilder) words(cents int64) string {
	w, err := convert.AmountToWords(cents, b.currency)
	if err != nil {
		return ""
	}
	return w
}

// base holds the keys every template sees: firm, case, client and dates.
func (b contextBuilder) base(c *types.Case, client *types.Client, today time.Time) map[string]any {
	date := today
	if c.AgreementDate != nil {
		date = *c.AgreementDate
	}
	caseData := map[string]any{
		"number":       c.Number,
		"title":        c.Title,
		"kind":         c.Kind,
		"court":        c.Court,
		"folder":       c.Folder,
		"amount":       c.Amount,
		"amount_money": convert.FormatMoney(c.Amount, b.currency),
		"amount_words": b.words(c.Amount),
		"installments": c.Installments,
		"period_days":  c.PeriodDays,
		"period_words": "",
		"notes":        c.Notes,
	}
	if c.PeriodDays > 0 {
		if w, err := convert.PeriodToWords(c.PeriodDays); err == nil {
			caseData["period_words"] = w
		}
	}
	return map[string]any{
		"firm": map[string]any{
			"name":   b.firm.Name,
			"lawyer": b.firm.Lawyer,
		},
		"case": caseData,
		"client": map[string]any{
			"name":      client.Name,
			"id_number": client.IDNumber,
			"address":   client.Address,
			"phone":     client.Phone,
			"email":     client.Email,
		},
		"date":       date,
		"date_long":  convert.DateLong(date),
		"date_words": convert.DateToWords(date),
		"today":      today,
	}
}

// parties adds actors, defendants and their representatives.
func (b contextBuilder) parties(data map[string]any, rep *casework.Representation) {
	data["actors"] = principalList(rep.Actors, rep)
	data["defendants"] = principalList(rep.Defendants, rep)
	data["actor_names"] = joinNames(rep.Actors)
	data["defendant_names"] = joinNames(rep.Defendants)
	unassigned := make([]map[string]any, 0, len(rep.Unassigned))
	for _, p := range rep.Unassigned {
		unassigned = append(unassigned, partyData(p))
	}
	data["unassigned"] = unassigned
}

// schedule adds the payment plan.
func (b contextBuilder) schedule(data map[string]any, plan []Installment) {
	rows := make([]map[string]any, 0, len(plan))
	for _, in := range plan {
		rows = append(rows, map[string]any{
			"number":       in.Number,
			"amount":       in.Amount,
			"amount_money": convert.FormatMoney(in.Amount, b.currency),
			"amount_words": b.words(in.Amount),
			"due":          in.Due,
			"due_long":     convert.DateLong(in.Due),
		})
	}
	data["schedule"] = rows
	if len(plan) > 0 {
		data["installment_money"] = convert.FormatMoney(plan[0].Amount, b.currency)
		data["installment_words"] = b.words(plan[0].Amount)
	}
}

func partyData(p *types.Party) map[string]any {
	return map[string]any{
		"name":      p.Name,
		"id_number": p.IDNumber,
		"address":   p.Address,
	}
}

func principalList(ps []*types.Party, rep *casework.Representation) []map[string]any {
	out := make([]map[string]any, 0, len(ps))
	for _, p := range ps {
		d := partyData(p)
		reps := rep.For(p.PartyID)
		list := make([]map[string]any, 0, len(reps))
		for _, r := range reps {
			list = append(list, partyData(r))
		}
		d["representatives"] = list
		d["representative_names"] = joinNames(reps)
		out = append(out, d)
	}
	return out
}

// joinNames writes "A", "A y B" or "A, B y C".
func joinNames(ps []*types.Party) string {
	names := make([]string, 0, len(ps))
	for _, p := range ps {
		names = append(names, p.Name)
	}
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	}
	return strings.Join(names[:len(names)-1], ", ") + " y " + names[len(names)-1]
}
