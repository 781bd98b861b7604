// Package plan holds the static membership price table.
package plan

import (
	"encoding/json"

	"bookclub-membership/internal/model"

	"github.com/shopspring/decimal"
)

// DefaultPlan is charged when a checkout names a plan that is not in the table.
const DefaultPlan = model.PlanMonthly

type Plan struct {
	ID             model.PlanID    `json:"id"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	Description    string          `json:"description"`
	DurationMonths int             `json:"durationMonths"`
	Features       []string        `json:"features"`
}

// AmountValue formats the amount the way paypal expects it, e.g. "30.00".
func (p Plan) AmountValue() string {
	return p.Amount.StringFixed(2)
}

// MarshalJSON shows the amount the way it is charged, "30.00" rather than "30".
func (p Plan) MarshalJSON() ([]byte, error) {
	type plain Plan
	return json.Marshal(struct {
		plain
		Amount string `json:"amount"`
	}{
		plain:  plain(p),
		Amount: p.AmountValue(),
	})
}

var baseFeatures = []string{
	"Monthly book selection",
	"Members-only discussion threads",
	"Bookshelf and reading log",
}

var catalog = []Plan{
	{
		ID:             model.PlanMonthly,
		Amount:         decimal.RequireFromString("11.99"),
		Currency:       "USD",
		Description:    "Book Club Membership - Monthly",
		DurationMonths: 1,
		Features:       baseFeatures,
	},
	{
		ID:             model.PlanQuarterly,
		Amount:         decimal.RequireFromString("30.00"),
		Currency:       "USD",
		Description:    "Book Club Membership - Quarterly",
		DurationMonths: 3,
		Features:       append(append([]string{}, baseFeatures...), "One bonus title per quarter"),
	},
	{
		ID:             model.PlanBiannual,
		Amount:         decimal.RequireFromString("55.00"),
		Currency:       "USD",
		Description:    "Book Club Membership - Biannual",
		DurationMonths: 6,
		Features:       append(append([]string{}, baseFeatures...), "One bonus title per quarter", "Early event registration"),
	},
	{
		ID:             model.PlanAnnual,
		Amount:         decimal.RequireFromString("100.00"),
		Currency:       "USD",
		Description:    "Book Club Membership - Annual",
		DurationMonths: 12,
		Features:       append(append([]string{}, baseFeatures...), "One bonus title per quarter", "Early event registration", "Author Q&A access"),
	},
}

// Get returns the plan for id and whether it is a known plan.
func Get(id model.PlanID) (Plan, bool) {
	for _, p := range catalog {
		if p.ID == id {
			return p, true
		}
	}
	return Plan{}, false
}

// Resolve returns the plan for id, or the default plan when id is unknown.
func Resolve(id model.PlanID) Plan {
	if p, ok := Get(id); ok {
		return p
	}
	p, _ := Get(DefaultPlan)
	return p
}

// All returns a copy of the table in display order.
func All() []Plan {
	out := make([]Plan, len(catalog))
	copy(out, catalog)
	return out
}
