package renderer

import (
	"github.com/etnz/fintrack"
)

// Rules is the view of the recurring rules.
type Rules struct {
	Rules   []RuleLine    `json:"rules"`
	Applied []AppliedLine `json:"applied,omitempty"`
}

// RuleLine is one recurring rule.
type RuleLine struct {
	ID        string         `json:"id"`
	Account   string         `json:"account"`
	Amount    fintrack.Money `json:"amount"` // signed
	Frequency string         `json:"frequency"`
	Next      string         `json:"next"`
	Auto      bool           `json:"auto"`
	Note      string         `json:"note"`
}

// AppliedLine is a transaction created from a rule.
type AppliedLine struct {
	Date    string         `json:"date"`
	Account string         `json:"account"`
	Amount  fintrack.Money `json:"amount"`
	Note    string         `json:"note"`
}

// NewRules creates the view of rules. Account ids are resolved to names in
// snapshot; applied may be nil.
func NewRules(rules []fintrack.RecurringRule, applied []fintrack.Applied, snapshot fintrack.Snapshot, currency string) *Rules {
	v := &Rules{Rules: make([]RuleLine, 0, len(rules))}
	for _, r := range rules {
		line := RuleLine{
			ID:        r.ID,
			Account:   escapeCell(snapshot.Name(r.AccountID)),
			Amount:    fintrack.M(fintrack.Transaction{Amount: r.Amount, Kind: r.Kind}.Signed(), currency),
			Frequency: r.Period.String(),
			Next:      "ended",
			Auto:      r.AutoApply,
			Note:      escapeCell(r.Note),
		}
		if next, ok := r.Next(); ok {
			line.Next = next.Display()
		}
		v.Rules = append(v.Rules, line)
	}
	for _, a := range applied {
		v.Applied = append(v.Applied, AppliedLine{
			Date:    a.On.Display(),
			Account: escapeCell(snapshot.Name(a.AccountID)),
			Amount:  fintrack.M(a.Transaction.Signed(), currency),
			Note:    escapeCell(a.Transaction.Note),
		})
	}
	return v
}
