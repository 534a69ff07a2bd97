package renderer

import (
	"github.com/etnz/fintrack"
)

// Summary is the view of the income and expenses report.
type Summary struct {
	Title    string         `json:"title"`
	Range    string         `json:"range"`
	End      string         `json:"end"` // display date of the balances, "today" for an open range
	Income   fintrack.Money `json:"income"`
	Expenses fintrack.Money `json:"expenses"`
	Net      fintrack.Money `json:"net"`
	// Months is empty for a single month.
	Months   []FlowLine           `json:"months,omitempty"`
	Accounts []SummaryAccountLine `json:"accounts"`
	Total    fintrack.Money       `json:"total"`
}

// FlowLine is the activity of one month.
type FlowLine struct {
	Month    string         `json:"month"`
	Income   fintrack.Money `json:"income"`
	Expenses fintrack.Money `json:"expenses"`
	Net      fintrack.Money `json:"net"`
}

// SummaryAccountLine is the activity of one account.
type SummaryAccountLine struct {
	Name     string         `json:"name"`
	Income   fintrack.Money `json:"income"`
	Expenses fintrack.Money `json:"expenses"`
	Balance  fintrack.Money `json:"balance"`
}

// NewSummary creates the view of s.
func NewSummary(s *fintrack.Summary, currency string) *Summary {
	v := &Summary{
		Title:    s.Range.Label(),
		Range:    s.Range.String(),
		End:      "today",
		Income:   fintrack.M(s.Income, currency),
		Expenses: fintrack.M(s.Expenses, currency),
		Net:      fintrack.M(s.Net(), currency),
		Accounts: make([]SummaryAccountLine, 0, len(s.Accounts)),
		Total:    fintrack.M(s.Total, currency),
	}
	if !s.Range.To.IsZero() {
		v.End = s.Range.To.Display()
	}
	if len(s.Months) > 1 {
		for _, m := range s.Months {
			v.Months = append(v.Months, FlowLine{
				Month:    m.Range.From.Time().Format("Jan 2006"),
				Income:   fintrack.M(m.Income, currency),
				Expenses: fintrack.M(m.Expenses, currency),
				Net:      fintrack.M(m.Net(), currency),
			})
		}
	}
	for _, a := range s.Accounts {
		v.Accounts = append(v.Accounts, SummaryAccountLine{
			Name:     escapeCell(a.Name),
			Income:   fintrack.M(a.Income, currency),
			Expenses: fintrack.M(a.Expenses, currency),
			Balance:  fintrack.M(a.Balance, currency),
		})
	}
	return v
}
