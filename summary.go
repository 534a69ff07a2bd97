package fintrack

import (
	"github.com/etnz/fintrack/date"
	"github.com/shopspring/decimal"
)

// Flow is the money that came in and went out over a range of days.
type Flow struct {
	Range    date.Range
	Income   decimal.Decimal // sum of credits
	Expenses decimal.Decimal // sum of debits, positive
}

// Net returns income minus expenses.
func (f Flow) Net() decimal.Decimal { return f.Income.Sub(f.Expenses) }

func (f *Flow) add(t Transaction) {
	if t.Kind == Credit {
		f.Income = f.Income.Add(t.Amount)
	} else {
		f.Expenses = f.Expenses.Add(t.Amount)
	}
}

// AccountSummary is the activity of one account over the summary range.
type AccountSummary struct {
	ID   string
	Name string
	Flow
	// Balance is the balance at the end of the range.
	Balance decimal.Decimal
}

// Summary reports the income and expenses of every calendar month of a
// range, the activity of each account and the balances at the end of the
// range.
type Summary struct {
	Flow
	Months   []Flow
	Accounts []AccountSummary
	Total    decimal.Decimal // total balance at the end of the range
}

// NewSummary computes the summary of the snapshot over r. Months is empty
// when r is open-ended. Accounts are listed in the snapshot order.
func NewSummary(s Snapshot, r date.Range) *Summary {
	sum := &Summary{Flow: Flow{Range: r}}
	for _, m := range r.Months() {
		sum.Months = append(sum.Months, Flow{Range: m})
	}
	for _, a := range s {
		as := AccountSummary{ID: a.ID, Name: a.Name, Flow: Flow{Range: r}}
		for _, t := range a.Transactions {
			on := date.Of(t.Date)
			if !r.To.IsZero() && on.After(r.To) {
				continue
			}
			as.Balance = as.Balance.Add(t.Signed())
			if !r.Contains(on) {
				continue
			}
			as.add(t)
			sum.add(t)
			for i := range sum.Months {
				if sum.Months[i].Range.Contains(on) {
					sum.Months[i].add(t)
					break
				}
			}
		}
		sum.Total = sum.Total.Add(as.Balance)
		sum.Accounts = append(sum.Accounts, as)
	}
	return sum
}
