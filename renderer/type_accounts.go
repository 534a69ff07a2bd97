package renderer

import (
	"github.com/etnz/fintrack"
	"github.com/etnz/fintrack/date"
)

// Accounts is the view of the account list.
type Accounts struct {
	Accounts []AccountLine `json:"accounts"`
	Total    fintrack.Money `json:"total"`
}

// AccountLine is one account of the list.
type AccountLine struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Balance      fintrack.Money `json:"balance"`
	Transactions int            `json:"transactions"`
	// LastActivity is the display date of the newest transaction, "-" when there is none.
	LastActivity string `json:"lastActivity"`
}

// NewAccounts creates the view of accounts, in their ledger order.
func NewAccounts(accounts []fintrack.Account, currency string) *Accounts {
	v := &Accounts{
		Accounts: make([]AccountLine, 0, len(accounts)),
		Total:    fintrack.M(fintrack.TotalBalance(accounts), currency),
	}
	for _, a := range accounts {
		line := AccountLine{
			ID:           a.ID,
			Name:         escapeCell(a.Name),
			Balance:      fintrack.M(a.Balance(), currency),
			Transactions: len(a.Transactions),
			LastActivity: "-",
		}
		if last, ok := a.Last(); ok {
			line.LastActivity = last.Date.Format(date.DisplayFormat)
		}
		v.Accounts = append(v.Accounts, line)
	}
	return v
}
