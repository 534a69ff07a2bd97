package renderer

import (
	"github.com/etnz/fintrack"
	"github.com/etnz/fintrack/date"
)

// AccountDetail is the view of one account.
type AccountDetail struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Balance      fintrack.Money    `json:"balance"`
	Transactions []TransactionLine `json:"transactions"`
}

// TransactionLine is one transaction of an account, newest first.
type TransactionLine struct {
	ID     string         `json:"id"`
	Date   string         `json:"date"`
	Amount fintrack.Money `json:"amount"` // signed
	Note   string         `json:"note"`
	Friend bool           `json:"friend,omitempty"`
}

// NewAccountDetail creates the view of account a.
func NewAccountDetail(a fintrack.Account, currency string) *AccountDetail {
	v := &AccountDetail{
		ID:           a.ID,
		Name:         a.Name,
		Balance:      fintrack.M(a.Balance(), currency),
		Transactions: make([]TransactionLine, 0, len(a.Transactions)),
	}
	for _, t := range a.Transactions {
		v.Transactions = append(v.Transactions, TransactionLine{
			ID:     t.ID,
			Date:   t.Date.Format(date.DisplayFormat),
			Amount: fintrack.M(t.Signed(), currency),
			Note:   escapeCell(t.Note),
			Friend: t.IsFriendPayment,
		})
	}
	return v
}
