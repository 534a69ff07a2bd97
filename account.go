package fintrack

import (
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind tells whether a transaction adds money to its account or takes it out.
type Kind string

const (
	Credit Kind = "credit"
	Debit  Kind = "debit"
)

// Valid reports whether k is Credit or Debit.
func (k Kind) Valid() bool { return k == Credit || k == Debit }

// ParseKind parses a transaction kind. "income" and "expense" are accepted as
// aliases of credit and debit.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "credit", "income":
		return Credit, nil
	case "debit", "expense":
		return Debit, nil
	default:
		return "", &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown transaction type %q", s)}
	}
}

// Transaction is a single monetary movement in one account.
type Transaction struct {
	ID              string
	Amount          decimal.Decimal // always positive, Kind holds the sign
	Kind            Kind
	Date            time.Time
	Note            string
	IsFriendPayment bool
}

// Signed returns the amount with the sign of its kind.
func (t Transaction) Signed() decimal.Decimal {
	if t.Kind == Debit {
		return t.Amount.Neg()
	}
	return t.Amount
}

// Account is a named bucket owning an ordered list of transactions, newest first.
type Account struct {
	ID           string
	Name         string
	Transactions []Transaction
}

// Balance returns the account balance derived from its transactions.
func (a Account) Balance() decimal.Decimal { return Balance(a.Transactions) }

// Last returns the most recently recorded transaction.
func (a Account) Last() (Transaction, bool) {
	if len(a.Transactions) == 0 {
		return Transaction{}, false
	}
	return a.Transactions[0], true
}

// Transaction returns the transaction with the given id.
func (a Account) Transaction(id string) (Transaction, bool) {
	i := slices.IndexFunc(a.Transactions, func(t Transaction) bool { return t.ID == id })
	if i < 0 {
		return Transaction{}, false
	}
	return a.Transactions[i], true
}

// clone returns a deep copy of a.
func (a Account) clone() Account {
	a.Transactions = slices.Clone(a.Transactions)
	return a
}

// newID returns a fresh identifier. UUIDv7 values are unique and sort in
// creation order.
func newID() string { return uuid.Must(uuid.NewV7()).String() }
