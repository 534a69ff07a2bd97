package fintrack

import (
	"testing"
	"time"

	"github.com/etnz/fintrack/kv"
	"github.com/shopspring/decimal"
)

// D is a helper for test to create decimals from const
func D(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// tx is a helper for test to create a transaction on a given day.
func tx(id string, kind Kind, amount float64, day string) Transaction {
	on, err := time.Parse("2006-01-02", day)
	if err != nil {
		panic(err)
	}
	return Transaction{ID: id, Amount: D(amount), Kind: kind, Date: on}
}

// newTestLedger returns an initialized ledger in memory.
func newTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l := NewLedger(kv.NewMemory())
	if err := l.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	return l
}
