package fintrack

import (
	"testing"
)

func TestBalance(t *testing.T) {
	testCases := []struct {
		name string
		txs  []Transaction
		want string
	}{
		{
			name: "empty",
			want: "0",
		},
		{
			name: "credits only",
			txs: []Transaction{
				tx("1", Credit, 100, "2025-01-01"),
				tx("2", Credit, 50.5, "2025-01-02"),
			},
			want: "150.5",
		},
		{
			name: "credits and debits",
			txs: []Transaction{
				tx("1", Credit, 1000, "2025-01-01"),
				tx("2", Debit, 250, "2025-01-02"),
				tx("3", Debit, 0.1, "2025-01-03"),
			},
			want: "749.9",
		},
		{
			name: "negative balance",
			txs: []Transaction{
				tx("1", Debit, 30, "2025-01-01"),
			},
			want: "-30",
		},
		{
			name: "no float drift",
			txs: []Transaction{
				tx("1", Credit, 0.1, "2025-01-01"),
				tx("2", Credit, 0.2, "2025-01-01"),
			},
			want: "0.3",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Balance(tc.txs); got.String() != tc.want {
				t.Errorf("Balance() = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestTotalBalance(t *testing.T) {
	accounts := []Account{
		{ID: "a", Name: "Cash", Transactions: []Transaction{tx("1", Credit, 100, "2025-01-01")}},
		{ID: "b", Name: "Bank", Transactions: []Transaction{tx("2", Credit, 500, "2025-01-01"), tx("3", Debit, 120, "2025-01-02")}},
		{ID: "c", Name: "Empty"},
	}
	if got, want := TotalBalance(accounts), "480"; got.String() != want {
		t.Errorf("TotalBalance() = %s, want %s", got, want)
	}
	if got := TotalBalance(nil); !got.IsZero() {
		t.Errorf("TotalBalance(nil) = %s, want 0", got)
	}
}

func TestMoney_String(t *testing.T) {
	testCases := []struct {
		m    Money
		want string
	}{
		{M(1500, "INR"), "₹1,500.00"},
		{M(0.5, ""), "₹0.50"},
		{M(12.345, "USD"), "$12.35"},
	}
	for _, tc := range testCases {
		if got := tc.m.String(); got != tc.want {
			t.Errorf("%v.String() = %q, want %q", tc.m.Decimal(), got, tc.want)
		}
	}
	if got := M(0, "INR").SignedString(); got != "-" {
		t.Errorf("SignedString() of zero = %q, want %q", got, "-")
	}
	if got := M(5, "INR").SignedString(); got != "+₹5.00" {
		t.Errorf("SignedString() = %q, want %q", got, "+₹5.00")
	}
}
