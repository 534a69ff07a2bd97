package fintrack

import "github.com/shopspring/decimal"

// Balance returns the sum of the signed amounts of txs: credits add, debits
// subtract. An empty list has a zero balance.
//
// Amounts are decimals, so non-finite values cannot reach this function; a
// persisted "NaN" fails decoding instead.
func Balance(txs []Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range txs {
		total = total.Add(t.Signed())
	}
	return total
}

// TotalBalance returns the sum of the balances of all accounts.
func TotalBalance(accounts []Account) decimal.Decimal {
	total := decimal.Zero
	for _, a := range accounts {
		total = total.Add(a.Balance())
	}
	return total
}
