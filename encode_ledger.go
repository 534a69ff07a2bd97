package fintrack

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// timeFormat matches what browsers produce with Date.toISOString, so ledgers
// exported from the web version decode unchanged.
const timeFormat = "2006-01-02T15:04:05.000Z07:00"

// flexID decodes identifiers persisted either as JSON strings or as numbers
// (older ledgers used millisecond timestamps).
type flexID string

func (id *flexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", b, err)
	}
	*id = flexID(n.String())
	return nil
}

// MarshalJSON writes the transaction with a canonical key order.
func (t Transaction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("id", t.ID)
	w.Append("amount", t.Amount)
	w.Append("type", t.Kind)
	w.Append("date", t.Date.UTC().Format(timeFormat))
	w.Append("note", t.Note)
	w.Optional("isFriendPayment", t.IsFriendPayment)
	return w.MarshalJSON()
}

func (t *Transaction) UnmarshalJSON(b []byte) error {
	var temp struct {
		ID              flexID          `json:"id"`
		Amount          decimal.Decimal `json:"amount"`
		Kind            Kind            `json:"type"`
		Date            string          `json:"date"`
		Note            string          `json:"note"`
		IsFriendPayment bool            `json:"isFriendPayment"`
	}
	if err := json.Unmarshal(b, &temp); err != nil {
		return err
	}
	var on time.Time
	if temp.Date != "" {
		var err error
		on, err = time.Parse(time.RFC3339Nano, temp.Date)
		if err != nil {
			return fmt.Errorf("transaction %s: invalid date %q: %w", temp.ID, temp.Date, err)
		}
	}
	*t = Transaction{
		ID:              string(temp.ID),
		Amount:          temp.Amount,
		Kind:            temp.Kind,
		Date:            on,
		Note:            temp.Note,
		IsFriendPayment: temp.IsFriendPayment,
	}
	return nil
}

func (a Account) MarshalJSON() ([]byte, error) {
	txs := a.Transactions
	if txs == nil {
		txs = []Transaction{}
	}
	var w jsonObjectWriter
	w.Append("id", a.ID)
	w.Append("name", a.Name)
	w.Append("transactions", txs)
	return w.MarshalJSON()
}

func (a *Account) UnmarshalJSON(b []byte) error {
	var temp struct {
		ID           flexID        `json:"id"`
		Name         string        `json:"name"`
		Transactions []Transaction `json:"transactions"`
	}
	if err := json.Unmarshal(b, &temp); err != nil {
		return err
	}
	*a = Account{ID: string(temp.ID), Name: temp.Name, Transactions: temp.Transactions}
	return nil
}

// EncodeAccounts serializes the accounts collection in the persisted layout:
// a JSON array, in listing order.
func EncodeAccounts(accounts []Account) ([]byte, error) {
	if accounts == nil {
		accounts = []Account{}
	}
	b, err := json.Marshal(accounts)
	if err != nil {
		return nil, fmt.Errorf("could not encode accounts: %w", err)
	}
	return b, nil
}

// DecodeAccounts parses a persisted accounts collection. A JSON null decodes
// to an empty collection.
func DecodeAccounts(b []byte) ([]Account, error) {
	var accounts []Account
	if err := json.Unmarshal(b, &accounts); err != nil {
		return nil, fmt.Errorf("could not decode accounts: %w", err)
	}
	if accounts == nil {
		accounts = []Account{}
	}
	return accounts, nil
}
