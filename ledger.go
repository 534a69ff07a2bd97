package fintrack

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/etnz/fintrack/kv"
)

// Keys of the persisted layout.
const (
	KeyAccounts  = "accounts"
	KeyDarkMode  = "darkMode"
	KeyRecurring = "recurring"
)

// Ledger is the store of accounts and transactions.
//
// Every mutation reads the persisted collection, applies the change, and
// writes the full collection back before returning: there is no cached state
// that could drift from the key-value store. A Ledger is safe for concurrent
// use; mutations are serialized.
type Ledger struct {
	mu    sync.Mutex
	store kv.Store
	now   func() time.Time
}

// NewLedger creates a ledger persisted in store. Call Init before use.
func NewLedger(store kv.Store) *Ledger {
	return &Ledger{store: store, now: time.Now}
}

// SetClock replaces the clock used to date transactions that have none.
func (l *Ledger) SetClock(now func() time.Time) { l.now = now }

// Init makes sure the accounts collection exists and is readable.
func (l *Ledger) Init() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := l.store.Get(KeyAccounts)
	if errors.Is(err, kv.ErrNotFound) {
		return l.save(nil)
	}
	if err != nil {
		return err
	}
	_, err = l.load()
	return err
}

// Load reads the full accounts collection.
func (l *Ledger) Load() ([]Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load()
}

// Save replaces the full accounts collection.
func (l *Ledger) Save(accounts []Account) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.save(accounts)
}

func (l *Ledger) load() ([]Account, error) {
	b, err := l.store.Get(KeyAccounts)
	if errors.Is(err, kv.ErrNotFound) {
		return []Account{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read ledger: %w", err)
	}
	return DecodeAccounts(b)
}

func (l *Ledger) save(accounts []Account) error {
	b, err := EncodeAccounts(accounts)
	if err != nil {
		return err
	}
	if err := l.store.Set(KeyAccounts, b); err != nil {
		return fmt.Errorf("could not write ledger: %w", err)
	}
	return nil
}

// Accounts lists all accounts, newest first.
func (l *Ledger) Accounts() ([]Account, error) { return l.Load() }

// Snapshot returns a point-in-time copy of the ledger.
func (l *Ledger) Snapshot() (Snapshot, error) {
	accounts, err := l.Load()
	if err != nil {
		return nil, err
	}
	return Snapshot(accounts), nil
}

// Account returns the account with the given id.
func (l *Ledger) Account(id string) (Account, error) {
	accounts, err := l.Load()
	if err != nil {
		return Account{}, err
	}
	a, ok := Snapshot(accounts).Account(id)
	if !ok {
		return Account{}, &NotFoundError{Kind: "account", ID: id}
	}
	return a, nil
}

// CreateAccount creates an empty account and lists it first.
//
// Name uniqueness is not checked here; callers that need it check the
// current Snapshot (see Snapshot.ByName).
func (l *Ledger) CreateAccount(name string) (Account, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Account{}, &ValidationError{Field: "name", Reason: "account name is empty"}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	accounts, err := l.load()
	if err != nil {
		return Account{}, err
	}
	a := Account{ID: newID(), Name: name, Transactions: []Transaction{}}
	if err := l.save(slices.Insert(accounts, 0, a)); err != nil {
		return Account{}, err
	}
	return a, nil
}

// DeleteAccount removes the account and all its transactions. Deleting an
// unknown account is a no-op.
func (l *Ledger) DeleteAccount(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	accounts, err := l.load()
	if err != nil {
		return err
	}
	kept := slices.DeleteFunc(accounts, func(a Account) bool { return a.ID == id })
	return l.save(kept)
}

// AddTransaction records tx as the newest transaction of the account.
//
// The amount must be positive and the kind credit or debit. A missing ID is
// generated, a zero date is set to now. The date is stored in UTC to the
// millisecond.
func (l *Ledger) AddTransaction(accountID string, tx Transaction) (Account, error) {
	if !tx.Amount.IsPositive() {
		return Account{}, &ValidationError{Field: "amount", Reason: fmt.Sprintf("amount must be positive, got %s", tx.Amount)}
	}
	if !tx.Kind.Valid() {
		return Account{}, &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown transaction type %q", tx.Kind)}
	}
	if tx.ID == "" {
		tx.ID = newID()
	}
	if tx.Date.IsZero() {
		tx.Date = l.now()
	}
	tx.Date = tx.Date.UTC().Truncate(time.Millisecond)

	l.mu.Lock()
	defer l.mu.Unlock()
	accounts, err := l.load()
	if err != nil {
		return Account{}, err
	}
	i := slices.IndexFunc(accounts, func(a Account) bool { return a.ID == accountID })
	if i < 0 {
		return Account{}, &NotFoundError{Kind: "account", ID: accountID}
	}
	accounts[i].Transactions = slices.Insert(accounts[i].Transactions, 0, tx)
	if err := l.save(accounts); err != nil {
		return Account{}, err
	}
	return accounts[i].clone(), nil
}

// DeleteTransaction removes one transaction. Unknown account or transaction
// ids are a no-op.
func (l *Ledger) DeleteTransaction(accountID, transactionID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	accounts, err := l.load()
	if err != nil {
		return err
	}
	i := slices.IndexFunc(accounts, func(a Account) bool { return a.ID == accountID })
	if i < 0 {
		return nil
	}
	accounts[i].Transactions = slices.DeleteFunc(accounts[i].Transactions, func(t Transaction) bool { return t.ID == transactionID })
	return l.save(accounts)
}

// DarkMode returns the persisted display preference.
func (l *Ledger) DarkMode() (bool, error) {
	b, err := l.store.Get(KeyDarkMode)
	if errors.Is(err, kv.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	var on bool
	if err := json.Unmarshal(b, &on); err != nil {
		return false, fmt.Errorf("could not decode %s: %w", KeyDarkMode, err)
	}
	return on, nil
}

// SetDarkMode persists the display preference.
func (l *Ledger) SetDarkMode(on bool) error {
	b, _ := json.Marshal(on)
	return l.store.Set(KeyDarkMode, b)
}
