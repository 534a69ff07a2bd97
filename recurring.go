package fintrack

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/etnz/fintrack/date"
	"github.com/etnz/fintrack/kv"
	"github.com/shopspring/decimal"
)

// RecurringRule schedules the same transaction every month or every year.
type RecurringRule struct {
	ID         string          `json:"id"`
	AccountID  string          `json:"accountId"`
	Amount     decimal.Decimal `json:"amount"`
	Kind       Kind            `json:"type"`
	Note       string          `json:"note"`
	Start      date.Date       `json:"startDate"`
	Period     date.Period     `json:"frequency"`
	DayOfMonth int             `json:"dayOfMonth,omitempty"`
	End        *date.Date      `json:"endDate,omitempty"`
	// AutoApply rules are applied by ProcessDue; the others only on demand.
	AutoApply   bool       `json:"autoDebitCredit"`
	LastApplied *date.Date `json:"lastApplied,omitempty"`
}

// Validate checks the rule fields that do not depend on the ledger.
func (r RecurringRule) Validate() error {
	switch {
	case !r.Amount.IsPositive():
		return &ValidationError{Field: "amount", Reason: fmt.Sprintf("amount must be positive, got %s", r.Amount)}
	case !r.Kind.Valid():
		return &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown transaction type %q", r.Kind)}
	case r.Start.IsZero():
		return &ValidationError{Field: "startDate", Reason: "start date is missing"}
	case r.DayOfMonth < 0 || r.DayOfMonth > 31:
		return &ValidationError{Field: "dayOfMonth", Reason: fmt.Sprintf("day of month %d out of range", r.DayOfMonth)}
	case r.End != nil && r.End.Before(r.Start):
		return &ValidationError{Field: "endDate", Reason: "end date is before start date"}
	}
	return nil
}

func (r RecurringRule) day() int {
	if r.DayOfMonth > 0 {
		return r.DayOfMonth
	}
	return r.Start.Day()
}

// Occurrences returns the dates the rule falls on, from its start up to
// until included, and never past its end date.
func (r RecurringRule) Occurrences(until date.Date) []date.Date {
	end := until
	if r.End != nil && r.End.Before(end) {
		end = *r.End
	}
	var out []date.Date
	for on := r.first(); !on.After(end); on = r.Period.Next(on, r.day()) {
		out = append(out, on)
	}
	return out
}

// first returns the first date the rule falls on.
func (r RecurringRule) first() date.Date {
	on := r.Start.AddMonths(0, r.day())
	if on.Before(r.Start) {
		on = r.Period.Next(on, r.day())
	}
	return on
}

// Next returns the first occurrence that has not been applied yet, or false
// when the rule has ended.
func (r RecurringRule) Next() (date.Date, bool) {
	on := r.first()
	for r.LastApplied != nil && !on.After(*r.LastApplied) {
		on = r.Period.Next(on, r.day())
	}
	if r.End != nil && on.After(*r.End) {
		return date.Date{}, false
	}
	return on, true
}

// Applied describes a transaction created from a recurring rule.
type Applied struct {
	RuleID      string
	AccountID   string
	On          date.Date
	Transaction Transaction
}

// autoMarker tags the note of transactions created from a rule.
func autoMarker(on date.Date) string { return fmt.Sprintf("(Auto-processed for %s)", on) }

// transaction returns the transaction the rule creates on a given day.
func (r RecurringRule) transaction(on date.Date) Transaction {
	note := strings.TrimSpace(r.Note)
	if note != "" {
		note += " "
	}
	return Transaction{
		ID:     newID(),
		Amount: r.Amount,
		Kind:   r.Kind,
		Date:   on.Time(),
		Note:   note + autoMarker(on),
	}
}

// alreadyApplied reports whether txs holds the transaction of the rule for that day.
func (r RecurringRule) alreadyApplied(txs []Transaction, on date.Date) bool {
	marker := autoMarker(on)
	return slices.ContainsFunc(txs, func(t Transaction) bool {
		return t.Kind == r.Kind && t.Amount.Equal(r.Amount) && date.Of(t.Date) == on && strings.Contains(t.Note, marker)
	})
}

// Rules lists the recurring rules.
func (l *Ledger) Rules() ([]RecurringRule, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadRules()
}

func (l *Ledger) loadRules() ([]RecurringRule, error) {
	b, err := l.store.Get(KeyRecurring)
	if errors.Is(err, kv.ErrNotFound) {
		return []RecurringRule{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read recurring rules: %w", err)
	}
	var rules []RecurringRule
	if err := json.Unmarshal(b, &rules); err != nil {
		return nil, fmt.Errorf("could not decode recurring rules: %w", err)
	}
	if rules == nil {
		rules = []RecurringRule{}
	}
	return rules, nil
}

func (l *Ledger) saveRules(rules []RecurringRule) error {
	if rules == nil {
		rules = []RecurringRule{}
	}
	b, err := json.Marshal(rules)
	if err != nil {
		return fmt.Errorf("could not encode recurring rules: %w", err)
	}
	return l.store.Set(KeyRecurring, b)
}

// AddRule validates and records a new rule for an existing account.
func (l *Ledger) AddRule(r RecurringRule) (RecurringRule, error) {
	if err := r.Validate(); err != nil {
		return RecurringRule{}, err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	accounts, err := l.load()
	if err != nil {
		return RecurringRule{}, err
	}
	if _, ok := Snapshot(accounts).Account(r.AccountID); !ok {
		return RecurringRule{}, &NotFoundError{Kind: "account", ID: r.AccountID}
	}
	rules, err := l.loadRules()
	if err != nil {
		return RecurringRule{}, err
	}
	if r.ID == "" {
		r.ID = newID()
	}
	if err := l.saveRules(append(rules, r)); err != nil {
		return RecurringRule{}, err
	}
	return r, nil
}

// DeleteRule removes a rule. Unknown ids are a no-op. Transactions already
// created by the rule are kept.
func (l *Ledger) DeleteRule(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	rules, err := l.loadRules()
	if err != nil {
		return err
	}
	return l.saveRules(slices.DeleteFunc(rules, func(r RecurringRule) bool { return r.ID == id }))
}

// ProcessDue applies every occurrence of the auto-apply rules up to today
// that has not been applied yet. Running it twice for the same day creates
// nothing the second time.
//
// Rules whose account has been deleted are skipped.
func (l *Ledger) ProcessDue(today date.Date) ([]Applied, error) {
	return l.apply(today, func(r RecurringRule) bool { return r.AutoApply })
}

// ApplyRule applies the due occurrences of one rule, auto-apply or not.
func (l *Ledger) ApplyRule(id string, today date.Date) ([]Applied, error) {
	rules, err := l.Rules()
	if err != nil {
		return nil, err
	}
	if !slices.ContainsFunc(rules, func(r RecurringRule) bool { return r.ID == id }) {
		return nil, &NotFoundError{Kind: "recurring rule", ID: id}
	}
	return l.apply(today, func(r RecurringRule) bool { return r.ID == id })
}

func (l *Ledger) apply(today date.Date, selected func(RecurringRule) bool) ([]Applied, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rules, err := l.loadRules()
	if err != nil {
		return nil, err
	}
	accounts, err := l.load()
	if err != nil {
		return nil, err
	}

	var applied []Applied
	for ri, r := range rules {
		if !selected(r) {
			continue
		}
		ai := slices.IndexFunc(accounts, func(a Account) bool { return a.ID == r.AccountID })
		if ai < 0 {
			continue
		}
		for _, on := range r.Occurrences(today) {
			if r.LastApplied != nil && !on.After(*r.LastApplied) {
				continue
			}
			if !r.alreadyApplied(accounts[ai].Transactions, on) {
				tx := r.transaction(on)
				accounts[ai].Transactions = slices.Insert(accounts[ai].Transactions, 0, tx)
				applied = append(applied, Applied{RuleID: r.ID, AccountID: r.AccountID, On: on, Transaction: tx})
			}
			last := on
			rules[ri].LastApplied = &last
		}
	}
	if len(applied) == 0 {
		return nil, nil
	}
	if err := l.save(accounts); err != nil {
		return nil, err
	}
	if err := l.saveRules(rules); err != nil {
		return applied, err
	}
	return applied, nil
}
