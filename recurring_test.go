package fintrack

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/etnz/fintrack/date"
	"github.com/google/go-cmp/cmp"
)

func TestRecurringRule_Occurrences(t *testing.T) {
	end := date.MustParse("2025-05-15")
	testCases := []struct {
		name  string
		rule  RecurringRule
		until string
		want  []date.Date
	}{
		{
			name:  "monthly from start day",
			rule:  RecurringRule{Start: date.MustParse("2025-01-10"), Period: date.Monthly},
			until: "2025-03-31",
			want:  []date.Date{date.MustParse("2025-01-10"), date.MustParse("2025-02-10"), date.MustParse("2025-03-10")},
		},
		{
			name:  "day of month before start moves to next month",
			rule:  RecurringRule{Start: date.MustParse("2025-01-10"), Period: date.Monthly, DayOfMonth: 5},
			until: "2025-03-04",
			want:  []date.Date{date.MustParse("2025-02-05")},
		},
		{
			name:  "end of month is clamped",
			rule:  RecurringRule{Start: date.MustParse("2025-01-31"), Period: date.Monthly, DayOfMonth: 31},
			until: "2025-04-30",
			want:  []date.Date{date.MustParse("2025-01-31"), date.MustParse("2025-02-28"), date.MustParse("2025-03-31"), date.MustParse("2025-04-30")},
		},
		{
			name:  "end date stops the rule",
			rule:  RecurringRule{Start: date.MustParse("2025-03-01"), Period: date.Monthly, End: &end},
			until: "2025-12-31",
			want:  []date.Date{date.MustParse("2025-03-01"), date.MustParse("2025-04-01"), date.MustParse("2025-05-01")},
		},
		{
			name:  "yearly",
			rule:  RecurringRule{Start: date.MustParse("2023-07-01"), Period: date.Yearly},
			until: "2025-06-30",
			want:  []date.Date{date.MustParse("2023-07-01"), date.MustParse("2024-07-01")},
		},
		{
			name:  "not started yet",
			rule:  RecurringRule{Start: date.MustParse("2026-01-01"), Period: date.Monthly},
			until: "2025-06-30",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.rule.Occurrences(date.MustParse(tc.until))
			if diff := cmp.Diff(tc.want, got, cmp.AllowUnexported(date.Date{})); diff != "" {
				t.Errorf("Occurrences() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRecurringRule_Next(t *testing.T) {
	last := date.MustParse("2025-02-10")
	end := date.MustParse("2025-02-28")
	testCases := []struct {
		name   string
		rule   RecurringRule
		want   date.Date
		wantOK bool
	}{
		{"never applied", RecurringRule{Start: date.MustParse("2025-01-10"), Period: date.Monthly}, date.MustParse("2025-01-10"), true},
		{"after last applied", RecurringRule{Start: date.MustParse("2025-01-10"), Period: date.Monthly, LastApplied: &last}, date.MustParse("2025-03-10"), true},
		{"ended", RecurringRule{Start: date.MustParse("2025-01-10"), Period: date.Monthly, LastApplied: &last, End: &end}, date.Date{}, false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := tc.rule.Next()
			if got != tc.want || ok != tc.wantOK {
				t.Errorf("Next() = %v, %v, want %v, %v", got, ok, tc.want, tc.wantOK)
			}
		})
	}
}

func TestLedger_AddRule(t *testing.T) {
	l := newTestLedger(t)
	a, _ := l.CreateAccount("Bank")

	rule, err := l.AddRule(RecurringRule{AccountID: a.ID, Amount: D(1200), Kind: Debit, Note: "Rent", Start: date.MustParse("2025-01-01")})
	if err != nil {
		t.Fatalf("AddRule() error = %v", err)
	}
	if rule.ID == "" {
		t.Error("rule ID was not assigned")
	}

	if _, err := l.AddRule(RecurringRule{AccountID: "nope", Amount: D(1), Kind: Debit, Start: date.MustParse("2025-01-01")}); !errors.Is(err, ErrNotFound) {
		t.Errorf("AddRule(unknown account) error = %v, want ErrNotFound", err)
	}
	if _, err := l.AddRule(RecurringRule{AccountID: a.ID, Amount: D(0), Kind: Debit, Start: date.MustParse("2025-01-01")}); !errors.Is(err, ErrValidation) {
		t.Errorf("AddRule(zero amount) error = %v, want ErrValidation", err)
	}
	if _, err := l.AddRule(RecurringRule{AccountID: a.ID, Amount: D(1), Kind: Debit}); !errors.Is(err, ErrValidation) {
		t.Errorf("AddRule(no start) error = %v, want ErrValidation", err)
	}

	rules, _ := l.Rules()
	if len(rules) != 1 {
		t.Fatalf("Rules() = %v, want one rule", rules)
	}
	if err := l.DeleteRule(rule.ID); err != nil {
		t.Fatalf("DeleteRule() error = %v", err)
	}
	if err := l.DeleteRule(rule.ID); err != nil {
		t.Errorf("DeleteRule() twice error = %v", err)
	}
	if rules, _ := l.Rules(); len(rules) != 0 {
		t.Errorf("Rules() = %v after delete, want none", rules)
	}
}

func TestLedger_ProcessDue(t *testing.T) {
	l := newTestLedger(t)
	a, _ := l.CreateAccount("Bank")
	l.AddRule(RecurringRule{AccountID: a.ID, Amount: D(50000), Kind: Credit, Note: "Salary", Start: date.MustParse("2025-01-01"), AutoApply: true})
	l.AddRule(RecurringRule{AccountID: a.ID, Amount: D(99), Kind: Debit, Note: "Gym", Start: date.MustParse("2025-01-01")})

	applied, err := l.ProcessDue(date.MustParse("2025-03-15"))
	if err != nil {
		t.Fatalf("ProcessDue() error = %v", err)
	}
	if len(applied) != 3 {
		t.Fatalf("ProcessDue() applied %d entries, want 3", len(applied))
	}

	again, err := l.ProcessDue(date.MustParse("2025-03-15"))
	if err != nil {
		t.Fatalf("ProcessDue() second run error = %v", err)
	}
	if len(again) != 0 {
		t.Errorf("second ProcessDue() applied %d entries, want 0", len(again))
	}

	got, _ := l.Account(a.ID)
	if len(got.Transactions) != 3 {
		t.Fatalf("got %d transactions, want 3", len(got.Transactions))
	}
	newest := got.Transactions[0]
	if !strings.HasSuffix(newest.Note, "(Auto-processed for 2025-03-01)") || !strings.HasPrefix(newest.Note, "Salary") {
		t.Errorf("note = %q", newest.Note)
	}
	if got.Balance().String() != "150000" {
		t.Errorf("Balance() = %s, want 150000", got.Balance())
	}

	rules, _ := l.Rules()
	if rules[0].LastApplied == nil || *rules[0].LastApplied != date.MustParse("2025-03-01") {
		t.Errorf("LastApplied = %v, want 2025-03-01", rules[0].LastApplied)
	}
	if rules[1].LastApplied != nil {
		t.Errorf("manual rule LastApplied = %v, want nil", rules[1].LastApplied)
	}

	manual, err := l.ApplyRule(rules[1].ID, date.MustParse("2025-01-20"))
	if err != nil {
		t.Fatalf("ApplyRule() error = %v", err)
	}
	if len(manual) != 1 {
		t.Errorf("ApplyRule() applied %d entries, want 1", len(manual))
	}
	if _, err := l.ApplyRule("nope", date.MustParse("2025-01-20")); !errors.Is(err, ErrNotFound) {
		t.Errorf("ApplyRule(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestLedger_ProcessDueSkipsExistingEntries(t *testing.T) {
	l := newTestLedger(t)
	a, _ := l.CreateAccount("Bank")
	rule, _ := l.AddRule(RecurringRule{AccountID: a.ID, Amount: D(10), Kind: Debit, Start: date.MustParse("2025-01-01"), AutoApply: true})
	// an entry recorded before the rule bookkeeping existed.
	l.AddTransaction(a.ID, rule.transaction(date.MustParse("2025-01-01")))

	applied, err := l.ProcessDue(date.MustParse("2025-02-01"))
	if err != nil {
		t.Fatal(err)
	}
	if len(applied) != 1 || applied[0].On != date.MustParse("2025-02-01") {
		t.Errorf("ProcessDue() = %v, want only 2025-02-01", applied)
	}
}

func TestScheduler_Run(t *testing.T) {
	l := newTestLedger(t)
	a, _ := l.CreateAccount("Bank")
	l.AddRule(RecurringRule{AccountID: a.ID, Amount: D(10), Kind: Credit, Start: date.MustParse("2025-01-01"), AutoApply: true})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan []Applied, 1)
	s := &Scheduler{
		Ledger:   l,
		Interval: time.Hour,
		Today:    func() date.Date { return date.MustParse("2025-01-01") },
		OnApply:  func(applied []Applied) { done <- applied },
	}
	errc := make(chan error, 1)
	go func() { errc <- s.Run(ctx) }()

	select {
	case applied := <-done:
		if len(applied) != 1 {
			t.Errorf("first run applied %d entries, want 1", len(applied))
		}
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not run immediately")
	}
	cancel()
	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
}
