package assistant

import (
	"errors"
	"strings"
	"testing"

	"github.com/etnz/fintrack"
	"github.com/etnz/fintrack/audit"
	"github.com/shopspring/decimal"
)

func TestExecutor_Income(t *testing.T) {
	f := newFixture(t)
	res := f.executor().Execute([]Action{
		AddTransaction{AccountID: f.cash.ID, Type: "income", Amount: decimal.NewFromInt(500)},
	}, f.snapshot(t))

	o := res.Outcomes[0]
	if o.Failed() || !o.Mutated {
		t.Fatalf("outcome = %+v", o)
	}
	if got := f.balance(t, f.cash.ID); got != "500" {
		t.Errorf("balance = %s, want 500", got)
	}
	want := "Added income of ₹500.00 as salary to Cash on 14 Jul 2025"
	if o.Summary != want {
		t.Errorf("Summary = %q, want %q", o.Summary, want)
	}
	a, _ := f.ledger.Account(f.cash.ID)
	if tx := a.Transactions[0]; tx.Kind != fintrack.Credit || tx.Note != "Received Salary" {
		t.Errorf("transaction = %+v", tx)
	}
}

func TestExecutor_Transfer(t *testing.T) {
	f := newFixture(t)
	res := f.executor().Execute([]Action{
		AddTransaction{AccountID: f.bank.ID, Type: "expense", Amount: decimal.NewFromInt(1500), Note: "Transfer to Cash"},
		AddTransaction{AccountID: f.cash.ID, Type: "income", Amount: decimal.NewFromInt(1500), Note: "Transfer from Bank"},
	}, f.snapshot(t))

	if res.Succeeded() != 2 {
		t.Fatalf("outcomes = %+v", res.Outcomes)
	}
	if got := f.balance(t, f.bank.ID); got != "8500" {
		t.Errorf("source balance = %s, want 8500", got)
	}
	if got := f.balance(t, f.cash.ID); got != "1500" {
		t.Errorf("destination balance = %s, want 1500", got)
	}
	if b, _ := res.Snapshot.Account(f.cash.ID); b.Balance().String() != "1500" {
		t.Errorf("result snapshot is stale: %v", b)
	}
}

func TestExecutor_Classification(t *testing.T) {
	testCases := []struct {
		name        string
		action      AddTransaction
		wantKind    fintrack.Kind
		wantNote    string
		wantSummary string
	}{
		{
			name:        "expense",
			action:      AddTransaction{Type: "expense", Amount: decimal.NewFromInt(250), Category: "food", Date: "2025-07-01"},
			wantKind:    fintrack.Debit,
			wantSummary: "Added expense of ₹250.00 for food from Cash on 01 Jul 2025",
		},
		{
			name:        "no type defaults to expense",
			action:      AddTransaction{Amount: decimal.NewFromInt(10)},
			wantKind:    fintrack.Debit,
			wantSummary: "Added expense of ₹10.00 for expense from Cash on 14 Jul 2025",
		},
		{
			name:        "salary in the category",
			action:      AddTransaction{Type: "expense", Amount: decimal.NewFromInt(100), Category: "Monthly SALARY"},
			wantKind:    fintrack.Credit,
			wantNote:    "Received Salary",
			wantSummary: "Added income of ₹100.00 as Monthly SALARY to Cash on 14 Jul 2025",
		},
		{
			name:        "deposit in the note",
			action:      AddTransaction{Amount: decimal.NewFromInt(100), Note: "Cash deposit"},
			wantKind:    fintrack.Credit,
			wantNote:    "Cash deposit",
			wantSummary: "Added income of ₹100.00 as salary to Cash on 14 Jul 2025",
		},
		{
			name:        "friend payment",
			action:      AddTransaction{Type: "expense", Amount: decimal.NewFromInt(500), IsFriendPayment: true, Date: "2025-7-3"},
			wantKind:    fintrack.Debit,
			wantNote:    "Payment to friend",
			wantSummary: "Paid ₹500.00 to friend from Cash on 03 Jul 2025",
		},
		{
			name:        "unreadable date is now",
			action:      AddTransaction{Type: "expense", Amount: decimal.NewFromInt(1), Date: "last tuesday"},
			wantKind:    fintrack.Debit,
			wantSummary: "Added expense of ₹1.00 for expense from Cash on 14 Jul 2025",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			tc.action.AccountID = f.cash.ID
			res := f.executor().Execute([]Action{tc.action}, f.snapshot(t))
			o := res.Outcomes[0]
			if o.Failed() {
				t.Fatalf("action failed: %v", o.Err)
			}
			if o.Summary != tc.wantSummary {
				t.Errorf("Summary = %q, want %q", o.Summary, tc.wantSummary)
			}
			a, _ := f.ledger.Account(f.cash.ID)
			tx := a.Transactions[0]
			if tx.Kind != tc.wantKind || tx.Note != tc.wantNote {
				t.Errorf("transaction = %s %q, want %s %q", tx.Kind, tx.Note, tc.wantKind, tc.wantNote)
			}
		})
	}
}

func TestExecutor_UnknownAccount(t *testing.T) {
	f := newFixture(t)
	before := f.snapshot(t)
	res := f.executor().Execute([]Action{
		AddTransaction{AccountID: "nope", Type: "income", Amount: decimal.NewFromInt(5)},
	}, before)

	o := res.Outcomes[0]
	if !errors.Is(o.Err, fintrack.ErrNotFound) || o.Mutated {
		t.Fatalf("outcome = %+v, want a not found failure", o)
	}
	for _, want := range []string{"doesn't exist", "Available accounts:", "Cash (ID: " + f.cash.ID + ")", "Bank (ID: " + f.bank.ID + ")"} {
		if !strings.Contains(o.Summary, want) {
			t.Errorf("Summary %q does not contain %q", o.Summary, want)
		}
	}
	after := f.snapshot(t)
	for i := range before {
		if len(after[i].Transactions) != len(before[i].Transactions) {
			t.Errorf("account %s changed", after[i].Name)
		}
	}
}

func TestExecutor_Accounts(t *testing.T) {
	f := newFixture(t)
	res := f.executor().Execute([]Action{
		CreateAccount{AccountName: "Savings"},
		CreateAccount{AccountName: "  savings "},
		CreateAccount{AccountName: " "},
		CreateAccount{AccountName: "CASH"},
		DeleteAccount{AccountID: f.bank.ID},
		AddTransaction{AccountID: f.bank.ID, Type: "expense", Amount: decimal.NewFromInt(1)},
		DeleteAccount{AccountID: f.bank.ID},
	}, f.snapshot(t))

	wantFailed := []bool{false, true, true, true, false, true, true}
	for i, o := range res.Outcomes {
		if o.Failed() != wantFailed[i] {
			t.Errorf("outcome #%d failed = %v, want %v (%s)", i+1, o.Failed(), wantFailed[i], o.Summary)
		}
	}
	if !strings.HasPrefix(res.Outcomes[0].Summary, `Created account "Savings" (ID: `) {
		t.Errorf("create summary = %q", res.Outcomes[0].Summary)
	}
	if got := res.Outcomes[1].Summary; got != `❗ An account named "savings" already exists.` {
		t.Errorf("duplicate summary = %q", got)
	}
	if got := res.Outcomes[2].Summary; got != "❗ Please provide a valid account name to create an account." {
		t.Errorf("empty name summary = %q", got)
	}
	if got, want := res.Outcomes[4].Summary, `Deleted account "Bank" (ID: `+f.bank.ID+`)`; got != want {
		t.Errorf("delete summary = %q, want %q", got, want)
	}

	accounts, _ := f.ledger.Accounts()
	var names []string
	for _, a := range accounts {
		names = append(names, a.Name)
	}
	if strings.Join(names, ",") != "Savings,Cash" {
		t.Errorf("accounts = %v, want Savings,Cash", names)
	}
}

func TestExecutor_Messages(t *testing.T) {
	f := newFixture(t)
	res := f.executor().Execute([]Action{
		AskUser{Message: "Which account?"},
		AskUser{},
		InformUser{Message: "Your balance is fine."},
		GetAccounts{},
		Unknown{Name: "transfer", Raw: []byte(`{"action":"transfer"}`)},
	}, f.snapshot(t))

	want := []string{"Which account?", "Requested clarification from user.", "Your balance is fine.", "Fetched account list.", "Performed an action."}
	for i, o := range res.Outcomes {
		if o.Failed() || o.Mutated || o.Summary != want[i] {
			t.Errorf("outcome #%d = %+v, want %q", i+1, o, want[i])
		}
	}
	if got := f.events(t, audit.TypeUnknownAction); len(got) != 1 {
		t.Errorf("got %d unknown_action events, want 1", len(got))
	}
}

func TestExecutor_InvalidAction(t *testing.T) {
	f := newFixture(t)
	res := f.executor().Execute([]Action{
		Invalid{Name: KindAddTransaction, Raw: []byte(`{"action":"add_transaction","amount":"₹50"}`), Err: errors.New("can't convert ₹50 to decimal")},
		CreateAccount{AccountName: "Savings"},
	}, f.snapshot(t))

	if o := res.Outcomes[0]; !o.Failed() || o.Mutated || !errors.Is(o.Err, fintrack.ErrValidation) || !strings.HasPrefix(o.Summary, "❗ Could not read the add_transaction action") {
		t.Errorf("first outcome = %+v", o)
	}
	if res.Outcomes[1].Failed() {
		t.Errorf("second outcome failed: %v", res.Outcomes[1].Err)
	}
	if _, ok := res.Snapshot.ByName("Savings"); !ok {
		t.Error("Savings was not created")
	}
}

// bogus is not one of the actions the executor knows.
type bogus struct{}

func (bogus) Kind() string { return "bogus" }
func (bogus) isAction()    {}

func TestExecutor_PanicIsIsolated(t *testing.T) {
	f := newFixture(t)
	res := f.executor().Execute([]Action{
		bogus{},
		AddTransaction{AccountID: f.cash.ID, Type: "income", Amount: decimal.NewFromInt(7)},
	}, f.snapshot(t))

	if !res.Outcomes[0].Failed() || !strings.HasPrefix(res.Outcomes[0].Summary, "❗ Error processing action") {
		t.Errorf("first outcome = %+v", res.Outcomes[0])
	}
	if res.Outcomes[1].Failed() {
		t.Errorf("second outcome failed: %v", res.Outcomes[1].Err)
	}
	if got := f.balance(t, f.cash.ID); got != "7" {
		t.Errorf("balance = %s, want 7", got)
	}
	errs := f.events(t, audit.TypeError)
	if len(errs) != 1 || errs[0]["stack"] == "" {
		t.Errorf("error events = %v, want one with a stack", errs)
	}
}

func TestExecutor_InvalidAmount(t *testing.T) {
	f := newFixture(t)
	res := f.executor().Execute([]Action{
		AddTransaction{AccountID: f.cash.ID, Type: "expense"},
	}, f.snapshot(t))
	if o := res.Outcomes[0]; !errors.Is(o.Err, fintrack.ErrValidation) || o.Mutated {
		t.Errorf("outcome = %+v, want a validation failure", o)
	}
}
