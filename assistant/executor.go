package assistant

import (
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/etnz/fintrack"
	"github.com/etnz/fintrack/audit"
	"github.com/etnz/fintrack/date"
)

// Outcome is the result of one action.
type Outcome struct {
	Action  Action
	Summary string // what happened, for the user
	Err     error  // nil when the action succeeded
	Mutated bool   // the ledger was changed
}

// Failed reports whether the action failed.
func (o Outcome) Failed() bool { return o.Err != nil }

// Result is the result of a batch: one outcome per action, in order, and the
// ledger state after the last one.
type Result struct {
	Outcomes []Outcome
	Snapshot fintrack.Snapshot
}

// Succeeded counts the outcomes that did not fail.
func (r Result) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if !o.Failed() {
			n++
		}
	}
	return n
}

// Executor applies actions to the ledger.
type Executor struct {
	Ledger   *fintrack.Ledger
	Audit    *audit.Logger    // optional
	Now      func() time.Time // time.Now when nil
	Currency string           // fintrack.DefaultCurrency when empty
}

// Execute applies actions in order, starting from snapshot.
//
// A failing action is recorded in its Outcome and the next action is
// applied anyway. After every action that changed the ledger, the working
// snapshot is read again from the ledger, so that later actions see the
// effect of earlier ones.
func (e *Executor) Execute(actions []Action, snapshot fintrack.Snapshot) Result {
	working := snapshot.Clone()
	outcomes := make([]Outcome, 0, len(actions))
	for _, a := range actions {
		e.Audit.Log(audit.TypeAction, audit.Event{"action": a.Kind(), "details": a})
		o := e.safeApply(a, working)
		outcomes = append(outcomes, o)

		fields := audit.Event{"action": a.Kind(), "summary": o.Summary}
		if o.Failed() {
			fields["error"] = o.Err.Error()
		}
		e.Audit.Log(audit.TypeActionResult, fields)

		if o.Mutated {
			fresh, err := e.Ledger.Snapshot()
			if err != nil {
				e.Audit.Error("Failed to reload accounts", err, audit.Event{"action": a.Kind()})
				continue
			}
			working = fresh
		}
	}
	return Result{Outcomes: outcomes, Snapshot: working}
}

// safeApply applies a and turns a panic into a failed outcome.
func (e *Executor) safeApply(a Action, working fintrack.Snapshot) (o Outcome) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			e.Audit.Error("Error processing action", err, audit.Event{"action": a, "stack": string(debug.Stack())})
			o = Outcome{Action: a, Summary: "❗ Error processing action: " + err.Error(), Err: err}
		}
	}()
	return e.apply(a, working)
}

func (e *Executor) apply(a Action, working fintrack.Snapshot) Outcome {
	switch a := a.(type) {
	case AddTransaction:
		return e.addTransaction(a, working)
	case CreateAccount:
		return e.createAccount(a, working)
	case DeleteAccount:
		return e.deleteAccount(a, working)
	case AskUser:
		msg := strings.TrimSpace(a.Message)
		if msg == "" {
			msg = "Requested clarification from user."
		}
		return Outcome{Action: a, Summary: msg}
	case InformUser:
		return Outcome{Action: a, Summary: strings.TrimSpace(a.Message)}
	case GetAccounts:
		return Outcome{Action: a, Summary: "Fetched account list."}
	case Invalid:
		e.Audit.Error("Invalid action", a.Err, audit.Event{"action": a.Name, "raw": string(a.Raw)})
		return Outcome{
			Action:  a,
			Summary: fmt.Sprintf("❗ Could not read the %s action: %v", a.Name, a.Err),
			Err:     &fintrack.ValidationError{Field: a.Name, Reason: a.Err.Error()},
		}
	case Unknown:
		e.Audit.Log(audit.TypeUnknownAction, audit.Event{"action": a.Name, "raw": string(a.Raw)})
		return Outcome{Action: a, Summary: "Performed an action."}
	default:
		panic(fmt.Sprintf("unexpected action type %T", a))
	}
}

func (e *Executor) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Executor) money(v fintrack.Transaction) string {
	return fintrack.M(v.Amount, e.Currency).String()
}

// isIncome tells whether the action records money coming in. An explicit
// "income" type wins; otherwise a few words in the category or the note
// give it away.
func isIncome(a AddTransaction) bool {
	switch strings.ToLower(strings.TrimSpace(a.Type)) {
	case "income", "credit":
		return true
	}
	text := strings.ToLower(a.Category + " " + a.Note)
	for _, word := range []string{"salary", "received", "deposit"} {
		if strings.Contains(text, word) {
			return true
		}
	}
	return false
}

// transactionDate parses the date of an action. Missing or unreadable dates
// are now.
func transactionDate(s string, now time.Time) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return now
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	if d, err := date.Parse(s); err == nil {
		return d.Time()
	}
	return now
}

func (e *Executor) addTransaction(a AddTransaction, working fintrack.Snapshot) Outcome {
	account, ok := working.Account(strings.TrimSpace(a.AccountID))
	if !ok {
		return Outcome{
			Action:  a,
			Summary: "❗ The account you specified doesn't exist. Available accounts: " + working.Listing(a.AccountID),
			Err:     &fintrack.NotFoundError{Kind: "account", ID: a.AccountID},
		}
	}

	income := isIncome(a)
	note := strings.TrimSpace(a.Note)
	switch {
	case note != "":
	case a.IsFriendPayment:
		note = "Payment to friend"
	case income:
		note = "Received Salary"
	}
	tx := fintrack.Transaction{
		Amount:          a.Amount,
		Kind:            fintrack.Debit,
		Date:            transactionDate(a.Date, e.now()),
		Note:            note,
		IsFriendPayment: a.IsFriendPayment,
	}
	if income {
		tx.Kind = fintrack.Credit
	}
	if _, err := e.Ledger.AddTransaction(account.ID, tx); err != nil {
		e.Audit.Error("Failed to add transaction", err, audit.Event{"action": a})
		return Outcome{Action: a, Summary: "❗ Could not add the transaction: " + err.Error(), Err: err}
	}

	on := tx.Date.Format(date.DisplayFormat)
	amount := e.money(tx)
	var summary string
	switch {
	case a.IsFriendPayment:
		summary = fmt.Sprintf("Paid %s to friend from %s on %s", amount, account.Name, on)
	case income:
		summary = fmt.Sprintf("Added income of %s as %s to %s on %s", amount, orDefault(a.Category, "salary"), account.Name, on)
	default:
		summary = fmt.Sprintf("Added expense of %s for %s from %s on %s", amount, orDefault(a.Category, "expense"), account.Name, on)
	}
	return Outcome{Action: a, Summary: summary, Mutated: true}
}

func (e *Executor) createAccount(a CreateAccount, working fintrack.Snapshot) Outcome {
	name := strings.TrimSpace(a.AccountName)
	if name == "" {
		return Outcome{
			Action:  a,
			Summary: "❗ Please provide a valid account name to create an account.",
			Err:     &fintrack.ValidationError{Field: "accountName", Reason: "account name is empty"},
		}
	}
	if _, exists := working.ByName(name); exists {
		return Outcome{
			Action:  a,
			Summary: fmt.Sprintf("❗ An account named %q already exists.", name),
			Err:     &fintrack.ValidationError{Field: "accountName", Reason: fmt.Sprintf("an account named %q already exists", name)},
		}
	}
	account, err := e.Ledger.CreateAccount(name)
	if err != nil {
		e.Audit.Error("Failed to add account", err, audit.Event{"accountName": name})
		return Outcome{Action: a, Summary: "❗ Could not create the account: " + err.Error(), Err: err}
	}
	return Outcome{Action: a, Summary: fmt.Sprintf("Created account %q (ID: %s)", account.Name, account.ID), Mutated: true}
}

func (e *Executor) deleteAccount(a DeleteAccount, working fintrack.Snapshot) Outcome {
	id := strings.TrimSpace(a.AccountID)
	account, ok := working.Account(id)
	if !ok {
		return Outcome{
			Action:  a,
			Summary: "❗ Please specify a valid account ID to delete. Available accounts: " + working.Listing(id),
			Err:     &fintrack.NotFoundError{Kind: "account", ID: id},
		}
	}
	if err := e.Ledger.DeleteAccount(account.ID); err != nil {
		e.Audit.Error("Failed to delete account", err, audit.Event{"accountId": id})
		return Outcome{Action: a, Summary: "❗ Could not delete the account: " + err.Error(), Err: err}
	}
	return Outcome{Action: a, Summary: fmt.Sprintf("Deleted account %q (ID: %s)", account.Name, account.ID), Mutated: true}
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s != "" {
		return s
	}
	return def
}
