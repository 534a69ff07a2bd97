package assistant

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"sync/atomic"
	"time"

	"github.com/etnz/fintrack"
	"github.com/etnz/fintrack/audit"
)

// Messages returned to the user when a chat request fails as a whole.
const (
	MsgInvalidResponse = "❗ I received an invalid response. Please try again."
	MsgTooManyTries    = "❗ Sorry, I couldn't complete your request after several tries."
	MsgUnexpected      = "❗ An unexpected error occurred. Please try again."
	MsgBusy            = "❗ Still working on your previous message. Please wait."
	MsgEmptyMessage    = "❗ Please type a message."
)

// Reply is the answer to a chat message.
type Reply struct {
	Chat  string `json:"chat"`
	Error bool   `json:"error,omitempty"`
	// Canceled is set when the request context ended before the reply was
	// ready. The reply must then be discarded; ledger changes already made
	// are kept.
	Canceled bool      `json:"-"`
	Outcomes []Outcome `json:"-"`
}

// AccountReply is the answer to an account creation.
type AccountReply struct {
	Chat    string            `json:"chat"`
	Account *fintrack.Account `json:"account,omitempty"`
	Error   bool              `json:"error,omitempty"`
}

// DeleteReply is the answer to an account deletion.
type DeleteReply struct {
	Chat     string             `json:"chat"`
	Accounts []fintrack.Account `json:"accounts,omitempty"`
	Error    bool               `json:"error,omitempty"`
}

// Options tune an Assistant.
type Options struct {
	Currency string           // fintrack.DefaultCurrency when empty
	Policy   Policy           // DefaultPolicy when zero
	Now      func() time.Time // time.Now when nil
	// Plain replies with the numbered outcomes instead of asking the model
	// to phrase them.
	Plain bool
}

// Assistant handles the chat with the user: it interprets each message,
// applies the resulting actions to the ledger and replies.
//
// Only one chat message is handled at a time; a message sent while another
// is in flight is refused.
type Assistant struct {
	Ledger      *fintrack.Ledger
	Interpreter *Interpreter
	Executor    *Executor
	Synthesizer *Synthesizer
	Audit       *audit.Logger
	Policy      Policy

	busy atomic.Bool
}

// New creates an Assistant on ledger. log may be nil.
func New(ledger *fintrack.Ledger, c Completer, log *audit.Logger, opts Options) *Assistant {
	policy := opts.Policy
	if policy.Attempts == 0 {
		policy = DefaultPolicy
	}
	a := &Assistant{
		Ledger:      ledger,
		Interpreter: &Interpreter{Completer: c, Audit: log, Now: opts.Now, Currency: opts.Currency},
		Executor:    &Executor{Ledger: ledger, Audit: log, Now: opts.Now, Currency: opts.Currency},
		Synthesizer: &Synthesizer{Completer: c, Audit: log, Timeout: policy.Timeout},
		Audit:       log,
		Policy:      policy,
	}
	if opts.Plain {
		a.Synthesizer.Completer = nil
	}
	return a
}

// HandleFinanceChat answers one chat message. history holds the previous
// turns of the conversation, the most recent last.
func (a *Assistant) HandleFinanceChat(ctx context.Context, message string, history []Turn) (reply Reply) {
	if !a.busy.CompareAndSwap(false, true) {
		return Reply{Chat: MsgBusy, Error: true}
	}
	defer a.busy.Store(false)
	defer func() {
		if r := recover(); r != nil {
			a.Audit.Error("Error in handleFinanceChat", fmt.Errorf("panic: %v", r), audit.Event{
				"userMessage": message,
				"stack":       string(debug.Stack()),
			})
			reply = Reply{Chat: MsgUnexpected, Error: true}
		}
	}()

	message = strings.TrimSpace(message)
	if message == "" {
		return Reply{Chat: MsgEmptyMessage, Error: true}
	}
	a.Audit.Log(audit.TypeChatStart, audit.Event{"userMessage": message, "chatHistoryLength": len(history)})

	batch, err := Retry(ctx, a.Policy, func(ctx context.Context, attempt int) (Batch, error) {
		snapshot, err := a.Ledger.Snapshot()
		if err != nil {
			return Batch{}, err
		}
		b, err := a.Interpreter.Interpret(ctx, message, history, snapshot)
		if err != nil {
			a.Audit.Error("Error processing message", err, audit.Event{"attempt": attempt})
		}
		return b, err
	})
	if err != nil {
		switch {
		case ctx.Err() != nil:
			return Reply{Canceled: true, Error: true}
		case isMalformed(err):
			return Reply{Chat: MsgInvalidResponse, Error: true}
		default:
			return Reply{Chat: MsgTooManyTries, Error: true}
		}
	}

	res := a.Executor.Execute(batch.Actions, batch.Snapshot)
	if ctx.Err() != nil {
		a.Audit.Log(audit.TypeSummary, audit.Event{"canceled": true, "outcomes": Numbered(res)})
		return Reply{Canceled: true, Outcomes: res.Outcomes}
	}
	chat := a.Synthesizer.Reply(ctx, res)
	if ctx.Err() != nil {
		return Reply{Canceled: true, Outcomes: res.Outcomes}
	}
	return Reply{
		Chat:     chat,
		Error:    len(res.Outcomes) == 0 || res.Succeeded() == 0,
		Outcomes: res.Outcomes,
	}
}

// HandleAddAccount creates an account from the account form. Names are
// unique ignoring case, as for accounts created through the chat.
func (a *Assistant) HandleAddAccount(name string) AccountReply {
	name = strings.TrimSpace(name)
	if name == "" {
		a.Audit.Error("Failed to add account", &fintrack.ValidationError{Field: "name", Reason: "account name is empty"}, audit.Event{"accountName": name})
		return AccountReply{Chat: "❗ Please provide a valid account name to create an account.", Error: true}
	}
	snapshot, err := a.Ledger.Snapshot()
	if err != nil {
		a.Audit.Error("Failed to add account", err, audit.Event{"accountName": name})
		return AccountReply{Chat: "❗ Failed to create account. Please try again.", Error: true}
	}
	if _, exists := snapshot.ByName(name); exists {
		return AccountReply{Chat: fmt.Sprintf("❗ An account named %q already exists.", name), Error: true}
	}
	account, err := a.Ledger.CreateAccount(name)
	if err != nil {
		a.Audit.Error("Failed to add account", err, audit.Event{"accountName": name})
		return AccountReply{Chat: "❗ Failed to create account. Please try again.", Error: true}
	}
	a.Audit.Log(audit.TypeAccount, audit.Event{"created": account.ID, "accountName": account.Name})
	return AccountReply{Chat: fmt.Sprintf("🆕 Account %q created! (ID: %s)", account.Name, account.ID), Account: &account}
}

// HandleDeleteAccount deletes an account and returns the remaining ones.
func (a *Assistant) HandleDeleteAccount(id string) DeleteReply {
	fail := func(err error) DeleteReply {
		a.Audit.Error("Failed to delete account", err, audit.Event{"accountId": id})
		return DeleteReply{Chat: "❗ Failed to delete account. Please try again.", Error: true}
	}
	snapshot, err := a.Ledger.Snapshot()
	if err != nil {
		return fail(err)
	}
	account, ok := snapshot.Account(id)
	if !ok {
		return fail(&fintrack.NotFoundError{Kind: "account", ID: id})
	}
	if err := a.Ledger.DeleteAccount(id); err != nil {
		return fail(err)
	}
	accounts, err := a.Ledger.Accounts()
	if err != nil {
		return fail(err)
	}
	a.Audit.Log(audit.TypeAccount, audit.Event{"deleted": id, "accountName": account.Name})
	return DeleteReply{Chat: fmt.Sprintf("🗑️ Account %q deleted successfully!", account.Name), Accounts: accounts}
}
