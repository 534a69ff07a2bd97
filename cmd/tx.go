package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/etnz/fintrack"
	"github.com/etnz/fintrack/date"
	"github.com/etnz/fintrack/renderer"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

type txCmd struct {
	head     int
	from, to string
}

func (*txCmd) Name() string     { return "tx" }
func (*txCmd) Synopsis() string { return "list the transactions of an account" }
func (*txCmd) Usage() string {
	return `fin tx [-head <n>] [-from <date>] [-to <date>] <id or name>

  Shows an account, its balance and its transactions, newest first. -from
  and -to keep the transactions between two days, both included.
`
}

func (c *txCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.head, "head", 0, "Show only the N most recent transactions.")
	f.StringVar(&c.from, "from", "", "Show transactions from this day (YYYY-MM-DD).")
	f.StringVar(&c.to, "to", "", "Show transactions up to this day (YYYY-MM-DD).")
}

// parseRange reads optional -from and -to days. Empty boundaries are open.
func parseRange(from, to string) (date.Range, error) {
	var r date.Range
	var err error
	if from != "" {
		if r.From, err = date.Parse(from); err != nil {
			return r, err
		}
	}
	if to != "" {
		if r.To, err = date.Parse(to); err != nil {
			return r, err
		}
	}
	if !r.From.IsZero() && !r.To.IsZero() && r.To.Before(r.From) {
		return r, fmt.Errorf("empty range %s", r)
	}
	return r, nil
}

func (c *txCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ref := strings.Join(f.Args(), " ")
	if strings.TrimSpace(ref) == "" {
		fmt.Fprintln(os.Stderr, "Error: missing account id or name.")
		return subcommands.ExitUsageError
	}
	r, err := parseRange(c.from, c.to)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	err = withApp(func(a *app) error {
		snapshot, err := a.ledger.Snapshot()
		if err != nil {
			return err
		}
		acc, err := findAccount(snapshot, ref)
		if err != nil {
			return err
		}
		view := renderer.NewAccountDetail(acc, a.currency())
		if r != (date.Range{}) {
			acc.Transactions = slices.DeleteFunc(acc.Transactions, func(t fintrack.Transaction) bool {
				return !r.Contains(date.Of(t.Date))
			})
			view.Transactions = renderer.NewAccountDetail(acc, a.currency()).Transactions
		}
		if c.head > 0 && len(view.Transactions) > c.head {
			view.Transactions = view.Transactions[:c.head]
		}
		printMarkdown(renderer.RenderAccount(view))
		return nil
	})
	if err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

type txAddCmd struct {
	account string
	amount  string
	kind    string
	note    string
	date    string
	friend  bool
}

func (*txAddCmd) Name() string     { return "tx-add" }
func (*txAddCmd) Synopsis() string { return "record a transaction" }
func (*txAddCmd) Usage() string {
	return `fin tx-add -a <account> -amount <amount> [-type debit|credit] [-note <note>] [-d <date>] [-friend]

  Records a transaction in an account. Amounts are positive, the type tells
  whether money comes in (credit, income) or goes out (debit, expense).
`
}

func (c *txAddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "a", "", "Account id or name.")
	f.StringVar(&c.amount, "amount", "", "Positive amount.")
	f.StringVar(&c.kind, "type", "debit", "Transaction type: debit, credit, expense or income.")
	f.StringVar(&c.note, "note", "", "Free text note.")
	f.StringVar(&c.date, "d", "", "Date of the transaction, YYYY-MM-DD. Defaults to now.")
	f.BoolVar(&c.friend, "friend", false, "Mark as a payment to a friend.")
}

// transaction builds the transaction from the flags.
func (c *txAddCmd) transaction() (fintrack.Transaction, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(c.amount))
	if err != nil {
		return fintrack.Transaction{}, &fintrack.ValidationError{Field: "amount", Reason: fmt.Sprintf("%q is not a number", c.amount)}
	}
	kind, err := fintrack.ParseKind(strings.ToLower(strings.TrimSpace(c.kind)))
	if err != nil {
		return fintrack.Transaction{}, err
	}
	tx := fintrack.Transaction{
		Amount:          amount,
		Kind:            kind,
		Note:            strings.TrimSpace(c.note),
		IsFriendPayment: c.friend,
	}
	if c.date != "" {
		on, err := date.Parse(c.date)
		if err != nil {
			return fintrack.Transaction{}, &fintrack.ValidationError{Field: "date", Reason: err.Error()}
		}
		tx.Date = on.Time()
	}
	return tx, nil
}

func (c *txAddCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.account == "" || c.amount == "" {
		fmt.Fprintln(os.Stderr, "Error: -a and -amount are required.")
		return subcommands.ExitUsageError
	}
	tx, err := c.transaction()
	if err != nil {
		return fail(err)
	}
	err = withApp(func(a *app) error {
		snapshot, err := a.ledger.Snapshot()
		if err != nil {
			return err
		}
		acc, err := findAccount(snapshot, c.account)
		if err != nil {
			return err
		}
		updated, err := a.ledger.AddTransaction(acc.ID, tx)
		if err != nil {
			return err
		}
		added, _ := updated.Last()
		printSuccess(stdout, fmt.Sprintf("%s %s on %s (ID: %s), balance %s",
			fintrack.M(added.Signed(), a.currency()).SignedString(),
			updated.Name,
			added.Date.Format(date.DisplayFormat),
			added.ID,
			fintrack.M(updated.Balance(), a.currency())))
		return nil
	})
	if err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

type txDeleteCmd struct {
	account string
}

func (*txDeleteCmd) Name() string     { return "tx-delete" }
func (*txDeleteCmd) Synopsis() string { return "delete a transaction" }
func (*txDeleteCmd) Usage() string {
	return `fin tx-delete -a <account> <transaction id>

  Deletes one transaction from an account.
`
}

func (c *txDeleteCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "a", "", "Account id or name.")
}

func (c *txDeleteCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.account == "" || f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: -a and exactly one transaction id are required.")
		return subcommands.ExitUsageError
	}
	id := f.Arg(0)
	err := withApp(func(a *app) error {
		snapshot, err := a.ledger.Snapshot()
		if err != nil {
			return err
		}
		acc, err := findAccount(snapshot, c.account)
		if err != nil {
			return err
		}
		tx, ok := acc.Transaction(id)
		if !ok {
			return &fintrack.NotFoundError{Kind: "transaction", ID: id}
		}
		if err := a.ledger.DeleteTransaction(acc.ID, id); err != nil {
			return err
		}
		printSuccess(stdout, fmt.Sprintf("Deleted %s from %s", fintrack.M(tx.Signed(), a.currency()).SignedString(), acc.Name))
		return nil
	})
	if err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}
