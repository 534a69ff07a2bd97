package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/fintrack"
	"github.com/etnz/fintrack/audit"
	"github.com/etnz/fintrack/date"
	"github.com/etnz/fintrack/renderer"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

// auditApplied records the entries created from recurring rules.
func (a *app) auditApplied(applied []fintrack.Applied) {
	for _, ap := range applied {
		a.audit.Log(audit.TypeRecurring, audit.Event{
			"ruleId":        ap.RuleID,
			"accountId":     ap.AccountID,
			"on":            ap.On.String(),
			"transactionId": ap.Transaction.ID,
			"amount":        ap.Transaction.Amount.String(),
		})
	}
}

type recurringCmd struct{}

func (*recurringCmd) Name() string     { return "recurring" }
func (*recurringCmd) Synopsis() string { return "list recurring entries" }
func (*recurringCmd) Usage() string {
	return `fin recurring

  Lists the recurring entries with their next due date.
`
}

func (*recurringCmd) SetFlags(f *flag.FlagSet) {}

func (*recurringCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	err := withApp(func(a *app) error {
		rules, err := a.ledger.Rules()
		if err != nil {
			return err
		}
		snapshot, err := a.ledger.Snapshot()
		if err != nil {
			return err
		}
		printMarkdown(renderer.RenderRules(renderer.NewRules(rules, nil, snapshot, a.currency())))
		return nil
	})
	if err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

type recurringAddCmd struct {
	account string
	amount  string
	kind    string
	note    string
	start   string
	end     string
	period  string
	day     int
	manual  bool
}

func (*recurringAddCmd) Name() string     { return "recurring-add" }
func (*recurringAddCmd) Synopsis() string { return "schedule a monthly or yearly entry" }
func (*recurringAddCmd) Usage() string {
	return `fin recurring-add -a <account> -amount <amount> [-type debit|credit] [-every monthly|yearly]
                  [-s <start>] [-e <end>] [-day <n>] [-note <note>] [-manual]

  Schedules a transaction that repeats every month or every year. Entries
  are applied automatically when due, unless -manual is given; manual
  entries are applied with recurring-run -rule.
`
}

func (c *recurringAddCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "a", "", "Account id or name.")
	f.StringVar(&c.amount, "amount", "", "Positive amount.")
	f.StringVar(&c.kind, "type", "debit", "Transaction type: debit, credit, expense or income.")
	f.StringVar(&c.note, "note", "", "Note of the created transactions.")
	f.StringVar(&c.start, "s", date.Today().String(), "First date of the entry.")
	f.StringVar(&c.end, "e", "", "Last date of the entry, none by default.")
	f.StringVar(&c.period, "every", "monthly", "Frequency: monthly or yearly.")
	f.IntVar(&c.day, "day", 0, "Day of month, defaults to the day of the start date. Short months use their last day.")
	f.BoolVar(&c.manual, "manual", false, "Do not apply automatically.")
}

// rule builds the rule from the flags, for the account id.
func (c *recurringAddCmd) rule(accountID string) (fintrack.RecurringRule, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(c.amount))
	if err != nil {
		return fintrack.RecurringRule{}, &fintrack.ValidationError{Field: "amount", Reason: fmt.Sprintf("%q is not a number", c.amount)}
	}
	kind, err := fintrack.ParseKind(strings.ToLower(strings.TrimSpace(c.kind)))
	if err != nil {
		return fintrack.RecurringRule{}, err
	}
	period, err := date.ParsePeriod(c.period)
	if err != nil {
		return fintrack.RecurringRule{}, &fintrack.ValidationError{Field: "frequency", Reason: err.Error()}
	}
	start, err := date.Parse(c.start)
	if err != nil {
		return fintrack.RecurringRule{}, &fintrack.ValidationError{Field: "startDate", Reason: err.Error()}
	}
	r := fintrack.RecurringRule{
		AccountID:  accountID,
		Amount:     amount,
		Kind:       kind,
		Note:       strings.TrimSpace(c.note),
		Start:      start,
		Period:     period,
		DayOfMonth: c.day,
		AutoApply:  !c.manual,
	}
	if c.end != "" {
		end, err := date.Parse(c.end)
		if err != nil {
			return fintrack.RecurringRule{}, &fintrack.ValidationError{Field: "endDate", Reason: err.Error()}
		}
		r.End = &end
	}
	return r, nil
}

func (c *recurringAddCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.account == "" || c.amount == "" {
		fmt.Fprintln(os.Stderr, "Error: -a and -amount are required.")
		return subcommands.ExitUsageError
	}
	err := withApp(func(a *app) error {
		snapshot, err := a.ledger.Snapshot()
		if err != nil {
			return err
		}
		acc, err := findAccount(snapshot, c.account)
		if err != nil {
			return err
		}
		r, err := c.rule(acc.ID)
		if err != nil {
			return err
		}
		r, err = a.ledger.AddRule(r)
		if err != nil {
			return err
		}
		next := "never"
		if on, ok := r.Next(); ok {
			next = on.Display()
		}
		printSuccess(stdout, fmt.Sprintf("Scheduled %s %s on %s (ID: %s), next on %s",
			fintrack.M(fintrack.Transaction{Amount: r.Amount, Kind: r.Kind}.Signed(), a.currency()).SignedString(),
			r.Period, acc.Name, r.ID, next))
		return nil
	})
	if err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

type recurringDeleteCmd struct{}

func (*recurringDeleteCmd) Name() string     { return "recurring-delete" }
func (*recurringDeleteCmd) Synopsis() string { return "stop a recurring entry" }
func (*recurringDeleteCmd) Usage() string {
	return `fin recurring-delete <rule id>

  Deletes a recurring entry. Transactions it already created are kept.
`
}

func (*recurringDeleteCmd) SetFlags(f *flag.FlagSet) {}

func (*recurringDeleteCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one rule id is required.")
		return subcommands.ExitUsageError
	}
	err := withApp(func(a *app) error {
		if err := a.ledger.DeleteRule(f.Arg(0)); err != nil {
			return err
		}
		printSuccess(stdout, "Recurring entry deleted.")
		return nil
	})
	if err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

type recurringRunCmd struct {
	rule string
	date string
}

func (*recurringRunCmd) Name() string     { return "recurring-run" }
func (*recurringRunCmd) Synopsis() string { return "apply due recurring entries" }
func (*recurringRunCmd) Usage() string {
	return `fin recurring-run [-rule <id>] [-d <date>]

  Applies every due occurrence of the automatic entries up to the date, or
  of the single entry given with -rule, automatic or not. Occurrences
  already applied are never applied twice.
`
}

func (c *recurringRunCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.rule, "rule", "", "Apply only this rule.")
	f.StringVar(&c.date, "d", date.Today().String(), "Apply occurrences up to this date.")
}

func (c *recurringRunCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	today, err := date.Parse(c.date)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing date: %v\n", err)
		return subcommands.ExitUsageError
	}
	err = withApp(func(a *app) error {
		var applied []fintrack.Applied
		var err error
		if c.rule != "" {
			applied, err = a.ledger.ApplyRule(c.rule, today)
		} else {
			applied, err = a.ledger.ProcessDue(today)
		}
		a.auditApplied(applied)
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			printInfof(stdout, "Nothing due.")
			return nil
		}
		rules, err := a.ledger.Rules()
		if err != nil {
			return err
		}
		snapshot, err := a.ledger.Snapshot()
		if err != nil {
			return err
		}
		printMarkdown(renderer.RenderRules(renderer.NewRules(rules, applied, snapshot, a.currency())))
		return nil
	})
	if err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}
