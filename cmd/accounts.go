package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/fintrack/renderer"
	"github.com/google/subcommands"
)

type accountsCmd struct{}

func (*accountsCmd) Name() string     { return "accounts" }
func (*accountsCmd) Synopsis() string { return "list accounts and their balances" }
func (*accountsCmd) Usage() string {
	return `fin accounts

  Lists every account with its balance, the number of transactions and the
  date of the latest one, followed by the total balance.
`
}

func (*accountsCmd) SetFlags(f *flag.FlagSet) {}

func (*accountsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	err := withApp(func(a *app) error {
		accounts, err := a.ledger.Accounts()
		if err != nil {
			return err
		}
		printMarkdown(renderer.RenderAccounts(renderer.NewAccounts(accounts, a.currency())))
		return nil
	})
	if err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

type accountAddCmd struct{}

func (*accountAddCmd) Name() string     { return "account-add" }
func (*accountAddCmd) Synopsis() string { return "create an account" }
func (*accountAddCmd) Usage() string {
	return `fin account-add <name>

  Creates an empty account. Names are unique, ignoring case.
`
}

func (*accountAddCmd) SetFlags(f *flag.FlagSet) {}

func (*accountAddCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	name := strings.Join(f.Args(), " ")
	if strings.TrimSpace(name) == "" {
		fmt.Fprintln(os.Stderr, "Error: missing account name.")
		return subcommands.ExitUsageError
	}
	failed := false
	err := withApp(func(a *app) error {
		reply := a.forms().HandleAddAccount(name)
		if reply.Error {
			failed = true
			printError(os.Stderr, reply.Chat)
			return nil
		}
		printSuccess(stdout, reply.Chat)
		return nil
	})
	if err != nil {
		return fail(err)
	}
	if failed {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

type accountDeleteCmd struct {
	yes bool
}

func (*accountDeleteCmd) Name() string     { return "account-delete" }
func (*accountDeleteCmd) Synopsis() string { return "delete an account and its transactions" }
func (*accountDeleteCmd) Usage() string {
	return `fin account-delete [-y] <id or name>

  Deletes an account and all its transactions. Asks for confirmation unless
  -y is given; without a terminal to ask on, -y is required.
`
}

func (c *accountDeleteCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.yes, "y", false, "Delete without asking for confirmation.")
}

func (c *accountDeleteCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	ref := strings.Join(f.Args(), " ")
	if strings.TrimSpace(ref) == "" {
		fmt.Fprintln(os.Stderr, "Error: missing account id or name.")
		return subcommands.ExitUsageError
	}
	failed := false
	err := withApp(func(a *app) error {
		snapshot, err := a.ledger.Snapshot()
		if err != nil {
			return err
		}
		acc, err := findAccount(snapshot, ref)
		if err != nil {
			return err
		}
		if !c.yes {
			ok, err := confirm(fmt.Sprintf("Delete %q and its %d transactions?", acc.Name, len(acc.Transactions)))
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("account not deleted (use -y to skip the confirmation)")
			}
		}
		reply := a.forms().HandleDeleteAccount(acc.ID)
		if reply.Error {
			failed = true
			printError(os.Stderr, reply.Chat)
			return nil
		}
		printSuccess(stdout, reply.Chat)
		return nil
	})
	if err != nil {
		return fail(err)
	}
	if failed {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
