package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/fintrack/audit"
	"github.com/etnz/fintrack/renderer"
	"github.com/google/subcommands"
)

type logsCmd struct {
	filter string
	query  string
	tail   int
}

func (*logsCmd) Name() string     { return "logs" }
func (*logsCmd) Synopsis() string { return "show the assistant activity log" }
func (*logsCmd) Usage() string {
	return `fin logs [-f <text>] [-n <count>] [-q <jsonpath>]

  Shows the audit trail of the assistant, newest first.

  -f keeps events whose type, error or user message contains the text.
  -q evaluates a JSONPath expression on the whole trail and prints the
  result as JSON, e.g. -q '$[?(@.type=="error")].message'.
`
}

func (c *logsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.filter, "f", "", "Only show events containing this text.")
	f.StringVar(&c.query, "q", "", "JSONPath expression to evaluate on the trail.")
	f.IntVar(&c.tail, "n", 0, "Only show the N most recent events.")
}

func (c *logsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.query != "" && c.filter != "" {
		fmt.Fprintln(os.Stderr, "Error: -q and -f cannot be used together.")
		return subcommands.ExitUsageError
	}
	err := withApp(func(a *app) error {
		if c.query != "" {
			v, err := a.audit.Query(c.query)
			if err != nil {
				return err
			}
			b, err := json.MarshalIndent(v, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, string(b))
			return nil
		}

		var events []audit.Event
		var err error
		if c.filter != "" {
			events, err = a.audit.Filter(c.filter)
		} else {
			events, err = a.audit.ReadAll()
		}
		if err != nil {
			return err
		}
		if c.tail > 0 && len(events) > c.tail {
			events = events[len(events)-c.tail:]
		}
		printMarkdown(renderer.RenderLogs(renderer.NewLogs(events)))
		return nil
	})
	if err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

type logsClearCmd struct {
	yes bool
}

func (*logsClearCmd) Name() string     { return "logs-clear" }
func (*logsClearCmd) Synopsis() string { return "erase the assistant activity log" }
func (*logsClearCmd) Usage() string {
	return `fin logs-clear [-y]

  Erases the audit trail. Accounts and transactions are kept.
`
}

func (c *logsClearCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.yes, "y", false, "Erase without asking for confirmation.")
}

func (c *logsClearCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	err := withApp(func(a *app) error {
		if !c.yes {
			ok, err := confirm("Erase the whole activity log?")
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("log not erased (use -y to skip the confirmation)")
			}
		}
		if err := a.audit.Clear(); err != nil {
			return err
		}
		printSuccess(stdout, "Activity log erased.")
		return nil
	})
	if err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}
