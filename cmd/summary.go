package cmd

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/fintrack"
	"github.com/etnz/fintrack/date"
	"github.com/etnz/fintrack/renderer"
	"github.com/google/subcommands"
)

type summaryCmd struct {
	period   string
	date     string
	from, to string
	json     bool
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "income, expenses and balances over a month or a year" }
func (*summaryCmd) Usage() string {
	return `fin summary [-period month|year] [-d <date>] [-from <date> -to <date>] [-json]

  Reports the income and expenses of the month or the year holding the date
  (today by default), month by month for a year, the activity of each
  account and the balances at the end of the period. -from and -to report
  on any range of days instead.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.period, "period", "year", "Period of the report: month or year.")
	f.StringVar(&c.date, "d", "", "A day of the period to report on (defaults to today).")
	f.StringVar(&c.from, "from", "", "First day of a custom range.")
	f.StringVar(&c.to, "to", "", "Last day of a custom range.")
	f.BoolVar(&c.json, "json", false, "Print the report as JSON.")
}

// reportRange returns the range of days the report covers.
func (c *summaryCmd) reportRange(today date.Date) (date.Range, error) {
	if c.from != "" || c.to != "" {
		return parseRange(c.from, c.to)
	}
	p, err := date.ParsePeriod(c.period)
	if err != nil {
		return date.Range{}, err
	}
	on := today
	if c.date != "" {
		if on, err = date.Parse(c.date); err != nil {
			return date.Range{}, err
		}
	}
	return p.Range(on), nil
}

func (c *summaryCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	r, err := c.reportRange(date.Today())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	err = withApp(func(a *app) error {
		snapshot, err := a.ledger.Snapshot()
		if err != nil {
			return err
		}
		view := renderer.NewSummary(fintrack.NewSummary(snapshot, r), a.currency())
		if c.json {
			b, err := json.MarshalIndent(view, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, string(b))
			return nil
		}
		printMarkdown(renderer.RenderSummary(view))
		return nil
	})
	if err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}
