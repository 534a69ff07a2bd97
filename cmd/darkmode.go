package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/google/subcommands"
)

type darkModeCmd struct{}

func (*darkModeCmd) Name() string     { return "dark-mode" }
func (*darkModeCmd) Synopsis() string { return "show or set the dark mode preference" }
func (*darkModeCmd) Usage() string {
	return `fin dark-mode [on|off]

  Without argument, prints the preference. With one, stores it. Reports are
  rendered with a dark or light style accordingly.
`
}

func (*darkModeCmd) SetFlags(f *flag.FlagSet) {}

// parseSwitch reads on/off, yes/no and the boolean spellings.
func parseSwitch(s string) (bool, error) {
	switch s {
	case "on", "yes":
		return true, nil
	case "off", "no":
		return false, nil
	}
	return strconv.ParseBool(s)
}

func (*darkModeCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() > 1 {
		fmt.Fprintln(os.Stderr, "Error: expected on or off.")
		return subcommands.ExitUsageError
	}
	err := withApp(func(a *app) error {
		if f.NArg() == 0 {
			on, err := a.ledger.DarkMode()
			if err != nil {
				return err
			}
			fmt.Fprintln(stdout, onOff(on))
			return nil
		}
		on, err := parseSwitch(f.Arg(0))
		if err != nil {
			return fmt.Errorf("invalid value %q, expected on or off", f.Arg(0))
		}
		if err := a.ledger.SetDarkMode(on); err != nil {
			return err
		}
		printSuccess(stdout, "Dark mode "+onOff(on)+".")
		return nil
	})
	if err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
