package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/etnz/fintrack"
	"github.com/etnz/fintrack/kv"
	"github.com/fsnotify/fsnotify"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

var (
	nameStyle     = lipgloss.NewStyle().Width(24)
	positiveStyle = successStyle.Width(18).Align(lipgloss.Right)
	negativeStyle = errorStyle.Width(18).Align(lipgloss.Right)
	totalStyle    = lipgloss.NewStyle().Bold(true)
)

type balancesCmd struct {
	watch bool
}

func (*balancesCmd) Name() string     { return "balances" }
func (*balancesCmd) Synopsis() string { return "show account balances" }
func (*balancesCmd) Usage() string {
	return `fin balances [-watch]

  Prints the balance of every account and the total. With -watch, the
  balances are printed again every time the ledger changes, for instance
  while a chat runs in another terminal.
`
}

func (c *balancesCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.watch, "watch", false, "Print the balances again whenever the ledger changes.")
}

// printBalances writes one line per account and the total.
func printBalances(w io.Writer, accounts []fintrack.Account, currency string) {
	line := func(name string, v fintrack.Money) string {
		style := positiveStyle
		if v.IsNegative() {
			style = negativeStyle
		}
		return nameStyle.Render(name) + style.Render(v.String())
	}
	for _, a := range accounts {
		fmt.Fprintln(w, line(a.Name, fintrack.M(a.Balance(), currency)))
	}
	fmt.Fprintln(w, totalStyle.Render(line("Total", fintrack.M(fintrack.TotalBalance(accounts), currency))))
}

func (c *balancesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	err := withApp(func(a *app) error {
		show := func() error {
			accounts, err := a.ledger.Accounts()
			if err != nil {
				return err
			}
			printBalances(stdout, accounts, a.currency())
			return nil
		}
		if err := show(); err != nil {
			return err
		}
		if !c.watch {
			return nil
		}
		dir, ok := watchDir(a.store)
		if !ok {
			return errors.New("-watch needs the file or sqlite store")
		}
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
		defer stop()
		return watch(ctx, dir, a.log, func() {
			fmt.Fprint(stdout, "\033[H\033[2J")
			fmt.Fprintf(stdout, "%s\n\n", infoStyle.Render(time.Now().Format("15:04:05")))
			if err := show(); err != nil {
				printError(os.Stderr, err.Error())
			}
		})
	})
	if err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

// watchDir returns the directory holding the store files.
func watchDir(s kv.Store) (string, bool) {
	switch s := s.(type) {
	case *kv.File:
		return s.Dir(), true
	case *kv.SQLite:
		return filepath.Dir(s.Path()), true
	default:
		return "", false
	}
}

// debounceDelay groups the events of a single save, atomic writes touch
// several files.
const debounceDelay = 150 * time.Millisecond

// watch calls changed after every burst of changes in dir, until ctx is done.
func watch(ctx context.Context, dir string, log *zap.Logger, changed func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	// changed runs on this goroutine, so it never outlives watch.
	var debounce *time.Timer
	var fire <-chan time.Time
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-fire:
			fire = nil
			changed()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if debounce == nil {
				debounce = time.NewTimer(debounceDelay)
			} else {
				debounce.Reset(debounceDelay)
			}
			fire = debounce.C
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("file watcher error", zap.Error(err))
		}
	}
}
