package cmd

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/etnz/fintrack"
	"github.com/etnz/fintrack/assistant"
	"github.com/google/subcommands"
)

type chatCmd struct {
	noRecurring bool
}

func (*chatCmd) Name() string     { return "chat" }
func (*chatCmd) Synopsis() string { return "talk to the assistant to update the ledger" }
func (*chatCmd) Usage() string {
	return `fin chat [-no-recurring] [message...]

  With a message, sends it to the assistant, prints the reply and exits.
  Without, starts an interactive session. Type /accounts to see the balances,
  /clear to forget the conversation and /quit to leave. Ctrl-C cancels the
  message being processed.

  While the session is open, due recurring entries are applied in the
  background.
`
}

func (c *chatCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.noRecurring, "no-recurring", false, "Do not apply recurring entries during the session.")
}

func (c *chatCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	err := withApp(func(a *app) error {
		bot, err := a.assistant(ctx)
		if err != nil {
			return err
		}
		if f.NArg() > 0 {
			reply := send(ctx, bot, strings.Join(f.Args(), " "), nil)
			printReply(stdout, reply.Chat, reply.Error)
			return nil
		}

		if !c.noRecurring {
			sctx, stop := context.WithCancel(ctx)
			defer stop()
			scheduler := &fintrack.Scheduler{
				Ledger:   a.ledger,
				Interval: a.cfg.Recurring.Interval,
				Logger:   a.log,
				OnApply: func(applied []fintrack.Applied) {
					a.auditApplied(applied)
					for _, ap := range applied {
						printInfof(stdout, "recurring entry applied: %s on %s", fintrack.M(ap.Transaction.Signed(), a.currency()).SignedString(), ap.On.Display())
					}
				},
			}
			go scheduler.Run(sctx)
		}
		return repl(ctx, a, bot, os.Stdin, stdout)
	})
	if err != nil {
		return fail(err)
	}
	return subcommands.ExitSuccess
}

// send hands message to the assistant. Ctrl-C cancels it.
func send(ctx context.Context, bot *assistant.Assistant, message string, history []assistant.Turn) assistant.Reply {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	reply := bot.HandleFinanceChat(ctx, message, history)
	if reply.Canceled {
		reply.Chat = "Canceled."
		reply.Error = true
	}
	return reply
}

// repl runs the interactive session until /quit or the end of in.
func repl(ctx context.Context, a *app, bot *assistant.Assistant, in io.Reader, out io.Writer) error {
	printInfof(out, "Tell me about your spending, income or accounts. /quit to leave.")
	var history []assistant.Turn
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, userStyle.Render("you> "))
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		message := strings.TrimSpace(scanner.Text())
		switch message {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/clear":
			history = nil
			printInfof(out, "Conversation cleared.")
			continue
		case "/accounts":
			accounts, err := a.ledger.Accounts()
			if err != nil {
				printError(out, err.Error())
				continue
			}
			printBalances(out, accounts, a.currency())
			continue
		}

		reply := send(ctx, bot, message, history)
		printReply(out, reply.Chat, reply.Error)
		if reply.Canceled {
			continue
		}
		history = append(history,
			assistant.Turn{Role: "user", Text: message},
			assistant.Turn{Role: "assistant", Text: reply.Chat},
		)
		if ctx.Err() != nil {
			return nil
		}
	}
}
