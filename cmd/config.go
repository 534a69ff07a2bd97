package cmd

import (
	"context"
	"flag"
	"fmt"

	"github.com/etnz/fintrack/config"
	"github.com/google/subcommands"
)

type configCmd struct {
	save bool
}

func (*configCmd) Name() string     { return "config" }
func (*configCmd) Synopsis() string { return "show the effective configuration" }
func (*configCmd) Usage() string {
	return `fin config [-save]

  Prints the configuration after defaults, file and environment are merged.
  With -save, writes it to the configuration file.
`
}

func (c *configCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.save, "save", false, "Write the effective configuration to the configuration file.")
}

func (c *configCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := config.Load()
	if err != nil {
		return fail(err)
	}
	key := "not set"
	if cfg.LLM.Key() != "" {
		key = "set"
	}
	fmt.Fprintf(stdout, "file:       %s\n", config.Path())
	fmt.Fprintf(stdout, "store:      %s %s\n", cfg.Store.Backend, cfg.Store.Location())
	fmt.Fprintf(stdout, "model:      %s (API key %s, from %s)\n", cfg.LLM.Model, key, cfg.LLM.APIKeyEnv)
	fmt.Fprintf(stdout, "attempts:   %d of %s\n", cfg.LLM.Attempts, cfg.LLM.Timeout)
	fmt.Fprintf(stdout, "synthesize: %t\n", cfg.LLM.Synthesize)
	fmt.Fprintf(stdout, "currency:   %s\n", cfg.UI.Currency)
	fmt.Fprintf(stdout, "recurring:  every %s\n", cfg.Recurring.Interval)
	fmt.Fprintf(stdout, "log level:  %s\n", cfg.Log.Level)
	if c.save {
		// The key stays in the environment.
		cfg.LLM.APIKey = ""
		if err := config.Save(cfg); err != nil {
			return fail(err)
		}
		printSuccess(stdout, "Saved "+config.Path())
	}
	return subcommands.ExitSuccess
}
