package cmd

import (
	"flag"

	"github.com/etnz/fintrack/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// accountNames predicts account names from the ledger.
var accountNames = complete.PredictFunc(func(prefix string) []string {
	var names []string
	_ = withApp(func(a *app) error {
		accounts, err := a.ledger.Accounts()
		for _, acc := range accounts {
			names = append(names, acc.Name)
		}
		return err
	})
	return names
})

// argPredictors are the positional argument predictors, by command name.
var argPredictors = map[string]complete.Predictor{
	"account-delete": accountNames,
	"tx":             accountNames,
	"dark-mode":      predict.Set{"on", "off"},
}

// flagPredictors are the flag value predictors that differ from Something.
var flagPredictors = map[string]complete.Predictor{
	"a":      accountNames,
	"type":   predict.Set{"debit", "credit", "expense", "income"},
	"every":  predict.Set{"monthly", "yearly"},
	"period": predict.Set{"month", "year"},
}

// Completion returns the shell completion of the fin command line.
func Completion() *complete.Command {
	root := &complete.Command{
		Sub:   map[string]*complete.Command{},
		Flags: flags(flag.CommandLine),
	}
	topics, _ := docs.GetAllTopics()
	argPredictors["topic"] = predict.Set(topics)

	for _, cmds := range Commands {
		for _, c := range cmds {
			fs := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
			c.SetFlags(fs)
			root.Sub[c.Name()] = &complete.Command{
				Flags: flags(fs),
				Args:  argPredictors[c.Name()],
			}
		}
	}
	return root
}

// flags returns the predictors of the flags in fs.
func flags(fs *flag.FlagSet) map[string]complete.Predictor {
	out := map[string]complete.Predictor{}
	fs.VisitAll(func(f *flag.Flag) {
		if b, ok := f.Value.(interface{ IsBoolFlag() bool }); ok && b.IsBoolFlag() {
			out[f.Name] = predict.Nothing
			return
		}
		if p, ok := flagPredictors[f.Name]; ok {
			out[f.Name] = p
			return
		}
		out[f.Name] = predict.Something
	})
	return out
}
