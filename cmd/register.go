package cmd

import (
	"github.com/google/subcommands"
)

// Commands lists the fin subcommands by group.
var Commands = map[string][]subcommands.Command{
	"accounts": {
		&accountsCmd{},
		&accountAddCmd{},
		&accountDeleteCmd{},
		&balancesCmd{},
		&summaryCmd{},
	},
	"transactions": {
		&txCmd{},
		&txAddCmd{},
		&txDeleteCmd{},
	},
	"assistant": {
		&chatCmd{},
		&logsCmd{},
		&logsClearCmd{},
	},
	"recurring": {
		&recurringCmd{},
		&recurringAddCmd{},
		&recurringDeleteCmd{},
		&recurringRunCmd{},
	},
	"settings": {
		&configCmd{},
		&darkModeCmd{},
		&topicCmd{},
	},
}

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	for group, cmds := range Commands {
		for _, cmd := range cmds {
			c.Register(cmd, group)
		}
	}
}
