package cmd

import (
	"context"
	"flag"
	"fmt"
	"slices"
	"strings"

	"github.com/etnz/fintrack/docs"
	"github.com/google/subcommands"
)

type topicCmd struct {
	list bool
}

func (*topicCmd) Name() string     { return "topic" }
func (*topicCmd) Synopsis() string { return "show documentation" }
func (*topicCmd) Usage() string {
	return `fin topic [-list] [<topic>...]

  Shows the given documentation topics, '*' for all of them. Without a
  topic, shows the introduction and the list of topics. With -list, prints
  one topic per line with its title.
`
}

func (c *topicCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.list, "list", false, "Print the topic names and titles only.")
}

// title returns the first heading of a topic.
func title(content string) string {
	for line := range strings.Lines(content) {
		if h, ok := strings.CutPrefix(line, "# "); ok {
			return strings.TrimSpace(h)
		}
	}
	return ""
}

func (c *topicCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	all, err := docs.GetAllTopics()
	if err != nil {
		return fail(err)
	}
	if c.list {
		for _, name := range all {
			content, err := docs.GetTopic(name)
			if err != nil {
				return fail(err)
			}
			fmt.Fprintf(stdout, "%-10s %s\n", name, title(content))
		}
		return subcommands.ExitSuccess
	}

	topics := f.Args()
	if len(topics) == 0 {
		topics = []string{"readme"}
	}
	for _, name := range topics {
		if name != "*" && name != "readme" && !slices.Contains(all, name) {
			return fail(fmt.Errorf("unknown topic %q. Available topics: %s", name, strings.Join(all, ", ")))
		}
	}
	doc, err := docs.GetTopics(topics...)
	if err != nil {
		return fail(err)
	}
	printMarkdown(doc)
	return subcommands.ExitSuccess
}
