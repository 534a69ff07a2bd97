package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/subcommands"
	"golang.org/x/term"
)

var (
	successSymbol = "✓"
	errorSymbol   = "✗"
	infoSymbol    = "→"

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#00A86B", Dark: "#00D787"})
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#D7005F", Dark: "#FF5F87"})
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#0087D7", Dark: "#5FAFFF"})
	userStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#5F00AF", Dark: "#AF87FF"})
	botStyle     = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#303030", Dark: "#E4E4E4"})
)

func printSuccess(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", successStyle.Render(successSymbol), message)
}

func printError(w io.Writer, message string) {
	_, _ = fmt.Fprintf(w, "%s %s\n", errorStyle.Render(errorSymbol), errorStyle.Render(message))
}

func printInfof(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, "%s %s\n", infoStyle.Render(infoSymbol), fmt.Sprintf(format, args...))
}

// fail reports err on stderr and returns the failure status.
func fail(err error) subcommands.ExitStatus {
	printError(os.Stderr, "Error: "+err.Error())
	return subcommands.ExitFailure
}

// printReply prints a reply from the assistant, in red when it is an error.
func printReply(w io.Writer, chat string, isError bool) {
	if isError {
		_, _ = fmt.Fprintln(w, errorStyle.Render(chat))
		return
	}
	_, _ = fmt.Fprintln(w, botStyle.Render(chat))
}

var isTerminal = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }

// confirm asks a yes/no question. It returns false when stdin is not a
// terminal.
func confirm(question string) (bool, error) {
	if !isTerminal() {
		return false, nil
	}
	var ok bool
	err := huh.NewConfirm().
		Title(question).
		Affirmative("Yes").
		Negative("No").
		WithButtonAlignment(lipgloss.Left).
		Value(&ok).
		Run()
	if err != nil {
		return false, fmt.Errorf("failed to read response: %w", err)
	}
	return ok, nil
}

// darkMode selects the markdown style. It is read from the ledger when the
// app opens.
var darkMode bool

// printMarkdown renders md for the terminal, or prints it as is when stdout
// is not a terminal.
func printMarkdown(md string) {
	if stdout != io.Writer(os.Stdout) || !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprint(stdout, md)
		return
	}
	style := styles.LightStyle
	if darkMode {
		style = styles.DarkStyle
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(100),
		glamour.WithEmoji(),
	)
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Fprint(stdout, md)
		return
	}
	fmt.Fprint(stdout, strings.TrimLeft(out, "\n"))
}
