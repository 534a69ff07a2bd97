package assistant

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/etnz/fintrack"
	"github.com/etnz/fintrack/audit"
)

// Batch is the ordered list of actions derived from one model response.
type Batch struct {
	Actions  []Action
	Snapshot fintrack.Snapshot // the ledger state the prompt was built from
	Raw      string            // the model response
}

// Interpreter translates a chat message into actions with a language model.
type Interpreter struct {
	Completer Completer
	Audit     *audit.Logger    // optional
	Now       func() time.Time // time.Now when nil
	Currency  string           // fintrack.DefaultCurrency when empty
}

// Interpret asks the model which actions message calls for.
//
// An empty answer fails with an EmptyResponse InterpreterError, an answer
// that is not JSON with a MalformedResponse one. Any completion failure,
// including ctx expiry, is a NetworkError.
func (in *Interpreter) Interpret(ctx context.Context, message string, history []Turn, snapshot fintrack.Snapshot) (Batch, error) {
	now := time.Now
	if in.Now != nil {
		now = in.Now
	}
	currency := in.Currency
	if currency == "" {
		currency = fintrack.DefaultCurrency
	}
	prompt, err := buildPrompt(message, history, snapshot, now(), currency)
	if err != nil {
		return Batch{}, err
	}

	raw, err := in.Completer.Complete(ctx, prompt)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err != nil {
		in.Audit.Error("Completion failed", err, audit.Event{"userMessage": message})
		return Batch{}, &NetworkError{Err: err}
	}
	if strings.TrimSpace(raw) == "" {
		in.Audit.Error("Empty response from model", nil, audit.Event{"userMessage": message})
		return Batch{}, &InterpreterError{Reason: EmptyResponse}
	}

	actions, err := DecodeActions([]byte(ExtractJSON(raw)))
	if err != nil {
		in.Audit.Error("Failed to parse JSON response", err, audit.Event{"rawText": raw})
		return Batch{}, &InterpreterError{Reason: MalformedResponse, Raw: raw, Err: err}
	}
	kinds := make([]string, len(actions))
	for i, a := range actions {
		kinds[i] = a.Kind()
	}
	in.Audit.Log(audit.TypeAIResponse, audit.Event{"rawText": raw, "actions": kinds})
	return Batch{Actions: actions, Snapshot: snapshot, Raw: raw}, nil
}

var fenced = regexp.MustCompile("(?s)```(?:json|JSON)?(.*?)```")

// ExtractJSON returns the content of the first fenced code block of text, or
// the whole trimmed text when there is none.
func ExtractJSON(text string) string {
	if m := fenced.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(text)
}
