package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/etnz/fintrack/audit"
)

// Synthesizer turns the outcomes of a batch into the reply to the user.
type Synthesizer struct {
	Completer Completer     // optional, the numbered list is the reply when nil
	Audit     *audit.Logger // optional
	Timeout   time.Duration // bounds the model call, none when zero
}

// nothingToDo is the reply to a batch without actions.
const nothingToDo = "❗ I couldn't understand that. Please try rephrasing."

// Numbered lists the outcomes, one per line. Failures start with "❗" and
// successful changes to the ledger with "✓".
func Numbered(res Result) string {
	var b strings.Builder
	for i, o := range res.Outcomes {
		if i > 0 {
			b.WriteByte('\n')
		}
		summary := o.Summary
		switch {
		case o.Failed() && !strings.HasPrefix(summary, "❗"):
			summary = "❗ " + summary
		case !o.Failed() && o.Mutated:
			summary = "✓ " + summary
		}
		fmt.Fprintf(&b, "%d. %s", i+1, summary)
	}
	return b.String()
}

// conversational reports whether the batch only talks to the user.
func conversational(res Result) bool {
	for _, o := range res.Outcomes {
		switch o.Action.(type) {
		case AskUser, InformUser:
		default:
			return false
		}
	}
	return true
}

// Reply returns the reply for res.
//
// Messages for the user (ask_user, inform_user) are returned as they are.
// Otherwise the model phrases the numbered outcomes, and the numbered
// outcomes are the reply when that fails. Every outcome, failed or not, is
// part of the reply.
func (s *Synthesizer) Reply(ctx context.Context, res Result) string {
	if len(res.Outcomes) == 0 {
		return nothingToDo
	}
	if conversational(res) {
		msgs := make([]string, 0, len(res.Outcomes))
		for _, o := range res.Outcomes {
			if o.Summary != "" {
				msgs = append(msgs, o.Summary)
			}
		}
		if len(msgs) == 0 {
			return nothingToDo
		}
		return strings.Join(msgs, "\n")
	}

	list := Numbered(res)
	if s.Completer == nil {
		return list
	}
	accounts, err := json.Marshal(summarize(res.Snapshot))
	if err != nil {
		s.Audit.Error("Error encoding accounts for summary", err, nil)
		return list
	}
	prompt := fmt.Sprintf(summaryPrompt, list, accounts)
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	text, err := s.Completer.Complete(ctx, prompt)
	if err != nil {
		s.Audit.Error("Error getting chat reply for summary", err, nil)
		return list
	}
	text = strings.TrimSpace(text)
	if text == "" {
		s.Audit.Error("Empty chat reply for summary", nil, nil)
		return list
	}
	s.Audit.Log(audit.TypeSummary, audit.Event{"outcomes": list, "reply": text})
	return text
}

const summaryPrompt = `The following actions were just performed in a finance app:
%s

Lines starting with ❗ are actions that failed, lines starting with ✓ changed the accounts.

Here is the updated list of accounts: %s

Reply to the user with a friendly, concise message in plain text (no JSON, no code) summarizing what happened. Mention every failed action and why it failed. Do not mention anything that is not in the list above. Do not mention that you are an AI.`
