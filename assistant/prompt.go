package assistant

import (
	_ "embed"
	"encoding/json"
	"strings"
	"text/template"
	"time"

	"github.com/etnz/fintrack"
	"github.com/etnz/fintrack/docs"
	"github.com/shopspring/decimal"
)

//go:embed prompt.tmpl
var promptTemplate string

var commandPrompt = template.Must(template.New("prompt").Parse(promptTemplate))

// HistoryTurns is the number of previous turns sent along with a message.
const HistoryTurns = 5

// Turn is one message of the conversation.
type Turn struct {
	Role string `json:"role"` // "user" or "assistant"
	Text string `json:"text"`
}

// recent returns the last HistoryTurns turns.
func recent(history []Turn) []Turn {
	if len(history) > HistoryTurns {
		return history[len(history)-HistoryTurns:]
	}
	return history
}

type txSummary struct {
	Amount decimal.Decimal `json:"amount"`
	Type   fintrack.Kind   `json:"type"`
	Date   string          `json:"date"`
	Note   string          `json:"note"`
}

type accountSummary struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Total           decimal.Decimal `json:"total"`
	LastTransaction *txSummary      `json:"lastTransaction"`
}

// summarize describes each account by its id, name, balance and most recent
// transaction.
func summarize(snapshot fintrack.Snapshot) []accountSummary {
	out := make([]accountSummary, 0, len(snapshot))
	for _, a := range snapshot {
		s := accountSummary{ID: a.ID, Name: a.Name, Total: a.Balance()}
		if last, ok := a.Last(); ok {
			s.LastTransaction = &txSummary{
				Amount: last.Amount,
				Type:   last.Kind,
				Date:   last.Date.Format("2006-01-02"),
				Note:   last.Note,
			}
		}
		out = append(out, s)
	}
	return out
}

// buildPrompt renders the prompt asking the model to translate message into
// actions.
func buildPrompt(message string, history []Turn, snapshot fintrack.Snapshot, now time.Time, currency string) (string, error) {
	accounts, err := json.Marshal(summarize(snapshot))
	if err != nil {
		return "", err
	}
	var hist string
	if h := recent(history); len(h) > 0 {
		b, err := json.Marshal(h)
		if err != nil {
			return "", err
		}
		hist = string(b)
	}
	quoted, _ := json.Marshal(message)
	schema, err := docs.GetTopic("actions")
	if err != nil {
		return "", err
	}
	data := struct {
		Currency, Date, Accounts, History, Message, Schema string
	}{
		Currency: currency,
		Date:     now.Format("2006-01-02"),
		Accounts: string(accounts),
		History:  hist,
		Message:  string(quoted),
		Schema:   strings.TrimSpace(schema),
	}
	var b strings.Builder
	if err := commandPrompt.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
