package renderer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/etnz/fintrack/audit"
)

// Logs is the view of the audit trail.
type Logs struct {
	Events []LogLine `json:"events"`
}

// LogLine is one audit event.
type LogLine struct {
	Time   string `json:"time"`
	Type   string `json:"type"`
	Detail string `json:"detail"`
}

// maxValue is the longest field value shown in a log line.
const maxValue = 80

// NewLogs creates the view of events, newest first.
func NewLogs(events []audit.Event) *Logs {
	v := &Logs{Events: make([]LogLine, 0, len(events))}
	for i := len(events) - 1; i >= 0; i-- {
		e := events[i]
		line := LogLine{Type: e.Type(), Detail: detail(e)}
		if ts := e.Timestamp(); !ts.IsZero() {
			line.Time = ts.Local().Format("2006-01-02 15:04:05")
		}
		v.Events = append(v.Events, line)
	}
	return v
}

// detail formats the fields of e as key=value pairs, sorted by key.
func detail(e audit.Event) string {
	keys := make([]string, 0, len(e))
	for k := range e {
		if k != "type" && k != "timestamp" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		var s string
		switch v := e[k].(type) {
		case string:
			s = fmt.Sprintf("%q", truncate(v))
		default:
			s = truncate(fmt.Sprint(v))
		}
		parts = append(parts, k+"="+s)
	}
	return escapeCell(strings.Join(parts, " "))
}

func truncate(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > maxValue {
		return string(r[:maxValue-1]) + "…"
	}
	return s
}

// escapeCell makes s safe in a markdown table cell.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}
