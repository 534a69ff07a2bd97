// Package audit records an append-only trail of what the assistant did: chat
// requests, model responses, executed actions and every caught error.
//
// Events are flat JSON objects with at least a "type" and a "timestamp" key,
// stored as one JSON array under the "finance_logs" key of a kv.Store. The
// trail is observational: a failure to record an event is reported to the
// application logger and never changes the caller's control flow.
package audit

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/etnz/fintrack/kv"
	"go.uber.org/zap"
)

// Key is the kv key holding the trail.
const Key = "finance_logs"

// timeFormat is the timestamp layout of events.
const timeFormat = "2006-01-02T15:04:05.000Z07:00"

// Event types written by the assistant.
const (
	TypeChatStart     = "chat_start"
	TypeAIResponse    = "ai_response"
	TypeAction        = "action"
	TypeActionResult  = "action_result"
	TypeUnknownAction = "unknown_action"
	TypeSummary       = "summary"
	TypeAccount       = "account"
	TypeRecurring     = "recurring"
	TypeError         = "error"
)

// Event is one entry of the trail.
type Event map[string]any

// Type returns the event type, or "" when missing.
func (e Event) Type() string {
	s, _ := e["type"].(string)
	return s
}

// Timestamp returns the time the event was recorded.
func (e Event) Timestamp() time.Time {
	s, _ := e["timestamp"].(string)
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

// Logger appends events to the trail. A nil *Logger discards everything.
type Logger struct {
	mu    sync.Mutex
	store kv.Store
	log   *zap.Logger
	now   func() time.Time
}

// New opens the trail in store, resetting it when the stored value is not a
// JSON array. log receives a copy of every event and may be nil.
func New(store kv.Store, log *zap.Logger) (*Logger, error) {
	if log == nil {
		log = zap.NewNop()
	}
	l := &Logger{store: store, log: log, now: time.Now}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.read(); err != nil {
		return nil, err
	}
	return l, nil
}

// SetClock replaces the clock used to timestamp events.
func (l *Logger) SetClock(now func() time.Time) { l.now = now }

// read returns the stored events. A missing trail is empty; a corrupted one
// is reset.
func (l *Logger) read() ([]Event, error) {
	b, err := l.store.Get(Key)
	if errors.Is(err, kv.ErrNotFound) {
		return []Event{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not read audit log: %w", err)
	}
	var events []Event
	if err := json.Unmarshal(b, &events); err != nil || events == nil {
		l.log.Warn("audit log is corrupted, resetting it", zap.Error(err))
		if err := l.store.Set(Key, []byte("[]")); err != nil {
			return nil, fmt.Errorf("could not reset audit log: %w", err)
		}
		return []Event{}, nil
	}
	return events, nil
}

func (l *Logger) write(events []Event) error {
	b, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("could not encode audit log: %w", err)
	}
	return l.store.Set(Key, b)
}

// Append records e with the current timestamp. The event map is not modified.
func (l *Logger) Append(e Event) error {
	if l == nil {
		return nil
	}
	entry := make(Event, len(e)+1)
	for k, v := range e {
		entry[k] = v
	}
	entry["timestamp"] = l.now().UTC().Format(timeFormat)
	l.mirror(entry)

	l.mu.Lock()
	defer l.mu.Unlock()
	events, err := l.read()
	if err == nil {
		err = l.write(append(events, entry))
	}
	if err != nil {
		l.log.Error("could not append audit event", zap.String("type", entry.Type()), zap.Error(err))
	}
	return err
}

// Log records an event of the given type with extra fields.
func (l *Logger) Log(typ string, fields Event) error {
	e := make(Event, len(fields)+1)
	for k, v := range fields {
		e[k] = v
	}
	e["type"] = typ
	return l.Append(e)
}

// Error records an error event. A "stack" entry in fields is kept as is.
func (l *Logger) Error(message string, err error, fields Event) error {
	e := make(Event, len(fields)+3)
	for k, v := range fields {
		e[k] = v
	}
	e["type"] = TypeError
	e["message"] = message
	if err != nil {
		e["error"] = err.Error()
	}
	return l.Append(e)
}

func (l *Logger) mirror(e Event) {
	keys := make([]string, 0, len(e))
	for k := range e {
		if k != "type" && k != "timestamp" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	fields := make([]zap.Field, 0, len(keys)+1)
	fields = append(fields, zap.String("type", e.Type()))
	for _, k := range keys {
		fields = append(fields, zap.Any(k, e[k]))
	}
	if e.Type() == TypeError {
		l.log.Error("audit", fields...)
		return
	}
	l.log.Info("audit", fields...)
}

// ReadAll returns every recorded event, oldest first.
func (l *Logger) ReadAll() ([]Event, error) {
	if l == nil {
		return nil, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.read()
}

// Clear empties the trail.
func (l *Logger) Clear() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.write([]Event{})
}

// Filter returns the events whose type, error or user message contains
// substr, ignoring case. An empty substr matches every event.
func (l *Logger) Filter(substr string) ([]Event, error) {
	events, err := l.ReadAll()
	if err != nil {
		return nil, err
	}
	substr = strings.ToLower(strings.TrimSpace(substr))
	if substr == "" {
		return events, nil
	}
	var out []Event
	for _, e := range events {
		for _, key := range []string{"type", "error", "userMessage"} {
			if s, ok := e[key].(string); ok && strings.Contains(strings.ToLower(s), substr) {
				out = append(out, e)
				break
			}
		}
	}
	return out, nil
}

// Query evaluates a JSONPath expression against the trail, seen as a JSON
// array of events. For instance `$[?(@.type=="error")].message` lists the
// messages of all errors.
func (l *Logger) Query(expr string) (any, error) {
	events, err := l.ReadAll()
	if err != nil {
		return nil, err
	}
	// jsonpath works on the generic decoding of the document.
	b, err := json.Marshal(events)
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	v, err := jsonpath.Get(expr, doc)
	if err != nil {
		return nil, fmt.Errorf("invalid query %q: %w", expr, err)
	}
	return v, nil
}
