package assistant

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/etnz/fintrack"
	"github.com/etnz/fintrack/audit"
	"github.com/etnz/fintrack/kv"
	"github.com/shopspring/decimal"
)

var testNow = time.Date(2025, time.July, 14, 9, 30, 0, 0, time.UTC)

// script is a Completer answering with a fixed list of responses, in order.
// Once exhausted, it repeats the last one.
type script struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	prompts   []string
}

func (s *script) Complete(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := max(len(s.responses), len(s.errs))
	i := min(len(s.prompts), n-1)
	s.prompts = append(s.prompts, prompt)
	var resp string
	var err error
	if i >= 0 && i < len(s.responses) {
		resp = s.responses[i]
	}
	if i >= 0 && i < len(s.errs) {
		err = s.errs[i]
	}
	return resp, err
}

func (s *script) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

type fixture struct {
	store  *kv.Memory
	ledger *fintrack.Ledger
	audit  *audit.Logger
	cash   fintrack.Account
	bank   fintrack.Account
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := kv.NewMemory()
	ledger := fintrack.NewLedger(store)
	if err := ledger.Init(); err != nil {
		t.Fatal(err)
	}
	log, err := audit.New(store, nil)
	if err != nil {
		t.Fatal(err)
	}
	f := &fixture{store: store, ledger: ledger, audit: log}
	f.cash, _ = ledger.CreateAccount("Cash")
	f.bank, _ = ledger.CreateAccount("Bank")
	if _, err := ledger.AddTransaction(f.bank.ID, fintrack.Transaction{Amount: decimal.NewFromInt(10000), Kind: fintrack.Credit, Date: testNow}); err != nil {
		t.Fatal(err)
	}
	return f
}

func (f *fixture) snapshot(t *testing.T) fintrack.Snapshot {
	t.Helper()
	s, err := f.ledger.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func (f *fixture) balance(t *testing.T, id string) string {
	t.Helper()
	a, err := f.ledger.Account(id)
	if err != nil {
		t.Fatal(err)
	}
	return a.Balance().String()
}

func (f *fixture) executor() *Executor {
	return &Executor{Ledger: f.ledger, Audit: f.audit, Now: func() time.Time { return testNow }}
}

func (f *fixture) assistant(c Completer) *Assistant {
	return New(f.ledger, c, f.audit, Options{
		Now:    func() time.Time { return testNow },
		Policy: Policy{Attempts: 3, Timeout: time.Second},
	})
}

func (f *fixture) events(t *testing.T, typ string) []audit.Event {
	t.Helper()
	all, err := f.audit.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	var out []audit.Event
	for _, e := range all {
		if e.Type() == typ {
			out = append(out, e)
		}
	}
	return out
}

func TestRetry(t *testing.T) {
	t.Run("stops after the attempts", func(t *testing.T) {
		calls := 0
		boom := errors.New("boom")
		_, err := Retry(context.Background(), Policy{Attempts: 3}, func(ctx context.Context, attempt int) (int, error) {
			calls++
			if attempt != calls {
				t.Errorf("attempt = %d, want %d", attempt, calls)
			}
			return 0, boom
		})
		if !errors.Is(err, boom) {
			t.Errorf("Retry() error = %v, want boom", err)
		}
		if calls != 3 {
			t.Errorf("fn called %d times, want 3", calls)
		}
	})

	t.Run("returns the first success", func(t *testing.T) {
		calls := 0
		got, err := Retry(context.Background(), DefaultPolicy, func(ctx context.Context, attempt int) (string, error) {
			calls++
			if attempt < 2 {
				return "", errors.New("not yet")
			}
			return "ok", nil
		})
		if err != nil || got != "ok" || calls != 2 {
			t.Errorf("Retry() = %q, %v after %d calls", got, err, calls)
		}
	})

	t.Run("each attempt has its own timeout", func(t *testing.T) {
		calls := 0
		_, err := Retry(context.Background(), Policy{Attempts: 2, Timeout: 10 * time.Millisecond}, func(ctx context.Context, attempt int) (int, error) {
			calls++
			<-ctx.Done()
			return 0, ctx.Err()
		})
		if !errors.Is(err, context.DeadlineExceeded) || calls != 2 {
			t.Errorf("Retry() error = %v after %d calls", err, calls)
		}
	})

	t.Run("stops when the context is done", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		_, err := Retry(ctx, Policy{Attempts: 5}, func(ctx context.Context, attempt int) (int, error) {
			calls++
			cancel()
			return 0, errors.New("failed")
		})
		if !errors.Is(err, context.Canceled) || calls != 1 {
			t.Errorf("Retry() error = %v after %d calls", err, calls)
		}
	})
}
