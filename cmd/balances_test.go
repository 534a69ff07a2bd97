package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/etnz/fintrack"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func TestPrintBalances(t *testing.T) {
	accounts := []fintrack.Account{
		{Name: "Cash", Transactions: []fintrack.Transaction{{Amount: decimal.NewFromInt(500), Kind: fintrack.Credit}}},
		{Name: "Card", Transactions: []fintrack.Transaction{{Amount: decimal.NewFromInt(800), Kind: fintrack.Debit}}},
	}
	var out bytes.Buffer
	printBalances(&out, accounts, "INR")
	for _, want := range []string{"Cash", "₹500.00", "Card", "-₹800.00", "Total", "-₹300.00"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output does not contain %q:\n%s", want, out.String())
		}
	}
}

func TestWatch_CallbackEndsBeforeReturn(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	started := make(chan struct{}, 1)
	var finished atomic.Bool
	errc := make(chan error, 1)
	go func() {
		errc <- watch(ctx, dir, zap.NewNop(), func() {
			select {
			case started <- struct{}{}:
			default:
			}
			time.Sleep(100 * time.Millisecond)
			finished.Store(true)
		})
	}()

	// give the watcher time to register the directory.
	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "accounts.json"), []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("changed was not called after a write")
	}
	cancel()
	if err := <-errc; err != nil {
		t.Fatalf("watch() error = %v", err)
	}
	if !finished.Load() {
		t.Error("watch() returned while changed was still running")
	}
}
