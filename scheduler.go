package fintrack

import (
	"context"
	"time"

	"github.com/etnz/fintrack/date"
	"go.uber.org/zap"
)

// DefaultSchedulerInterval is how often a Scheduler looks for due entries.
const DefaultSchedulerInterval = time.Hour

// Scheduler applies due recurring entries in the background.
type Scheduler struct {
	Ledger   *Ledger
	Interval time.Duration    // DefaultSchedulerInterval when zero
	Logger   *zap.Logger      // optional
	Today    func() date.Date // date.Today when nil
	OnApply  func([]Applied)  // optional, called after each run that applied entries
}

// Run processes due entries immediately, then on every tick until ctx is
// cancelled. It returns ctx.Err().
func (s *Scheduler) Run(ctx context.Context) error {
	interval := s.Interval
	if interval <= 0 {
		interval = DefaultSchedulerInterval
	}
	s.tick()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.tick()
		}
	}
}

func (s *Scheduler) tick() {
	logger := s.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	today := date.Today
	if s.Today != nil {
		today = s.Today
	}
	applied, err := s.Ledger.ProcessDue(today())
	if err != nil {
		logger.Error("processing recurring entries", zap.Error(err))
		return
	}
	for _, a := range applied {
		logger.Info("recurring entry applied",
			zap.String("rule", a.RuleID),
			zap.String("account", a.AccountID),
			zap.Stringer("on", a.On),
			zap.String("amount", a.Transaction.Amount.String()),
		)
	}
	if len(applied) > 0 && s.OnApply != nil {
		s.OnApply(applied)
	}
}
