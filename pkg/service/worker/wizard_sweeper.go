package worker

import (
	"context"
	"time"

	"github.com/secmon-lab/themis/pkg/utils/logging"
)

// IdleSweeper closes wizard sessions that have not been used for a while
type IdleSweeper interface {
	SweepIdle(ctx context.Context, maxIdle time.Duration) int
}

// WizardSweeper periodically closes idle risk assessment wizards so that abandoned
// browser sessions do not keep their state forever.
//
// Wizards live in the memory of one server process, so no coordination between
// instances is needed.
type WizardSweeper struct {
	wizards  IdleSweeper
	interval time.Duration
	maxIdle  time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewWizardSweeper creates a worker closing wizards idle for maxIdle, checking every interval
func NewWizardSweeper(wizards IdleSweeper, interval, maxIdle time.Duration) *WizardSweeper {
	return &WizardSweeper{
		wizards:  wizards,
		interval: interval,
		maxIdle:  maxIdle,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the sweep loop in background
func (w *WizardSweeper) Start(ctx context.Context) error {
	logging.Default().Info("wizard sweeper starting",
		"interval", w.interval.String(),
		"max_idle", w.maxIdle.String())

	go w.run(ctx)

	return nil
}

// Stop signals the worker to stop and waits for completion
func (w *WizardSweeper) Stop() {
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("wizard sweeper stopped")
}

func (w *WizardSweeper) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.wizards.SweepIdle(ctx, w.maxIdle)

		case <-w.stopCh:
			return

		case <-ctx.Done():
			logging.Default().Info("wizard sweeper context cancelled")
			return
		}
	}
}
