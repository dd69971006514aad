package robot

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/atomic"

	"github.com/fieldbot/drivecore/logging"
	"github.com/fieldbot/drivecore/utils"
)

// MaxFrequencyHz is the fastest a Loop may tick.
const MaxFrequencyHz = 200

// Loop plays the part of the outer robot framework: it calls Init when a mode is entered, Update
// at a fixed rate while in it and Reset when it is left. Every lifecycle call is made with the
// loop's lock held, so the lifecycle sees a single caller.
type Loop struct {
	lifecycle Lifecycle
	period    time.Duration
	clock     clock.Clock
	logger    logging.Logger

	mu      sync.Mutex
	mode    RunMode
	entered bool
	workers utils.StoppableWorkers

	ticks  atomic.Uint64
	errors atomic.Uint64
}

// NewLoop returns a stopped loop that ticks lifecycle hz times per second on clk. A nil clk uses
// the wall clock.
func NewLoop(lifecycle Lifecycle, hz float64, clk clock.Clock, logger logging.Logger) (*Loop, error) {
	if lifecycle == nil {
		return nil, utils.NewConfigurationError("no lifecycle to drive")
	}
	if math.IsNaN(hz) || hz <= 0 || hz > MaxFrequencyHz {
		return nil, utils.NewConfigurationError("loop frequency %v Hz outside (0, %d]", hz, MaxFrequencyHz)
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Loop{
		lifecycle: lifecycle,
		period:    time.Duration(float64(time.Second) / hz),
		clock:     clk,
		logger:    logger,
	}, nil
}

// Period is the time between ticks.
func (l *Loop) Period() time.Duration {
	return l.period
}

// SetMode leaves the current mode with Reset and enters mode with Init. If Init fails the loop
// stays out of every mode and ticks are skipped until a later SetMode succeeds.
func (l *Loop) SetMode(ctx context.Context, mode RunMode) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.entered {
		if err := l.lifecycle.Reset(ctx); err != nil {
			l.logger.Warnw("reset failed", "mode", l.mode, "error", err)
		}
		l.entered = false
	}

	if err := l.lifecycle.Init(ctx, mode); err != nil {
		l.logger.Errorw("init failed", "mode", mode, "error", err)
		return err
	}
	l.logger.Infow("mode entered", "from", l.mode, "to", mode)
	l.mode = mode
	l.entered = true
	return nil
}

// Mode returns the current mode and whether it was entered successfully.
func (l *Loop) Mode() (RunMode, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.mode, l.entered
}

// Start begins ticking. Starting a running loop is an error.
func (l *Loop) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.workers != nil {
		return utils.NewConfigurationError("loop already started")
	}

	// The ticker exists before Start returns so no tick is lost to goroutine scheduling.
	ticker := l.clock.Ticker(l.period)
	l.workers = utils.NewStoppableWorkers(func(ctx context.Context) {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.tick(ctx)
			}
		}
	})
	l.logger.Debugw("loop started", "period", l.period)
	return nil
}

func (l *Loop) tick(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.entered {
		return
	}
	l.ticks.Inc()
	if err := l.lifecycle.Update(ctx, l.mode); err != nil {
		l.errors.Inc()
	}
}

// Stop halts ticking and waits for the in-flight tick, then resets the current mode. It is safe
// to call on a stopped loop.
func (l *Loop) Stop(ctx context.Context) error {
	l.mu.Lock()
	workers := l.workers
	l.workers = nil
	l.mu.Unlock()
	if workers == nil {
		return nil
	}
	workers.Stop()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.Debugw("loop stopped", "ticks", l.ticks.Load(), "failed_ticks", l.errors.Load())
	if !l.entered {
		return nil
	}
	l.entered = false
	return l.lifecycle.Reset(ctx)
}

// Ticks is the number of updates issued.
func (l *Loop) Ticks() uint64 {
	return l.ticks.Load()
}

// FailedTicks is the number of updates that returned an error.
func (l *Loop) FailedTicks() uint64 {
	return l.errors.Load()
}
