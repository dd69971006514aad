package inject

import (
	"context"
	"sync"

	"github.com/fieldbot/drivecore/robot"
)

// Lifecycle is an injected robot lifecycle that records the order of calls made to it.
type Lifecycle struct {
	robot.Lifecycle
	InitFunc   func(ctx context.Context, mode robot.RunMode) error
	UpdateFunc func(ctx context.Context, mode robot.RunMode) error
	ResetFunc  func(ctx context.Context) error

	mu    sync.Mutex
	calls []string
}

func (l *Lifecycle) record(call string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, call)
}

// Calls returns the recorded calls as "init:<mode>", "update:<mode>" or "reset".
func (l *Lifecycle) Calls() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

// Init calls the injected Init or the real version.
func (l *Lifecycle) Init(ctx context.Context, mode robot.RunMode) error {
	l.record("init:" + mode.String())
	if l.InitFunc != nil {
		return l.InitFunc(ctx, mode)
	}
	if l.Lifecycle != nil {
		return l.Lifecycle.Init(ctx, mode)
	}
	return nil
}

// Update calls the injected Update or the real version.
func (l *Lifecycle) Update(ctx context.Context, mode robot.RunMode) error {
	l.record("update:" + mode.String())
	if l.UpdateFunc != nil {
		return l.UpdateFunc(ctx, mode)
	}
	if l.Lifecycle != nil {
		return l.Lifecycle.Update(ctx, mode)
	}
	return nil
}

// Reset calls the injected Reset or the real version.
func (l *Lifecycle) Reset(ctx context.Context) error {
	l.record("reset")
	if l.ResetFunc != nil {
		return l.ResetFunc(ctx)
	}
	if l.Lifecycle != nil {
		return l.Lifecycle.Reset(ctx)
	}
	return nil
}
