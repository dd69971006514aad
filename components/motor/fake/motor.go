// Package fake implements a fake motor.
package fake

import (
	"context"
	"math"
	"sync"

	"github.com/fieldbot/drivecore/components/motor"
	"github.com/fieldbot/drivecore/logging"
)

var _ motor.Motor = &Motor{}

// A Motor allows setting and reading a set power percentage and direction.
type Motor struct {
	Name   string
	Logger logging.Logger

	mu       sync.Mutex
	powerPct float64
	stops    int
	err      error
}

// SetPower sets the given power percentage.
func (m *Motor) SetPower(ctx context.Context, powerPct float64, extra map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	if m.Logger != nil {
		m.Logger.Debugw("set power", "motor", m.Name, "power_pct", powerPct)
	}
	m.powerPct = powerPct
	return nil
}

// Stop has the motor pretend to be off.
func (m *Motor) Stop(ctx context.Context, extra map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.powerPct = 0
	m.stops++
	return nil
}

// IsPowered returns if the motor is pretending to be on or not, and its power level.
func (m *Motor) IsPowered(ctx context.Context, extra map[string]interface{}) (bool, float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return math.Abs(m.powerPct) >= 0.005, m.powerPct, nil
}

// PowerPct returns the set power percentage.
func (m *Motor) PowerPct() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.powerPct
}

// Direction returns the set direction.
func (m *Motor) Direction() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case m.powerPct > 0:
		return 1
	case m.powerPct < 0:
		return -1
	}
	return 0
}

// Stops is the number of Stop calls that succeeded.
func (m *Motor) Stops() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stops
}

// Fail makes every subsequent call return err until cleared with nil.
func (m *Motor) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}
