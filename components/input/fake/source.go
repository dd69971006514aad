// Package fake implements a simulated controller input source.
package fake

import (
	"context"
	"math"
	"sync"

	"github.com/fieldbot/drivecore/components/input"
	"github.com/fieldbot/drivecore/utils"
)

// Source is an in-memory input.Source. Readings are set with Set, or generated per sample by
// Script when one is installed.
type Source struct {
	mu       sync.Mutex
	shape    input.Shape
	current  input.Snapshot
	err      error
	samples  int
	Script   func(sample int, shape input.Shape) input.Snapshot
	blocking bool
}

var _ input.Source = &Source{}

// NewSource returns a source reporting neutral readings of the given shape.
func NewSource(shape input.Shape) *Source {
	return &Source{shape: shape, current: input.NewSnapshot(shape)}
}

// Sample returns a copy of the current readings.
func (s *Source) Sample(ctx context.Context) (input.Snapshot, error) {
	s.mu.Lock()
	blocking := s.blocking
	s.mu.Unlock()
	if blocking {
		// Simulates a hung driver; only the caller's deadline gets us out.
		<-ctx.Done()
		return input.Snapshot{}, utils.NewSensorUnavailableError(ctx.Err(), "fake controller read")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return input.Snapshot{}, utils.NewSensorUnavailableError(err, "fake controller read")
	}
	if s.err != nil {
		return input.Snapshot{}, s.err
	}
	s.samples++
	if s.Script != nil {
		return s.Script(s.samples, s.shape), nil
	}
	return s.current.Clone(), nil
}

// Set replaces the readings returned by subsequent samples.
func (s *Source) Set(snapshot input.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = snapshot.Clone()
}

// SetAxis sets a single axis value.
func (s *Source) SetAxis(controller, axis int, value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.Controllers[controller].Axes[axis] = value
}

// SetButton sets a single button state.
func (s *Source) SetButton(controller, button int, pressed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current.Controllers[controller].Buttons[button] = pressed
}

// Fail makes subsequent samples return err. A nil err clears the failure.
func (s *Source) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Hang makes subsequent samples block until their context is done.
func (s *Source) Hang(hang bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocking = hang
}

// Samples is the number of successful samples taken.
func (s *Source) Samples() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.samples
}

// SweepScript drives every axis through a sine wave completing one cycle every period samples,
// with odd controllers a quarter cycle behind. Button 0 is held for the first half of each cycle.
func SweepScript(period int) func(int, input.Shape) input.Snapshot {
	if period <= 0 {
		period = 1
	}
	return func(sample int, shape input.Shape) input.Snapshot {
		snap := input.NewSnapshot(shape)
		phase := 2 * math.Pi * float64(sample%period) / float64(period)
		for i := range snap.Controllers {
			p := phase + float64(i%2)*math.Pi/2
			for a := range snap.Controllers[i].Axes {
				snap.Controllers[i].Axes[a] = math.Sin(p + float64(a)*math.Pi/4)
			}
			if len(snap.Controllers[i].Buttons) > 0 {
				snap.Controllers[i].Buttons[0] = sample%period < period/2
			}
		}
		return snap
	}
}
