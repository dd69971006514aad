// Package fake implements a simulated orientation sensor.
package fake

import (
	"context"
	"sync"

	"github.com/fieldbot/drivecore/sensor/heading"
)

// Gyro is an in-memory heading.Sensor. It reports a fixed reading, a scripted sequence, or a
// reading advancing by DriftPerRead degrees on every read.
type Gyro struct {
	mu           sync.Mutex
	raw          float64
	sequence     []float64
	err          error
	reads        int
	DriftPerRead float64
}

var _ heading.Sensor = &Gyro{}

// NewGyro returns a gyro reporting raw.
func NewGyro(raw float64) *Gyro {
	return &Gyro{raw: raw}
}

// Heading returns the next reading.
func (g *Gyro) Heading(ctx context.Context) (float64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if g.err != nil {
		return 0, g.err
	}
	g.reads++
	if len(g.sequence) > 0 {
		g.raw = g.sequence[0]
		g.sequence = g.sequence[1:]
		return g.raw, nil
	}
	g.raw += g.DriftPerRead
	return g.raw, nil
}

// Set fixes the next readings at raw and discards any pending sequence.
func (g *Gyro) Set(raw float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.raw = raw
	g.sequence = nil
}

// Sequence queues readings returned one per read; afterwards the last one repeats.
func (g *Gyro) Sequence(raws ...float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sequence = append([]float64(nil), raws...)
}

// Fail makes every subsequent read return err until cleared with nil.
func (g *Gyro) Fail(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.err = err
}

// Reads is the number of successful reads.
func (g *Gyro) Reads() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.reads
}
