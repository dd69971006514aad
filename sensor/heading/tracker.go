package heading

import (
	"context"

	"go.uber.org/atomic"

	"github.com/fieldbot/drivecore/logging"
)

// Tracker reports heading relative to a zero offset captured at construction and on each Reset.
// Offset reads are atomic, so telemetry may query the tracker while the control loop resets it.
type Tracker struct {
	sensor  Sensor
	samples int
	offset  *atomic.Float64
	logger  logging.Logger
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithSamples makes offset capture use the median of n readings.
func WithSamples(n int) TrackerOption {
	return func(t *Tracker) {
		if n > 1 {
			t.samples = n
		}
	}
}

// NewTracker returns a Tracker zeroed at the sensor's current heading.
func NewTracker(ctx context.Context, sensor Sensor, logger logging.Logger, opts ...TrackerOption) (*Tracker, error) {
	t := &Tracker{sensor: sensor, samples: 1, offset: atomic.NewFloat64(0), logger: logger}
	for _, opt := range opts {
		opt(t)
	}
	if err := t.Reset(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

// Reset makes the current heading the new zero. A raw reading of exactly 360 is taken as 0.
// On error the previous offset is kept.
func (t *Tracker) Reset(ctx context.Context) error {
	raw, err := MedianHeading(ctx, t.sensor, t.samples)
	if err != nil {
		return err
	}
	offset := Normalize(raw)
	if raw == 360 {
		offset = 0
	}
	t.offset.Store(offset)
	t.logger.Debugw("heading zeroed", "raw", raw, "offset", offset)
	return nil
}

// RawHeading is the normalized sensor heading, ignoring the offset.
func (t *Tracker) RawHeading(ctx context.Context) (float64, error) {
	raw, err := Sample(ctx, t.sensor)
	if err != nil {
		return 0, err
	}
	return Normalize(raw), nil
}

// Heading is the heading relative to the last zero, in (-180, 180].
func (t *Tracker) Heading(ctx context.Context) (float64, error) {
	raw, err := t.RawHeading(ctx)
	if err != nil {
		return 0, err
	}
	return Normalize(raw - t.offset.Load()), nil
}

// Offset is the current zero reference.
func (t *Tracker) Offset() float64 {
	return t.offset.Load()
}
