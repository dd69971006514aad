package inject

import (
	"context"

	"github.com/fieldbot/drivecore/sensor/heading"
)

// HeadingSensor is an injected orientation sensor.
type HeadingSensor struct {
	heading.Sensor
	HeadingFunc func(ctx context.Context) (float64, error)
}

// Heading calls the injected Heading or the real version.
func (s *HeadingSensor) Heading(ctx context.Context) (float64, error) {
	if s.HeadingFunc == nil {
		return s.Sensor.Heading(ctx)
	}
	return s.HeadingFunc(ctx)
}
