// Package heading turns raw orientation-sensor samples into a zeroable heading in (-180, 180].
package heading

import (
	"context"
	"math"

	"github.com/fieldbot/drivecore/utils"
)

// A Sensor reports a raw yaw in degrees. The value is unbounded: it may exceed ±180, wrap past
// 360, or jump between samples.
type Sensor interface {
	Heading(ctx context.Context) (float64, error)
}

// Normalize reduces deg into (-180, 180]. -180 maps to 180.
func Normalize(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg > 180 {
		deg -= 360
	} else if deg <= -180 {
		deg += 360
	}
	return deg
}

// Sample reads s once, classifying failures and non-finite readings as sensor unavailable.
func Sample(ctx context.Context, s Sensor) (float64, error) {
	raw, err := s.Heading(ctx)
	if err != nil {
		return 0, utils.NewSensorUnavailableError(err, "reading orientation sensor")
	}
	if !utils.IsFinite(raw) {
		return 0, utils.NewSensorUnavailableError(nil, "orientation sensor returned %v", raw)
	}
	return raw, nil
}

// MedianHeading returns the median of n successive raw readings from s.
func MedianHeading(ctx context.Context, s Sensor, n int) (float64, error) {
	if n < 1 {
		n = 1
	}
	headings := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		h, err := Sample(ctx, s)
		if err != nil {
			return 0, err
		}
		headings = append(headings, h)
	}
	return utils.Median(headings...), nil
}
