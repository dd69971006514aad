// Package motor defines the actuator side of the drive loop: the Sink contract, the per-tick
// CommandSet it accepts, and a Group sink that fans a command set out to physical motors.
package motor

import (
	"context"
)

// A Motor represents a physical motor driven by power percentage.
type Motor interface {
	// SetPower sets the percentage of power the motor should employ between -1 and 1.
	// Negative power corresponds to a backward direction of rotation.
	SetPower(ctx context.Context, powerPct float64, extra map[string]interface{}) error

	// Stop turns the power to the motor off immediately, without any gradual step down.
	Stop(ctx context.Context, extra map[string]interface{}) error

	// IsPowered returns whether or not the motor is currently on, and the percent power (between 0
	// and 1, if the motor is off then the percent power will be 0).
	IsPowered(ctx context.Context, extra map[string]interface{}) (bool, float64, error)
}

// Sink accepts a fixed-size, index-aligned CommandSet once per tick.
type Sink interface {
	// Apply fails with an actuator fault if the set's length does not match the sink's actuator
	// count; in that case nothing is applied.
	Apply(ctx context.Context, commands CommandSet) error
}
