package motor

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/fieldbot/drivecore/logging"
	"github.com/fieldbot/drivecore/utils"
)

// Group is a Sink over an ordered list of motors. A command's Value becomes the motor power
// (negated for inverted motors, clamped to [-1, 1]); a pressed Button brakes that motor with Stop.
type Group struct {
	motors []Motor
	invert []bool
	logger logging.Logger
}

var _ Sink = &Group{}

// NewGroup returns a Group. invert may be nil or must have one entry per motor.
func NewGroup(motors []Motor, invert []bool, logger logging.Logger) (*Group, error) {
	if len(motors) == 0 {
		return nil, utils.NewConfigurationError("motor group needs at least one motor")
	}
	if invert == nil {
		invert = make([]bool, len(motors))
	}
	if len(invert) != len(motors) {
		return nil, utils.NewConfigurationError("got %d inversion flags for %d motors", len(invert), len(motors))
	}
	for i, m := range motors {
		if m == nil {
			return nil, utils.NewConfigurationError("motor %d is nil", i)
		}
	}
	return &Group{motors: motors, invert: invert, logger: logger}, nil
}

// Len is the number of actuators in the group.
func (g *Group) Len() int {
	return len(g.motors)
}

// Apply sends every command to its motor. All motors are attempted even if one fails; the
// failures are combined into a single actuator fault.
func (g *Group) Apply(ctx context.Context, commands CommandSet) error {
	if len(commands) != len(g.motors) {
		return NewLengthMismatchError(len(commands), len(g.motors))
	}

	var err error
	for i, cmd := range commands {
		if math.IsNaN(cmd.Value) {
			err = multierr.Combine(err, NewApplyError(errors.New("power is NaN"), i))
			continue
		}
		if cmd.Button {
			err = multierr.Combine(err, g.wrap(g.motors[i].Stop(ctx, nil), i))
			continue
		}
		power := utils.Clamp(cmd.Value, -1, 1)
		if g.invert[i] {
			power = -power
		}
		err = multierr.Combine(err, g.wrap(g.motors[i].SetPower(ctx, power, nil), i))
	}
	return err
}

// Stop stops every motor.
func (g *Group) Stop(ctx context.Context) error {
	var err error
	for i, m := range g.motors {
		err = multierr.Combine(err, g.wrap(m.Stop(ctx, nil), i))
	}
	return err
}

func (g *Group) wrap(err error, idx int) error {
	if err == nil {
		return nil
	}
	g.logger.Debugw("motor rejected command", "motor", idx, "error", err)
	return NewApplyError(err, idx)
}
