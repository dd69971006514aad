package drive

import (
	"math"

	"github.com/fieldbot/drivecore/components/input"
	"github.com/fieldbot/drivecore/components/motor"
	"github.com/fieldbot/drivecore/utils"
)

func init() {
	RegisterStrategy(Tank, TankStrategy{})
}

// TankStrategy drives the left side from controller 0 and the right side from controller 1.
//
// Each side's power is its controller's Axis value passed straight through: zeroed inside the
// deadband, clamped to [-1, 1]. Each side's button is its controller's Button value, unchanged.
// Actuators alternate sides: even indices are left, odd indices are right.
type TankStrategy struct {
	Axis     int
	Button   int
	Deadband float64
}

// Requirements implements Strategy.
func (s TankStrategy) Requirements() Requirements {
	return Requirements{
		Controllers: 2,
		Axes:        s.Axis + 1,
		Buttons:     s.Button + 1,
		Actuators:   2,
	}
}

// Dispatch implements Strategy.
func (s TankStrategy) Dispatch(snapshot input.Snapshot, actuators int) (motor.CommandSet, error) {
	sides := [2]motor.Command{}
	for side := range sides {
		c := snapshot.Controllers[side]
		sides[side] = motor.Command{
			Value:  applyDeadband(c.Axes[s.Axis], s.Deadband),
			Button: c.Buttons[s.Button],
		}
	}

	commands := make(motor.CommandSet, actuators)
	for i := range commands {
		commands[i] = sides[i%2]
	}
	return commands, nil
}

func applyDeadband(v, deadband float64) float64 {
	if math.Abs(v) < deadband {
		return 0
	}
	return utils.Clamp(v, -1, 1)
}
