package drive

import (
	"math"

	"github.com/fieldbot/drivecore/components/input"
	"github.com/fieldbot/drivecore/components/motor"
	"github.com/fieldbot/drivecore/utils"
)

func init() {
	RegisterStrategy(Arcade, NewArcadeStrategy())
}

// ArcadeStrategy drives both sides from one controller: Forward is the throttle axis and Turn the
// steering axis, positive meaning clockwise. Button 0, when present, goes to every actuator.
// Actuators alternate sides like TankStrategy.
type ArcadeStrategy struct {
	Forward  int
	Turn     int
	Deadband float64
}

// NewArcadeStrategy uses axis 0 for throttle and axis 1 for steering.
func NewArcadeStrategy() ArcadeStrategy {
	return ArcadeStrategy{Forward: 0, Turn: 1}
}

// Requirements implements Strategy.
func (s ArcadeStrategy) Requirements() Requirements {
	axes := s.Forward
	if s.Turn > axes {
		axes = s.Turn
	}
	return Requirements{
		Controllers: 1,
		Axes:        axes + 1,
		Actuators:   2,
	}
}

// Dispatch implements Strategy.
func (s ArcadeStrategy) Dispatch(snapshot input.Snapshot, actuators int) (motor.CommandSet, error) {
	c := snapshot.Controllers[0]
	forward := applyDeadband(c.Axes[s.Forward], s.Deadband)
	turn := applyDeadband(c.Axes[s.Turn], s.Deadband)
	left, right := differentialDrive(forward, -turn)

	button := len(c.Buttons) > 0 && c.Buttons[0]
	commands := make(motor.CommandSet, actuators)
	for i := range commands {
		value := left
		if i%2 == 1 {
			value = right
		}
		commands[i] = motor.Command{Value: value, Button: button}
	}
	return commands, nil
}

// differentialDrive takes forward and left direction inputs from a first person perspective on a
// 2D plane and converts them to left and right motor powers. Negative forward means backward and
// negative left means right.
func differentialDrive(forward, left float64) (float64, float64) {
	if forward < 0 {
		// Mirror the turning arc in reverse.
		leftMotor, rightMotor := differentialDrive(-forward, left)
		return -leftMotor, -rightMotor
	}

	// Rotate the polar form of the input by 45 degrees so that each motor lies on an axis.
	r := math.Hypot(forward, left)
	t := math.Atan2(left, forward) + math.Pi/4

	leftMotor := r * math.Cos(t) * math.Sqrt2
	rightMotor := r * math.Sin(t) * math.Sqrt2

	return utils.Clamp(leftMotor, -1, 1), utils.Clamp(rightMotor, -1, 1)
}
