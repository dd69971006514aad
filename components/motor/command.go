package motor

import (
	"github.com/samber/lo"
)

// Command is the output for one actuator: a power value in [-1, 1] and a button state.
type Command struct {
	Value  float64
	Button bool
}

// CommandSet holds one Command per actuator, index-aligned with the Sink.
type CommandSet []Command

// Neutral returns n zero-power, released commands.
func Neutral(n int) CommandSet {
	return make(CommandSet, n)
}

// IsNeutral reports whether every command is zero-power and released.
func (cs CommandSet) IsNeutral() bool {
	return lo.EveryBy(cs, func(c Command) bool { return c == Command{} })
}

// Values returns the power values in actuator order.
func (cs CommandSet) Values() []float64 {
	return lo.Map(cs, func(c Command, _ int) float64 { return c.Value })
}

// Buttons returns the button states in actuator order.
func (cs CommandSet) Buttons() []bool {
	return lo.Map(cs, func(c Command, _ int) bool { return c.Button })
}
