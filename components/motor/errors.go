package motor

import (
	"github.com/fieldbot/drivecore/utils"
)

// NewLengthMismatchError returns the actuator fault for a command set of the wrong size.
func NewLengthMismatchError(got, want int) error {
	return utils.NewActuatorFaultError(nil, "got %d commands for %d actuators", got, want)
}

// NewApplyError wraps a failure from motor index idx as an actuator fault.
func NewApplyError(cause error, idx int) error {
	return utils.NewActuatorFaultError(cause, "motor %d", idx)
}
