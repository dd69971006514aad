// Package robot defines the lifecycle contract the outer robot framework drives, and a fixed-rate
// Loop that plays the part of that framework.
package robot

import (
	"context"
	"strings"

	"github.com/fieldbot/drivecore/utils"
)

// RunMode is the externally driven lifecycle phase.
type RunMode int

// The known run modes.
const (
	Disabled RunMode = iota
	Autonomous
	Teleop
	Test
)

func (m RunMode) String() string {
	switch m {
	case Disabled:
		return "disabled"
	case Autonomous:
		return "autonomous"
	case Teleop:
		return "teleop"
	case Test:
		return "test"
	default:
		return "unknown"
	}
}

// ParseRunMode parses the lowercase name of a run mode.
func ParseRunMode(s string) (RunMode, error) {
	switch strings.ToLower(s) {
	case "disabled":
		return Disabled, nil
	case "autonomous", "auto":
		return Autonomous, nil
	case "teleop":
		return Teleop, nil
	case "test":
		return Test, nil
	default:
		return Disabled, utils.NewConfigurationError("unknown run mode %q", s)
	}
}

// Lifecycle is what the outer framework calls: Init once on entering a mode, Update once per
// control tick while in it, Reset on leaving it. All three are called from a single goroutine.
type Lifecycle interface {
	Init(ctx context.Context, mode RunMode) error
	Update(ctx context.Context, mode RunMode) error
	Reset(ctx context.Context) error
}
