// Package drive turns one tick of controller input into one tick of actuator commands through a
// selectable drive strategy.
//
// A Controller is initialized with a DriveType, which it resolves through a Registry to a
// Strategy. The strategy declares the minimum controller, axis, button and actuator counts it
// needs; the controller checks them against its configured shape before it will run. Each Update
// samples the input source, dispatches the snapshot through the strategy and applies the result to
// the actuator sink. Any failure during a tick commands neutral instead of repeating old output.
package drive

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/fieldbot/drivecore/utils"
)

// DriveType selects a drive strategy. It is fixed at Init; switching requires another Init.
type DriveType int

// The drive types with built-in strategies. The zero value is not a valid drive type.
const (
	Unknown DriveType = iota
	// Tank drives each side from its own controller.
	Tank
	// Arcade drives both sides from the forward and turn axes of one controller.
	Arcade
)

// DefaultDriveType is used by Controller.Init when no drive type is given.
const DefaultDriveType = Tank

func (t DriveType) String() string {
	switch t {
	case Tank:
		return "tank"
	case Arcade:
		return "arcade"
	case Unknown:
		return "unknown"
	default:
		return "drive_type(" + strconv.Itoa(int(t)) + ")"
	}
}

// ParseDriveType parses the lowercase name of a drive type.
func ParseDriveType(s string) (DriveType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tank":
		return Tank, nil
	case "arcade":
		return Arcade, nil
	default:
		return Unknown, utils.NewConfigurationError("unknown drive type %q", s)
	}
}

// MarshalJSON encodes the drive type by name.
func (t DriveType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON decodes a drive type name.
func (t *DriveType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDriveType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
