// Package config defines the drive daemon's configuration file and turns it into the typed
// configuration of each component.
package config

import (
	"fmt"
	"math"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	goutils "go.viam.com/utils"

	"github.com/fieldbot/drivecore/components/input"
	"github.com/fieldbot/drivecore/logging"
	"github.com/fieldbot/drivecore/robot"
	"github.com/fieldbot/drivecore/services/drive"
)

// Defaults applied to fields absent from the file.
const (
	DefaultFrequencyHz = 50
	DefaultLogLevel    = "info"
)

// Config is the whole configuration file.
type Config struct {
	DriveType   drive.DriveType         `json:"drive_type" jsonschema:"type=string,enum=tank,enum=arcade"`
	FrequencyHz float64                 `json:"frequency_hz,omitempty"`
	ReadTimeout time.Duration           `json:"read_timeout,omitempty" jsonschema:"type=string"`
	Controllers []input.ControllerShape `json:"controllers"`
	Actuators   []ActuatorConfig        `json:"actuators"`
	Tank        TankConfig              `json:"tank,omitempty"`
	Arcade      ArcadeConfig            `json:"arcade,omitempty"`
	Heading     HeadingConfig           `json:"heading,omitempty"`
	Log         LogConfig               `json:"log,omitempty"`

	// ConfigFilePath is where the config was read from, if anywhere.
	ConfigFilePath string `json:"-"`
}

// ActuatorConfig names one actuator. Actuators are index-aligned with drive commands.
type ActuatorConfig struct {
	Name   string `json:"name"`
	Invert bool   `json:"invert,omitempty"`
}

// TankConfig selects the axis and button each tank side reads.
type TankConfig struct {
	Axis     int     `json:"axis"`
	Button   int     `json:"button"`
	Deadband float64 `json:"deadband,omitempty"`
}

// ArcadeConfig selects the throttle and steering axes.
type ArcadeConfig struct {
	Forward  int     `json:"forward"`
	Turn     int     `json:"turn"`
	Deadband float64 `json:"deadband,omitempty"`
}

// HeadingConfig configures the heading tracker.
type HeadingConfig struct {
	// Samples is how many readings are taken, and their median used, when zeroing.
	Samples int `json:"samples"`
	// Disabled runs without an orientation sensor.
	Disabled bool `json:"disabled,omitempty"`
}

// LogConfig configures log output.
type LogConfig struct {
	Level string `json:"level"`
	File  string `json:"file,omitempty"`
}

// Default returns a config with every optional field at its default.
func Default() Config {
	arcade := drive.NewArcadeStrategy()
	return Config{
		FrequencyHz: DefaultFrequencyHz,
		ReadTimeout: drive.DefaultReadTimeout,
		Arcade:      ArcadeConfig{Forward: arcade.Forward, Turn: arcade.Turn},
		Heading:     HeadingConfig{Samples: 1},
		Log:         LogConfig{Level: DefaultLogLevel},
	}
}

// Validate ensures all parts of the config are valid.
func (c *Config) Validate(path string) error {
	if c.DriveType == drive.Unknown {
		return goutils.NewConfigValidationFieldRequiredError(path, "drive_type")
	}
	if math.IsNaN(c.FrequencyHz) || c.FrequencyHz <= 0 || c.FrequencyHz > robot.MaxFrequencyHz {
		return goutils.NewConfigValidationError(path,
			errors.Errorf("frequency_hz must be in (0, %d], got %v", robot.MaxFrequencyHz, c.FrequencyHz))
	}
	if c.ReadTimeout < 0 {
		return goutils.NewConfigValidationError(path, errors.Errorf("read_timeout must not be negative, got %s", c.ReadTimeout))
	}

	if len(c.Controllers) == 0 {
		return goutils.NewConfigValidationFieldRequiredError(path, "controllers")
	}
	for idx, ctrl := range c.Controllers {
		if ctrl.Axes < 0 || ctrl.Buttons < 0 {
			return goutils.NewConfigValidationError(fmt.Sprintf("%s.%s.%d", path, "controllers", idx),
				errors.New("axes and buttons must not be negative"))
		}
	}

	if len(c.Actuators) == 0 {
		return goutils.NewConfigValidationFieldRequiredError(path, "actuators")
	}
	seen := map[string]bool{}
	for idx, act := range c.Actuators {
		if err := act.Validate(fmt.Sprintf("%s.%s.%d", path, "actuators", idx)); err != nil {
			return err
		}
		if seen[act.Name] {
			return goutils.NewConfigValidationError(fmt.Sprintf("%s.%s.%d", path, "actuators", idx),
				errors.Errorf("duplicate actuator name %q", act.Name))
		}
		seen[act.Name] = true
	}

	if err := c.Tank.Validate(path + ".tank"); err != nil {
		return err
	}
	if err := c.Arcade.Validate(path + ".arcade"); err != nil {
		return err
	}
	if c.Heading.Samples < 1 {
		return goutils.NewConfigValidationError(path+".heading", errors.Errorf("samples must be at least 1, got %d", c.Heading.Samples))
	}
	if _, err := logging.LevelFromString(c.Log.Level); err != nil {
		return goutils.NewConfigValidationError(path+".log", err)
	}

	// Catch a layout the chosen strategy cannot drive before anything is constructed.
	reg, err := c.Registry()
	if err != nil {
		return goutils.NewConfigValidationError(path, err)
	}
	strategy, err := reg.Lookup(c.DriveType)
	if err != nil {
		return goutils.NewConfigValidationError(path, err)
	}
	if err := strategy.Requirements().Check(c.Shape(), len(c.Actuators)); err != nil {
		return goutils.NewConfigValidationError(path, err)
	}
	return nil
}

// Validate ensures the actuator is named.
func (a *ActuatorConfig) Validate(path string) error {
	if a.Name == "" {
		return goutils.NewConfigValidationFieldRequiredError(path, "name")
	}
	return nil
}

// Validate ensures indices are non-negative and the deadband is a fraction of full scale.
func (t *TankConfig) Validate(path string) error {
	if t.Axis < 0 || t.Button < 0 {
		return goutils.NewConfigValidationError(path, errors.New("axis and button must not be negative"))
	}
	return validateDeadband(path, t.Deadband)
}

// Validate ensures indices are non-negative and distinct.
func (a *ArcadeConfig) Validate(path string) error {
	if a.Forward < 0 || a.Turn < 0 {
		return goutils.NewConfigValidationError(path, errors.New("forward and turn must not be negative"))
	}
	if a.Forward == a.Turn {
		return goutils.NewConfigValidationError(path, errors.Errorf("forward and turn both use axis %d", a.Forward))
	}
	return validateDeadband(path, a.Deadband)
}

func validateDeadband(path string, deadband float64) error {
	if math.IsNaN(deadband) || deadband < 0 || deadband >= 1 {
		return goutils.NewConfigValidationError(path, errors.Errorf("deadband must be in [0, 1), got %v", deadband))
	}
	return nil
}

// Shape is the configured controller layout.
func (c *Config) Shape() input.Shape {
	return input.Shape(append([]input.ControllerShape(nil), c.Controllers...))
}

// DriveConfig is the drive controller's fixed cardinality.
func (c *Config) DriveConfig() drive.Config {
	return drive.Config{
		Shape:       c.Shape(),
		Actuators:   len(c.Actuators),
		ReadTimeout: c.ReadTimeout,
	}
}

// Registry returns the built-in strategies with their configured parameters.
func (c *Config) Registry() (*drive.Registry, error) {
	reg := drive.DefaultRegistry().Clone()
	if err := reg.Register(drive.Tank, drive.TankStrategy{
		Axis:     c.Tank.Axis,
		Button:   c.Tank.Button,
		Deadband: c.Tank.Deadband,
	}); err != nil {
		return nil, err
	}
	if err := reg.Register(drive.Arcade, drive.ArcadeStrategy{
		Forward:  c.Arcade.Forward,
		Turn:     c.Arcade.Turn,
		Deadband: c.Arcade.Deadband,
	}); err != nil {
		return nil, err
	}
	return reg, nil
}

// ActuatorNames lists actuator names in command order.
func (c *Config) ActuatorNames() []string {
	return lo.Map(c.Actuators, func(a ActuatorConfig, _ int) string { return a.Name })
}

// Inversions lists the per-actuator inversion flags in command order.
func (c *Config) Inversions() []bool {
	return lo.Map(c.Actuators, func(a ActuatorConfig, _ int) bool { return a.Invert })
}

// LogLevel is the parsed log level. Validate has already rejected unknown levels.
func (c *Config) LogLevel() logging.Level {
	level, err := logging.LevelFromString(c.Log.Level)
	if err != nil {
		return logging.INFO
	}
	return level
}
