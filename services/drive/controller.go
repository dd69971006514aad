package drive

import (
	"context"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/fieldbot/drivecore/components/input"
	"github.com/fieldbot/drivecore/components/motor"
	"github.com/fieldbot/drivecore/logging"
	"github.com/fieldbot/drivecore/robot"
	"github.com/fieldbot/drivecore/utils"
)

// DefaultReadTimeout bounds a single input sample when Config.ReadTimeout is unset.
const DefaultReadTimeout = 20 * time.Millisecond

// State is the controller's lifecycle state.
type State int

// The controller states. Reset returns Running to Initialized.
const (
	Uninitialized State = iota
	Initialized
	Running
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initialized:
		return "initialized"
	case Running:
		return "running"
	default:
		return "unknown"
	}
}

// Config is the fixed cardinality the controller is wired for.
type Config struct {
	// Shape is the controller/axis/button layout every snapshot must have.
	Shape input.Shape
	// Actuators is the length of every command set sent to the sink.
	Actuators int
	// ReadTimeout bounds each input sample. Defaults to DefaultReadTimeout.
	ReadTimeout time.Duration
}

// Validate checks the config on its own, before any strategy is chosen.
func (cfg Config) Validate() error {
	if len(cfg.Shape) == 0 {
		return utils.NewConfigurationError("need at least one controller")
	}
	if cfg.Actuators < 1 {
		return utils.NewConfigurationError("need at least one actuator, have %d", cfg.Actuators)
	}
	if cfg.ReadTimeout < 0 {
		return utils.NewConfigurationError("negative read timeout %s", cfg.ReadTimeout)
	}
	return cfg.Shape.Validate()
}

// Option configures a Controller.
type Option func(*Controller)

// WithRegistry resolves drive types through r instead of the default registry.
func WithRegistry(r *Registry) Option {
	return func(c *Controller) {
		c.registry = r
	}
}

// Status is a consistent copy of the controller's counters for telemetry.
type Status struct {
	State     State
	DriveType DriveType
	Ticks     uint64
	Faults    uint64
	LastError string
}

var _ robot.Lifecycle = (*Controller)(nil)

// Controller is the periodic drive loop. Init, Update and Reset are meant to be called from a
// single goroutine; Status may be called from any.
type Controller struct {
	cfg      Config
	source   input.Source
	sink     motor.Sink
	registry *Registry
	logger   logging.Logger

	mu          sync.Mutex
	state       State
	driveType   DriveType
	strategy    Strategy
	ticks       uint64
	faults      uint64
	faultStreak uint64
	lastErr     error
}

// NewController returns an uninitialized controller reading from source and writing to sink.
func NewController(cfg Config, source input.Source, sink motor.Sink, logger logging.Logger, opts ...Option) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if source == nil {
		return nil, utils.NewConfigurationError("no input source")
	}
	if sink == nil {
		return nil, utils.NewConfigurationError("no actuator sink")
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = DefaultReadTimeout
	}

	c := &Controller{
		cfg:      cfg,
		source:   source,
		sink:     sink,
		registry: defaultRegistry,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Init initializes with DefaultDriveType.
//
// Deprecated: use InitWithType so the drive type is explicit.
func (c *Controller) Init(ctx context.Context, mode robot.RunMode) error {
	c.logger.Warnw("Init without a drive type is deprecated, using the default", "mode", mode, "drive_type", DefaultDriveType)
	return c.InitWithType(ctx, mode, DefaultDriveType)
}

// InitWithType selects t and checks that its strategy can run on the configured shape. On
// failure the controller is left Uninitialized and Update refuses to run.
func (c *Controller) InitWithType(ctx context.Context, mode robot.RunMode, t DriveType) error {
	strategy, err := c.registry.Lookup(t)
	if err == nil {
		err = strategy.Requirements().Check(c.cfg.Shape, c.cfg.Actuators)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.faultStreak = 0
	c.lastErr = err
	if err != nil {
		c.state = Uninitialized
		c.driveType = Unknown
		c.strategy = nil
		c.logger.Errorw("drive init failed", "mode", mode, "drive_type", t, "error", err)
		return err
	}

	c.state = Initialized
	c.driveType = t
	c.strategy = strategy
	c.logger.Infow("drive initialized", "mode", mode, "drive_type", t, "shape", c.cfg.Shape.String(), "actuators", c.cfg.Actuators)
	return nil
}

// Update runs one tick: sample, dispatch, apply. If the controller is uninitialized or the sample
// or dispatch fails, a neutral command set is applied and the failure returned; if the sink
// rejects the commands, nothing else is applied this tick.
func (c *Controller) Update(ctx context.Context, mode robot.RunMode) error {
	c.mu.Lock()
	state, t, strategy := c.state, c.driveType, c.strategy
	c.mu.Unlock()

	var commands motor.CommandSet
	var err error
	if state == Uninitialized {
		err = utils.NewConfigurationError("drive update before a successful init")
	} else {
		commands, err = c.compute(ctx, t, strategy)
	}
	if err != nil {
		if applyErr := c.sink.Apply(ctx, motor.Neutral(c.cfg.Actuators)); applyErr != nil {
			err = multierr.Combine(err, asActuatorFault(applyErr, "applying neutral"))
		}
		c.recordFault(mode, err)
		return err
	}

	if err := c.sink.Apply(ctx, commands); err != nil {
		err = asActuatorFault(err, "applying commands")
		c.recordFault(mode, err)
		return err
	}

	c.recordSuccess(mode)
	return nil
}

func (c *Controller) compute(ctx context.Context, t DriveType, strategy Strategy) (motor.CommandSet, error) {
	readCtx, cancel := context.WithTimeout(ctx, c.cfg.ReadTimeout)
	defer cancel()

	snapshot, err := c.source.Sample(readCtx)
	if err != nil {
		if utils.IsSensorUnavailable(err) {
			return nil, err
		}
		return nil, utils.NewSensorUnavailableError(err, "sampling controllers")
	}
	if shape := snapshot.Shape(); !shape.Equal(c.cfg.Shape) {
		return nil, utils.NewSensorUnavailableError(nil, "snapshot shape %s does not match configured %s", shape, c.cfg.Shape)
	}
	if !snapshot.Finite() {
		return nil, utils.NewSensorUnavailableError(nil, "snapshot has non-finite axis values")
	}
	return dispatch(t, strategy, snapshot, c.cfg.Actuators)
}

// Neutral commands zero power with every button released, outside the tick cycle. It works in
// any state.
func (c *Controller) Neutral(ctx context.Context) error {
	if err := c.sink.Apply(ctx, motor.Neutral(c.cfg.Actuators)); err != nil {
		return asActuatorFault(err, "applying neutral")
	}
	return nil
}

// Reset discards per-tick state. The drive type is kept.
func (c *Controller) Reset(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Running {
		c.state = Initialized
	}
	c.faultStreak = 0
	c.lastErr = nil
	return nil
}

// State returns the lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// DriveType returns the selected drive type, or Unknown before a successful init.
func (c *Controller) DriveType() DriveType {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.driveType
}

// Status returns a consistent copy of the controller's counters.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	status := Status{
		State:     c.state,
		DriveType: c.driveType,
		Ticks:     c.ticks,
		Faults:    c.faults,
	}
	if c.lastErr != nil {
		status.LastError = c.lastErr.Error()
	}
	return status
}

// recordFault logs the first failure of a streak and counts the rest, so a persistent fault does
// not log at the loop rate.
func (c *Controller) recordFault(mode robot.RunMode, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks++
	c.faults++
	c.faultStreak++
	c.lastErr = err
	if c.faultStreak == 1 {
		c.logger.Warnw("drive tick failed", "mode", mode, "error", err)
		return
	}
	c.logger.Debugw("drive tick failed", "mode", mode, "streak", c.faultStreak, "error", err)
}

func (c *Controller) recordSuccess(mode robot.RunMode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks++
	c.state = Running
	if c.faultStreak > 0 {
		c.logger.Infow("drive recovered", "mode", mode, "failed_ticks", c.faultStreak)
	}
	c.faultStreak = 0
	c.lastErr = nil
}

func asActuatorFault(err error, msg string) error {
	if utils.IsActuatorFault(err) {
		return err
	}
	return utils.NewActuatorFaultError(err, "%s", msg)
}
