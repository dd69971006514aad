package main

import (
	"context"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	inputfake "github.com/fieldbot/drivecore/components/input/fake"
	"github.com/fieldbot/drivecore/components/motor"
	motorfake "github.com/fieldbot/drivecore/components/motor/fake"
	"github.com/fieldbot/drivecore/config"
	"github.com/fieldbot/drivecore/logging"
	"github.com/fieldbot/drivecore/robot"
	robotimpl "github.com/fieldbot/drivecore/robot/impl"
	"github.com/fieldbot/drivecore/sensor/heading"
	gyrofake "github.com/fieldbot/drivecore/sensor/heading/fake"
	"github.com/fieldbot/drivecore/services/drive"
)

const (
	defaultStatusInterval = 5 * time.Second
	// sweepSeconds is the period of the simulated stick sweep.
	sweepSeconds = 4
	// gyroDriftPerRead is how far the simulated gyro turns per read, in degrees.
	gyroDriftPerRead = 0.05
)

func runAction(c *cli.Context, logger logging.Logger) error {
	cfg, err := config.Read(c.String(flagConfig))
	if err != nil {
		return err
	}
	mode, err := robot.ParseRunMode(c.String(flagMode))
	if err != nil {
		return err
	}

	if !c.Bool(flagDebug) {
		logger.SetLevel(cfg.LogLevel())
	}
	logFile := c.String(flagLogFile)
	if logFile == "" {
		logFile = cfg.Log.File
	}
	if logFile != "" {
		fileAppender := logging.NewFileAppender(logFile)
		logger.AddAppender(fileAppender)
		defer func() {
			//nolint:errcheck
			fileAppender.Close()
		}()
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runID := uuid.New().String()
	logger.Infow("starting drive daemon", "run_id", runID, "config", cfg.ConfigFilePath, "mode", mode, "drive_type", cfg.DriveType)

	d := newDaemon(mode, logger)
	if err := d.start(ctx, cfg); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	if interval := c.Duration(flagInterval); interval > 0 {
		g.Go(func() error {
			d.reportStatus(gctx, clock.New(), interval)
			return nil
		})
	}
	if c.Bool(flagWatch) {
		watcher, err := config.NewWatcher(cfg.ConfigFilePath, config.DefaultWatchDelay, func(next *config.Config) {
			if err := d.start(gctx, next); err != nil {
				logger.Errorw("config reload failed, keeping the running config", "error", err)
			}
		}, logger.Sublogger("config"))
		if err != nil {
			return multierr.Combine(err, d.stop(context.Background()))
		}
		defer func() {
			//nolint:errcheck
			watcher.Close()
		}()
	}

	<-gctx.Done()
	logger.Infow("shutting down", "run_id", runID)
	return multierr.Combine(g.Wait(), d.stop(context.Background()))
}

// simulation is one robot built from a config, with simulated hardware behind it.
type simulation struct {
	source *inputfake.Source
	motors []*motorfake.Motor
	group  *motor.Group
	gyro   *gyrofake.Gyro
	robot  *robotimpl.Robot
}

func newSimulation(ctx context.Context, cfg *config.Config, logger logging.Logger) (*simulation, error) {
	sim := &simulation{source: inputfake.NewSource(cfg.Shape())}
	sim.source.Script = inputfake.SweepScript(int(cfg.FrequencyHz * sweepSeconds))

	sim.motors = lo.Map(cfg.Actuators, func(a config.ActuatorConfig, _ int) *motorfake.Motor {
		return &motorfake.Motor{Name: a.Name, Logger: logger.Sublogger("motor." + a.Name)}
	})
	group, err := motor.NewGroup(
		lo.Map(sim.motors, func(m *motorfake.Motor, _ int) motor.Motor { return m }),
		cfg.Inversions(),
		logger.Sublogger("motors"),
	)
	if err != nil {
		return nil, err
	}
	sim.group = group

	reg, err := cfg.Registry()
	if err != nil {
		return nil, err
	}
	ctrl, err := drive.NewController(cfg.DriveConfig(), sim.source, group, logger.Sublogger("drive"), drive.WithRegistry(reg))
	if err != nil {
		return nil, err
	}

	var tracker *heading.Tracker
	if !cfg.Heading.Disabled {
		sim.gyro = gyrofake.NewGyro(0)
		sim.gyro.DriftPerRead = gyroDriftPerRead
		tracker, err = heading.NewTracker(ctx, sim.gyro, logger.Sublogger("heading"), heading.WithSamples(cfg.Heading.Samples))
		if err != nil {
			return nil, err
		}
	}

	sim.robot, err = robotimpl.New(ctrl, cfg.DriveType, tracker, logger)
	if err != nil {
		return nil, err
	}
	return sim, nil
}

// daemon owns the running loop and swaps it out when the config changes.
type daemon struct {
	mode   robot.RunMode
	logger logging.Logger

	mu   sync.Mutex
	sim  *simulation
	loop *robot.Loop
}

func newDaemon(mode robot.RunMode, logger logging.Logger) *daemon {
	return &daemon{mode: mode, logger: logger}
}

// start builds a robot from cfg and runs it in place of the current one. If the new robot can not
// be built or entered, the current one keeps running.
func (d *daemon) start(ctx context.Context, cfg *config.Config) error {
	sim, err := newSimulation(ctx, cfg, d.logger)
	if err != nil {
		return err
	}
	loop, err := robot.NewLoop(sim.robot, cfg.FrequencyHz, nil, d.logger.Sublogger("loop"))
	if err != nil {
		return err
	}

	if err := loop.SetMode(ctx, d.mode); err != nil {
		return errors.Wrapf(err, "entering %s", d.mode)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.stopLocked(ctx); err != nil {
		d.logger.Warnw("stopping previous drive", "error", err)
	}
	if err := loop.Start(); err != nil {
		return err
	}
	d.sim, d.loop = sim, loop
	return nil
}

// stop halts the loop and brakes every motor.
func (d *daemon) stop(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stopLocked(ctx)
}

func (d *daemon) stopLocked(ctx context.Context) error {
	if d.loop == nil {
		return nil
	}
	err := multierr.Combine(d.loop.Stop(ctx), d.sim.group.Stop(ctx))
	d.loop, d.sim = nil, nil
	return err
}

func (d *daemon) status(ctx context.Context) (robotimpl.Status, uint64, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.sim == nil {
		return robotimpl.Status{}, 0, false
	}
	return d.sim.robot.Status(ctx), d.loop.FailedTicks(), true
}

func (d *daemon) reportStatus(ctx context.Context, clk clock.Clock, interval time.Duration) {
	ticker := clk.Ticker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		status, failed, ok := d.status(ctx)
		if !ok {
			continue
		}
		d.logger.Infow("drive status",
			"state", status.Drive.State,
			"drive_type", status.Drive.DriveType,
			"ticks", status.Drive.Ticks,
			"faults", status.Drive.Faults,
			"failed_ticks", failed,
			"last_error", status.Drive.LastError,
			"heading", status.Heading,
			"heading_error", status.HeadingError,
		)
	}
}
