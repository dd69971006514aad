// Package robotimpl assembles the drive controller and heading tracker into the robot the loop
// drives.
package robotimpl

import (
	"context"

	"github.com/fieldbot/drivecore/logging"
	"github.com/fieldbot/drivecore/robot"
	"github.com/fieldbot/drivecore/sensor/heading"
	"github.com/fieldbot/drivecore/services/drive"
	"github.com/fieldbot/drivecore/utils"
)

var _ = robot.Lifecycle(&Robot{})

// Status is a telemetry snapshot of the whole robot.
type Status struct {
	Drive         drive.Status
	Heading       float64
	HeadingOffset float64
	HeadingError  string
}

// Robot runs a drive controller with a fixed drive type. Heading is zeroed on entering
// Autonomous, and outputs are commanded neutral on every Disabled tick.
type Robot struct {
	drive     *drive.Controller
	driveType drive.DriveType
	heading   *heading.Tracker
	logger    logging.Logger
}

// New returns a robot driving ctrl with driveType. tracker may be nil on a robot without an
// orientation sensor.
func New(ctrl *drive.Controller, driveType drive.DriveType, tracker *heading.Tracker, logger logging.Logger) (*Robot, error) {
	if ctrl == nil {
		return nil, utils.NewConfigurationError("no drive controller")
	}
	return &Robot{
		drive:     ctrl,
		driveType: driveType,
		heading:   tracker,
		logger:    logger,
	}, nil
}

// Init initializes the drive for mode.
func (r *Robot) Init(ctx context.Context, mode robot.RunMode) error {
	if err := r.drive.InitWithType(ctx, mode, r.driveType); err != nil {
		return err
	}

	switch mode {
	case robot.Disabled:
		// Update re-applies neutral every tick, so a failure here is retried rather than fatal.
		if err := r.drive.Neutral(ctx); err != nil {
			r.logger.Warnw("could not apply neutral on disable", "error", err)
		}
	case robot.Autonomous:
		if r.heading == nil {
			return nil
		}
		// The previous zero is kept if the sensor is down; driving does not depend on it.
		if err := r.ZeroHeading(ctx); err != nil {
			r.logger.Warnw("could not zero heading", "error", err)
		}
	case robot.Teleop, robot.Test:
	}
	return nil
}

// Update runs one drive tick. While Disabled it only holds the outputs at neutral.
func (r *Robot) Update(ctx context.Context, mode robot.RunMode) error {
	if mode == robot.Disabled {
		return r.drive.Neutral(ctx)
	}
	return r.drive.Update(ctx, mode)
}

// Reset resets the drive.
func (r *Robot) Reset(ctx context.Context) error {
	return r.drive.Reset(ctx)
}

// ZeroHeading makes the current heading the new zero.
func (r *Robot) ZeroHeading(ctx context.Context) error {
	if r.heading == nil {
		return utils.NewSensorUnavailableError(nil, "no heading sensor")
	}
	return r.heading.Reset(ctx)
}

// Status reports drive counters and the current relative heading. A heading read failure is
// reported in HeadingError rather than returned.
func (r *Robot) Status(ctx context.Context) Status {
	status := Status{Drive: r.drive.Status()}
	if r.heading == nil {
		status.HeadingError = "no heading sensor"
		return status
	}
	status.HeadingOffset = r.heading.Offset()
	h, err := r.heading.Heading(ctx)
	if err != nil {
		status.HeadingError = err.Error()
		return status
	}
	status.Heading = h
	return status
}
