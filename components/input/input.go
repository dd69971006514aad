// Package input defines the raw controller input consumed by the drive loop: the Source contract
// and the per-tick Snapshot it produces.
package input

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/fieldbot/drivecore/utils"
)

// Source supplies one Snapshot of every controller per call. Sample must honor the context
// deadline so a stuck driver can not stall a control tick.
type Source interface {
	Sample(ctx context.Context) (Snapshot, error)
}

// ControllerState is one controller's readings. Axis values are nominally in [-1, 1].
type ControllerState struct {
	Axes    []float64
	Buttons []bool
}

// Snapshot is one tick's readings for every controller, in controller order. It is created per
// tick and never retained by the drive loop.
type Snapshot struct {
	Controllers []ControllerState
}

// ControllerShape is the axis and button count of one controller.
type ControllerShape struct {
	Axes    int `json:"axes"`
	Buttons int `json:"buttons"`
}

// Shape is the declared cardinality of a Snapshot.
type Shape []ControllerShape

// Shape returns the cardinality of the snapshot.
func (s Snapshot) Shape() Shape {
	return lo.Map(s.Controllers, func(c ControllerState, _ int) ControllerShape {
		return ControllerShape{Axes: len(c.Axes), Buttons: len(c.Buttons)}
	})
}

// Equal reports whether both shapes have identical per-controller counts.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// MinAxes is the smallest axis count across all controllers, or 0 for an empty shape.
func (s Shape) MinAxes() int {
	if len(s) == 0 {
		return 0
	}
	return lo.Min(lo.Map(s, func(c ControllerShape, _ int) int { return c.Axes }))
}

// MinButtons is the smallest button count across all controllers, or 0 for an empty shape.
func (s Shape) MinButtons() int {
	if len(s) == 0 {
		return 0
	}
	return lo.Min(lo.Map(s, func(c ControllerShape, _ int) int { return c.Buttons }))
}

func (s Shape) String() string {
	return fmt.Sprintf("%v", []ControllerShape(s))
}

// Validate returns an error if any count is negative.
func (s Shape) Validate() error {
	for i, c := range s {
		if c.Axes < 0 || c.Buttons < 0 {
			return utils.NewConfigurationError("controller %d has a negative axis or button count", i)
		}
	}
	return nil
}

// NewSnapshot returns an all-zero, all-released snapshot of the given shape.
func NewSnapshot(shape Shape) Snapshot {
	return Snapshot{Controllers: lo.Map(shape, func(c ControllerShape, _ int) ControllerState {
		return ControllerState{Axes: make([]float64, c.Axes), Buttons: make([]bool, c.Buttons)}
	})}
}

// Clone returns a deep copy so callers can hand out snapshots without sharing backing arrays.
func (s Snapshot) Clone() Snapshot {
	return Snapshot{Controllers: lo.Map(s.Controllers, func(c ControllerState, _ int) ControllerState {
		return ControllerState{
			Axes:    append([]float64(nil), c.Axes...),
			Buttons: append([]bool(nil), c.Buttons...),
		}
	})}
}

// Finite reports whether every axis value is neither NaN nor infinite.
func (s Snapshot) Finite() bool {
	for _, c := range s.Controllers {
		for _, v := range c.Axes {
			if !utils.IsFinite(v) {
				return false
			}
		}
	}
	return true
}
