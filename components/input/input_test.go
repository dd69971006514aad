package input

import (
	"math"
	"testing"

	"go.viam.com/test"

	"github.com/fieldbot/drivecore/utils"
)

func TestSnapshotShape(t *testing.T) {
	shape := Shape{{Axes: 2, Buttons: 1}, {Axes: 1, Buttons: 3}}
	snap := NewSnapshot(shape)
	test.That(t, snap.Controllers, test.ShouldHaveLength, 2)
	test.That(t, snap.Controllers[0].Axes, test.ShouldResemble, []float64{0, 0})
	test.That(t, snap.Controllers[1].Buttons, test.ShouldResemble, []bool{false, false, false})
	test.That(t, snap.Shape().Equal(shape), test.ShouldBeTrue)

	test.That(t, shape.MinAxes(), test.ShouldEqual, 1)
	test.That(t, shape.MinButtons(), test.ShouldEqual, 1)
	test.That(t, Shape{}.MinAxes(), test.ShouldEqual, 0)

	t.Run("drift", func(t *testing.T) {
		snap.Controllers[1].Axes = append(snap.Controllers[1].Axes, 0.5)
		test.That(t, snap.Shape().Equal(shape), test.ShouldBeFalse)
		test.That(t, Shape{{Axes: 1}}.Equal(shape), test.ShouldBeFalse)
	})
}

func TestSnapshotClone(t *testing.T) {
	snap := Snapshot{Controllers: []ControllerState{{Axes: []float64{0.5}, Buttons: []bool{true}}}}
	clone := snap.Clone()
	clone.Controllers[0].Axes[0] = -1
	clone.Controllers[0].Buttons[0] = false

	test.That(t, snap.Controllers[0].Axes[0], test.ShouldEqual, 0.5)
	test.That(t, snap.Controllers[0].Buttons[0], test.ShouldBeTrue)
}

func TestShapeValidate(t *testing.T) {
	test.That(t, Shape{{Axes: 1, Buttons: 0}}.Validate(), test.ShouldBeNil)
	err := Shape{{Axes: -1}}.Validate()
	test.That(t, utils.IsConfigurationError(err), test.ShouldBeTrue)
}

func TestSnapshotFinite(t *testing.T) {
	snap := NewSnapshot(Shape{{Axes: 2}})
	test.That(t, snap.Finite(), test.ShouldBeTrue)
	snap.Controllers[0].Axes[1] = math.NaN()
	test.That(t, snap.Finite(), test.ShouldBeFalse)
}
