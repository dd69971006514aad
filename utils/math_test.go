package utils

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func TestClamp(t *testing.T) {
	test.That(t, Clamp(2, -1, 1), test.ShouldEqual, 1.0)
	test.That(t, Clamp(-2, -1, 1), test.ShouldEqual, -1.0)
	test.That(t, Clamp(0.25, -1, 1), test.ShouldEqual, 0.25)
}

func TestMedian(t *testing.T) {
	test.That(t, math.IsNaN(Median()), test.ShouldBeTrue)
	values := []float64{3, 1, 2}
	test.That(t, Median(values...), test.ShouldEqual, 2.0)
	test.That(t, values, test.ShouldResemble, []float64{3, 1, 2})
	test.That(t, Median(4, 1, 3, 2), test.ShouldEqual, 3.0)
}

func TestIsFinite(t *testing.T) {
	test.That(t, IsFinite(12.5), test.ShouldBeTrue)
	test.That(t, IsFinite(math.NaN()), test.ShouldBeFalse)
	test.That(t, IsFinite(math.Inf(-1)), test.ShouldBeFalse)
}
