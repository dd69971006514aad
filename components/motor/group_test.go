package motor_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/fieldbot/drivecore/components/motor"
	"github.com/fieldbot/drivecore/components/motor/fake"
	"github.com/fieldbot/drivecore/logging"
	"github.com/fieldbot/drivecore/testutils/inject"
	"github.com/fieldbot/drivecore/utils"
)

func fakeMotors(n int) ([]motor.Motor, []*fake.Motor) {
	motors := make([]motor.Motor, n)
	fakes := make([]*fake.Motor, n)
	for i := range motors {
		fakes[i] = &fake.Motor{}
		motors[i] = fakes[i]
	}
	return motors, fakes
}

func TestCommandSet(t *testing.T) {
	neutral := motor.Neutral(3)
	test.That(t, neutral, test.ShouldHaveLength, 3)
	test.That(t, neutral.IsNeutral(), test.ShouldBeTrue)

	cs := motor.CommandSet{{Value: 0.5}, {Button: true}}
	test.That(t, cs.IsNeutral(), test.ShouldBeFalse)
	test.That(t, cs.Values(), test.ShouldResemble, []float64{0.5, 0})
	test.That(t, cs.Buttons(), test.ShouldResemble, []bool{false, true})
}

func TestNewGroup(t *testing.T) {
	logger := logging.NewTestLogger(t)
	motors, _ := fakeMotors(2)

	_, err := motor.NewGroup(nil, nil, logger)
	test.That(t, utils.IsConfigurationError(err), test.ShouldBeTrue)

	_, err = motor.NewGroup(motors, []bool{true}, logger)
	test.That(t, utils.IsConfigurationError(err), test.ShouldBeTrue)

	_, err = motor.NewGroup([]motor.Motor{nil}, nil, logger)
	test.That(t, utils.IsConfigurationError(err), test.ShouldBeTrue)

	g, err := motor.NewGroup(motors, nil, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, g.Len(), test.ShouldEqual, 2)
}

func TestGroupApply(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewTestLogger(t)
	motors, fakes := fakeMotors(3)
	g, err := motor.NewGroup(motors, []bool{false, true, false}, logger)
	test.That(t, err, test.ShouldBeNil)

	t.Run("powers", func(t *testing.T) {
		err := g.Apply(ctx, motor.CommandSet{{Value: 0.25}, {Value: 0.5}, {Value: 3}})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, fakes[0].PowerPct(), test.ShouldEqual, 0.25)
		test.That(t, fakes[1].PowerPct(), test.ShouldEqual, -0.5)
		test.That(t, fakes[2].PowerPct(), test.ShouldEqual, 1.0)
	})

	t.Run("button brakes", func(t *testing.T) {
		err := g.Apply(ctx, motor.CommandSet{{Value: 0.25, Button: true}, {Value: 0.5}, {}})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, fakes[0].PowerPct(), test.ShouldEqual, 0.0)
		test.That(t, fakes[0].Stops(), test.ShouldEqual, 1)
	})

	t.Run("length mismatch touches nothing", func(t *testing.T) {
		err := g.Apply(ctx, motor.CommandSet{{Value: -1}})
		test.That(t, utils.IsActuatorFault(err), test.ShouldBeTrue)
		test.That(t, err.Error(), test.ShouldContainSubstring, "got 1 commands for 3 actuators")
		test.That(t, fakes[0].PowerPct(), test.ShouldEqual, 0.0)
	})

	t.Run("motor failure still drives the rest", func(t *testing.T) {
		fakes[1].Fail(errors.New("stalled"))
		defer fakes[1].Fail(nil)

		err := g.Apply(ctx, motor.CommandSet{{Value: 0.1}, {Value: 0.1}, {Value: 0.1}})
		test.That(t, utils.IsActuatorFault(err), test.ShouldBeTrue)
		test.That(t, err.Error(), test.ShouldContainSubstring, "stalled")
		test.That(t, fakes[0].PowerPct(), test.ShouldEqual, 0.1)
		test.That(t, fakes[2].PowerPct(), test.ShouldEqual, 0.1)
	})

	t.Run("stop", func(t *testing.T) {
		test.That(t, g.Stop(ctx), test.ShouldBeNil)
		for _, f := range fakes {
			test.That(t, f.PowerPct(), test.ShouldEqual, 0.0)
		}
	})
}

func TestGroupInjectedMotors(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewTestLogger(t)

	var powers []float64
	var stops int
	left := &inject.Motor{Motor: &fake.Motor{Name: "left"}}
	left.SetPowerFunc = func(ctx context.Context, powerPct float64, extra map[string]interface{}) error {
		powers = append(powers, powerPct)
		return left.Motor.SetPower(ctx, powerPct, extra)
	}
	right := &inject.Motor{Motor: &fake.Motor{Name: "right"}}
	right.StopFunc = func(ctx context.Context, extra map[string]interface{}) error {
		stops++
		return errors.New("brake stuck")
	}

	g, err := motor.NewGroup([]motor.Motor{left, right}, nil, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, g.Len(), test.ShouldEqual, 2)

	err = g.Apply(ctx, motor.CommandSet{{Value: 0.4}, {Value: 0.9, Button: true}})
	test.That(t, utils.IsActuatorFault(err), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "brake stuck")
	test.That(t, powers, test.ShouldResemble, []float64{0.4})
	test.That(t, stops, test.ShouldEqual, 1)

	// Methods without an injected func fall through to the wrapped motor.
	on, pct, err := left.IsPowered(ctx, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, on, test.ShouldBeTrue)
	test.That(t, pct, test.ShouldEqual, 0.4)

	right.IsPoweredFunc = func(ctx context.Context, extra map[string]interface{}) (bool, float64, error) {
		return false, 0, errors.New("no feedback")
	}
	_, _, err = right.IsPowered(ctx, nil)
	test.That(t, err, test.ShouldNotBeNil)
}
