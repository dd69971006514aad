package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.viam.com/test"
	"go.viam.com/utils/testutils"

	"github.com/fieldbot/drivecore/components/input"
	"github.com/fieldbot/drivecore/logging"
	"github.com/fieldbot/drivecore/services/drive"
	"github.com/fieldbot/drivecore/utils"
)

const fullConfig = `{
	"drive_type": "tank",
	"frequency_hz": 100,
	"read_timeout": "15ms",
	"controllers": [{"axes": 2, "buttons": 1}, {"axes": 2, "buttons": 1}],
	"actuators": [{"name": "left"}, {"name": "right", "invert": true}],
	"tank": {"axis": 1, "button": 0, "deadband": 0.05},
	"arcade": {"forward": 1, "turn": 0},
	"heading": {"samples": 3},
	"log": {"level": "debug", "file": "/tmp/drived.log"}
}`

func TestFromReader(t *testing.T) {
	cfg, err := FromReader(strings.NewReader(fullConfig))
	test.That(t, err, test.ShouldBeNil)

	test.That(t, cfg.DriveType, test.ShouldEqual, drive.Tank)
	test.That(t, cfg.FrequencyHz, test.ShouldEqual, 100.0)
	test.That(t, cfg.ReadTimeout, test.ShouldEqual, 15*time.Millisecond)
	test.That(t, cfg.Shape(), test.ShouldResemble, input.Shape{{Axes: 2, Buttons: 1}, {Axes: 2, Buttons: 1}})
	test.That(t, cfg.ActuatorNames(), test.ShouldResemble, []string{"left", "right"})
	test.That(t, cfg.Inversions(), test.ShouldResemble, []bool{false, true})
	test.That(t, cfg.Tank, test.ShouldResemble, TankConfig{Axis: 1, Button: 0, Deadband: 0.05})
	test.That(t, cfg.Arcade, test.ShouldResemble, ArcadeConfig{Forward: 1, Turn: 0})
	test.That(t, cfg.Heading.Samples, test.ShouldEqual, 3)
	test.That(t, cfg.LogLevel(), test.ShouldEqual, logging.DEBUG)
	test.That(t, cfg.Log.File, test.ShouldEqual, "/tmp/drived.log")

	dcfg := cfg.DriveConfig()
	test.That(t, dcfg.Actuators, test.ShouldEqual, 2)
	test.That(t, dcfg.ReadTimeout, test.ShouldEqual, 15*time.Millisecond)
	test.That(t, dcfg.Shape.Equal(cfg.Shape()), test.ShouldBeTrue)
}

func TestDefaults(t *testing.T) {
	cfg, err := FromReader(strings.NewReader(`{
		"drive_type": "arcade",
		"controllers": [{"axes": 2, "buttons": 0}],
		"actuators": [{"name": "l"}, {"name": "r"}]
	}`))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.DriveType, test.ShouldEqual, drive.Arcade)
	test.That(t, cfg.FrequencyHz, test.ShouldEqual, float64(DefaultFrequencyHz))
	test.That(t, cfg.ReadTimeout, test.ShouldEqual, drive.DefaultReadTimeout)
	test.That(t, cfg.Arcade, test.ShouldResemble, ArcadeConfig{Forward: 0, Turn: 1})
	test.That(t, cfg.Heading.Samples, test.ShouldEqual, 1)
	test.That(t, cfg.LogLevel(), test.ShouldEqual, logging.INFO)
}

func TestValidationErrors(t *testing.T) {
	base := func() map[string]interface{} {
		return map[string]interface{}{
			"drive_type":  "tank",
			"controllers": []interface{}{map[string]interface{}{"axes": 1, "buttons": 1}, map[string]interface{}{"axes": 1, "buttons": 1}},
			"actuators":   []interface{}{map[string]interface{}{"name": "left"}, map[string]interface{}{"name": "right"}},
		}
	}

	for _, tc := range []struct {
		name   string
		mutate func(map[string]interface{})
		want   []string
	}{
		{"missing drive type", func(m map[string]interface{}) { delete(m, "drive_type") }, []string{`"drive_type" is required`}},
		{"unknown drive type", func(m map[string]interface{}) { m["drive_type"] = "mecanum" }, []string{"mecanum"}},
		{"numeric drive type", func(m map[string]interface{}) { m["drive_type"] = 1 }, []string{`unknown drive type "1"`}},
		{"boolean drive type", func(m map[string]interface{}) { m["drive_type"] = true }, []string{"drive type must be a name"}},
		{"missing controllers", func(m map[string]interface{}) { delete(m, "controllers") }, []string{`"controllers" is required`}},
		{"missing actuators", func(m map[string]interface{}) { m["actuators"] = []interface{}{} }, []string{`"actuators" is required`}},
		{
			"unnamed actuator",
			func(m map[string]interface{}) {
				m["actuators"] = []interface{}{map[string]interface{}{"name": "left"}, map[string]interface{}{"invert": true}}
			},
			[]string{"config.actuators.1", `"name" is required`},
		},
		{
			"duplicate actuator",
			func(m map[string]interface{}) {
				m["actuators"] = []interface{}{map[string]interface{}{"name": "a"}, map[string]interface{}{"name": "a"}}
			},
			[]string{"config.actuators.1", "duplicate"},
		},
		{
			"negative axes",
			func(m map[string]interface{}) {
				m["controllers"] = []interface{}{map[string]interface{}{"axes": -1, "buttons": 1}}
			},
			[]string{"config.controllers.0"},
		},
		{"frequency too high", func(m map[string]interface{}) { m["frequency_hz"] = 500 }, []string{"frequency_hz"}},
		{"frequency zero", func(m map[string]interface{}) { m["frequency_hz"] = 0 }, []string{"frequency_hz"}},
		{"negative timeout", func(m map[string]interface{}) { m["read_timeout"] = "-1s" }, []string{"read_timeout"}},
		{"bad timeout", func(m map[string]interface{}) { m["read_timeout"] = "soon" }, []string{"soon"}},
		{"deadband", func(m map[string]interface{}) { m["tank"] = map[string]interface{}{"deadband": 1.5} }, []string{"config.tank", "deadband"}},
		{"arcade axes collide", func(m map[string]interface{}) { m["arcade"] = map[string]interface{}{"forward": 1, "turn": 1} }, []string{"config.arcade"}},
		{"heading samples", func(m map[string]interface{}) { m["heading"] = map[string]interface{}{"samples": 0} }, []string{"config.heading"}},
		{"log level", func(m map[string]interface{}) { m["log"] = map[string]interface{}{"level": "loud"} }, []string{"config.log", "loud"}},
		{"unknown field", func(m map[string]interface{}) { m["wheels"] = 4 }, []string{"wheels"}},
		{
			"layout too small for strategy",
			func(m map[string]interface{}) {
				m["controllers"] = []interface{}{map[string]interface{}{"axes": 1, "buttons": 1}}
			},
			[]string{"need 2 controllers"},
		},
		{
			"tank button out of range",
			func(m map[string]interface{}) { m["tank"] = map[string]interface{}{"button": 3} },
			[]string{"buttons"},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			m := base()
			tc.mutate(m)
			raw, err := json.Marshal(m)
			test.That(t, err, test.ShouldBeNil)

			cfg, err := FromReader(strings.NewReader(string(raw)))
			test.That(t, cfg, test.ShouldBeNil)
			test.That(t, utils.IsConfigurationError(err), test.ShouldBeTrue)
			for _, want := range tc.want {
				test.That(t, err.Error(), test.ShouldContainSubstring, want)
			}
		})
	}

	t.Run("not json", func(t *testing.T) {
		_, err := FromReader(strings.NewReader("drive_type = tank"))
		test.That(t, utils.IsConfigurationError(err), test.ShouldBeTrue)
	})
}

func TestRegistry(t *testing.T) {
	cfg, err := FromReader(strings.NewReader(fullConfig))
	test.That(t, err, test.ShouldBeNil)

	reg, err := cfg.Registry()
	test.That(t, err, test.ShouldBeNil)
	s, err := reg.Lookup(drive.Tank)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, s, test.ShouldResemble, drive.TankStrategy{Axis: 1, Button: 0, Deadband: 0.05})
	s, err = reg.Lookup(drive.Arcade)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, s, test.ShouldResemble, drive.ArcadeStrategy{Forward: 1, Turn: 0})

	// The package-wide registry is untouched.
	s, err = drive.DefaultRegistry().Lookup(drive.Tank)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, s, test.ShouldResemble, drive.TankStrategy{})
}

func writeConfig(t *testing.T, path, contents string) {
	t.Helper()
	test.That(t, os.WriteFile(path, []byte(contents), 0o600), test.ShouldBeNil)
}

func TestRead(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "drive.json")

	t.Setenv("DRIVE_TYPE", "arcade")
	writeConfig(t, path, `{
		"drive_type": "${DRIVE_TYPE}",
		"controllers": [{"axes": 2, "buttons": 1}],
		"actuators": [{"name": "l"}, {"name": "r"}]
	}`)
	cfg, err := Read(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.DriveType, test.ShouldEqual, drive.Arcade)
	test.That(t, cfg.ConfigFilePath, test.ShouldEqual, path)

	_, err = Read(filepath.Join(dir, "missing.json"))
	test.That(t, utils.IsConfigurationError(err), test.ShouldBeTrue)
}

func TestWatcher(t *testing.T) {
	logger := logging.NewTestLogger(t)
	path := filepath.Join(t.TempDir(), "drive.json")
	writeConfig(t, path, fullConfig)

	changes := make(chan *Config, 10)
	w, err := NewWatcher(path, 10*time.Millisecond, func(cfg *Config) { changes <- cfg }, logger)
	test.That(t, err, test.ShouldBeNil)
	defer func() {
		test.That(t, w.Close(), test.ShouldBeNil)
	}()

	// An invalid edit is skipped.
	writeConfig(t, path, `{"drive_type": "mecanum"}`)
	writeConfig(t, path, strings.Replace(fullConfig, `"frequency_hz": 100`, `"frequency_hz": 25`, 1))

	var got *Config
	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		select {
		case got = <-changes:
		default:
		}
		test.That(tb, got, test.ShouldNotBeNil)
	})
	test.That(t, got.FrequencyHz, test.ShouldEqual, 25.0)

	test.That(t, w.Close(), test.ShouldBeNil)
}

func TestSchema(t *testing.T) {
	out, err := SchemaJSON()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(out), test.ShouldContainSubstring, "drive_type")
	test.That(t, string(out), test.ShouldContainSubstring, "actuators")
}
