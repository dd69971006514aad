package logging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.viam.com/test"
)

func TestObservedLevels(t *testing.T) {
	logger, observed := NewObservedTestLogger(t)

	logger.Debugw("debug", "k", 1)
	logger.Infow("info", "n", 2)
	logger.Warnw("warn")
	logger.Errorw("error", "err", "boom")
	test.That(t, observed.Len(), test.ShouldEqual, 4)

	logger.SetLevel(WARN)
	test.That(t, logger.GetLevel(), test.ShouldEqual, WARN)
	logger.Debugw("dropped")
	logger.Infow("dropped")
	logger.Warnw("kept")
	test.That(t, observed.Len(), test.ShouldEqual, 5)
	test.That(t, observed.FilterMessage("dropped").Len(), test.ShouldEqual, 0)

	entries := observed.FilterMessage("error").All()
	test.That(t, entries, test.ShouldHaveLength, 1)
	test.That(t, entries[0].ContextMap()["err"], test.ShouldEqual, "boom")
}

func TestUnpairedKey(t *testing.T) {
	logger, observed := NewObservedTestLogger(t)
	logger.Infow("msg", "lonely")

	entries := observed.All()
	test.That(t, entries, test.ShouldHaveLength, 1)
	test.That(t, entries[0].ContextMap()["lonely"], test.ShouldNotBeNil)
}

func TestSublogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewBlankLogger("robot")
	logger.AddAppender(NewWriterAppender(&buf))

	sub := logger.Sublogger("drive")
	sub.Infow("tick", "n", 3)

	line := buf.String()
	test.That(t, line, test.ShouldContainSubstring, "robot.drive")
	test.That(t, line, test.ShouldContainSubstring, "INFO")
	test.That(t, line, test.ShouldContainSubstring, "logging/logging_test.go")
	test.That(t, line, test.ShouldContainSubstring, `{"n": 3}`)

	// Level changes on the child do not leak to the parent.
	sub.SetLevel(ERROR)
	test.That(t, logger.GetLevel(), test.ShouldEqual, DEBUG)
}

func TestLevelFromString(t *testing.T) {
	for inp, expected := range map[string]Level{
		"debug":   DEBUG,
		"INFO":    INFO,
		"Warn":    WARN,
		"warning": WARN,
		"error":   ERROR,
	} {
		level, err := LevelFromString(inp)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, level, test.ShouldEqual, expected)
	}

	_, err := LevelFromString("loud")
	test.That(t, err, test.ShouldNotBeNil)

	var level Level
	test.That(t, json.Unmarshal([]byte(`"warn"`), &level), test.ShouldBeNil)
	test.That(t, level, test.ShouldEqual, WARN)
	out, err := json.Marshal(ERROR)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(out), test.ShouldEqual, `"error"`)
}

func TestFileAppender(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "drived.log")
	appender := NewFileAppender(filename)

	logger := NewBlankLogger("file")
	logger.AddAppender(appender)
	logger.Infow("first", "tick", 1)
	logger.Errorw("second", "tick", 2)
	test.That(t, logger.Sync(), test.ShouldBeNil)
	test.That(t, appender.Close(), test.ShouldBeNil)

	f, err := os.Open(filename)
	test.That(t, err, test.ShouldBeNil)
	defer f.Close()

	var lines []map[string]interface{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var line map[string]interface{}
		test.That(t, json.Unmarshal(scanner.Bytes(), &line), test.ShouldBeNil)
		lines = append(lines, line)
	}
	test.That(t, lines, test.ShouldHaveLength, 2)
	test.That(t, lines[0]["msg"], test.ShouldEqual, "first")
	test.That(t, lines[0]["logger"], test.ShouldEqual, "file")
	test.That(t, strings.ToLower(lines[1]["level"].(string)), test.ShouldEqual, "error")
	test.That(t, lines[1]["tick"], test.ShouldEqual, 2.0)
}
