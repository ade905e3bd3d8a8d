package diag

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func init() {
	color.NoColor = true
}

func TestLogger_Levels(t *testing.T) {
	tests := []struct {
		name          string
		level         Level
		logFunc       func(Logger, string)
		expectedInLog bool
	}{
		{"debug hidden at info", LevelInfo, func(l Logger, m string) { l.Debug(m) }, false},
		{"info shown at info", LevelInfo, func(l Logger, m string) { l.Info(m) }, true},
		{"warn hidden at error", LevelError, func(l Logger, m string) { l.Warn(m) }, false},
		{"error shown at error", LevelError, func(l Logger, m string) { l.Error(m) }, true},
		{"debug shown at debug", LevelDebug, func(l Logger, m string) { l.Debug(m) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			tt.logFunc(New(tt.level, buf), "test message")
			assert.Equal(t, tt.expectedInLog, strings.Contains(buf.String(), "test message"))
		})
	}
}

func TestLogger_OneLinePerEvent(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(LevelInfo, buf).WithFields(F("file", "a.il"))

	log.Warn("signature mismatch", F("line", 12))
	log.Info("done")

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 2)
	assert.Equal(t, "WARN  signature mismatch | file=a.il line=12", lines[0])
	assert.Equal(t, "INFO  done | file=a.il", lines[1])
}

func TestLogger_WarningsCountedWhenSilent(t *testing.T) {
	log := Discard()
	child := log.WithFields(F("k", "v"))

	log.Warn("a")
	child.Error("b")
	child.Info("c")

	assert.Equal(t, 2, log.Warnings())
	assert.Equal(t, 2, child.Warnings())
}

func TestLevel_String(t *testing.T) {
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "UNKNOWN", Level(42).String())
}
