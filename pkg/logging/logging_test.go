package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level LogLevel
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LogLevel(42), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("LogLevel(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	Init(LevelInfo, &buf)

	Debug("Test", "should be filtered")
	Info("Test", "should appear")

	out := buf.String()
	if strings.Contains(out, "should be filtered") {
		t.Errorf("debug message leaked through info filter: %q", out)
	}
	if !strings.Contains(out, "should appear") {
		t.Errorf("info message missing from output: %q", out)
	}
}

func TestSubsystemAndErrorAttrs(t *testing.T) {
	var buf bytes.Buffer
	Init(LevelDebug, &buf)

	Error("Query", errFake("boom"), "query failed")

	out := buf.String()
	if !strings.Contains(out, "subsystem=Query") {
		t.Errorf("missing subsystem attribute: %q", out)
	}
	if !strings.Contains(out, "boom") {
		t.Errorf("missing error attribute: %q", out)
	}
}

func TestFormatArgs(t *testing.T) {
	var buf bytes.Buffer
	Init(LevelDebug, &buf)

	Info("Order", "Sorting: pass #%d", 3)

	if !strings.Contains(buf.String(), "Sorting: pass #3") {
		t.Errorf("format args not applied: %q", buf.String())
	}
}

type errFake string

func (e errFake) Error() string { return string(e) }
