package logger

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func TestStandardLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewStandardLogger(log.New(&buf, "", 0), Debug, "[test]")

	t.Run("Info", func(t *testing.T) {
		buf.Reset()
		logger.Info("hello", "key", "value")
		out := buf.String()
		if !strings.Contains(out, "[INFO] hello") {
			t.Errorf("expected info line, got %q", out)
		}
		if !strings.Contains(out, "key=value") {
			t.Errorf("expected key/value pair, got %q", out)
		}
	})

	t.Run("LevelFiltering", func(t *testing.T) {
		buf.Reset()
		quiet := logger.LogMode(Error)
		quiet.Debug("should not appear")
		quiet.Warn("should not appear either")
		if buf.Len() != 0 {
			t.Errorf("expected no output at Error level, got %q", buf.String())
		}
		quiet.Error("boom")
		if !strings.Contains(buf.String(), "[ERROR] boom") {
			t.Errorf("expected error line, got %q", buf.String())
		}
	})

	t.Run("OddArgs", func(t *testing.T) {
		buf.Reset()
		logger.Warn("odd", "dangling")
		if !strings.Contains(buf.String(), "dangling=(no value)") {
			t.Errorf("expected placeholder for missing value, got %q", buf.String())
		}
	})
}

func TestDiscard(t *testing.T) {
	// Must be safe to call with any arguments.
	Discard.Info("ignored", "k", "v")
	Discard.Error("ignored")
	if Discard.LogMode(Debug) != Discard {
		t.Error("LogMode on Discard should return Discard")
	}
}
