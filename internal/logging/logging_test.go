package logging

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"verbose", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewFiltersByLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := New("warn", &buf)
	log.Debug("hidden")
	log.Info("hidden too")
	log.Warn("file skipped", zap.String("file", "big.h"))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("below-level entries written: %q", out)
	}
	if !strings.Contains(out, "WARN") || !strings.Contains(out, "file skipped") || !strings.Contains(out, "big.h") {
		t.Errorf("warning missing from output: %q", out)
	}
}

func TestNewDebug(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	New("debug", &buf).Debug("registration", zap.String("type", "MyItem"))
	if !strings.Contains(buf.String(), "MyItem") {
		t.Errorf("debug entry missing: %q", buf.String())
	}
}
