package logger

import (
	"os"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"ERR", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"something", zerolog.InfoLevel},
	}
	for _, c := range cases {
		if got := parseLevel(c.in); got != c.want {
			t.Fatalf("parseLevel(%q)=%v, want %v", c.in, got, c.want)
		}
	}
}

func TestGetenv(t *testing.T) {
	t.Setenv("X", "val")
	if v := getenv("X", "def"); v != "val" {
		t.Fatalf("getenv returned %q, want 'val'", v)
	}
	if v := getenv("Y", "def"); v != "def" {
		t.Fatalf("getenv returned %q, want 'def'", v)
	}
}

func TestInitAndL(t *testing.T) {
	_ = os.Unsetenv("LOG_LEVEL")
	_ = os.Unsetenv("LOG_PRETTY")
	Init()
	if L() == nil {
		t.Fatalf("L() returned nil")
	}

	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_PRETTY", "true")
	Init()
	if L().GetLevel() != zerolog.DebugLevel {
		t.Fatalf("expected debug level, got %v", L().GetLevel())
	}
}

// Ensure L() initializes the level even when Init was never called.
func TestLoggerAccessor_NotNil(t *testing.T) {
	base = zerolog.Logger{}
	lg := L()
	if lg == nil {
		t.Fatalf("logger is nil")
	}
	if lg.GetLevel() == zerolog.NoLevel {
		t.Fatalf("logger level not initialized")
	}
}

func TestRunLogger(t *testing.T) {
	Init()
	lg := Run("abc-123", "currency")
	// The child logger must remain usable at the global level.
	if lg.GetLevel() != L().GetLevel() {
		t.Fatalf("run logger level %v, want %v", lg.GetLevel(), L().GetLevel())
	}
}
