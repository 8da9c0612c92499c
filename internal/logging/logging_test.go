package logging

import (
	"errors"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", LevelDebug},
		{"info", LevelInfo},
		{"warn", LevelWarn},
		{"warning", LevelWarn},
		{"error", LevelError},
		{"", LevelInfo},
		{"bogus", LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseFormat(t *testing.T) {
	if ParseFormat("json") != FormatJSON {
		t.Error("json should parse to FormatJSON")
	}
	if ParseFormat("text") != FormatText || ParseFormat("") != FormatText {
		t.Error("anything else should parse to FormatText")
	}
}

func TestHelpersAfterInit(t *testing.T) {
	// The helpers must work at any level without touching shared state
	// beyond the default logger.
	InitLogger(LevelDebug, FormatJSON)
	defer InitLogger(LevelInfo, FormatText)

	Debug("debug message", "k", "v")
	Info("info message")
	Warn("warn message")
	Error("error message")
	RowSkipped(3, "GEN 1:1", "reason")
	MarkupWarning("token", "GEN 1:1")
	BookFailed("GEN", errors.New("boom"))
	BookWritten("GEN", "out/GEN.usfm")
}
