package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/qui-ball/virtualGM/internal/config"
)

func TestNewFormats(t *testing.T) {
	tests := []struct {
		name string
		env  string
		json bool
	}{
		{"development uses text", "development", false},
		{"production uses json", "production", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := New(&config.Config{Environment: tt.env, LogLevel: slog.LevelInfo}, &buf)
			WithSession(l, "abc").Info("hello")

			line := strings.TrimSpace(buf.String())
			var decoded map[string]any
			isJSON := json.Unmarshal([]byte(line), &decoded) == nil
			if isJSON != tt.json {
				t.Errorf("json output = %v, want %v: %s", isJSON, tt.json, line)
			}
			if !strings.Contains(line, "abc") {
				t.Errorf("session id missing from %s", line)
			}
		})
	}
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&config.Config{LogLevel: slog.LevelWarn}, &buf)
	l.Info("quiet")
	WithError(l, errors.New("boom")).Warn("loud")

	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Error("info line written at warn level")
	}
	if !strings.Contains(out, "boom") {
		t.Errorf("error attribute missing: %s", out)
	}
}

func TestSetupLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gm.log")
	l, closer, err := Setup(&config.Config{LogFile: path, LogLevel: slog.LevelInfo})
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	l.Info("to file")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "to file") {
		t.Errorf("log file = %q", data)
	}
}
