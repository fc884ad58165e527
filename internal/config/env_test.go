package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestGetEnvFallbacks(t *testing.T) {
	t.Setenv("PORTFOLIO_TEST_STR", "value")
	t.Setenv("PORTFOLIO_TEST_INT", "42")
	t.Setenv("PORTFOLIO_TEST_BAD_INT", "forty-two")
	t.Setenv("PORTFOLIO_TEST_DUR", "90s")
	t.Setenv("PORTFOLIO_TEST_BOOL", "true")

	if got := GetEnv("PORTFOLIO_TEST_STR", "x"); got != "value" {
		t.Errorf("GetEnv = %q, want value", got)
	}
	if got := GetEnv("PORTFOLIO_TEST_UNSET", "x"); got != "x" {
		t.Errorf("GetEnv unset = %q, want x", got)
	}
	if got := GetEnvInt("PORTFOLIO_TEST_INT", 1); got != 42 {
		t.Errorf("GetEnvInt = %d, want 42", got)
	}
	if got := GetEnvInt("PORTFOLIO_TEST_BAD_INT", 1); got != 1 {
		t.Errorf("GetEnvInt malformed = %d, want fallback 1", got)
	}
	if got := GetEnvDuration("PORTFOLIO_TEST_DUR", time.Second); got != 90*time.Second {
		t.Errorf("GetEnvDuration = %v, want 90s", got)
	}
	if got := GetEnvBool("PORTFOLIO_TEST_BOOL", false); !got {
		t.Error("GetEnvBool = false, want true")
	}
	if got := GetEnvBool("PORTFOLIO_TEST_UNSET", true); !got {
		t.Error("GetEnvBool unset = false, want fallback true")
	}
}

func TestLoadReadsDotEnvWithoutOverriding(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "PORTFOLIO_TEST_FROM_FILE=file\nPORTFOLIO_TEST_PRESET=file\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PORTFOLIO_TEST_PRESET", "env")
	t.Cleanup(func() { os.Unsetenv("PORTFOLIO_TEST_FROM_FILE") })

	if err := Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := os.Getenv("PORTFOLIO_TEST_FROM_FILE"); got != "file" {
		t.Errorf("PORTFOLIO_TEST_FROM_FILE = %q, want file", got)
	}
	if got := os.Getenv("PORTFOLIO_TEST_PRESET"); got != "env" {
		t.Errorf("PORTFOLIO_TEST_PRESET = %q, want env (already set)", got)
	}
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	if err := Load(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("Load(missing) = %v, want nil", err)
	}
}

func TestNewLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "test", "warn")
	if logger.GetLevel() != log.WarnLevel {
		t.Errorf("level = %v, want warn", logger.GetLevel())
	}

	buf.Reset()
	logger = newLogger(&buf, "test", "loud")
	if logger.GetLevel() != log.InfoLevel {
		t.Errorf("level for bad value = %v, want info", logger.GetLevel())
	}
	if !strings.Contains(buf.String(), "LOG_LEVEL") {
		t.Errorf("expected a warning about LOG_LEVEL, got %q", buf.String())
	}
}
