package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]string{
		"":        "info",
		"DEBUG":   "debug",
		"trace":   "debug",
		"warning": "warn",
		"error":   "error",
		"bogus":   "info",
	}
	for in, want := range cases {
		if got := ParseLevel(in).String(); got != want {
			t.Errorf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestNewWritesDailyFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	day := time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)
	now := day
	log, closeFn, err := New(Options{Dir: dir, Level: "debug", Now: func() time.Time { return now }})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	log.Debugw("first", "request_id", "abc")
	now = day.Add(24 * time.Hour)
	log.Infow("second")
	closeFn()

	first, err := os.ReadFile(filepath.Join(dir, "thirdspace.log.2026-03-05"))
	if err != nil {
		t.Fatalf("read first day: %v", err)
	}
	if !strings.Contains(string(first), `"request_id":"abc"`) {
		t.Fatalf("first day log missing field: %s", first)
	}
	second, err := os.ReadFile(filepath.Join(dir, "thirdspace.log.2026-03-06"))
	if err != nil {
		t.Fatalf("read second day: %v", err)
	}
	if !strings.Contains(string(second), `"msg":"second"`) {
		t.Fatalf("second day log = %s", second)
	}
}

func TestNewRespectsLevelEnv(t *testing.T) {
	t.Setenv(LevelEnv, "error")
	dir := t.TempDir()
	log, closeFn, err := New(Options{Dir: dir})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if log.Desugar().Core().Enabled(zap.InfoLevel) {
		t.Fatal("info must be disabled at error level")
	}
	closeFn()
}

func TestNewFallsBackToStderr(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	if err := os.WriteFile(blocker, nil, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	log, closeFn, err := New(Options{Dir: filepath.Join(blocker, "logs")})
	if err == nil {
		t.Fatal("expected error for unusable log directory")
	}
	if log == nil {
		t.Fatal("logger must still be returned")
	}
	closeFn()
}

func TestCleanupRemovesOldFiles(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()

	oldLog := filepath.Join(dir, "thirdspace.log.2020-01-01")
	freshLog := filepath.Join(dir, "thirdspace.log.2026-01-01")
	other := filepath.Join(dir, "notes.txt")
	for _, p := range []string{oldLog, freshLog, other} {
		if err := os.WriteFile(p, []byte("x"), 0o600); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}
	old := now.Add(-15 * 24 * time.Hour)
	if err := os.Chtimes(oldLog, old, old); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}
	if err := os.Chtimes(other, old, old); err != nil {
		t.Fatalf("Chtimes: %v", err)
	}

	Cleanup(dir, now)

	if _, err := os.Stat(oldLog); !os.IsNotExist(err) {
		t.Fatal("old log should be removed")
	}
	if _, err := os.Stat(freshLog); err != nil {
		t.Fatal("fresh log should be kept")
	}
	if _, err := os.Stat(other); err != nil {
		t.Fatal("files without the log prefix must be kept")
	}
}
