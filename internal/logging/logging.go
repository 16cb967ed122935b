// Package logging configures the zap logger: JSON lines into a daily log
// file under ~/.thirdspace/logs, with stderr as a fallback.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// FilePrefix is the common prefix of all log files; the date is appended.
	FilePrefix = "thirdspace.log"
	// RetentionDays is how long old log files are kept.
	RetentionDays = 14
	// LevelEnv selects the log level (debug, info, warn, error).
	LevelEnv = "THIRDSPACE_LOG"
)

// Options controls logger construction.
type Options struct {
	Dir    string // log directory; empty logs to stderr only
	Level  string // overrides LevelEnv when set
	Stderr bool   // mirror output to stderr
	Now    func() time.Time
}

// ParseLevel maps a level name to a zap level; unknown values mean info.
func ParseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug", "trace":
		return zap.DebugLevel
	case "error":
		return zap.ErrorLevel
	case "warn", "warning":
		return zap.WarnLevel
	default:
		return zap.InfoLevel
	}
}

// New builds the logger. The returned close function flushes and closes the
// log file. When the log directory cannot be created, the logger writes to
// stderr and err describes why.
func New(opts Options) (log *zap.SugaredLogger, closeFn func(), err error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	levelName := opts.Level
	if levelName == "" {
		levelName = os.Getenv(LevelEnv)
	}
	level := zap.NewAtomicLevelAt(ParseLevel(levelName))

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encCfg)

	var cores []zapcore.Core
	closeFn = func() {}

	if opts.Dir != "" {
		if mkErr := os.MkdirAll(opts.Dir, 0o700); mkErr != nil {
			err = fmt.Errorf("create log directory: %w", mkErr)
			opts.Stderr = true
		} else {
			Cleanup(opts.Dir, opts.Now())
			w := newDailyWriter(opts.Dir, opts.Now)
			cores = append(cores, zapcore.NewCore(encoder, w, level))
			closeFn = func() { _ = w.Close() }
		}
	} else {
		opts.Stderr = true
	}

	if opts.Stderr {
		consoleCfg := zap.NewDevelopmentEncoderConfig()
		consoleCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(consoleCfg),
			zapcore.Lock(os.Stderr),
			level,
		))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	sugar := logger.Sugar()
	if opts.Dir != "" && err == nil {
		sugar.Infow("Logging initialized", "log_dir", opts.Dir, "retention_days", RetentionDays)
	}

	inner := closeFn
	return sugar, func() {
		_ = logger.Sync()
		inner()
	}, err
}

// Cleanup removes log files older than RetentionDays.
func Cleanup(dir string, now time.Time) {
	cutoff := now.Add(-RetentionDays * 24 * time.Hour)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), FilePrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			_ = os.Remove(filepath.Join(dir, e.Name()))
		}
	}
}

// FileName returns the log file name for the given day.
func FileName(t time.Time) string {
	return FilePrefix + "." + t.Format("2006-01-02")
}

// dailyWriter appends to thirdspace.log.YYYY-MM-DD and switches files when
// the date changes.
type dailyWriter struct {
	mu   sync.Mutex
	dir  string
	now  func() time.Time
	day  string
	file *os.File
}

func newDailyWriter(dir string, now func() time.Time) *dailyWriter {
	return &dailyWriter{dir: dir, now: now}
}

func (w *dailyWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	day := FileName(w.now())
	if w.file == nil || day != w.day {
		if w.file != nil {
			_ = w.file.Close()
			w.file = nil
		}
		f, err := os.OpenFile(filepath.Join(w.dir, day), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return 0, err
		}
		w.file = f
		w.day = day
	}
	return w.file.Write(p)
}

func (w *dailyWriter) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	return w.file.Sync()
}

func (w *dailyWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}
