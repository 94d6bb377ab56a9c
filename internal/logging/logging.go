// Package logging wires zerolog into a structured sink with a with_fields
// style helper, and an append-only JSON-lines action log per run.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps a zerolog.Logger. Fields returns a derived Logger carrying
// additional structured context, mirroring the with_fields idiom.
type Logger struct {
	zl zerolog.Logger
}

// New builds a Logger that writes to stderr.
func New() Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	return Logger{zl: zerolog.New(os.Stderr).With().Timestamp().Logger()}
}

// WithActionLog adds a second JSON-lines sink at logs/action_log_<ts>.txt,
// flushed on every write by virtue of zerolog performing unbuffered writes.
func (l Logger) WithActionLog(dir string) (Logger, *ActionLog, error) {
	if dir == "" {
		dir = "logs"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return l, nil, fmt.Errorf("create log dir: %w", err)
	}
	path := filepath.Join(dir, fmt.Sprintf("action_log_%d.txt", time.Now().UnixNano()))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return l, nil, fmt.Errorf("open action log: %w", err)
	}
	mw := zerolog.MultiLevelWriter(os.Stderr, f)
	return Logger{zl: zerolog.New(mw).With().Timestamp().Logger()}, &ActionLog{f: f, path: path}, nil
}

// ActionLog is the handle used to close the underlying file on shutdown.
type ActionLog struct {
	mu   sync.Mutex
	f    *os.File
	path string
}

func (a *ActionLog) Path() string {
	return a.path
}

func (a *ActionLog) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.f.Close()
}

// Fields returns a derived logger with the given key/value pairs attached to
// every subsequent record, matching the structured-sink idiom.
func (l Logger) Fields(kv map[string]any) Logger {
	ctx := l.zl.With()
	for k, v := range kv {
		ctx = ctx.Interface(k, v)
	}
	return Logger{zl: ctx.Logger()}
}

func (l Logger) Info(msg string, kv ...any)  { l.event(l.zl.Info(), msg, kv) }
func (l Logger) Warn(msg string, kv ...any)  { l.event(l.zl.Warn(), msg, kv) }
func (l Logger) Error(msg string, kv ...any) { l.event(l.zl.Error(), msg, kv) }
func (l Logger) Debug(msg string, kv ...any) { l.event(l.zl.Debug(), msg, kv) }

func (l Logger) event(ev *zerolog.Event, msg string, kv []any) {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		ev = ev.Interface(key, kv[i+1])
	}
	ev.Msg(msg)
}

// Writer exposes the underlying sink, e.g. for redirecting library output.
func (l Logger) Writer() io.Writer {
	return l.zl
}
