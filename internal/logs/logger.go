package logs

import (
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"self-healing-kernel/internal/clock"
	"self-healing-kernel/internal/metrics"
)

type Level string

const (
	INFO    Level = "INFO"
	WARNING Level = "WARNING"
	SUCCESS Level = "SUCCESS"
)

const (
	// DefaultMaxBytes is the size above which a log file is rotated.
	DefaultMaxBytes int64 = 16 * 1024

	// RotatedSuffix is appended to the file name of the archived generation.
	RotatedSuffix = ".old"

	timeLayout = "2006-01-02 15:04:05"
)

type Entry struct {
	TimeStamp time.Time `json:"timestamp"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
}

// Line renders the entry as one newline-terminated audit line.
func (e Entry) Line() string {
	return fmt.Sprintf("[%s] [%s] %s\n", e.TimeStamp.Format(timeLayout), e.Level, e.Message)
}

// Outcome reports what happened to a single append.
type Outcome int

const (
	Written Outcome = iota
	Rotated
	Dropped
)

func (o Outcome) String() string {
	switch o {
	case Written:
		return "written"
	case Rotated:
		return "rotated"
	case Dropped:
		return "dropped"
	default:
		return "unknown"
	}
}

// Sink is the write side of an audit destination.
type Sink interface {
	Append(level Level, msg string) Outcome
}

// FileLog is an append-only audit file with single-generation size rotation.
//
// Every Append opens the file, writes one line and closes it again, so the
// file can be removed or rotated externally between writes. A destination
// that cannot be opened drops the record; the caller only sees Dropped.
//
// The most recent records are also kept in memory (ring behavior) for the
// status surfaces.
type FileLog struct {
	mu       sync.Mutex
	path     string
	maxBytes int64
	clock    clock.Clock
	metrics  *metrics.Registry
	diag     *zap.Logger

	entries  []Entry
	tailSize int
}

// NewFileLog creates an audit log writing to path.
//
// maxBytes <= 0 falls back to DefaultMaxBytes; tailSize is the number of
// records kept in memory. reg and diag may be nil.
func NewFileLog(
	path string,
	maxBytes int64,
	tailSize int,
	clk clock.Clock,
	reg *metrics.Registry,
	diag *zap.Logger,
) *FileLog {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	if tailSize < 0 {
		tailSize = 0
	}
	if reg == nil {
		reg = metrics.NewRegistry()
	}
	if diag == nil {
		diag = zap.NewNop()
	}
	return &FileLog{
		path:     path,
		maxBytes: maxBytes,
		clock:    clk,
		metrics:  reg,
		diag:     diag,
		entries:  make([]Entry, 0, tailSize),
		tailSize: tailSize,
	}
}

// Path returns the active file name.
func (l *FileLog) Path() string {
	return l.path
}

// RotatedPath returns the name the active file is archived under.
func (l *FileLog) RotatedPath() string {
	return l.path + RotatedSuffix
}

// Append writes one record and rotates the file if it grew past the limit.
func (l *FileLog) Append(level Level, msg string) Outcome {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := Entry{TimeStamp: l.clock.Now(), Level: level, Message: msg}
	if !l.write(os.O_APPEND, entry) {
		return Dropped
	}

	if l.rotateIfNeeded() {
		return Rotated
	}
	return Written
}

// write opens the file with the given extra flag, writes entry and closes it.
func (l *FileLog) write(flag int, entry Entry) bool {
	f, err := os.OpenFile(l.path, flag|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		l.drop(entry, err)
		return false
	}

	_, err = f.WriteString(entry.Line())
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		l.drop(entry, err)
		return false
	}

	l.metrics.Inc(metrics.AuditWritesTotal)
	l.remember(entry)
	return true
}

func (l *FileLog) drop(entry Entry, err error) {
	l.metrics.Inc(metrics.AuditWritesDroppedTotal)
	l.diag.Debug("audit record dropped",
		zap.String("path", l.path),
		zap.String("level", string(entry.Level)),
		zap.Error(err),
	)
}

// rotateIfNeeded archives the active file once it exceeds maxBytes and
// starts a fresh one whose first record documents the rotation.
func (l *FileLog) rotateIfNeeded() bool {
	st, err := os.Stat(l.path)
	if err != nil || st.Size() <= l.maxBytes {
		return false
	}

	oldName := l.RotatedPath()
	if err := os.Rename(l.path, oldName); err != nil {
		// Keep the oversized file; the next append tries again.
		l.diag.Debug("audit rotation failed", zap.String("path", l.path), zap.Error(err))
		return false
	}
	l.metrics.Inc(metrics.AuditRotationsTotal)

	l.write(os.O_TRUNC, Entry{
		TimeStamp: l.clock.Now(),
		Level:     INFO,
		Message:   "Log rotated. Old log saved as " + oldName,
	})
	return true
}

// remember stores entry in the in-memory tail, evicting the oldest.
func (l *FileLog) remember(entry Entry) {
	if l.tailSize == 0 {
		return
	}
	if len(l.entries) >= l.tailSize {
		//remove oldest entry(ring behavior)
		l.entries = l.entries[1:]
	}
	l.entries = append(l.entries, entry)
}

// GetLast returns up to n of the most recent records, oldest first.
func (l *FileLog) GetLast(n int) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	if n < 0 {
		n = 0
	}
	if n > len(l.entries) {
		out := make([]Entry, len(l.entries))
		copy(out, l.entries)
		return out
	}

	start := len(l.entries) - n
	out := make([]Entry, n)
	copy(out, l.entries[start:])
	return out
}
