package logger

import (
	"log"
	"os"
)

type Logger interface {
	Info(v ...interface{})
	Error(v ...interface{})
	Fatal(v ...interface{})
}

type logger struct {
	infoLogger  log.Logger
	errorLogger log.Logger
}

func (l logger) Info(v ...interface{}) {
	l.infoLogger.Println(v...)
}

func (l logger) Error(v ...interface{}) {
	l.errorLogger.Println(v...)
}

func (l logger) Fatal(v ...interface{}) {
	l.Error(v...)
	os.Exit(1)
}

func NewLogger(prefix string) Logger {
	return &logger{
		infoLogger:  *log.New(log.Writer(), prefix+" INFO ", log.Lmsgprefix),
		errorLogger: *log.New(log.Writer(), prefix+" ERROR ", log.Lmsgprefix),
	}
}

// Throttle caps the number of log lines emitted per context key within one
// invocation, so a batch full of broken records cannot flood the log sink.
// It is invocation-scoped and not safe for concurrent use: create one per
// invocation, never share one across invocations.
type Throttle struct {
	limit  int
	counts map[string]int
}

func NewThrottle(limit int) *Throttle {
	if limit <= 0 {
		limit = 10
	}
	return &Throttle{limit: limit, counts: make(map[string]int)}
}

// Allow reports whether another log line may be emitted for key.
func (t *Throttle) Allow(key string) bool {
	t.counts[key]++
	return t.counts[key] <= t.limit
}

// Suppressed returns how many lines were dropped for key.
func (t *Throttle) Suppressed(key string) int {
	n := t.counts[key] - t.limit
	if n < 0 {
		return 0
	}
	return n
}

// Overflowed lists the keys that hit the limit, with their dropped counts.
func (t *Throttle) Overflowed() map[string]int {
	overflowed := make(map[string]int)
	for key := range t.counts {
		if n := t.Suppressed(key); n > 0 {
			overflowed[key] = n
		}
	}
	return overflowed
}
