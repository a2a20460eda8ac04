package respond

import (
	"log"
	"sync/atomic"
	"testing"
)

// Logger can be implemented to get informed about important states.
type Logger interface {
	LogHandlerFailure(err error)
	LogHookFailure(err error)
	LogAbort(reason error)
	LogFinalStatus(status int)
}

type stdLogger struct{ *log.Logger }

func (l stdLogger) LogHandlerFailure(err error) {
	l.Logger.Printf("respond: unhandled handler failure: %s", err)
}

func (l stdLogger) LogHookFailure(err error) {
	l.Logger.Printf("respond: lifecycle hook failure: %s", err)
}

func (l stdLogger) LogAbort(reason error) {
	l.Logger.Printf("respond: mid-response abort: %s", reason)
}

func (l stdLogger) LogFinalStatus(status int) {
	l.Logger.Printf("respond: response completed with status %d", status)
}

func NewStdLogger(l *log.Logger) Logger {
	return stdLogger{l}
}

// TestLogger counts reported events so tests can assert on them.
type TestLogger struct {
	tb testing.TB

	NumHandlerFailure int64
	NumHookFailure    int64
	NumAbort          int64
	LastFinalStatus   int64
}

func NewTestLogger(tb testing.TB) *TestLogger {
	return &TestLogger{tb: tb}
}

func (l *TestLogger) LogHandlerFailure(err error) {
	atomic.AddInt64(&l.NumHandlerFailure, 1)
	l.tb.Logf("respond: unhandled handler failure: %s", err)
}

func (l *TestLogger) LogHookFailure(err error) {
	atomic.AddInt64(&l.NumHookFailure, 1)
	l.tb.Logf("respond: lifecycle hook failure: %s", err)
}

func (l *TestLogger) LogAbort(reason error) {
	atomic.AddInt64(&l.NumAbort, 1)
	l.tb.Logf("respond: mid-response abort: %s", reason)
}

func (l *TestLogger) LogFinalStatus(status int) {
	atomic.StoreInt64(&l.LastFinalStatus, int64(status))
	l.tb.Logf("respond: response completed with status %d", status)
}

var _ Logger = &TestLogger{}
