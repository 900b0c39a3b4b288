package a

import "github.com/dimod/di/dievent"

// Loggers in test files are not checked.
type testLogger struct{}

func (testLogger) LogEvent(ev dievent.Event) {
	_, _ = ev.(*dievent.Resolved)
}
