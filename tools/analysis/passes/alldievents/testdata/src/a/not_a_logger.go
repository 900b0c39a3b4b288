package a

import "github.com/dimod/di/dievent"

type notALogger struct{}

// Returns an error, so it is not a dievent.Logger.
func (*notALogger) LogEvent(ev dievent.Event) error {
	_, ok := ev.(*dievent.Resolved)
	_ = ok
	return nil
}
