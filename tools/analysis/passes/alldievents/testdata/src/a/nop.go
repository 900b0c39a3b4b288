package a

import "github.com/dimod/di/dievent"

type nopLogger struct{}

func (nopLogger) LogEvent(dievent.Event) {}
