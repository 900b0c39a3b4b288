package dievent

type partialLogger struct{}

func (partialLogger) LogEvent(ev Event) { // want `partialLogger doesn't handle \[\*Resolved\]`
	switch ev.(type) {
	case *CacheHit:
	case *Compiled:
	case *Built:
	}
}
