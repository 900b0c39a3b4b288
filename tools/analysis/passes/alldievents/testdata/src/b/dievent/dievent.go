package dievent

// Same names as the real package, different import path.

type (
	Logger interface{ LogEvent(Event) }
	Event  interface{ event() }
)
