package dievent

// A partial dievent package with a fixed list of events to test against.

type (
	Logger   interface{ LogEvent(Event) }
	Event    interface{ event() }
	Resolved struct{}
	CacheHit struct{}
	Compiled struct{}
	Built    struct{}
)

func (*Resolved) event() {}
func (*CacheHit) event() {}
func (*Compiled) event() {}
func (*Built) event()    {}

// NopLogger is not an event.
var NopLogger Logger
