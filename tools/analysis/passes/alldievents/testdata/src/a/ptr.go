package a

import (
	"log"

	"github.com/dimod/di/dievent"
)

type ptrLogger struct{}

func (*ptrLogger) LogEvent(ev dievent.Event) { // want `\*ptrLogger doesn't handle \[\*Built \*Compiled\]`
	if e, ok := ev.(*dievent.Resolved); ok {
		log.Print(e)
	}
	if e, ok := ev.(*dievent.CacheHit); ok {
		log.Print(e)
	}
}
