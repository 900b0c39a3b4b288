package a

import (
	"fmt"
	"io"

	"github.com/dimod/di/dievent"
)

type valueLogger struct {
	W io.Writer
}

func (l valueLogger) LogEvent(ev dievent.Event) { // want `valueLogger doesn't handle \[\*CacheHit \*Compiled\]`
	switch ev.(type) {
	case *dievent.Resolved:
		fmt.Fprintln(l.W, ev)
	case *dievent.Built:
		fmt.Fprintln(l.W, ev)
	}
}
