package a

import (
	"fmt"

	"github.com/dimod/di/dievent"
)

type fullLogger struct{}

func (*fullLogger) LogEvent(ev dievent.Event) {
	switch ev.(type) {
	case *dievent.Resolved, *dievent.CacheHit:
		fmt.Println(ev)
	case *dievent.Compiled, *dievent.Built:
		fmt.Println(ev)
	}
}
