package b

import (
	"b/dievent"
	"fmt"
)

type Logger struct{}

var _ dievent.Logger = Logger{}

func (Logger) LogEvent(ev dievent.Event) {
	fmt.Println(ev)
}
