// Copyright (c) 2024 The dimod Authors
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.

// Package dilog holds test helpers for container events.
package dilog

import (
	"reflect"

	"github.com/dimod/di/dievent"
)

// Spy is a dievent.Logger that captures events. It may be used in tests of
// container events.
type Spy struct {
	events []dievent.Event
}

var _ dievent.Logger = &Spy{}

// LogEvent appends an Event.
func (s *Spy) LogEvent(event dievent.Event) {
	s.events = append(s.events, event)
}

// Events returns all captured events.
func (s *Spy) Events() []dievent.Event {
	events := make([]dievent.Event, len(s.events))
	copy(events, s.events)
	return events
}

// EventTypes returns the type names of the captured events.
func (s *Spy) EventTypes() []string {
	types := make([]string, len(s.events))
	for i, e := range s.events {
		types[i] = reflect.TypeOf(e).Elem().Name()
	}
	return types
}

// Resolved returns the names of the entries resolved, in order.
func (s *Spy) Resolved() []string {
	var names []string
	for _, e := range s.events {
		if r, ok := e.(*dievent.Resolved); ok && r.Err == nil {
			names = append(names, r.Name)
		}
	}
	return names
}

// Reset clears all captured events.
func (s *Spy) Reset() {
	s.events = s.events[:0]
}
