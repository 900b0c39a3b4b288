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

package definition

import (
	"fmt"
	"strings"
)

// NotFoundError is returned when no source can provide a definition for an
// entry and autowiring cannot infer one.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no entry or class found for %q", e.Name)
}

// CircularDependencyError is returned when an entry is requested again while
// it is still being resolved. Chain lists the entries on the resolution
// stack, ending with the entry that closed the cycle.
type CircularDependencyError struct {
	Chain []string
}

func (e *CircularDependencyError) Error() string {
	name := ""
	if len(e.Chain) > 0 {
		name = e.Chain[len(e.Chain)-1]
	}
	return fmt.Sprintf("circular dependency detected while trying to resolve entry %q: %s",
		name, strings.Join(e.Chain, " -> "))
}

// InvalidDefinitionError is returned when a definition is malformed or cannot
// be satisfied, for example when a constructor parameter has no value and no
// type to infer one from.
type InvalidDefinitionError struct {
	Name   string
	Reason string
	Err    error
}

// InvalidDefinitionf builds an InvalidDefinitionError for the named entry.
func InvalidDefinitionf(name string, format string, args ...interface{}) *InvalidDefinitionError {
	return &InvalidDefinitionError{Name: name, Reason: fmt.Sprintf(format, args...)}
}

func (e *InvalidDefinitionError) Error() string {
	msg := fmt.Sprintf("entry %q cannot be resolved: %s", e.Name, e.Reason)
	if e.Name == "" {
		msg = "invalid definition: " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InvalidDefinitionError) Unwrap() error { return e.Err }
