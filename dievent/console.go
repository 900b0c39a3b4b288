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

package dievent

import (
	"fmt"
	"io"
	"strings"
)

// ConsoleLogger is an event logger that attempts to write human-readable
// messages to the console.
//
// Use this during development.
type ConsoleLogger struct {
	W io.Writer
}

var _ Logger = (*ConsoleLogger)(nil)

func (l *ConsoleLogger) logf(msg string, args ...interface{}) {
	fmt.Fprintf(l.W, "[DI] "+msg+"\n", args...)
}

// LogEvent logs the given event to the provided writer.
func (l *ConsoleLogger) LogEvent(event Event) {
	switch e := event.(type) {
	case *Resolved:
		if e.Err != nil {
			l.logf("ERROR\t\tFailed to resolve %q: %v", e.Name, e.Err)
		} else {
			l.logf("RESOLVED\t%s in %s (shared: %v)", e.Name, e.Runtime, e.Shared)
		}
	case *Decorated:
		if e.Err != nil {
			l.logf("ERROR\t\tFailed to decorate %q with %s: %v", e.Name, e.DecoratorName, e.Err)
		} else {
			l.logf("DECORATE\t%s <= %s", e.Name, e.DecoratorName)
		}
	case *CacheHit:
		if e.Missing {
			l.logf("CACHE HIT\t%s (not found)", e.Name)
		} else {
			l.logf("CACHE HIT\t%s", e.Name)
		}
	case *CacheStored:
		if e.Err != nil {
			l.logf("CACHE SKIP\t%s: %v", e.Name, e.Err)
		} else {
			l.logf("CACHE STORE\t%s", e.Name)
		}
	case *Compiled:
		if e.Err != nil {
			l.logf("ERROR\t\tFailed to compile container %s: %v", e.ContainerName, e.Err)
		} else {
			l.logf("COMPILED\t%s: %d entries written to %s in %s", e.ContainerName, e.Entries, e.File, e.Runtime)
		}
	case *ProxyCreated:
		if e.Err != nil {
			l.logf("ERROR\t\tFailed to create proxy for %q: %v", e.Name, e.Err)
		} else if e.Eager {
			l.logf("PROXY\t\t%s => %s (no proxy registered, built eagerly)", e.Name, e.Class)
		} else {
			l.logf("PROXY\t\t%s => %s", e.Name, e.Class)
		}
	case *ProxyGenerated:
		if e.Err != nil {
			l.logf("ERROR\t\tFailed to generate proxy for %s: %v", e.Class, e.Err)
		} else {
			l.logf("PROXY FILE\t%s => %s", e.Class, e.File)
		}
	case *EnvLoaded:
		if e.Err != nil {
			l.logf("ERROR\t\tFailed to load env files %s: %v", strings.Join(e.Files, ", "), e.Err)
		} else {
			l.logf("ENV\t\t%s", strings.Join(e.Files, ", "))
		}
	case *Built:
		switch {
		case e.Err != nil:
			l.logf("ERROR\t\tFailed to build container: %v", e.Err)
		case e.Compiled:
			l.logf("BUILT\t\tcompiled container %s", e.ContainerName)
		default:
			l.logf("BUILT\t\tcontainer with %d sources", e.Sources)
		}
	case *LoggerInitialized:
		if e.Err != nil {
			l.logf("ERROR\t\tFailed to initialize custom logger: %v", e.Err)
		} else {
			l.logf("LOGGER\tInitialized custom logger %v", e.LoggerName)
		}
	}
}
