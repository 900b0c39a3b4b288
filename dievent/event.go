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
	"time"
)

// Event defines an event emitted by the container.
type Event interface {
	event() // Only dievent can implement this interface.
}

// Passing events by type to make Event hashable in the future.
func (*Resolved) event()          {}
func (*Decorated) event()         {}
func (*CacheHit) event()          {}
func (*CacheStored) event()       {}
func (*Compiled) event()          {}
func (*ProxyCreated) event()      {}
func (*ProxyGenerated) event()    {}
func (*EnvLoaded) event()         {}
func (*Built) event()             {}
func (*LoggerInitialized) event() {}

// Resolved is emitted after an entry missing from the container cache was
// resolved.
type Resolved struct {
	// Name is the requested entry.
	Name string

	// Definition describes the definition the entry was resolved from.
	Definition string

	// Shared reports whether the result was stored in the container cache.
	Shared bool

	Runtime time.Duration

	// Err is non-nil if the entry could not be resolved.
	Err error
}

// Decorated is emitted after a decorator was applied to an entry.
type Decorated struct {
	Name          string
	DecoratorName string
	Err           error
}

// CacheHit is emitted when a definition is served by the definition cache.
type CacheHit struct {
	Name string

	// Missing reports that the cache remembered the entry does not exist.
	Missing bool
}

// CacheStored is emitted when a definition was looked up in the sources
// after a definition cache miss.
type CacheStored struct {
	Name    string
	Missing bool

	// Err is non-nil if the definition could not be stored, in which case it
	// is looked up in the sources again on the next miss.
	Err error
}

// Compiled is emitted after a compile run.
type Compiled struct {
	// File is the generated file. It is empty when nothing was written.
	File string

	ContainerName string

	// Entries is the number of routines in the generated table.
	Entries int

	Runtime time.Duration
	Err     error
}

// ProxyCreated is emitted when a lazy entry was replaced by a proxy.
type ProxyCreated struct {
	Name  string
	Class string

	// Eager is set when no proxy could defer the construction of the entry,
	// which was built immediately.
	Eager bool
	Err   error
}

// ProxyGenerated is emitted when proxy source code was written to disk.
type ProxyGenerated struct {
	Class string
	File  string
	Err   error
}

// EnvLoaded is emitted after dotenv files were loaded.
type EnvLoaded struct {
	Files []string
	Err   error
}

// Built is emitted when the builder produced a container.
type Built struct {
	// Compiled reports whether a compiled container is used.
	Compiled bool

	// ContainerName is the name of the compiled container, if any.
	ContainerName string

	// Sources is the number of definition sources in the chain.
	Sources int

	Err error
}

// LoggerInitialized is emitted when a logger was selected.
type LoggerInitialized struct {
	// LoggerName is the type of the selected logger.
	LoggerName string
	Err        error
}
