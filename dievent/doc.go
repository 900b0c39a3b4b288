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

// Package dievent defines a means of changing how the container logs
// internal events.
//
// # Changing the Logger
//
// By default, the [NopLogger] is used and nothing is logged.
//
// Use the di.WithLogger option to select another implementation of the
// [Logger] interface, for example the [ConsoleLogger] during development:
//
//	di.New(
//		di.Definitions("config/di.yaml"),
//		di.WithLogger(&dievent.ConsoleLogger{W: os.Stderr}),
//	)
//
// If your application uses Zap, the [ZapLogger] logs events through it.
//
//	di.WithLogger(&dievent.ZapLogger{Logger: log})
//
// # Implementing a Custom Logger
//
// [Event] is a union type of all the events the container emits. Use a type
// switch to handle each event type:
//
//	func (l *MyLogger) LogEvent(e dievent.Event) {
//		switch e := e.(type) {
//		case *dievent.Resolved:
//			// ...
//		// ...
//		}
//	}
package dievent
