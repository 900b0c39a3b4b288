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
	"context"
	"log/slog"
)

var _ Logger = (*SlogLogger)(nil)

// SlogLogger is an event logger that logs events using a slog logger.
type SlogLogger struct {
	Logger *slog.Logger

	ctx        context.Context
	logLevel   slog.Level
	errorLevel *slog.Level
}

// UseContext sets the context that will be used when logging to slog.
func (l *SlogLogger) UseContext(ctx context.Context) {
	l.ctx = ctx
}

// UseLogLevel sets the level of non-error logs emitted by the container to
// level.
func (l *SlogLogger) UseLogLevel(level slog.Level) {
	l.logLevel = level
}

// UseErrorLevel sets the level of error logs emitted by the container to
// level.
func (l *SlogLogger) UseErrorLevel(level slog.Level) {
	l.errorLevel = &level
}

func (l *SlogLogger) context() context.Context {
	if l.ctx == nil {
		return context.Background()
	}
	return l.ctx
}

func (l *SlogLogger) logEvent(msg string, fields ...any) {
	l.Logger.Log(l.context(), l.logLevel, msg, fields...)
}

func (l *SlogLogger) logError(msg string, fields ...any) {
	lvl := slog.LevelError
	if l.errorLevel != nil {
		lvl = *l.errorLevel
	}
	l.Logger.Log(l.context(), lvl, msg, fields...)
}

// LogEvent logs the given event to the provided slog logger.
func (l *SlogLogger) LogEvent(event Event) {
	switch e := event.(type) {
	case *Resolved:
		if e.Err != nil {
			l.logError("resolve failed",
				slog.String("name", e.Name),
				slogErr(e.Err))
		} else {
			l.logEvent("resolved",
				slog.String("name", e.Name),
				slog.String("definition", e.Definition),
				slog.Bool("shared", e.Shared),
				slog.String("runtime", e.Runtime.String()))
		}
	case *Decorated:
		if e.Err != nil {
			l.logError("decorate failed",
				slog.String("name", e.Name),
				slog.String("decorator", e.DecoratorName),
				slogErr(e.Err))
		} else {
			l.logEvent("decorated",
				slog.String("name", e.Name),
				slog.String("decorator", e.DecoratorName))
		}
	case *CacheHit:
		l.logEvent("definition cache hit",
			slog.String("name", e.Name),
			slog.Bool("missing", e.Missing))
	case *CacheStored:
		if e.Err != nil {
			l.logEvent("definition not cached",
				slog.String("name", e.Name),
				slogErr(e.Err))
		} else {
			l.logEvent("definition cached",
				slog.String("name", e.Name),
				slog.Bool("missing", e.Missing))
		}
	case *Compiled:
		if e.Err != nil {
			l.logError("compile failed",
				slog.String("container", e.ContainerName),
				slogErr(e.Err))
		} else {
			l.logEvent("compiled",
				slog.String("container", e.ContainerName),
				slog.String("file", e.File),
				slog.Int("entries", e.Entries),
				slog.String("runtime", e.Runtime.String()))
		}
	case *ProxyCreated:
		if e.Err != nil {
			l.logError("proxy creation failed",
				slog.String("name", e.Name),
				slog.String("class", e.Class),
				slogErr(e.Err))
		} else {
			l.logEvent("proxy created",
				slog.String("name", e.Name),
				slog.String("class", e.Class),
				slog.Bool("eager", e.Eager))
		}
	case *ProxyGenerated:
		if e.Err != nil {
			l.logError("proxy generation failed",
				slog.String("class", e.Class),
				slogErr(e.Err))
		} else {
			l.logEvent("proxy generated",
				slog.String("class", e.Class),
				slog.String("file", e.File))
		}
	case *EnvLoaded:
		if e.Err != nil {
			l.logError("env files loading failed",
				slog.Any("files", e.Files),
				slogErr(e.Err))
		} else {
			l.logEvent("env files loaded", slog.Any("files", e.Files))
		}
	case *Built:
		if e.Err != nil {
			l.logError("build failed", slogErr(e.Err))
		} else {
			l.logEvent("built",
				slog.Bool("compiled", e.Compiled),
				slog.String("container", e.ContainerName),
				slog.Int("sources", e.Sources))
		}
	case *LoggerInitialized:
		if e.Err != nil {
			l.logError("custom logger initialization failed", slogErr(e.Err))
		} else {
			l.logEvent("initialized custom dievent.Logger", slog.String("logger", e.LoggerName))
		}
	}
}

func slogErr(err error) slog.Attr {
	return slog.Any("error", err)
}
