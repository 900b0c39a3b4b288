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
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger is an event logger that logs events to Zap.
type ZapLogger struct {
	Logger *zap.Logger

	logLevel   zapcore.Level // default: zapcore.InfoLevel
	errorLevel *zapcore.Level
}

var _ Logger = (*ZapLogger)(nil)

// UseErrorLevel sets the level of error logs emitted by the container to
// level.
func (l *ZapLogger) UseErrorLevel(level zapcore.Level) {
	l.errorLevel = &level
}

// UseLogLevel sets the level of non-error logs emitted by the container to
// level.
func (l *ZapLogger) UseLogLevel(level zapcore.Level) {
	l.logLevel = level
}

func (l *ZapLogger) logEvent(msg string, fields ...zap.Field) {
	l.Logger.Log(l.logLevel, msg, fields...)
}

func (l *ZapLogger) logError(msg string, fields ...zap.Field) {
	lvl := zapcore.ErrorLevel
	if l.errorLevel != nil {
		lvl = *l.errorLevel
	}
	l.Logger.Log(lvl, msg, fields...)
}

// LogEvent logs the given event to the provided Zap logger.
func (l *ZapLogger) LogEvent(event Event) {
	switch e := event.(type) {
	case *Resolved:
		if e.Err != nil {
			l.logError("resolve failed",
				zap.String("name", e.Name),
				zap.Error(e.Err))
		} else {
			l.logEvent("resolved",
				zap.String("name", e.Name),
				zap.String("definition", e.Definition),
				zap.Bool("shared", e.Shared),
				zap.String("runtime", e.Runtime.String()))
		}
	case *Decorated:
		if e.Err != nil {
			l.logError("decorate failed",
				zap.String("name", e.Name),
				zap.String("decorator", e.DecoratorName),
				zap.Error(e.Err))
		} else {
			l.logEvent("decorated",
				zap.String("name", e.Name),
				zap.String("decorator", e.DecoratorName))
		}
	case *CacheHit:
		l.logEvent("definition cache hit",
			zap.String("name", e.Name),
			maybeBool("missing", e.Missing))
	case *CacheStored:
		if e.Err != nil {
			l.logEvent("definition not cached",
				zap.String("name", e.Name),
				zap.Error(e.Err))
		} else {
			l.logEvent("definition cached",
				zap.String("name", e.Name),
				maybeBool("missing", e.Missing))
		}
	case *Compiled:
		if e.Err != nil {
			l.logError("compile failed",
				zap.String("container", e.ContainerName),
				zap.Error(e.Err))
		} else {
			l.logEvent("compiled",
				zap.String("container", e.ContainerName),
				zap.String("file", e.File),
				zap.Int("entries", e.Entries),
				zap.String("runtime", e.Runtime.String()))
		}
	case *ProxyCreated:
		if e.Err != nil {
			l.logError("proxy creation failed",
				zap.String("name", e.Name),
				zap.String("class", e.Class),
				zap.Error(e.Err))
		} else {
			l.logEvent("proxy created",
				zap.String("name", e.Name),
				zap.String("class", e.Class),
				zap.Bool("eager", e.Eager))
		}
	case *ProxyGenerated:
		if e.Err != nil {
			l.logError("proxy generation failed",
				zap.String("class", e.Class),
				zap.Error(e.Err))
		} else {
			l.logEvent("proxy generated",
				zap.String("class", e.Class),
				zap.String("file", e.File))
		}
	case *EnvLoaded:
		if e.Err != nil {
			l.logError("env files loading failed",
				zap.Strings("files", e.Files),
				zap.Error(e.Err))
		} else {
			l.logEvent("env files loaded", zap.Strings("files", e.Files))
		}
	case *Built:
		if e.Err != nil {
			l.logError("build failed", zap.Error(e.Err))
		} else {
			l.logEvent("built",
				zap.Bool("compiled", e.Compiled),
				maybeString("container", e.ContainerName),
				zap.Int("sources", e.Sources))
		}
	case *LoggerInitialized:
		if e.Err != nil {
			l.logError("custom logger initialization failed", zap.Error(e.Err))
		} else {
			l.logEvent("initialized custom dievent.Logger", zap.String("logger", e.LoggerName))
		}
	}
}

func maybeBool(name string, b bool) zap.Field {
	if b {
		return zap.Bool(name, true)
	}
	return zap.Skip()
}

func maybeString(name, s string) zap.Field {
	if s == "" {
		return zap.Skip()
	}
	return zap.String(name, s)
}
