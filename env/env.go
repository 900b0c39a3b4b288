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

// Package env reads environment variables for the container, layering the
// process environment over dotenv files.
package env

import (
	"fmt"
	"os"
	"reflect"
	"sort"
	"time"

	"github.com/golobby/cast"
	"github.com/joho/godotenv"
	"go.uber.org/multierr"
)

// Environment looks variables up in the process environment first, then in
// the dotenv files it was loaded from, earlier files winning.
type Environment struct {
	files  []string
	values map[string]string
	lookup func(string) (string, bool)
}

// Process is the environment of the running process, without dotenv files.
var Process = &Environment{}

// Load reads the dotenv files. Every file is read and errors are combined.
func Load(files ...string) (*Environment, error) {
	e := &Environment{files: files, values: make(map[string]string)}
	var errs error
	for _, file := range files {
		values, err := godotenv.Read(file)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("read dotenv file %q: %w", file, err))
			continue
		}
		for k, v := range values {
			if _, ok := e.values[k]; !ok {
				e.values[k] = v
			}
		}
	}
	if errs != nil {
		return nil, errs
	}
	return e, nil
}

// Files returns the dotenv files the environment was loaded from.
func (e *Environment) Files() []string { return e.files }

// Lookup returns the value of the variable and whether it is set.
func (e *Environment) Lookup(name string) (string, bool) {
	lookup := e.lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if v, ok := lookup(name); ok {
		return v, true
	}
	v, ok := e.values[name]
	return v, ok
}

var _castTypes = map[string]reflect.Type{
	"string":  reflect.TypeOf(""),
	"bool":    reflect.TypeOf(false),
	"int":     reflect.TypeOf(int(0)),
	"int8":    reflect.TypeOf(int8(0)),
	"int16":   reflect.TypeOf(int16(0)),
	"int32":   reflect.TypeOf(int32(0)),
	"int64":   reflect.TypeOf(int64(0)),
	"uint":    reflect.TypeOf(uint(0)),
	"uint8":   reflect.TypeOf(uint8(0)),
	"uint16":  reflect.TypeOf(uint16(0)),
	"uint32":  reflect.TypeOf(uint32(0)),
	"uint64":  reflect.TypeOf(uint64(0)),
	"float32": reflect.TypeOf(float32(0)),
	"float64": reflect.TypeOf(float64(0)),
}

// Casts returns the supported cast names, sorted.
func Casts() []string {
	names := make([]string, 0, len(_castTypes)+1)
	for name := range _castTypes {
		names = append(names, name)
	}
	names = append(names, "duration")
	sort.Strings(names)
	return names
}

// Cast converts the raw value of a variable to the named type. An empty
// name keeps the string.
func Cast(raw string, to string) (interface{}, error) {
	switch to {
	case "", "string":
		return raw, nil
	case "duration":
		return time.ParseDuration(raw)
	}
	t, ok := _castTypes[to]
	if !ok {
		return nil, fmt.Errorf("unknown cast %q", to)
	}
	return cast.FromType(raw, t)
}
