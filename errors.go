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

package di

import (
	"errors"
	"fmt"

	"github.com/dimod/di/compiler"
	"github.com/dimod/di/definition"
)

type (
	// NotFoundError is returned when no source defines an entry and
	// autowiring cannot infer one.
	NotFoundError = definition.NotFoundError

	// CircularDependencyError is returned when an entry depends on itself.
	// Its Chain lists the entries being resolved, A -> B -> A.
	CircularDependencyError = definition.CircularDependencyError

	// InvalidDefinitionError is returned when a definition is malformed or
	// cannot be satisfied.
	InvalidDefinitionError = definition.InvalidDefinitionError

	// CompilationError is returned when a container cannot be compiled.
	CompilationError = compiler.CompilationError
)

// ErrLocked is matched by the errors of configuration attempted after the
// container was built.
var ErrLocked = errors.New("the container builder cannot be modified after the container is built")

// ConfigurationError reports an invalid use of the Builder. It is returned
// when the option is applied, not when the container is built.
type ConfigurationError struct {
	// Option describes the option that failed.
	Option string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Option == "" {
		return fmt.Sprintf("invalid container configuration: %v", e.Err)
	}
	return fmt.Sprintf("invalid container configuration %s: %v", e.Option, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }
