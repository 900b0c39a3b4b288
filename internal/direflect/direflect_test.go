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

package direflect

import (
	"errors"
	"io"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct{}

func TestTypeName(t *testing.T) {
	tests := []struct {
		give reflect.Type
		want string
	}{
		{reflect.TypeOf(""), "string"},
		{reflect.TypeOf(sample{}), "github.com/dimod/di/internal/direflect.sample"},
		{reflect.TypeOf(&sample{}), "*github.com/dimod/di/internal/direflect.sample"},
		{reflect.TypeOf([]*sample{}), "[]*github.com/dimod/di/internal/direflect.sample"},
		{reflect.TypeOf(map[string]sample{}), "map[string]github.com/dimod/di/internal/direflect.sample"},
		{reflect.TypeOf((*io.Reader)(nil)).Elem(), "io.Reader"},
		{ErrorType, "error"},
		{nil, "<nil>"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TypeName(tt.give))
	}
}

func TestReturnTypes(t *testing.T) {
	t.Run("Primitive", func(t *testing.T) {
		fn := func() (int, string) {
			return 0, ""
		}
		assert.Equal(t, []string{"int", "string"}, ReturnTypes(fn))
	})
	t.Run("SkipsErr", func(t *testing.T) {
		fn := func() (string, error) {
			return "", errors.New("err")
		}
		assert.Equal(t, []string{"string"}, ReturnTypes(fn))
	})
}

func someFunc() {}

func TestFuncName(t *testing.T) {
	assert.Equal(t, "github.com/dimod/di/internal/direflect.someFunc()", FuncName(someFunc))
	assert.Equal(t, "n/a", FuncName(struct{}{}))
}

func (sample) method() {}

func TestIsClosure(t *testing.T) {
	assert.False(t, IsClosure(someFunc))
	assert.True(t, IsClosure(func() {}))
	assert.True(t, IsClosure(sample{}.method))
	assert.False(t, IsClosure(42))
}

func ExportedFunc() {}

func TestStaticFunc(t *testing.T) {
	pkg, name, ok := StaticFunc(ExportedFunc)
	assert.True(t, ok)
	assert.Equal(t, "github.com/dimod/di/internal/direflect", pkg)
	assert.Equal(t, "ExportedFunc", name)

	for _, fn := range []interface{}{someFunc, func() {}, sample{}.method, 42} {
		_, _, ok := StaticFunc(fn)
		assert.False(t, ok, "%T", fn)
	}
}

func TestCaller(t *testing.T) {
	assert.Equal(t, "github.com/dimod/di/internal/direflect.TestCaller", Caller())
}
