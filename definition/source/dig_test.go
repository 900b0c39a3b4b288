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

package source

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/dig"

	"github.com/dimod/di/definition"
)

type digResults struct {
	dig.Out

	Engine *engine
	Named  string `name:"named"`
}

func TestDig(t *testing.T) {
	t.Parallel()

	c := dig.New()
	d := NewDig(c)
	require.NoError(t, d.Provide(func() digResults { return digResults{Engine: &engine{}, Named: "x"} }))
	require.NoError(t, d.Provide(func(e *engine) (*car, error) { return &car{Engine: e, Name: "dig"}, nil }))

	defs, err := d.Definitions()
	require.NoError(t, err)
	assert.Len(t, defs, 2)

	def, err := d.GetDefinition("*github.com/dimod/di/definition/source.car")
	require.NoError(t, err)

	fn := reflect.ValueOf(def.(*definition.Factory).Callable)
	out := fn.Call(nil)
	require.True(t, out[1].IsNil())
	got := out[0].Interface().(*car)
	assert.Equal(t, "dig", got.Name)
	assert.NotNil(t, got.Engine)

	again := fn.Call(nil)[0].Interface()
	assert.Same(t, got, again, "dig caches the value")
}

func TestDigError(t *testing.T) {
	t.Parallel()

	c := dig.New()
	d := NewDig(c)
	require.NoError(t, d.Provide(func() (*engine, error) { return nil, errors.New("no fuel") }))

	def, err := d.GetDefinition("*github.com/dimod/di/definition/source.engine")
	require.NoError(t, err)

	out := reflect.ValueOf(def.(*definition.Factory).Callable).Call(nil)
	err, _ = out[1].Interface().(error)
	assert.ErrorContains(t, err, "no fuel")
}
