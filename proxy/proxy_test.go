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

package proxy

import (
	"errors"
	"go/parser"
	"go/token"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimod/di/dievent"
)

type Mailer interface {
	Send(to string, cc ...string) error
	Sent() int
}

type mailer struct{ sent int }

func (m *mailer) Send(string, ...string) error { m.sent++; return nil }
func (m *mailer) Sent() int                    { return m.sent }

// mailerProxy is what a Generator writes for Mailer.
type mailerProxy struct {
	l *Lazy[Mailer]
}

func (p *mailerProxy) Send(a0 string, a1 ...string) error { return p.l.Get().Send(a0, a1...) }
func (p *mailerProxy) Sent() int                          { return p.l.Get().Sent() }

func init() {
	Register(func(l *Lazy[Mailer]) Mailer { return &mailerProxy{l: l} })
}

type Unproxied interface {
	Do() string
}

type doer struct{}

func (doer) Do() string { return "done" }

var _mailerType = reflect.TypeOf((*Mailer)(nil)).Elem()

func TestLazy(t *testing.T) {
	t.Parallel()

	calls := 0
	l := NewLazy[Mailer](func() (interface{}, error) {
		calls++
		return &mailer{}, nil
	})
	assert.False(t, l.Initialized())
	assert.Same(t, l.Get(), l.Get())
	assert.True(t, l.Initialized())
	assert.Equal(t, 1, calls)

	failing := NewLazy[Mailer](func() (interface{}, error) { return nil, errors.New("smtp down") })
	assert.PanicsWithError(t, "lazy proxy.Mailer could not be initialized: smtp down", func() {
		failing.Get()
	})
}

func TestCreateProxy(t *testing.T) {
	t.Parallel()

	f := NewFactory()

	t.Run("registered interface", func(t *testing.T) {
		t.Parallel()

		calls := 0
		p, err := f.CreateProxy(_mailerType, func() (interface{}, error) {
			calls++
			return &mailer{}, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 0, calls, "nothing is built before first use")

		m := p.(Mailer)
		require.NoError(t, m.Send("a@b", "c@d"))
		assert.Equal(t, 1, m.Sent())
		assert.Equal(t, 1, calls)
		assert.True(t, Registered(_mailerType))
	})

	t.Run("function", func(t *testing.T) {
		t.Parallel()

		calls := 0
		target := reflect.TypeOf((func(string, ...int) int)(nil))
		p, err := f.CreateProxy(target, func() (interface{}, error) {
			calls++
			return func(s string, n ...int) int { return len(s) + len(n) }, nil
		})
		require.NoError(t, err)
		assert.Equal(t, 0, calls)

		fn := p.(func(string, ...int) int)
		assert.Equal(t, 4, fn("ab", 1, 2))
		assert.Equal(t, 2, fn("ab"))
		assert.Equal(t, 1, calls)
	})

	t.Run("unregistered interface is built eagerly", func(t *testing.T) {
		t.Parallel()

		p, err := f.CreateProxy(reflect.TypeOf((*Unproxied)(nil)).Elem(), func() (interface{}, error) {
			return doer{}, nil
		})
		require.NoError(t, err)
		assert.Equal(t, doer{}, p)
	})

	t.Run("concrete types", func(t *testing.T) {
		t.Parallel()

		_, err := f.CreateProxy(reflect.TypeOf(&mailer{}), nil)
		assert.ErrorContains(t, err, "interfaces or functions")
	})
}

func TestStrictFactory(t *testing.T) {
	t.Parallel()

	f := NewFactory(Strict())
	unproxied := reflect.TypeOf((*Unproxied)(nil)).Elem()

	calls := 0
	_, err := f.CreateProxy(unproxied, func() (interface{}, error) {
		calls++
		return doer{}, nil
	})
	assert.ErrorIs(t, err, ErrNoProxy)
	assert.Zero(t, calls)

	p, err := f.CreateProxy(_mailerType, func() (interface{}, error) { return &mailer{}, nil })
	require.NoError(t, err)
	assert.Implements(t, (*Mailer)(nil), p)
}

type eagerFactory struct{}

func (eagerFactory) CreateProxy(_ reflect.Type, init Initializer) (interface{}, error) {
	return init()
}

func TestDefers(t *testing.T) {
	t.Parallel()

	f := NewFactory()
	tests := []struct {
		name   string
		target reflect.Type
		want   bool
	}{
		{"registered interface", _mailerType, true},
		{"unregistered interface", reflect.TypeOf((*Unproxied)(nil)).Elem(), false},
		{"function", reflect.TypeOf(func() {}), true},
		{"concrete", reflect.TypeOf(&mailer{}), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Defers(f, tt.target), tt.name)
	}

	assert.True(t, Defers(eagerFactory{}, _mailerType), "factories without Defers are trusted")
}

func TestRegisterRejectsConcreteTypes(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		Register(func(l *Lazy[*mailer]) *mailer { return nil })
	})
}

func TestGenerator(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	rec := &recorder{}
	f := NewFactory(WriteToFile(dir, "proxies"), WithLogger(rec))

	p, err := f.CreateProxy(reflect.TypeOf((*Unproxied)(nil)).Elem(), func() (interface{}, error) {
		return doer{}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "done", p.(Unproxied).Do())

	file := filepath.Join(dir, "proxy_unproxied_proxy.go")
	src, err := os.ReadFile(file)
	require.NoError(t, err)

	parsed, err := parser.ParseFile(token.NewFileSet(), file, src, 0)
	require.NoError(t, err)
	assert.Equal(t, "proxies", parsed.Name.Name)
	assert.Contains(t, string(src), "proxy.Register(func(l *proxy.Lazy[proxy.Unproxied]) proxy.Unproxied")
	assert.Contains(t, string(src), "func (p *unproxiedProxy) Do() string {")

	require.Len(t, rec.events, 1)
	assert.Equal(t, file, rec.events[0].(*dievent.ProxyGenerated).File)

	require.NoError(t, os.WriteFile(file, []byte("edited"), 0o644))
	_, err = (&Generator{Dir: dir}).Generate(reflect.TypeOf((*Unproxied)(nil)).Elem())
	require.NoError(t, err)
	src, err = os.ReadFile(file)
	require.NoError(t, err)
	assert.Equal(t, "edited", string(src), "existing files are kept")
}

func TestGeneratorSource(t *testing.T) {
	t.Parallel()

	src, err := (&Generator{}).Source(_mailerType)
	require.NoError(t, err)
	assert.Contains(t, string(src), "func (p *mailerProxy) Send(a0 string, a1 ...string) error {\n\treturn p.l.Get().Send(a0, a1...)\n}")

	_, err = (&Generator{}).Source(reflect.TypeOf((*io.Reader)(nil)))
	assert.Error(t, err)
	_, err = (&Generator{}).Source(reflect.TypeOf((*interface{ Close() })(nil)).Elem())
	assert.Error(t, err)
}

type recorder struct {
	events []dievent.Event
}

func (r *recorder) LogEvent(e dievent.Event) { r.events = append(r.events, e) }
