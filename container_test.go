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

package di_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dimod/di"
	"github.com/dimod/di/cache"
	"github.com/dimod/di/dievent"
	"github.com/dimod/di/internal/diclock"
	"github.com/dimod/di/internal/dilog"
	"github.com/dimod/di/proxy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Config struct {
	Name string
	Port int
}

type Node struct {
	Next *Node
}

type Mailer struct {
	From   string
	Config *Config
}

func NewMailer(cfg *Config) *Mailer {
	return &Mailer{Config: cfg}
}

type Greeter interface {
	Greet(name string) string
}

type politeGreeter struct{ prefix string }

func (g *politeGreeter) Greet(name string) string { return g.prefix + name }

func newContainer(t *testing.T, opts ...di.Option) *di.Container {
	t.Helper()
	c, err := di.New(opts...)
	require.NoError(t, err)
	return c
}

func TestGetFromSingleSource(t *testing.T) {
	t.Setenv("DI_TEST_REGION", "eu-west-1")

	c := newContainer(t,
		di.Types(NewMailer),
		di.Definitions(map[string]interface{}{
			"name":   "app",
			"port":   8080,
			"alias":  di.Ref("name"),
			"region": di.Env("DI_TEST_REGION"),
			"zone":   di.Env("DI_TEST_ZONE").Default("a"),
			"url":    di.String("{name}:{port}"),
			"list":   []interface{}{1, di.Ref("name")},
			"func":   di.Value(letters),
			"config": di.CreateType[*Config]().Property("Name", di.Ref("name")).Property("Port", di.Ref("port")),
			"mailer": di.Autowire(di.NameOf[*Mailer]()).Parameter(0, di.Ref("config")).Property("From", "noreply@acme.com"),
			"greeting": func(cfg *Config) string {
				return "hello from " + cfg.Name
			},
			di.NameOf[*Config](): di.Ref("config"),
		}),
	)

	tests := []struct {
		name string
		want interface{}
	}{
		{"name", "app"},
		{"port", 8080},
		{"alias", "app"},
		{"region", "eu-west-1"},
		{"zone", "a"},
		{"url", "app:8080"},
		{"list", []interface{}{1, "app"}},
		{"config", &Config{Name: "app", Port: 8080}},
		{"mailer", &Mailer{From: "noreply@acme.com", Config: &Config{Name: "app", Port: 8080}}},
		{"greeting", "hello from app"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Get(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("value functions are not called", func(t *testing.T) {
		got, err := c.Get("func")
		require.NoError(t, err)
		fn, ok := got.(func() []string)
		require.True(t, ok, "got %T", got)
		assert.Equal(t, []string{"a"}, fn())
	})

	t.Run("typed get", func(t *testing.T) {
		cfg, err := di.Get[*Config](c)
		require.NoError(t, err)
		assert.Equal(t, "app", cfg.Name)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := c.Get("missing")
		var nf *di.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "missing", nf.Name)
		assert.False(t, c.Has("missing"))
	})

	t.Run("has", func(t *testing.T) {
		assert.True(t, c.Has("name"))
		assert.True(t, c.Has("mailer"))
	})
}

func letters() []string { return []string{"a"} }

func TestSharedEntries(t *testing.T) {
	var built int
	newConfig := func() *Config {
		built++
		return &Config{Port: built}
	}

	c := newContainer(t, di.Definitions(map[string]interface{}{
		"shared":          newConfig,
		"unshared":        di.Factory(newConfig).Unshared(),
		"object":          di.CreateType[*Config](),
		"unshared.object": di.CreateType[*Config]().Unshared(),
	}))

	for _, name := range []string{"shared", "object"} {
		t.Run(name, func(t *testing.T) {
			a, err := c.Get(name)
			require.NoError(t, err)
			b, err := c.Get(name)
			require.NoError(t, err)
			assert.Same(t, a, b)
		})
	}
	for _, name := range []string{"unshared", "unshared.object"} {
		t.Run(name, func(t *testing.T) {
			a, err := c.Get(name)
			require.NoError(t, err)
			b, err := c.Get(name)
			require.NoError(t, err)
			assert.NotSame(t, a, b)
		})
	}
}

func TestMakeBypassesCache(t *testing.T) {
	var built int
	c := newContainer(t,
		di.Types(NewMailer),
		di.Definitions(map[string]interface{}{
			"config": func() *Config {
				built++
				return &Config{Port: built}
			},
			"mailer": di.Create(di.NameOf[*Mailer]()).Parameter(0, di.Ref("config")),
		}),
	)

	t.Run("make before get", func(t *testing.T) {
		made, err := c.Make("config", nil)
		require.NoError(t, err)
		got, err := c.Get("config")
		require.NoError(t, err)
		assert.NotSame(t, made, got)
		assert.Equal(t, 2, got.(*Config).Port)
	})

	t.Run("make after get", func(t *testing.T) {
		first, err := c.Get("config")
		require.NoError(t, err)
		made, err := c.Make("config", nil)
		require.NoError(t, err)
		assert.NotSame(t, first, made)

		again, err := c.Get("config")
		require.NoError(t, err)
		assert.Same(t, first, again)
	})

	t.Run("overrides", func(t *testing.T) {
		override := &Config{Name: "override"}
		m, err := c.Make("mailer", di.Args{0: override})
		require.NoError(t, err)
		assert.Same(t, override, m.(*Mailer).Config)

		shared, err := c.Get("mailer")
		require.NoError(t, err)
		assert.NotSame(t, override, shared.(*Mailer).Config)
	})

	t.Run("typed make", func(t *testing.T) {
		cfg := &Config{Name: "typed"}
		m, err := di.MakeOf[*Mailer](c, di.Args{0: cfg})
		require.NoError(t, err)
		assert.Same(t, cfg, m.Config)
	})
}

func TestExtendAcrossSources(t *testing.T) {
	c := newContainer(t,
		di.Definitions(map[string]interface{}{
			"A": di.CreateType[*Config]().Property("Name", "a").Property("Port", 1),
			"B": di.Create().Extend("A").Property("Port", 2),
		}),
		di.Definitions(map[string]interface{}{
			"B": di.Create().Extend("").Property("Name", "b"),
		}),
	)

	b, err := c.Get("B")
	require.NoError(t, err)
	assert.Equal(t, &Config{Name: "b", Port: 2}, b)

	a, err := c.Get("A")
	require.NoError(t, err)
	assert.Equal(t, &Config{Name: "a", Port: 1}, a)

	t.Run("later sources override", func(t *testing.T) {
		c := newContainer(t,
			di.Definitions(map[string]interface{}{"x": 1}),
			di.Definitions(map[string]interface{}{"x": 2}),
		)
		x, err := c.Get("x")
		require.NoError(t, err)
		assert.Equal(t, 2, x)
	})

	t.Run("decorators and arrays", func(t *testing.T) {
		c := newContainer(t,
			di.Definitions(map[string]interface{}{
				"name":  "app",
				"hosts": []interface{}{"a"},
			}),
			di.Definitions(map[string]interface{}{
				"name":  di.Decorate(func(prev string) string { return prev + "!" }),
				"hosts": di.Add("b", di.Ref("name")),
			}),
		)
		name, err := c.Get("name")
		require.NoError(t, err)
		assert.Equal(t, "app!", name)

		hosts, err := c.Get("hosts")
		require.NoError(t, err)
		assert.Equal(t, []interface{}{"a", "b", "app!"}, hosts)
	})
}

func TestCircularDependency(t *testing.T) {
	c := newContainer(t, di.Definitions(map[string]interface{}{
		"a": di.CreateType[*Node]().Property("Next", di.Ref("b")),
		"b": di.CreateType[*Node]().Property("Next", di.Ref("a")),
	}))

	_, err := c.Get("a")
	var cycle *di.CircularDependencyError
	require.ErrorAs(t, err, &cycle)
	assert.Equal(t, []string{"a", "b", "a"}, cycle.Chain)

	t.Run("the container recovers", func(t *testing.T) {
		require.NoError(t, c.Set("b", &Node{}))
		a, err := c.Get("a")
		require.NoError(t, err)
		assert.NotNil(t, a.(*Node).Next)
	})

	t.Run("aliases", func(t *testing.T) {
		c := newContainer(t, di.Definitions(map[string]interface{}{
			"A": di.Ref("B"),
			"B": di.Ref("A"),
			"C": di.Ref("A"),
		}))

		assert.False(t, c.Has("A"))
		assert.False(t, c.Has("C"))

		_, err := c.Get("A")
		var cycle *di.CircularDependencyError
		require.ErrorAs(t, err, &cycle)
		assert.Equal(t, []string{"A", "B", "A"}, cycle.Chain)

		require.NoError(t, c.Set("B", "value"))
		assert.True(t, c.Has("A"), "cycle broken by a value")
	})

	t.Run("extended definitions", func(t *testing.T) {
		c := newContainer(t, di.Definitions(map[string]interface{}{
			"a": di.CreateType[*Node]().Extend("b"),
			"b": di.CreateType[*Node]().Extend("a"),
		}))

		_, err := c.Get("a")
		var cycle *di.CircularDependencyError
		require.ErrorAs(t, err, &cycle)
		assert.Equal(t, []string{"a", "b", "a"}, cycle.Chain)
		assert.False(t, c.Has("b"))
	})
}

func TestSet(t *testing.T) {
	c := newContainer(t)

	require.NoError(t, c.Set("value", 42))
	require.NoError(t, c.Set("factory", func() string { return "built" }))
	require.NoError(t, c.Set("ref", di.Ref("value")))

	for name, want := range map[string]interface{}{
		"value":   42,
		"factory": "built",
		"ref":     42,
	} {
		got, err := c.Get(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	t.Run("no mutable source with a cache", func(t *testing.T) {
		c := newContainer(t, di.Cache(cache.NewMemory()))
		require.NoError(t, c.Set("value", 1), "values are always accepted")

		err := c.Set("ref", di.Ref("value"))
		var cfgErr *di.ConfigurationError
		require.ErrorAs(t, err, &cfgErr)
	})
}

func TestCallAndInjectOn(t *testing.T) {
	c := newContainer(t,
		di.Types(NewMailer),
		di.Definitions(map[string]interface{}{
			di.NameOf[*Config](): di.CreateType[*Config]().Property("Name", "app"),
			di.NameOf[*Mailer](): di.Autowire(di.NameOf[*Mailer]()).Property("From", "noreply@acme.com"),
		}),
	)

	t.Run("call", func(t *testing.T) {
		got, err := c.Call(func(cfg *Config, suffix string) (string, error) {
			return cfg.Name + suffix, nil
		}, di.Args{1: "!"})
		require.NoError(t, err)
		assert.Equal(t, "app!", got)
	})

	t.Run("call error", func(t *testing.T) {
		_, err := c.Call(func() (string, error) {
			return "", errors.New("great sadness")
		}, nil)
		assert.ErrorContains(t, err, "great sadness")
	})

	t.Run("inject on", func(t *testing.T) {
		m := &Mailer{}
		got, err := c.InjectOn(m)
		require.NoError(t, err)
		assert.Same(t, m, got)
		assert.Equal(t, "noreply@acme.com", m.From)
	})
}

func TestKnownEntryNamesAndDebug(t *testing.T) {
	c := newContainer(t, di.Definitions(map[string]interface{}{
		"b": 2,
		"a": di.Ref("b"),
	}))
	require.NoError(t, c.Set("c", 3))

	names, err := c.KnownEntryNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, names)

	desc, err := c.DebugEntry("a")
	require.NoError(t, err)
	assert.Equal(t, "get(b)", desc)

	desc, err = c.DebugEntry("c")
	require.NoError(t, err)
	assert.Equal(t, "Value (int)", desc)

	_, err = c.DebugEntry("missing")
	assert.Error(t, err)
}

func TestLazyEntries(t *testing.T) {
	var (
		built int
		spy   dilog.Spy
	)
	newGreeter := func() Greeter {
		built++
		return &politeGreeter{prefix: "hello "}
	}
	c := newContainer(t,
		di.WithLogger(&spy),
		di.Types(func() Greeter {
			built++
			return &politeGreeter{prefix: "hello "}
		}),
		di.Definitions(map[string]interface{}{
			"greeter": di.Create(di.NameOf[Greeter]()).Lazy(),
			"hello":   di.Create(di.NameOf[func(string) string]()).Lazy(),
		}),
		di.Types(func() func(string) string {
			built++
			return func(s string) string { return "hi " + s }
		}),
	)

	t.Run("function proxy", func(t *testing.T) {
		built = 0
		got, err := c.Get("hello")
		require.NoError(t, err)
		assert.Zero(t, built)

		fn := got.(func(string) string)
		assert.Equal(t, "hi bob", fn("bob"))
		assert.Equal(t, 1, built)
	})

	t.Run("interface without registered proxy", func(t *testing.T) {
		built = 0
		spy.Reset()
		got, err := c.Get("greeter")
		require.NoError(t, err)
		assert.Equal(t, 1, built, "built eagerly")
		assert.Equal(t, "hello bob", got.(Greeter).Greet("bob"))

		var created []*dievent.ProxyCreated
		for _, ev := range spy.Events() {
			if e, ok := ev.(*dievent.ProxyCreated); ok {
				created = append(created, e)
			}
		}
		require.Len(t, created, 1)
		assert.Equal(t, "greeter", created[0].Name)
		assert.True(t, created[0].Eager)
	})

	t.Run("strict proxies", func(t *testing.T) {
		built = 0
		c := newContainer(t,
			di.StrictProxies(true),
			di.Types(newGreeter),
			di.Definitions(map[string]interface{}{
				"greeter": di.Create(di.NameOf[Greeter]()).Lazy(),
			}),
		)

		_, err := c.Get("greeter")
		assert.ErrorIs(t, err, proxy.ErrNoProxy)
		assert.Zero(t, built)
	})
}

func TestEvents(t *testing.T) {
	var spy dilog.Spy
	clock := diclock.NewMock()
	c := newContainer(t,
		di.WithLogger(&spy),
		di.WithClock(clock),
		di.Definitions(map[string]interface{}{
			"slow": func() int {
				clock.Add(time.Second)
				return 1
			},
		}),
	)
	assert.Equal(t, []string{"LoggerInitialized", "Built"}, spy.EventTypes())

	spy.Reset()
	_, err := c.Get("slow")
	require.NoError(t, err)
	require.Equal(t, []string{"Resolved"}, spy.EventTypes())

	resolved := spy.Events()[0].(*dievent.Resolved)
	assert.Equal(t, "slow", resolved.Name)
	assert.Equal(t, time.Second, resolved.Runtime)
	assert.True(t, resolved.Shared)
}

func TestEnvFiles(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(file, []byte("DI_TEST_FROM_FILE=42\n"), 0o600))

	var spy dilog.Spy
	c := newContainer(t,
		di.WithLogger(&spy),
		di.EnvFiles(file),
		di.Definitions(map[string]interface{}{
			"answer": di.Env("DI_TEST_FROM_FILE").Cast("int"),
		}),
	)
	assert.Contains(t, spy.EventTypes(), "EnvLoaded")

	got, err := c.Get("answer")
	require.NoError(t, err)
	assert.Equal(t, 42, got)

	t.Run("missing file", func(t *testing.T) {
		_, err := di.New(di.EnvFiles(filepath.Join(dir, "missing.env")))
		assert.Error(t, err)
	})
}

func TestWrap(t *testing.T) {
	outer := mapContainer{"name": "from outer"}
	c := newContainer(t,
		di.Wrap(outer),
		di.Definitions(map[string]interface{}{
			"name":     "from inner",
			"greeting": di.String("hello {name}"),
		}),
	)

	got, err := c.Get("greeting")
	require.NoError(t, err)
	assert.Equal(t, "hello from outer", got)
}

type mapContainer map[string]interface{}

func (m mapContainer) Get(name string) (interface{}, error) {
	v, ok := m[name]
	if !ok {
		return nil, fmt.Errorf("no entry %q", name)
	}
	return v, nil
}

func (m mapContainer) Has(name string) bool {
	_, ok := m[name]
	return ok
}
