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
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimod/di/cache"
	"github.com/dimod/di/definition"
	"github.com/dimod/di/dievent"
)

// countingSource counts lookups reaching the wrapped source.
type countingSource struct {
	Source
	calls map[string]int
}

func (s *countingSource) GetDefinition(name string) (definition.Definition, error) {
	if s.calls == nil {
		s.calls = make(map[string]int)
	}
	s.calls[name]++
	return s.Source.GetDefinition(name)
}

type recorder struct {
	events []dievent.Event
}

func (r *recorder) LogEvent(e dievent.Event) { r.events = append(r.events, e) }

func TestCache(t *testing.T) {
	t.Parallel()

	reg := definition.NewRegistry()
	_, err := reg.Register(reflect.TypeOf(&engine{}))
	require.NoError(t, err)

	src := &countingSource{Source: newArray(t, map[string]interface{}{
		"host":    "localhost",
		"alias":   &definition.Reference{Target: "host"},
		"engine":  &definition.Object{ClassName: "*github.com/dimod/di/definition/source.engine"},
		"closure": func() int { return 1 },
	})}
	backend := cache.NewMemory()
	rec := &recorder{}
	c := NewCache(src, backend, reg, CacheLogger(rec))

	for _, name := range []string{"host", "alias", "engine", "missing", "closure"} {
		for i := 0; i < 2; i++ {
			_, err := c.GetDefinition(name)
			require.NoError(t, err, name)
		}
	}

	assert.Equal(t, 1, src.calls["host"])
	assert.Equal(t, 1, src.calls["alias"])
	assert.Equal(t, 1, src.calls["engine"])
	assert.Equal(t, 1, src.calls["missing"], "missing entries are remembered")
	assert.Equal(t, 2, src.calls["closure"], "closures are not cached")
	assert.Equal(t, 4, backend.Len())

	def, err := c.GetDefinition("alias")
	require.NoError(t, err)
	assert.Equal(t, &definition.Reference{EntryName: "alias", Target: "host"}, def)

	def, err = c.GetDefinition("missing")
	require.NoError(t, err)
	assert.Nil(t, def)

	var hits, skips int
	for _, e := range rec.events {
		switch e := e.(type) {
		case *dievent.CacheHit:
			hits++
		case *dievent.CacheStored:
			if e.Err != nil {
				skips++
			}
		}
	}
	assert.Equal(t, 6, hits)
	assert.Equal(t, 2, skips)
}

func TestCacheSkipsAutowiredClasses(t *testing.T) {
	t.Parallel()

	reg := definition.NewRegistry()
	class, err := reg.Register(newCar)
	require.NoError(t, err)

	chain := NewChain()
	chain.SetAutowiring(NewReflectionAutowiring(reg))
	backend := cache.NewMemory()
	c := NewCache(chain, backend, reg)

	_, err = c.GetDefinition(class.Name)
	require.NoError(t, err)
	_, err = c.GetDefinition("*github.com/dimod/di/definition/source.engine")
	require.NoError(t, err)

	assert.Equal(t, 0, backend.Len())
}

func TestCacheKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "di.definitions.db.host", CacheKey("db.host"))
	assert.Equal(t, "di.definitions.%2Agithub.com%2Fx%2Fapp.Mailer", CacheKey("*github.com/x/app.Mailer"))
	assert.NotEqual(t, CacheKey("a/b"), CacheKey("a%2Fb"))
}
