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
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"strings"

	"github.com/dimod/di/cache"
	"github.com/dimod/di/definition"
	"github.com/dimod/di/dievent"
)

// CacheKeyPrefix prefixes the backend keys of cached definitions.
const CacheKeyPrefix = "di.definitions."

func init() {
	gob.Register(map[string]interface{}{})
	gob.Register([]interface{}{})
}

// errImplicitClass marks definitions that depend on classes registered while
// autowiring. Such classes are unknown to a process starting from a warm
// cache.
var errImplicitClass = errors.New("definition depends on an autowired class")

// Cache wraps a source with a cache backend. Lookups ask the backend first
// and fall back to the source on a miss, storing the result when it can be
// serialized. Missing entries are remembered too.
type Cache struct {
	source   Source
	backend  cache.Cache
	registry *definition.Registry
	log      dievent.Logger
}

var _ Source = (*Cache)(nil)

// CacheOption customizes a Cache.
type CacheOption interface {
	apply(*Cache)
}

type cacheLoggerOption struct{ l dievent.Logger }

func (o cacheLoggerOption) apply(c *Cache) { c.log = o.l }

// CacheLogger reports cache hits and stores to l.
func CacheLogger(l dievent.Logger) CacheOption {
	return cacheLoggerOption{l: l}
}

// NewCache wraps src. The registry tells apart classes the user registered
// from those discovered while autowiring.
func NewCache(src Source, backend cache.Cache, registry *definition.Registry, opts ...CacheOption) *Cache {
	c := &Cache{
		source:   src,
		backend:  backend,
		registry: registry,
		log:      dievent.NopLogger,
	}
	for _, opt := range opts {
		opt.apply(c)
	}
	return c
}

type cacheRecord struct {
	Found bool
	Tree  interface{}
}

// GetDefinition implements Source.
func (c *Cache) GetDefinition(name string) (definition.Definition, error) {
	key := CacheKey(name)
	data, ok, err := c.backend.Get(key)
	if err != nil {
		return nil, fmt.Errorf("read definition cache for %q: %w", name, err)
	}
	if ok {
		var rec cacheRecord
		if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&rec); err != nil {
			return nil, fmt.Errorf("decode cached definition of %q: %w", name, err)
		}
		c.log.LogEvent(&dievent.CacheHit{Name: name, Missing: !rec.Found})
		if !rec.Found {
			return nil, nil
		}
		return definition.Decode(name, rec.Tree)
	}

	def, err := c.source.GetDefinition(name)
	if err != nil {
		return nil, err
	}

	rec := cacheRecord{Found: def != nil}
	if def != nil {
		if rec.Tree, err = c.encode(def); err != nil {
			c.log.LogEvent(&dievent.CacheStored{Name: name, Err: err})
			return def, nil
		}
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(&rec); err != nil {
		c.log.LogEvent(&dievent.CacheStored{Name: name, Err: fmt.Errorf("%w: %v", definition.ErrNotSerializable, err)})
		return def, nil
	}
	if err := c.backend.Set(key, buf.Bytes()); err != nil {
		return nil, fmt.Errorf("write definition cache for %q: %w", name, err)
	}
	c.log.LogEvent(&dievent.CacheStored{Name: name, Missing: def == nil})
	return def, nil
}

func (c *Cache) encode(def definition.Definition) (interface{}, error) {
	err := definition.Walk(def, func(d definition.Definition) error {
		var class string
		switch d := d.(type) {
		case *definition.Object:
			class = d.Class()
			if _, ok := c.registry.Class(class); !ok {
				return fmt.Errorf("%w: class %s is not registered", errImplicitClass, class)
			}
		case *definition.Reference:
			class = d.Target
		default:
			return nil
		}
		if cl, ok := c.registry.Class(class); ok && cl.Implicit {
			return fmt.Errorf("%w: %s", errImplicitClass, class)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return definition.Encode(def)
}

// Definitions implements Source. Enumeration bypasses the cache.
func (c *Cache) Definitions() (map[string]definition.Definition, error) {
	return c.source.Definitions()
}

// CacheKey returns the backend key of an entry. Bytes outside
// [A-Za-z0-9._-] are escaped as %XX so that distinct names never share a
// key.
func CacheKey(name string) string {
	var b strings.Builder
	b.WriteString(CacheKeyPrefix)
	for i := 0; i < len(name); i++ {
		ch := name[i]
		switch {
		case 'a' <= ch && ch <= 'z', 'A' <= ch && ch <= 'Z', '0' <= ch && ch <= '9',
			ch == '.', ch == '_', ch == '-':
			b.WriteByte(ch)
		default:
			fmt.Fprintf(&b, "%%%02X", ch)
		}
	}
	return b.String()
}
