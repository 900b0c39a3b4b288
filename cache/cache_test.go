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

package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackends(t *testing.T) {
	t.Parallel()

	newLRU := func(t *testing.T) Cache {
		c, err := NewLRU(8)
		require.NoError(t, err)
		return c
	}
	newFile := func(t *testing.T) Cache {
		c, err := NewFile(t.TempDir())
		require.NoError(t, err)
		return c
	}

	tests := []struct {
		desc string
		give func(t *testing.T) Cache
	}{
		{"memory", func(*testing.T) Cache { return NewMemory() }},
		{"zero memory", func(*testing.T) Cache { return &Memory{} }},
		{"lru", newLRU},
		{"file", newFile},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.desc, func(t *testing.T) {
			t.Parallel()

			c := tt.give(t)
			_, ok, err := c.Get("di.definitions.a")
			require.NoError(t, err)
			assert.False(t, ok)

			buf := []byte("hello")
			require.NoError(t, c.Set("di.definitions.a", buf))
			buf[0] = 'j'

			got, ok, err := c.Get("di.definitions.a")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, []byte("hello"), got)

			require.NoError(t, c.Set("di.definitions.a", []byte("world")))
			got, _, err = c.Get("di.definitions.a")
			require.NoError(t, err)
			assert.Equal(t, []byte("world"), got)
		})
	}
}

func TestLRUEvicts(t *testing.T) {
	t.Parallel()

	c, err := NewLRU(1)
	require.NoError(t, err)
	require.NoError(t, c.Set("a", []byte("1")))
	require.NoError(t, c.Set("b", []byte("2")))

	_, ok, _ := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, c.Len())

	_, err = NewLRU(0)
	assert.Error(t, err)
}

func TestFileRequiresDirectory(t *testing.T) {
	t.Parallel()

	_, err := NewFile("")
	assert.Error(t, err)
}
