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

package env

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	first := filepath.Join(dir, ".env.local")
	second := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(first, []byte("DB_HOST=local\n"), 0o644))
	require.NoError(t, os.WriteFile(second, []byte("DB_HOST=default\nDB_PORT=5432\nHOME=dotenv\n"), 0o644))

	e, err := Load(first, second)
	require.NoError(t, err)
	e.lookup = func(name string) (string, bool) {
		if name == "HOME" {
			return "/home/gopher", true
		}
		return "", false
	}

	tests := []struct {
		name   string
		want   string
		wantOK bool
	}{
		{"DB_HOST", "local", true},
		{"DB_PORT", "5432", true},
		{"HOME", "/home/gopher", true},
		{"MISSING", "", false},
	}
	for _, tt := range tests {
		got, ok := e.Lookup(tt.name)
		assert.Equal(t, tt.wantOK, ok, tt.name)
		assert.Equal(t, tt.want, got, tt.name)
	}
	assert.Equal(t, []string{first, second}, e.Files())
}

func TestLoadErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := Load(filepath.Join(dir, "a.env"), filepath.Join(dir, "b.env"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a.env")
	assert.Contains(t, err.Error(), "b.env")
}

func TestCast(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		to   string
		want interface{}
	}{
		{"x", "", "x"},
		{"true", "bool", true},
		{"42", "int", 42},
		{"42", "uint16", uint16(42)},
		{"1.5", "float64", 1.5},
		{"2s", "duration", 2 * time.Second},
	}
	for _, tt := range tests {
		got, err := Cast(tt.raw, tt.to)
		require.NoError(t, err, tt.to)
		assert.Equal(t, tt.want, got, tt.to)
	}

	_, err := Cast("x", "int")
	assert.Error(t, err)
	_, err = Cast("x", "complex")
	assert.ErrorContains(t, err, "unknown cast")
	assert.Contains(t, Casts(), "duration")
}
