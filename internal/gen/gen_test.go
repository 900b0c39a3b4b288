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

package gen

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type unexported struct{}

func TestType(t *testing.T) {
	t.Parallel()

	f := NewFile("github.com/dimod/di/internal/gen")
	tests := []struct {
		give interface{}
		want string
	}{
		{"", "string"},
		{time.Duration(0), "time.Duration"},
		{[]*time.Time{}, "[]*time.Time"},
		{map[string][]int{}, "map[string][]int"},
		{[2]byte{}, "[2]uint8"},
		{(func(string, ...int) (bool, error))(nil), "func(string, ...int) (bool, error)"},
		{(<-chan int)(nil), "<-chan int"},
		{(*io.Reader)(nil), "*io.Reader"},
		{(*interface{})(nil), "*interface{}"},
		{struct {
			A int `json:"a"`
		}{}, "struct{ A int \"json:\\\"a\\\"\" }"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, f.Type(reflect.TypeOf(tt.give)))
	}
	require.NoError(t, f.Err())
	assert.Equal(t, "import (\n\tio \"io\"\n\ttime \"time\"\n)\n", f.Imports())

	assert.Equal(t, "unexported", f.Type(reflect.TypeOf(unexported{})))
	require.NoError(t, f.Err())

	other := NewFile("github.com/acme/app")
	other.Type(reflect.TypeOf(unexported{}))
	assert.Error(t, other.Err())
}

func TestImportConflicts(t *testing.T) {
	t.Parallel()

	f := NewFile("")
	assert.Equal(t, "rand", f.Import("math/rand", "rand"))
	assert.Equal(t, "rand2", f.Import("crypto/rand", "rand"))
	assert.Equal(t, "rand", f.Import("math/rand", "rand"))
}

func TestPackageName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"github.com/acme/app":        "app",
		"gopkg.in/yaml.v3":           "yaml",
		"github.com/acme/app/v2":     "app",
		"github.com/go-chi/chi":      "chi",
		"github.com/acme/go-kit":     "gokit",
		"example.com/123":            "pkg",
		"github.com/acme/snake_case": "snake_case",
	}
	for path, want := range tests {
		assert.Equal(t, want, PackageName(path), path)
	}
}

func TestLiteral(t *testing.T) {
	t.Parallel()

	f := NewFile("")
	tests := []struct {
		give interface{}
		want string
	}{
		{nil, "nil"},
		{true, "true"},
		{"a\"b", `"a\"b"`},
		{42, "42"},
		{int64(42), "int64(42)"},
		{uint8(7), "uint8(7)"},
		{1.5, "float64(1.5)"},
		{[]string{"a"}, `[]string{"a"}`},
		{[]interface{}{1, nil}, "[]interface{}{1, nil}"},
		{map[string]interface{}{"b": 2, "a": "x"}, `map[string]interface{}{"a": "x", "b": 2}`},
		{[]int(nil), "[]int(nil)"},
	}
	for _, tt := range tests {
		got, err := f.Literal(tt.give)
		require.NoError(t, err, "%v", tt.give)
		assert.Equal(t, tt.want, got)
	}

	for _, bad := range []interface{}{time.Second, struct{}{}, func() {}} {
		_, err := f.Literal(bad)
		assert.Error(t, err, "%T", bad)
	}
}

func TestFormat(t *testing.T) {
	t.Parallel()

	out, err := Format("x.go", []byte("package x\nfunc  F( ) {\nreturn\n}\n"))
	require.NoError(t, err)
	assert.Equal(t, "package x\n\nfunc F() {\n\treturn\n}\n", string(out))

	_, err = Format("x.go", []byte("package x\nfunc {"))
	assert.Error(t, err)
}

func TestWriteNew(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sub", "out.go")
	require.NoError(t, WriteNew(path, []byte("one")))

	err := WriteNew(path, []byte("two"))
	assert.ErrorIs(t, err, fs.ErrExist)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "one", string(got))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files are left")
}
