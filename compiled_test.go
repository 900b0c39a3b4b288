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
	"os"
	"path/filepath"
	"testing"

	"github.com/dimod/di"
	"github.com/dimod/di/compiler"
	"github.com/dimod/di/internal/compiledtest"
	"github.com/dimod/di/internal/dilog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompiledContainerMatchesDefinitions(t *testing.T) {
	var spy dilog.Spy
	compiled := newContainer(t,
		compiledtest.Options(),
		di.WithLogger(&spy),
		di.Compile(t.TempDir(), di.ContainerName(compiledtest.ContainerName)),
	)
	require.True(t, compiled.Compiled())
	assert.NotContains(t, spy.EventTypes(), "Compiled", "a linked container is not compiled again")

	plain := newContainer(t, compiledtest.Options())
	require.False(t, plain.Compiled())

	names, err := plain.KnownEntryNames()
	require.NoError(t, err)
	require.NotEmpty(t, names)

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			want, err := plain.Get(name)
			require.NoError(t, err)
			got, err := compiled.Get(name)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}

	t.Run("shared entries", func(t *testing.T) {
		a, err := compiled.Get("server")
		require.NoError(t, err)
		b, err := compiled.Get("alias")
		require.NoError(t, err)
		assert.Same(t, a, b)

		r1, err := compiled.Get("request")
		require.NoError(t, err)
		r2, err := compiled.Get("request")
		require.NoError(t, err)
		assert.NotSame(t, r1, r2)
	})

	t.Run("definitions are locked", func(t *testing.T) {
		err := compiled.Set("extra", di.Ref("server"))
		var cfgErr *di.ConfigurationError
		assert.ErrorAs(t, err, &cfgErr)
	})
}

func TestCompileWritesContainer(t *testing.T) {
	dir := t.TempDir()
	var spy dilog.Spy
	c := newContainer(t,
		compiledtest.Options(),
		di.WithLogger(&spy),
		di.Compile(dir, di.ContainerName("WrittenContainer"), di.Package("container", "example.com/app/container")),
	)
	assert.False(t, c.Compiled(), "the written container is not linked")
	assert.Contains(t, spy.EventTypes(), "Compiled")

	file := filepath.Join(dir, "written_container.go")
	src, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(src), `di.RegisterCompiled("WrittenContainer"`)
	assert.Contains(t, string(src), "package container")
	assert.Contains(t, string(src), compiler.RoutineName("server"))

	got, err := c.Get("alias")
	require.NoError(t, err)
	assert.Equal(t, []string{"logging"}, got.(*compiledtest.Server).Middleware)

	t.Run("existing files are kept", func(t *testing.T) {
		require.NoError(t, os.WriteFile(file, []byte("package container\n"), 0o600))
		spy.Reset()

		_, err := di.New(
			compiledtest.Options(),
			di.WithLogger(&spy),
			di.Compile(dir, di.ContainerName("WrittenContainer")),
		)
		require.NoError(t, err)
		assert.NotContains(t, spy.EventTypes(), "Compiled")

		src, err := os.ReadFile(file)
		require.NoError(t, err)
		assert.Equal(t, "package container\n", string(src))
	})
}

func TestCompileDecoratedClosure(t *testing.T) {
	dir := t.TempDir()
	c := newContainer(t,
		di.Funcs(map[string]interface{}{
			"exclaim": func(prev string) string { return prev + "!" },
		}),
		di.Definitions(map[string]interface{}{
			"greeting": func() string { return "hello" },
		}),
		di.Definitions(map[string]interface{}{
			"greeting": di.Decorate("exclaim"),
		}),
		di.Compile(dir, di.ContainerName("DecoratedContainer")),
	)

	src, err := os.ReadFile(filepath.Join(dir, "decorated_container.go"))
	require.NoError(t, err)
	assert.Contains(t, string(src), `return c.Fallback("greeting")`)

	got, err := c.Get("greeting")
	require.NoError(t, err)
	assert.Equal(t, "hello!", got)
}

func TestCompileFailureWritesNothing(t *testing.T) {
	dir := t.TempDir()
	_, err := di.New(
		di.Definitions(map[string]interface{}{
			"config": di.CreateType[*Config]().Property("Name", func() string { return "inline" }),
		}),
		di.Compile(dir),
	)
	var compErr *di.CompilationError
	require.ErrorAs(t, err, &compErr)
	assert.Equal(t, compiler.DefaultContainerName, compErr.ContainerName)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
