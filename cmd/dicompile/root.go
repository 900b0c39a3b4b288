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

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dimod/di/compiler"
	"github.com/dimod/di/definition"
	"github.com/dimod/di/definition/source"
	"github.com/dimod/di/dievent"
)

// Version information, set at link time.
var (
	Version = "dev"
	Commit  = "none"
)

type options struct {
	definitions []string
	out         string
	name        string
	pkg         string
	pkgPath     string
	autowiring  bool
	verbose     bool
}

func newRootCommand() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "dicompile",
		Short: "Compile container definition files into Go code",
		Long: `dicompile transcribes the definitions of YAML, TOML or JSON files into a Go
file registering a compiled container. Link the generated package into the
program and build the container with di.Compile to use it.

Files given later take precedence over earlier ones. An existing output file
is never overwritten.`,
		Version:       fmt.Sprintf("%s (commit %s)", Version, Commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringArrayVarP(&opts.definitions, "definitions", "d", nil, "definition file, repeatable")
	flags.StringVarP(&opts.out, "out", "o", "", "directory the container is written to")
	flags.StringVar(&opts.name, "name", compiler.DefaultContainerName, "name the container is registered under")
	flags.StringVar(&opts.pkg, "package", "", "package name of the generated file (default: base name of --out)")
	flags.StringVar(&opts.pkgPath, "pkg-path", "", "import path of the generated package")
	flags.BoolVar(&opts.autowiring, "autowiring", true, "compile the entries referenced but not defined when they can be autowired")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log compilation events")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func run(cmd *cobra.Command, opts options) error {
	if len(opts.definitions) == 0 {
		return errors.New("no definition file given, use --definitions")
	}

	registry := definition.NewRegistry()
	sources := make([]source.Source, len(opts.definitions))
	for i, path := range opts.definitions {
		f, err := source.NewFile(path)
		if err != nil {
			return err
		}
		sources[len(sources)-1-i] = f
	}
	chain := source.NewChain(sources...)

	var hints definition.HintResolver
	if opts.autowiring {
		aw := source.NewReflectionAutowiring(registry)
		chain.SetAutowiring(aw)
		hints = aw
	}

	var logger dievent.Logger = dievent.NopLogger
	if opts.verbose {
		logger = &dievent.ConsoleLogger{W: cmd.ErrOrStderr()}
	}

	pkg := opts.pkg
	if pkg == "" {
		pkg = packageName(opts.out)
	}
	c := compiler.New(compiler.Config{
		ContainerName: opts.name,
		Package:       pkg,
		PkgPath:       opts.pkgPath,
		Registry:      registry,
		Hints:         hints,
		Logger:        logger,
	})

	if err := os.MkdirAll(opts.out, 0o755); err != nil {
		return err
	}
	file, err := c.Compile(chain, opts.out)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), file)
	return nil
}
