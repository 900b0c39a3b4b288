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

// Package compiledtest holds a small application together with the
// container compiled from its definitions.
package compiledtest

import "github.com/dimod/di"

// ContainerName is the name the compiled container is registered under.
const ContainerName = "TestContainer"

// Config configures the Server.
type Config struct {
	Name string
	Port int
}

// Server is built by its constructor.
type Server struct {
	Config     *Config
	Middleware []string
}

// NewServer builds a Server.
func NewServer(cfg *Config) *Server {
	return &Server{Config: cfg}
}

// Use appends a middleware.
func (s *Server) Use(name string) {
	s.Middleware = append(s.Middleware, name)
}

// Request is unshared.
type Request struct {
	ID int
}

// Definitions returns the definitions the container in this package was
// compiled from.
func Definitions() map[string]interface{} {
	return map[string]interface{}{
		"app.name": "demo",
		"app.port": 8080,
		"app.tags": []interface{}{"a", "b"},
		"config": di.CreateType[*Config]().
			Property("Name", di.Ref("app.name")).
			Property("Port", di.Ref("app.port")),
		"server":  di.Create(di.NameOf[*Server]()).Constructor(di.Ref("config")).Method("Use", "logging"),
		"alias":   di.Ref("server"),
		"request": di.CreateType[*Request]().Unshared(),
	}
}

// Options configures a container with the definitions of the package.
func Options() di.Option {
	return di.Options(
		di.Types(NewServer),
		di.Definitions(Definitions()),
	)
}
