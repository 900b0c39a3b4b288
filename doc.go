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

// Package di is a dependency injection container.
//
// A Container builds entries on request from definitions: values,
// references to other entries, environment variables, factories, objects
// built from registered classes, decorators, string expressions and arrays.
// Definitions come from maps, definition files and custom sources; names
// missing from all of them are inferred from the declared types of
// constructors (autowiring).
//
//	c, err := di.New(
//		di.Types(NewMailer, NewUserService),
//		di.Definitions(map[string]interface{}{
//			"db.dsn":  di.Env("DB_DSN").Default("postgres://localhost/app"),
//			"mailer":  di.Autowire(di.NameOf[*Mailer]()).Property("From", "noreply@acme.com"),
//			"clients": []interface{}{di.Ref("client.a"), di.Ref("client.b")},
//		}),
//		di.Definitions("config/di.yaml"),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//	svc, err := di.Get[*UserService](c)
//
// Sources given later take precedence over earlier ones. A definition can
// extend the definition of the same entry in earlier sources: see Decorate,
// Add and ObjectHelper.Extend.
//
// Entries are shared by default: the container builds them once and returns
// the same value on every Get. Make builds a new value every time.
//
// # Compilation
//
// With the Compile option the definitions are transcribed into a Go file.
// Once the generated package is linked into the binary, typically with a
// blank import, the container runs the generated routines instead of
// resolving definitions.
//
//	//go:generate dicompile -d config/di.yaml -o internal/container
//	import _ "github.com/acme/app/internal/container"
//
//	c, err := di.New(di.Definitions("config/di.yaml"), di.Compile("internal/container"))
//
// # Events
//
// The container reports what it does to a dievent.Logger, see WithLogger.
//
// A Container is not safe for concurrent use.
package di
