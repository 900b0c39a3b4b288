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
	"fmt"
	"log"

	"github.com/dimod/di"
)

type Store struct {
	DSN string
}

type Handler struct {
	Store *Store
	Name  string
}

func NewHandler(store *Store) *Handler {
	return &Handler{Store: store}
}

func Example() {
	c, err := di.New(
		// Constructors must be known before they can be autowired.
		di.Types(NewHandler),
		di.Definitions(map[string]interface{}{
			"db.dsn": "postgres://localhost/app",
			di.NameOf[*Store](): di.CreateType[*Store]().
				Property("DSN", di.Ref("db.dsn")),
			di.NameOf[*Handler](): di.Autowire().
				Property("Name", di.String("handler for {db.dsn}")),
		}),
	)
	if err != nil {
		log.Fatal(err)
	}

	h, err := di.Get[*Handler](c)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(h.Name)
	fmt.Println(h.Store.DSN)

	// Output:
	// handler for postgres://localhost/app
	// postgres://localhost/app
}

func ExampleContainer_Make() {
	c, err := di.New(di.Definitions(map[string]interface{}{
		"greeting": di.Factory(func(name string) string {
			return "hello " + name
		}).Parameter(0, "world"),
	}))
	if err != nil {
		log.Fatal(err)
	}

	v, err := c.Make("greeting", di.Args{0: "gopher"})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(v)

	v, err = c.Get("greeting")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(v)

	// Output:
	// hello gopher
	// hello world
}
