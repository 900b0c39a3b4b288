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
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/cucumber/godog"
	"github.com/dimod/di"
)

type containerFeature struct {
	builder   *di.Builder
	container *di.Container
	calls     int
	results   []interface{}
	err       error
}

func (f *containerFeature) reset() {
	*f = containerFeature{builder: di.NewBuilder()}
}

func (f *containerFeature) aSourceDefiningAsTheValue(name, value string) error {
	return f.builder.AddDefinitions(map[string]interface{}{name: value})
}

func (f *containerFeature) counting() func() *int {
	return func() *int {
		f.calls++
		n := f.calls
		return &n
	}
}

func (f *containerFeature) aSourceDefiningAsACountingFactory(name string) error {
	return f.builder.AddDefinitions(map[string]interface{}{name: f.counting()})
}

func (f *containerFeature) aSourceDefiningAsAnUnsharedCountingFactory(name string) error {
	return f.builder.AddDefinitions(map[string]interface{}{name: di.Factory(f.counting()).Unshared()})
}

func (f *containerFeature) aSourceWhereRefersToAndRefersTo(a, b, _, _ string) error {
	return f.builder.AddDefinitions(map[string]interface{}{
		a: di.CreateType[*Node]().Property("Next", di.Ref(b)),
		b: di.CreateType[*Node]().Property("Next", di.Ref(a)),
	})
}

func (f *containerFeature) iBuildTheContainer() error {
	var err error
	f.container, err = f.builder.Build()
	return err
}

func (f *containerFeature) iGet(name string) error {
	v, err := f.container.Get(name)
	f.results = append(f.results, v)
	f.err = err
	return nil
}

func (f *containerFeature) iGetTwice(name string) error {
	for i := 0; i < 2; i++ {
		if err := f.iGet(name); err != nil {
			return err
		}
		if f.err != nil {
			return f.err
		}
	}
	return nil
}

func (f *containerFeature) iMake(name string) error {
	_, err := f.container.Make(name, nil)
	return err
}

func (f *containerFeature) iAddASourceDefiningAsTheValue(name, value string) error {
	f.err = f.builder.AddDefinitions(map[string]interface{}{name: value})
	return nil
}

func (f *containerFeature) theResultIs(want string) error {
	if f.err != nil {
		return f.err
	}
	if got := f.results[len(f.results)-1]; got != want {
		return fmt.Errorf("got %v, want %q", got, want)
	}
	return nil
}

func (f *containerFeature) bothResultsAreTheSameInstance() error {
	if f.results[0].(*int) != f.results[1].(*int) {
		return errors.New("got two instances")
	}
	return nil
}

func (f *containerFeature) bothResultsAreDifferentInstances() error {
	if f.results[0].(*int) == f.results[1].(*int) {
		return errors.New("got the same instance twice")
	}
	return nil
}

func (f *containerFeature) theFactoryWasCalledTimes(n int) error {
	if f.err != nil {
		return f.err
	}
	if f.calls != n {
		return fmt.Errorf("factory called %d times, want %d", f.calls, n)
	}
	return nil
}

func (f *containerFeature) resolutionFailsWithTheCycle(chain string) error {
	var cycle *di.CircularDependencyError
	if !errors.As(f.err, &cycle) {
		return fmt.Errorf("want a circular dependency error, got %v", f.err)
	}
	if got := strings.Join(cycle.Chain, " -> "); got != chain {
		return fmt.Errorf("got cycle %q, want %q", got, chain)
	}
	return nil
}

func (f *containerFeature) configurationFailsBecauseTheBuilderIsLocked() error {
	if !errors.Is(f.err, di.ErrLocked) {
		return fmt.Errorf("want a locked builder error, got %v", f.err)
	}
	return nil
}

func initializeContainerScenario(ctx *godog.ScenarioContext) {
	f := &containerFeature{}
	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		f.reset()
		return ctx, nil
	})

	ctx.Step(`^a source defining "([^"]*)" as the value "([^"]*)"$`, f.aSourceDefiningAsTheValue)
	ctx.Step(`^a source defining "([^"]*)" as a counting factory$`, f.aSourceDefiningAsACountingFactory)
	ctx.Step(`^a source defining "([^"]*)" as an unshared counting factory$`, f.aSourceDefiningAsAnUnsharedCountingFactory)
	ctx.Step(`^a source where "([^"]*)" refers to "([^"]*)" and "([^"]*)" refers to "([^"]*)"$`, f.aSourceWhereRefersToAndRefersTo)
	ctx.Step(`^I build the container$`, f.iBuildTheContainer)
	ctx.Step(`^I get "([^"]*)"$`, f.iGet)
	ctx.Step(`^I get "([^"]*)" twice$`, f.iGetTwice)
	ctx.Step(`^I make "([^"]*)"$`, f.iMake)
	ctx.Step(`^I add a source defining "([^"]*)" as the value "([^"]*)"$`, f.iAddASourceDefiningAsTheValue)
	ctx.Step(`^the result is "([^"]*)"$`, f.theResultIs)
	ctx.Step(`^both results are the same instance$`, f.bothResultsAreTheSameInstance)
	ctx.Step(`^both results are different instances$`, f.bothResultsAreDifferentInstances)
	ctx.Step(`^the factory was called (\d+) times$`, f.theFactoryWasCalledTimes)
	ctx.Step(`^resolution fails with the cycle "([^"]*)"$`, f.resolutionFailsWithTheCycle)
	ctx.Step(`^configuration fails because the builder is locked$`, f.configurationFailsBecauseTheBuilderIsLocked)
}

func TestContainerFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: initializeContainerScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"features/container.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
