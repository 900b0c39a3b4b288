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

package definition

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
)

// ErrNotSerializable is returned by Encode for definitions that hold Go
// values with no portable form, such as closures.
var ErrNotSerializable = errors.New("definition cannot be serialized")

// Keys selecting the kind of a descriptor. A mapping holding none of them is
// a plain value.
var _kindKeys = []string{"value", "get", "env", "string", "create", "autowire", "factory", "decorate", "add", "array"}

// Decode builds the definition of entry name from a descriptor tree, as
// found in YAML, TOML or JSON definition files:
//
//	db.host: localhost                 # value
//	db.dsn: {string: "pg://{db.host}"} # string expression
//	logger: {get: app.logger}          # alias
//	api.key: {env: API_KEY, default: dev}
//	mailer:
//	  create: "*github.com/acme/app.Mailer"
//	  constructor: [{get: logger}, smtp.acme.com]
//	  properties: {Timeout: 30}
//	  methods: [{name: SetFrom, args: [noreply@acme.com]}]
//	  lazy: true
//	  shared: false
//	plugins: [a, b]                    # array
//	more.plugins: {add: [c]}           # array extension
//	db: {factory: app.newDB}           # registered function
func Decode(name string, raw interface{}) (Definition, error) {
	if list, ok := asList(raw); ok {
		raw = list
	}
	switch raw := raw.(type) {
	case []interface{}:
		values, err := decodeList(raw)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", name, err)
		}
		return &Array{EntryName: name, Values: values}, nil
	case map[interface{}]interface{}:
		m, err := stringKeys(raw)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", name, err)
		}
		return Decode(name, m)
	case map[string]interface{}:
		def, err := decodeMap(name, raw)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", name, err)
		}
		return def, nil
	}
	return &Value{EntryName: name, Value: raw}, nil
}

func decodeMap(name string, m map[string]interface{}) (Definition, error) {
	var kind string
	for _, k := range _kindKeys {
		if _, ok := m[k]; !ok {
			continue
		}
		if kind != "" {
			return nil, fmt.Errorf("descriptor holds both %q and %q", kind, k)
		}
		kind = k
	}
	if kind == "" {
		return &Value{EntryName: name, Value: m}, nil
	}

	d := descriptor{m: m, used: map[string]bool{kind: true}}
	var def Definition
	switch kind {
	case "value":
		def = &Value{EntryName: name, Value: m["value"]}
	case "get":
		def = &Reference{EntryName: name, Target: d.string("get"), Optional: d.bool("optional")}
	case "env":
		env := &EnvironmentVariable{
			EntryName: name,
			Variable:  d.string("env"),
			Optional:  d.bool("optional"),
			Cast:      d.string("cast"),
		}
		if raw, ok := d.get("default"); ok {
			dflt, err := Decode("", raw)
			if err != nil {
				return nil, err
			}
			env.Default = dflt
			env.Optional = true
		}
		def = env
	case "string":
		def = &String{EntryName: name, Expression: d.string("string")}
	case "create", "autowire":
		obj := &Object{
			EntryName: name,
			ClassName: d.string(kind),
			Autowire:  kind == "autowire",
			Lazy:      d.optBool("lazy"),
			Shared:    d.optBool("shared"),
		}
		if raw, ok := d.get("extends"); ok {
			switch ext := raw.(type) {
			case bool:
				if ext {
					obj.Extends = name
				}
			case string:
				obj.Extends = ext
			default:
				return nil, fmt.Errorf("extends must be a boolean or an entry name, got %T", raw)
			}
		}
		var err error
		if obj.Constructor, err = d.args("constructor"); err != nil {
			return nil, err
		}
		if obj.Properties, err = d.props("properties"); err != nil {
			return nil, err
		}
		if obj.Methods, err = d.methods("methods"); err != nil {
			return nil, err
		}
		def = obj
	case "factory":
		params, err := d.args("parameters")
		if err != nil {
			return nil, err
		}
		def = &Factory{EntryName: name, CallableName: d.string("factory"), Parameters: params, Shared: d.optBool("shared")}
	case "decorate":
		params, err := d.args("parameters")
		if err != nil {
			return nil, err
		}
		dec := &Decorator{EntryName: name, CallableName: d.string("decorate"), Parameters: params, Shared: d.optBool("shared")}
		if raw, ok := d.get("decorated"); ok {
			if dec.Decorated, err = Decode(name, raw); err != nil {
				return nil, err
			}
		}
		def = dec
	case "add", "array":
		list, ok := asList(m[kind])
		if !ok {
			return nil, fmt.Errorf("%q must be a list, got %T", kind, m[kind])
		}
		values, err := decodeList(list)
		if err != nil {
			return nil, err
		}
		if kind == "add" {
			def = &ArrayExtension{EntryName: name, Values: values}
		} else {
			def = &Array{EntryName: name, Values: values}
		}
	}

	if d.err != nil {
		return nil, d.err
	}
	if unknown := d.unused(); len(unknown) > 0 {
		return nil, fmt.Errorf("unknown keys %v for a %q descriptor", unknown, kind)
	}
	return def, nil
}

type descriptor struct {
	m    map[string]interface{}
	used map[string]bool
	err  error
}

func (d *descriptor) get(key string) (interface{}, bool) {
	v, ok := d.m[key]
	d.used[key] = true
	return v, ok
}

func (d *descriptor) fail(key string, want string, got interface{}) {
	if d.err == nil {
		d.err = fmt.Errorf("%q must be %s, got %T", key, want, got)
	}
}

func (d *descriptor) string(key string) string {
	v, ok := d.get(key)
	if !ok || v == nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		d.fail(key, "a string", v)
	}
	return s
}

func (d *descriptor) bool(key string) bool {
	b := d.optBool(key)
	return b != nil && *b
}

func (d *descriptor) optBool(key string) *bool {
	v, ok := d.get(key)
	if !ok || v == nil {
		return nil
	}
	b, ok := v.(bool)
	if !ok {
		d.fail(key, "a boolean", v)
		return nil
	}
	return &b
}

func (d *descriptor) args(key string) (map[int]Definition, error) {
	v, ok := d.get(key)
	if !ok || v == nil {
		return nil, nil
	}
	return decodeArgs(v)
}

func (d *descriptor) props(key string) (map[string]Definition, error) {
	v, ok := d.get(key)
	if !ok || v == nil {
		return nil, nil
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		if mm, isAny := v.(map[interface{}]interface{}); isAny {
			var err error
			if m, err = stringKeys(mm); err != nil {
				return nil, err
			}
		} else {
			return nil, fmt.Errorf("%q must be a mapping, got %T", key, v)
		}
	}
	props := make(map[string]Definition, len(m))
	for name, raw := range m {
		def, err := Decode("", raw)
		if err != nil {
			return nil, err
		}
		props[name] = def
	}
	return props, nil
}

func (d *descriptor) methods(key string) ([]MethodCall, error) {
	v, ok := d.get(key)
	if !ok || v == nil {
		return nil, nil
	}
	list, ok := asList(v)
	if !ok {
		return nil, fmt.Errorf("%q must be a list, got %T", key, v)
	}
	calls := make([]MethodCall, 0, len(list))
	for _, item := range list {
		raw, ok := item.(map[string]interface{})
		if !ok {
			mm, isAny := item.(map[interface{}]interface{})
			if !isAny {
				return nil, fmt.Errorf("method calls must be mappings, got %T", item)
			}
			var err error
			if raw, err = stringKeys(mm); err != nil {
				return nil, err
			}
		}
		name, _ := raw["name"].(string)
		if name == "" {
			name, _ = raw["method"].(string)
		}
		if name == "" {
			return nil, fmt.Errorf("method call %v has no name", raw)
		}
		call := MethodCall{Method: name}
		if a, ok := raw["args"]; ok && a != nil {
			args, err := decodeArgs(a)
			if err != nil {
				return nil, err
			}
			call.Args = args
		}
		calls = append(calls, call)
	}
	return calls, nil
}

func (d *descriptor) unused() []string {
	var keys []string
	for k := range d.m {
		if !d.used[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func decodeArgs(v interface{}) (map[int]Definition, error) {
	args := make(map[int]Definition)
	if list, ok := asList(v); ok {
		v = list
	}
	switch v := v.(type) {
	case []interface{}:
		for i, raw := range v {
			def, err := Decode("", raw)
			if err != nil {
				return nil, err
			}
			args[i] = def
		}
	case map[interface{}]interface{}:
		m, err := stringKeys(v)
		if err != nil {
			return nil, err
		}
		return decodeArgs(m)
	case map[string]interface{}:
		for k, raw := range v {
			i, err := strconv.Atoi(k)
			if err != nil || i < 0 {
				return nil, fmt.Errorf("argument keys must be parameter positions, got %q", k)
			}
			def, err := Decode("", raw)
			if err != nil {
				return nil, err
			}
			args[i] = def
		}
	default:
		return nil, fmt.Errorf("arguments must be a list or a mapping of positions, got %T", v)
	}
	return args, nil
}

// asList accepts the list shapes produced by the YAML, TOML and JSON
// decoders.
func asList(v interface{}) ([]interface{}, bool) {
	switch v := v.(type) {
	case []interface{}:
		return v, true
	case []map[string]interface{}:
		list := make([]interface{}, len(v))
		for i, m := range v {
			list[i] = m
		}
		return list, true
	}
	return nil, false
}

func decodeList(list []interface{}) ([]Definition, error) {
	values := make([]Definition, len(list))
	for i, raw := range list {
		def, err := Decode("", raw)
		if err != nil {
			return nil, err
		}
		values[i] = def
	}
	return values, nil
}

func stringKeys(m map[interface{}]interface{}) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		s, ok := k.(string)
		if !ok {
			return nil, fmt.Errorf("mapping keys must be strings, got %T", k)
		}
		out[s] = v
	}
	return out, nil
}

// Encode returns the descriptor tree of def, the inverse of Decode. It fails
// with ErrNotSerializable for closures and for values that are not plain
// data (see IsPlainData).
func Encode(def Definition) (interface{}, error) {
	switch d := def.(type) {
	case *Value:
		if !IsPlainData(d.Value) {
			return nil, fmt.Errorf("%w: value of type %T", ErrNotSerializable, d.Value)
		}
		return map[string]interface{}{"value": d.Value}, nil
	case *Reference:
		m := map[string]interface{}{"get": d.Target}
		if d.Optional {
			m["optional"] = true
		}
		return m, nil
	case *EnvironmentVariable:
		m := map[string]interface{}{"env": d.Variable, "optional": d.Optional}
		if d.Cast != "" {
			m["cast"] = d.Cast
		}
		if d.Default != nil {
			dflt, err := Encode(d.Default)
			if err != nil {
				return nil, err
			}
			m["default"] = dflt
		}
		return m, nil
	case *String:
		return map[string]interface{}{"string": d.Expression}, nil
	case *Array:
		list, err := encodeList(d.Values)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"array": list}, nil
	case *ArrayExtension:
		list, err := encodeList(d.Values)
		if err != nil {
			return nil, err
		}
		return map[string]interface{}{"add": list}, nil
	case *Factory:
		if d.CallableName == "" {
			return nil, fmt.Errorf("%w: factory %s is a Go function", ErrNotSerializable, d.Func())
		}
		m := map[string]interface{}{"factory": d.CallableName}
		if err := encodeCommon(m, d.Parameters, d.Shared); err != nil {
			return nil, err
		}
		return m, nil
	case *Decorator:
		if d.CallableName == "" {
			return nil, fmt.Errorf("%w: decorator %s is a Go function", ErrNotSerializable, d.Func())
		}
		m := map[string]interface{}{"decorate": d.CallableName}
		if err := encodeCommon(m, d.Parameters, d.Shared); err != nil {
			return nil, err
		}
		if d.Decorated != nil {
			decorated, err := Encode(d.Decorated)
			if err != nil {
				return nil, err
			}
			m["decorated"] = decorated
		}
		return m, nil
	case *Object:
		return encodeObject(d)
	}
	return nil, fmt.Errorf("%w: unknown definition %T", ErrNotSerializable, def)
}

func encodeObject(d *Object) (interface{}, error) {
	kind := "create"
	if d.Autowire {
		kind = "autowire"
	}
	m := map[string]interface{}{kind: d.ClassName}
	if d.Lazy != nil {
		m["lazy"] = *d.Lazy
	}
	if d.Shared != nil {
		m["shared"] = *d.Shared
	}
	if d.Extends != "" {
		m["extends"] = d.Extends
	}
	if len(d.Constructor) > 0 {
		args, err := encodeArgs(d.Constructor)
		if err != nil {
			return nil, err
		}
		m["constructor"] = args
	}
	if len(d.Properties) > 0 {
		props := make(map[string]interface{}, len(d.Properties))
		for name, p := range d.Properties {
			v, err := Encode(p)
			if err != nil {
				return nil, err
			}
			props[name] = v
		}
		m["properties"] = props
	}
	if len(d.Methods) > 0 {
		methods := make([]interface{}, len(d.Methods))
		for i, call := range d.Methods {
			args, err := encodeArgs(call.Args)
			if err != nil {
				return nil, err
			}
			methods[i] = map[string]interface{}{"name": call.Method, "args": args}
		}
		m["methods"] = methods
	}
	return m, nil
}

func encodeCommon(m map[string]interface{}, params map[int]Definition, shared *bool) error {
	if shared != nil {
		m["shared"] = *shared
	}
	if len(params) > 0 {
		args, err := encodeArgs(params)
		if err != nil {
			return err
		}
		m["parameters"] = args
	}
	return nil
}

func encodeArgs(args map[int]Definition) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(args))
	for i, a := range args {
		v, err := Encode(a)
		if err != nil {
			return nil, err
		}
		out[strconv.Itoa(i)] = v
	}
	return out, nil
}

func encodeList(values []Definition) ([]interface{}, error) {
	list := make([]interface{}, len(values))
	for i, v := range values {
		enc, err := Encode(v)
		if err != nil {
			return nil, err
		}
		list[i] = enc
	}
	return list, nil
}

// IsPlainData reports whether v is built only from nil, booleans, numbers,
// strings, and unnamed slices and string-keyed maps of those. Plain data has
// a portable encoding and a Go literal form.
func IsPlainData(v interface{}) bool {
	if v == nil {
		return true
	}
	return isPlainValue(reflect.ValueOf(v))
}

func isPlainValue(rv reflect.Value) bool {
	t := rv.Type()
	if t.PkgPath() != "" {
		return false
	}
	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	case reflect.Interface:
		if rv.IsNil() {
			return true
		}
		return isPlainValue(rv.Elem())
	case reflect.Slice:
		if !isPlainType(t.Elem()) {
			return false
		}
		for i := 0; i < rv.Len(); i++ {
			if !isPlainValue(rv.Index(i)) {
				return false
			}
		}
		return true
	case reflect.Map:
		if t.Key().Kind() != reflect.String || t.Key().PkgPath() != "" || !isPlainType(t.Elem()) {
			return false
		}
		iter := rv.MapRange()
		for iter.Next() {
			if !isPlainValue(iter.Value()) {
				return false
			}
		}
		return true
	}
	return false
}

func isPlainType(t reflect.Type) bool {
	if t.PkgPath() != "" {
		return false
	}
	switch t.Kind() {
	case reflect.Interface:
		return t.NumMethod() == 0
	case reflect.Slice:
		return isPlainType(t.Elem())
	case reflect.Map:
		return t.Key().Kind() == reflect.String && t.Key().PkgPath() == "" && isPlainType(t.Elem())
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
