package itemtree

import (
	"fmt"
	"reflect"
	"strconv"
	"time"

	"github.com/delaneyj/proptree/property"
	"github.com/delaneyj/proptree/value"
)

// Handler receives callback arguments already checked against the
// declaration.
type Handler func(args []value.Value) value.Value

// Callback is a declared signal with typed arguments.
type Callback struct {
	rt   *property.Runtime
	decl CallbackDecl
	slot *property.Callback[[]value.Value, value.Value]
}

func newCallback(rt *property.Runtime, name string, decl CallbackDecl) *Callback {
	return &Callback{
		rt:   rt,
		decl: decl,
		slot: property.NewCallback[[]value.Value, value.Value](rt, name),
	}
}

func (cb *Callback) Name() string         { return cb.decl.Name }
func (cb *Callback) Args() []value.Kind   { return cb.decl.Args }
func (cb *Callback) HasHandler() bool     { return cb.slot.HasHandler() }
func (cb *Callback) SetHandler(h Handler) { cb.slot.SetHandler(h) }

// Invoke checks args against the declaration and runs the handler. Ints are
// accepted for float arguments. Without a handler Invoke returns void.
func (cb *Callback) Invoke(args ...value.Value) (value.Value, error) {
	checked, err := cb.check(args)
	if err != nil {
		return value.Void(), err
	}
	ret, _ := cb.slot.Call(checked)
	return ret, nil
}

func (cb *Callback) check(args []value.Value) ([]value.Value, error) {
	want := cb.decl.Args
	if len(args) != len(want) {
		return nil, &ArgumentError{
			Callback: cb.decl.Name,
			Index:    -1,
			Want:     strconv.Itoa(len(want)),
			Got:      strconv.Itoa(len(args)),
		}
	}
	out := make([]value.Value, len(args))
	for i, a := range args {
		switch {
		case want[i] == value.KindVoid || a.Kind() == want[i]:
			out[i] = a
		case a.Kind() == value.KindInt && want[i] == value.KindFloat:
			out[i] = value.Float(a.AsFloat())
		default:
			return nil, &ArgumentError{
				Callback: cb.decl.Name,
				Index:    i,
				Want:     want[i].String(),
				Got:      a.Kind().String(),
			}
		}
	}
	return out, nil
}

var (
	valueType = reflect.TypeOf(value.Value{})
	errorType = reflect.TypeOf((*error)(nil)).Elem()
)

// goTypes are the Go parameter types a handler may use for each kind.
var goTypes = map[value.Kind][]reflect.Type{
	value.KindBool:     {reflect.TypeOf(false)},
	value.KindInt:      {reflect.TypeOf(int(0)), reflect.TypeOf(int64(0)), reflect.TypeOf(int32(0))},
	value.KindFloat:    {reflect.TypeOf(float64(0)), reflect.TypeOf(float32(0))},
	value.KindString:   {reflect.TypeOf("")},
	value.KindColor:    {reflect.TypeOf(uint32(0))},
	value.KindDuration: {reflect.TypeOf(time.Duration(0))},
}

// SetHandlerFunc installs an ordinary Go function as handler. Its parameters
// must match the declared argument kinds (value.Value accepts any kind) and
// it may return nothing, a value, or a value and an error. The signature is
// checked here, once, rather than on every call.
func (cb *Callback) SetHandlerFunc(fn any) error {
	if fn == nil {
		cb.SetHandler(nil)
		return nil
	}
	rv := reflect.ValueOf(fn)
	rt := rv.Type()
	if rt.Kind() != reflect.Func {
		return &ArgumentError{Callback: cb.decl.Name, Index: -1, Want: "func", Got: rt.String()}
	}
	if rt.IsVariadic() || rt.NumIn() != len(cb.decl.Args) {
		return &ArgumentError{
			Callback: cb.decl.Name,
			Index:    -1,
			Want:     strconv.Itoa(len(cb.decl.Args)),
			Got:      strconv.Itoa(rt.NumIn()),
		}
	}
	for i, k := range cb.decl.Args {
		in := rt.In(i)
		if !acceptsKind(in, k) {
			return &ArgumentError{Callback: cb.decl.Name, Index: i, Want: k.String(), Got: in.String()}
		}
	}
	switch rt.NumOut() {
	case 0:
	case 1:
		if rt.Out(0) == errorType {
			break
		}
		if _, ok := value.Of(reflect.Zero(rt.Out(0)).Interface()); !ok {
			return fmt.Errorf("callback %s: unsupported result type %s: %w", cb.decl.Name, rt.Out(0), ErrArgument)
		}
	case 2:
		if rt.Out(1) != errorType {
			return fmt.Errorf("callback %s: second result must be error: %w", cb.decl.Name, ErrArgument)
		}
		if _, ok := value.Of(reflect.Zero(rt.Out(0)).Interface()); !ok {
			return fmt.Errorf("callback %s: unsupported result type %s: %w", cb.decl.Name, rt.Out(0), ErrArgument)
		}
	default:
		return fmt.Errorf("callback %s: too many results: %w", cb.decl.Name, ErrArgument)
	}

	name := cb.decl.Name
	logger := cb.rt.Logger()
	cb.SetHandler(func(args []value.Value) value.Value {
		in := make([]reflect.Value, len(args))
		for i, a := range args {
			in[i] = goValue(a, rt.In(i))
		}
		out := rv.Call(in)
		if n := len(out); n > 0 && out[n-1].Type() == errorType {
			if err, _ := out[n-1].Interface().(error); err != nil {
				logger.Printf("callback %s: %v", name, err)
				return value.Void()
			}
			out = out[:n-1]
		}
		if len(out) == 0 {
			return value.Void()
		}
		v, _ := value.Of(out[0].Interface())
		return v
	})
	return nil
}

func acceptsKind(t reflect.Type, k value.Kind) bool {
	if t == valueType {
		return true
	}
	for _, gt := range goTypes[k] {
		if t == gt {
			return true
		}
	}
	return false
}

func goValue(v value.Value, t reflect.Type) reflect.Value {
	if t == valueType {
		return reflect.ValueOf(v)
	}
	var x any
	switch v.Kind() {
	case value.KindBool:
		x = v.AsBool()
	case value.KindInt:
		x = v.AsInt()
	case value.KindFloat:
		x = v.AsFloat()
	case value.KindString:
		x = v.AsString()
	case value.KindColor:
		x = v.AsColor()
	case value.KindDuration:
		x = v.AsDuration()
	default:
		return reflect.Zero(t)
	}
	return reflect.ValueOf(x).Convert(t)
}

// Callback returns a declared top-level callback, or nil.
func (c *Component) Callback(name string) *Callback {
	for _, cb := range c.callbacks {
		if cb.decl.Name == name {
			return cb
		}
	}
	return nil
}

func (c *Component) SetHandler(name string, h Handler) error {
	cb := c.Callback(name)
	if cb == nil {
		return fmt.Errorf("%s.%s: %w", c.def.name, name, ErrNoSuchCallback)
	}
	cb.SetHandler(h)
	return nil
}

func (c *Component) SetHandlerFunc(name string, fn any) error {
	cb := c.Callback(name)
	if cb == nil {
		return fmt.Errorf("%s.%s: %w", c.def.name, name, ErrNoSuchCallback)
	}
	return cb.SetHandlerFunc(fn)
}

// Invoke raises a top-level callback. Arguments are validated before the
// handler runs.
func (c *Component) Invoke(name string, args ...value.Value) (value.Value, error) {
	if c.destroyed {
		return value.Void(), ErrReleased
	}
	cb := c.Callback(name)
	if cb == nil {
		return value.Void(), fmt.Errorf("%s.%s: %w", c.def.name, name, ErrNoSuchCallback)
	}
	return cb.Invoke(args...)
}
