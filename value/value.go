// Package value holds the loosely typed literal values that flow through item
// property tables, host get/set calls and callback arguments.
package value

import (
	"fmt"
	"strconv"
	"time"
)

type Kind uint8

const (
	KindVoid Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindColor
	KindDuration
)

var kindNames = [...]string{
	KindVoid:     "void",
	KindBool:     "bool",
	KindInt:      "int",
	KindFloat:    "float",
	KindString:   "string",
	KindColor:    "color",
	KindDuration: "duration",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// ParseKind maps the names used by component descriptions to a Kind.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), true
		}
	}
	switch s {
	case "number", "length":
		return KindFloat, true
	case "integer":
		return KindInt, true
	case "brush":
		return KindColor, true
	}
	return KindVoid, false
}

// Value is comparable so it can be stored in a property cell; two values are
// == only when both kind and payload match.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
}

func Void() Value                    { return Value{} }
func Bool(b bool) Value              { return Value{kind: KindBool, b: b} }
func Int(i int64) Value              { return Value{kind: KindInt, i: i} }
func Float(f float64) Value          { return Value{kind: KindFloat, f: f} }
func String(s string) Value          { return Value{kind: KindString, s: s} }
func Color(argb uint32) Value        { return Value{kind: KindColor, i: int64(argb)} }
func Duration(d time.Duration) Value { return Value{kind: KindDuration, i: int64(d)} }

// Zero returns the default value of a kind.
func Zero(k Kind) Value {
	return Value{kind: k}
}

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsVoid() bool { return v.kind == KindVoid }

func (v Value) IsNumber() bool {
	return v.kind == KindInt || v.kind == KindFloat
}

func (v Value) AsBool() bool {
	return v.kind == KindBool && v.b
}

func (v Value) AsInt() int64 {
	switch v.kind {
	case KindInt, KindDuration:
		return v.i
	case KindFloat:
		return int64(v.f)
	}
	return 0
}

func (v Value) AsFloat() float64 {
	switch v.kind {
	case KindFloat:
		return v.f
	case KindInt:
		return float64(v.i)
	}
	return 0
}

func (v Value) AsString() string {
	if v.kind == KindString {
		return v.s
	}
	return ""
}

func (v Value) AsColor() uint32 {
	if v.kind == KindColor {
		return uint32(v.i)
	}
	return 0
}

func (v Value) AsDuration() time.Duration {
	if v.kind == KindDuration {
		return time.Duration(v.i)
	}
	return 0
}

func (v Value) String() string {
	switch v.kind {
	case KindVoid:
		return "void"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return strconv.Quote(v.s)
	case KindColor:
		return FormatColor(uint32(v.i))
	case KindDuration:
		return time.Duration(v.i).String()
	}
	return fmt.Sprintf("value(%d)", v.kind)
}

// Of converts a Go value of a supported type. Unsupported types report false.
func Of(x any) (Value, bool) {
	switch x := x.(type) {
	case nil:
		return Void(), true
	case Value:
		return x, true
	case bool:
		return Bool(x), true
	case int:
		return Int(int64(x)), true
	case int32:
		return Int(int64(x)), true
	case int64:
		return Int(x), true
	case float32:
		return Float(float64(x)), true
	case float64:
		return Float(x), true
	case string:
		return String(x), true
	case time.Duration:
		return Duration(x), true
	}
	return Void(), false
}
