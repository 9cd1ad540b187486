package value

import (
	"fmt"
	"time"
)

type Op uint8

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
)

var opNames = [...]string{"+", "-", "*", "/"}

func (o Op) String() string {
	return opNames[o]
}

func ParseOp(s string) (Op, bool) {
	for i, name := range opNames {
		if name == s {
			return Op(i), true
		}
	}
	return 0, false
}

type ArithmeticError struct {
	Op   Op
	L, R Value
}

func (e *ArithmeticError) Error() string {
	return fmt.Sprintf("invalid operation %s %s %s", e.L.kind, e.Op, e.R.kind)
}

func Add(l, r Value) (Value, error) { return Arith(OpAdd, l, r) }
func Sub(l, r Value) (Value, error) { return Arith(OpSub, l, r) }
func Mul(l, r Value) (Value, error) { return Arith(OpMul, l, r) }
func Div(l, r Value) (Value, error) { return Arith(OpDiv, l, r) }

// Arith applies op. Int op Int stays Int except for division, which always
// yields Float. Mixed Int/Float widens to Float. Durations add and subtract
// with durations and scale by numbers. A string on either side of + concatenates.
func Arith(op Op, l, r Value) (Value, error) {
	if op == OpAdd && (l.kind == KindString || r.kind == KindString) {
		return String(display(l) + display(r)), nil
	}

	switch {
	case l.kind == KindInt && r.kind == KindInt:
		switch op {
		case OpAdd:
			return Int(l.i + r.i), nil
		case OpSub:
			return Int(l.i - r.i), nil
		case OpMul:
			return Int(l.i * r.i), nil
		case OpDiv:
			return Float(float64(l.i) / float64(r.i)), nil
		}

	case l.IsNumber() && r.IsNumber():
		a, b := l.AsFloat(), r.AsFloat()
		switch op {
		case OpAdd:
			return Float(a + b), nil
		case OpSub:
			return Float(a - b), nil
		case OpMul:
			return Float(a * b), nil
		case OpDiv:
			return Float(a / b), nil
		}

	case l.kind == KindDuration && r.kind == KindDuration:
		switch op {
		case OpAdd:
			return Duration(time.Duration(l.i + r.i)), nil
		case OpSub:
			return Duration(time.Duration(l.i - r.i)), nil
		case OpDiv:
			return Float(float64(l.i) / float64(r.i)), nil
		}

	case l.kind == KindDuration && r.IsNumber():
		switch op {
		case OpMul:
			return Duration(time.Duration(float64(l.i) * r.AsFloat())), nil
		case OpDiv:
			return Duration(time.Duration(float64(l.i) / r.AsFloat())), nil
		}

	case l.IsNumber() && r.kind == KindDuration && op == OpMul:
		return Duration(time.Duration(l.AsFloat() * float64(r.i))), nil
	}
	return Value{}, &ArithmeticError{Op: op, L: l, R: r}
}

func Neg(v Value) (Value, error) {
	switch v.kind {
	case KindInt:
		return Int(-v.i), nil
	case KindFloat:
		return Float(-v.f), nil
	case KindDuration:
		return Duration(time.Duration(-v.i)), nil
	}
	return Value{}, fmt.Errorf("cannot negate %s", v.kind)
}

// Compare orders two values of compatible kinds, widening Int to Float when
// the kinds differ. ok is false for incomparable kinds.
func Compare(l, r Value) (c int, ok bool) {
	cmp := func(less, greater bool) int {
		switch {
		case less:
			return -1
		case greater:
			return 1
		}
		return 0
	}
	switch {
	case l.kind == KindInt && r.kind == KindInt:
		return cmp(l.i < r.i, l.i > r.i), true
	case l.IsNumber() && r.IsNumber():
		a, b := l.AsFloat(), r.AsFloat()
		return cmp(a < b, a > b), true
	case l.kind == r.kind:
		switch l.kind {
		case KindVoid:
			return 0, true
		case KindBool:
			return cmp(!l.b && r.b, l.b && !r.b), true
		case KindString:
			return cmp(l.s < r.s, l.s > r.s), true
		case KindDuration:
			return cmp(l.i < r.i, l.i > r.i), true
		case KindColor:
			if l.i == r.i {
				return 0, true
			}
		}
	}
	return 0, false
}

// Equal reports semantic equality: Int(2) equals Float(2).
func Equal(l, r Value) bool {
	c, ok := Compare(l, r)
	return ok && c == 0
}

func display(v Value) string {
	if v.kind == KindString {
		return v.s
	}
	if v.kind == KindVoid {
		return ""
	}
	return v.String()
}
