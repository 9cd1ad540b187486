package value

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

var ErrCoercion = errors.New("value coercion")

type CoercionError struct {
	From   Value
	To     Kind
	Reason string
}

func (e *CoercionError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("cannot convert %s %s to %s", e.From.kind, e.From, e.To)
	}
	return fmt.Sprintf("cannot convert %s %s to %s: %s", e.From.kind, e.From, e.To, e.Reason)
}

func (e *CoercionError) Unwrap() error { return ErrCoercion }

// Coerce converts v to kind k following the conversion table:
//
//	from \ to  Bool      Int        Float     String    Color      Duration
//	Void       false     0          0         ""        0          0
//	Bool       =         -          -         "true"    -          -
//	Int        -         =          widen     decimal   -          ms
//	Float      -         trunc      =         %g        -          ms
//	String     parse     parse      parse     =         #rgb hex   Go syntax
//	Color      -         -          -         #aarrggbb =          -
//	Duration   -         ms         ms        Go syntax -          =
//
// Float to Int truncates toward zero and rejects NaN and infinities.
func Coerce(v Value, k Kind) (Value, error) {
	if v.kind == k {
		return v, nil
	}
	if v.kind == KindVoid {
		return Zero(k), nil
	}
	fail := func(reason string) (Value, error) {
		return Value{}, &CoercionError{From: v, To: k, Reason: reason}
	}

	switch k {
	case KindVoid:
		return Void(), nil

	case KindBool:
		if v.kind == KindString {
			b, err := strconv.ParseBool(strings.TrimSpace(v.s))
			if err != nil {
				return fail("not a boolean")
			}
			return Bool(b), nil
		}

	case KindInt:
		switch v.kind {
		case KindFloat:
			if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
				return fail("not finite")
			}
			if v.f >= math.MaxInt64 || v.f <= math.MinInt64 {
				return fail("out of range")
			}
			return Int(int64(v.f)), nil
		case KindString:
			s := strings.TrimSpace(v.s)
			if i, err := strconv.ParseInt(s, 10, 64); err == nil {
				return Int(i), nil
			}
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return fail("not a number")
			}
			return Coerce(Float(f), KindInt)
		case KindDuration:
			return Int(time.Duration(v.i).Milliseconds()), nil
		}

	case KindFloat:
		switch v.kind {
		case KindInt:
			return Float(float64(v.i)), nil
		case KindString:
			f, err := strconv.ParseFloat(strings.TrimSpace(v.s), 64)
			if err != nil {
				return fail("not a number")
			}
			return Float(f), nil
		case KindDuration:
			return Float(float64(v.i) / float64(time.Millisecond)), nil
		}

	case KindString:
		switch v.kind {
		case KindBool:
			return String(strconv.FormatBool(v.b)), nil
		case KindInt:
			return String(strconv.FormatInt(v.i, 10)), nil
		case KindFloat:
			return String(strconv.FormatFloat(v.f, 'g', -1, 64)), nil
		case KindColor:
			return String(FormatColor(uint32(v.i))), nil
		case KindDuration:
			return String(time.Duration(v.i).String()), nil
		}

	case KindColor:
		if v.kind == KindString {
			c, err := ParseColor(v.s)
			if err != nil {
				return fail(err.Error())
			}
			return Color(c), nil
		}

	case KindDuration:
		switch v.kind {
		case KindInt:
			return Duration(time.Duration(v.i) * time.Millisecond), nil
		case KindFloat:
			if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
				return fail("not finite")
			}
			return Duration(time.Duration(v.f * float64(time.Millisecond))), nil
		case KindString:
			d, err := time.ParseDuration(strings.TrimSpace(v.s))
			if err != nil {
				return fail("not a duration")
			}
			return Duration(d), nil
		}
	}
	return fail("")
}

// MustCoerce is Coerce for conversions known to be valid.
func MustCoerce(v Value, k Kind) Value {
	out, err := Coerce(v, k)
	if err != nil {
		panic(err)
	}
	return out
}
