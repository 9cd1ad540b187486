package animation

import (
	"math"
	"time"

	"github.com/delaneyj/proptree/value"
)

// Interpolator returns the value at eased progress t between from and to.
// t may leave [0,1] for overshooting easings.
type Interpolator[T any] func(from, to T, t float64) T

func LerpFloat64(from, to float64, t float64) float64 {
	return from + (to-from)*t
}

func LerpFloat32(from, to float32, t float64) float32 {
	return from + (to-from)*float32(t)
}

func LerpInt(from, to int, t float64) int {
	return int(math.Round(float64(from) + float64(to-from)*t))
}

func LerpDuration(from, to time.Duration, t float64) time.Duration {
	return from + time.Duration(float64(to-from)*t)
}

// LerpColor interpolates each ARGB channel separately.
func LerpColor(from, to uint32, t float64) uint32 {
	fa, fr, fg, fb := value.Channels(from)
	ta, tr, tg, tb := value.Channels(to)
	ch := func(a, b uint8) uint8 {
		v := math.Round(float64(a) + (float64(b)-float64(a))*t)
		return uint8(math.Max(0, math.Min(255, v)))
	}
	return value.RGBA(ch(fr, tr), ch(fg, tg), ch(fb, tb), ch(fa, ta))
}

// LerpValue interpolates numbers, colors and durations. Two ints stay ints.
// Other kinds, or mismatched kinds, jump to the target.
func LerpValue(from, to value.Value, t float64) value.Value {
	switch {
	case from.Kind() == value.KindInt && to.Kind() == value.KindInt:
		return value.Int(int64(math.Round(float64(from.AsInt()) + float64(to.AsInt()-from.AsInt())*t)))
	case from.IsNumber() && to.IsNumber():
		return value.Float(LerpFloat64(from.AsFloat(), to.AsFloat(), t))
	case from.Kind() == value.KindColor && to.Kind() == value.KindColor:
		return value.Color(LerpColor(from.AsColor(), to.AsColor(), t))
	case from.Kind() == value.KindDuration && to.Kind() == value.KindDuration:
		return value.Duration(LerpDuration(from.AsDuration(), to.AsDuration(), t))
	}
	return to
}
