package animation

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Easing maps linear progress in [0,1] to eased progress.
type Easing func(t float64) float64

var (
	Linear    Easing = func(t float64) float64 { return t }
	Ease             = CubicBezier(0.25, 0.1, 0.25, 1)
	EaseIn           = CubicBezier(0.42, 0, 1, 1)
	EaseOut          = CubicBezier(0, 0, 0.58, 1)
	EaseInOut        = CubicBezier(0.42, 0, 0.58, 1)
)

// CubicBezier builds a CSS style timing function with control points
// (x1,y1) and (x2,y2). x1 and x2 are clamped to [0,1].
func CubicBezier(x1, y1, x2, y2 float64) Easing {
	x1 = clamp01(x1)
	x2 = clamp01(x2)
	if x1 == y1 && x2 == y2 {
		return Linear
	}
	bx := func(t float64) float64 { return bezier(t, x1, x2) }
	by := func(t float64) float64 { return bezier(t, y1, y2) }
	dx := func(t float64) float64 {
		mt := 1 - t
		return 3*mt*mt*x1 + 6*mt*t*(x2-x1) + 3*t*t*(1-x2)
	}
	return func(x float64) float64 {
		if x <= 0 {
			return 0
		}
		if x >= 1 {
			return 1
		}
		t := x
		for i := 0; i < 8; i++ {
			err := bx(t) - x
			if math.Abs(err) < 1e-7 {
				return by(t)
			}
			d := dx(t)
			if math.Abs(d) < 1e-6 {
				break
			}
			t -= err / d
		}
		lo, hi := 0.0, 1.0
		t = x
		for i := 0; i < 50; i++ {
			v := bx(t)
			if math.Abs(v-x) < 1e-7 {
				break
			}
			if v < x {
				lo = t
			} else {
				hi = t
			}
			t = (lo + hi) / 2
		}
		return by(t)
	}
}

func bezier(t, p1, p2 float64) float64 {
	mt := 1 - t
	return 3*mt*mt*t*p1 + 3*mt*t*t*p2 + t*t*t
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// ParseEasing understands linear, ease, ease-in, ease-out, ease-in-out and
// cubic-bezier(x1, y1, x2, y2).
func ParseEasing(s string) (Easing, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "", "linear":
		return Linear, nil
	case "ease":
		return Ease, nil
	case "ease-in":
		return EaseIn, nil
	case "ease-out":
		return EaseOut, nil
	case "ease-in-out":
		return EaseInOut, nil
	}
	if strings.HasPrefix(s, "cubic-bezier(") && strings.HasSuffix(s, ")") {
		parts := strings.Split(s[len("cubic-bezier("):len(s)-1], ",")
		if len(parts) != 4 {
			return nil, fmt.Errorf("easing %q: want 4 control values, got %d", s, len(parts))
		}
		var p [4]float64
		for i, part := range parts {
			f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
			if err != nil {
				return nil, fmt.Errorf("easing %q: %w", s, err)
			}
			p[i] = f
		}
		return CubicBezier(p[0], p[1], p[2], p[3]), nil
	}
	return nil, fmt.Errorf("unknown easing %q", s)
}
