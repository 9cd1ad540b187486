package value

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseColor accepts #rgb, #rrggbb and #aarrggbb. Colors without an alpha
// component are opaque.
func ParseColor(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		return 0, fmt.Errorf("color %q must start with #", s)
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("color %q: %w", s, err)
	}
	switch len(hex) {
	case 6:
		return 0xff000000 | uint32(n), nil
	case 8:
		return uint32(n), nil
	}
	return 0, fmt.Errorf("color %q has %d digits", s, len(hex))
}

func FormatColor(argb uint32) string {
	return fmt.Sprintf("#%08x", argb)
}

// Channels splits a color into alpha, red, green, blue.
func Channels(argb uint32) (a, r, g, b uint8) {
	return uint8(argb >> 24), uint8(argb >> 16), uint8(argb >> 8), uint8(argb)
}

func RGBA(r, g, b, a uint8) uint32 {
	return uint32(a)<<24 | uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}
