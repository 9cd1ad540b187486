package templates

import (
	"strings"
)

// Node is one line of a tree dump: an item or a nested component, with the
// properties to print under it.
type Node struct {
	Depth int
	Label string
	Props []Prop
}

type Prop struct {
	Name  string
	Kind  string
	Value string
}

func indent(depth int) string {
	return strings.Repeat("  ", depth)
}

func propWidth(props []Prop) int {
	w := 0
	for _, p := range props {
		w = max(w, len(p.Name))
	}
	return w
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
