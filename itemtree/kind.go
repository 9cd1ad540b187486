package itemtree

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/delaneyj/proptree/value"
)

// Kind is the closed set of built-in item types.
type Kind uint8

const (
	KindWindow Kind = iota
	KindEmpty
	KindRectangle
	KindBorderRectangle
	KindText
	KindTextInput
	KindTouchArea
	KindImage
	KindFlickable
	KindPath
	kindCount
)

var kindNames = [...]string{
	KindWindow:          "Window",
	KindEmpty:           "Empty",
	KindRectangle:       "Rectangle",
	KindBorderRectangle: "BorderRectangle",
	KindText:            "Text",
	KindTextInput:       "TextInput",
	KindTouchArea:       "TouchArea",
	KindImage:           "Image",
	KindFlickable:       "Flickable",
	KindPath:            "Path",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// ParseKind matches kind names case-insensitively.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if strings.EqualFold(name, s) {
			return Kind(k), true
		}
	}
	return 0, false
}

// Caps is a set of capabilities. Event dispatch, focus and hit testing select
// items by capability rather than by kind.
type Caps uint16

const (
	CapGeometry Caps = 1 << iota
	CapPaint
	CapPointer
	CapKeyboard
	CapFocusable
	CapText
	CapClip
)

var capNames = []struct {
	c    Caps
	name string
}{
	{CapGeometry, "geometry"},
	{CapPaint, "paint"},
	{CapPointer, "pointer"},
	{CapKeyboard, "keyboard"},
	{CapFocusable, "focusable"},
	{CapText, "text"},
	{CapClip, "clip"},
}

func (c Caps) Has(o Caps) bool { return c&o == o }

func (c Caps) String() string {
	var parts []string
	for _, n := range capNames {
		if c.Has(n.c) {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// PropDecl declares one property cell: its name, the kind every stored value
// is coerced to and the initial value.
type PropDecl struct {
	Name    string
	Kind    value.Kind
	Default value.Value
}

// CallbackDecl declares a callback and the kinds of its arguments.
type CallbackDecl struct {
	Name string
	Args []value.Kind
}

// Layout is the property cell table shared by every item of one kind.
// Geometry properties always come first, in the same order.
type Layout struct {
	Kind      Kind
	Caps      Caps
	Props     []PropDecl
	Callbacks []CallbackDecl
	index     map[uint64]int
}

// Index finds a property's slot in the table.
func (l *Layout) Index(name string) (int, bool) {
	i, ok := l.index[xxhash.Sum64String(name)]
	if !ok || l.Props[i].Name != name {
		return 0, false
	}
	return i, true
}

func (l *Layout) Callback(name string) (int, bool) {
	for i, cb := range l.Callbacks {
		if cb.Name == name {
			return i, true
		}
	}
	return 0, false
}

// Geometry slots, identical for every layout.
const (
	slotX = iota
	slotY
	slotWidth
	slotHeight
)

func float(name string) PropDecl {
	return PropDecl{Name: name, Kind: value.KindFloat, Default: value.Float(0)}
}

func boolean(name string, def bool) PropDecl {
	return PropDecl{Name: name, Kind: value.KindBool, Default: value.Bool(def)}
}

func str(name, def string) PropDecl {
	return PropDecl{Name: name, Kind: value.KindString, Default: value.String(def)}
}

func color(name string, def uint32) PropDecl {
	return PropDecl{Name: name, Kind: value.KindColor, Default: value.Color(def)}
}

var layouts [kindCount]*Layout

func newLayout(k Kind, caps Caps, props []PropDecl, callbacks ...CallbackDecl) *Layout {
	l := &Layout{
		Kind:      k,
		Caps:      caps | CapGeometry,
		Props:     append([]PropDecl{float("x"), float("y"), float("width"), float("height")}, props...),
		Callbacks: callbacks,
		index:     map[uint64]int{},
	}
	for i, p := range l.Props {
		h := xxhash.Sum64String(p.Name)
		if _, dup := l.index[h]; dup {
			panic(fmt.Sprintf("%s: duplicate property slot %q", k, p.Name))
		}
		l.index[h] = i
	}
	return l
}

func init() {
	layouts[KindWindow] = newLayout(KindWindow, CapPaint, []PropDecl{
		str("title", ""),
		color("background", 0xffffffff),
	})
	layouts[KindEmpty] = newLayout(KindEmpty, 0, nil)
	layouts[KindRectangle] = newLayout(KindRectangle, CapPaint, []PropDecl{
		color("color", 0),
	})
	layouts[KindBorderRectangle] = newLayout(KindBorderRectangle, CapPaint, []PropDecl{
		color("color", 0),
		float("border_width"),
		float("border_radius"),
		color("border_color", 0),
	})
	layouts[KindText] = newLayout(KindText, CapPaint|CapText, []PropDecl{
		str("text", ""),
		color("color", 0xff000000),
		float("font_size"),
		str("horizontal_alignment", "left"),
	})
	layouts[KindTextInput] = newLayout(KindTextInput, CapPaint|CapText|CapPointer|CapKeyboard|CapFocusable, []PropDecl{
		str("text", ""),
		color("color", 0xff000000),
		float("font_size"),
		boolean("enabled", true),
		boolean("has_focus", false),
	},
		CallbackDecl{Name: "edited"},
		CallbackDecl{Name: "accepted"},
	)
	layouts[KindTouchArea] = newLayout(KindTouchArea, CapPointer, []PropDecl{
		boolean("enabled", true),
		boolean("pressed", false),
		boolean("has_hover", false),
		float("mouse_x"),
		float("mouse_y"),
	},
		CallbackDecl{Name: "clicked"},
	)
	layouts[KindImage] = newLayout(KindImage, CapPaint, []PropDecl{
		str("source", ""),
		str("image_fit", "fill"),
	})
	layouts[KindFlickable] = newLayout(KindFlickable, CapClip, []PropDecl{
		float("viewport_x"),
		float("viewport_y"),
		float("viewport_width"),
		float("viewport_height"),
		boolean("interactive", true),
	})
	layouts[KindPath] = newLayout(KindPath, CapPaint, []PropDecl{
		str("commands", ""),
		color("fill", 0),
		color("stroke", 0),
		float("stroke_width"),
	})
}

// LayoutOf returns the shared property table of a kind.
func LayoutOf(k Kind) *Layout {
	if k >= kindCount {
		panic(fmt.Sprintf("unknown item kind %d", k))
	}
	return layouts[k]
}

func (k Kind) Caps() Caps {
	return LayoutOf(k).Caps
}
