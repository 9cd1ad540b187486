package itemtree

import (
	"unicode/utf8"

	"github.com/delaneyj/proptree/value"
)

// window is the input state shared by a top-level instance and every
// repeated instance below it.
type window struct {
	shown   bool
	focus   *Item
	grabber *Item
	hover   *Item
}

func (w *window) forget(c *Component) {
	if w.focus != nil && w.focus.comp == c {
		w.focus = nil
	}
	if w.grabber != nil && w.grabber.comp == c {
		w.grabber = nil
	}
	if w.hover != nil && w.hover.comp == c {
		w.hover = nil
	}
}

func (c *Component) top() *Component {
	for c.outer != nil {
		c = c.outer
	}
	return c
}

// Show activates the tree. The first call hands focus to the item named as
// initial focus, if any; otherwise nothing is focused.
func (c *Component) Show() {
	top := c.top()
	if top.win.shown {
		return
	}
	top.win.shown = true
	if n := top.def.initialFocus; n >= 0 {
		top.SetFocus(&top.items[n])
	}
}

func (c *Component) Shown() bool { return c.win.shown }

// FocusItem returns the focused item, or nil.
func (c *Component) FocusItem() *Item {
	if f := c.win.focus; f != nil && !f.comp.destroyed {
		return f
	}
	return nil
}

// SetFocus moves keyboard focus to it, or clears it when it is nil. Items
// that are not focusable, or belong to another tree, are refused.
func (c *Component) SetFocus(it *Item) bool {
	w := c.win
	if it != nil && (!it.Caps().Has(CapFocusable) || it.comp.destroyed || it.comp.win != w) {
		return false
	}
	if w.focus == it {
		return true
	}
	if prev := w.focus; prev != nil && !prev.comp.destroyed {
		prev.setIfPresent("has_focus", value.Bool(false))
	}
	w.focus = it
	if it != nil {
		it.setIfPresent("has_focus", value.Bool(true))
	}
	return true
}

// FocusNext moves focus to the next focusable item in tree order, wrapping
// around.
func (c *Component) FocusNext() bool {
	top := c.top()
	var all []*Item
	top.Visit(PreOrder, func(it *Item) bool {
		if it.Caps().Has(CapFocusable) && enabled(it) {
			all = append(all, it)
		}
		return true
	})
	if len(all) == 0 {
		return false
	}
	next := all[0]
	for i, it := range all {
		if it == top.win.focus {
			next = all[(i+1)%len(all)]
			break
		}
	}
	return top.SetFocus(next)
}

func (it *Item) setIfPresent(name string, v value.Value) {
	if i, ok := it.slot(name); ok {
		if err := it.comp.write(&it.cells, i, v); err != nil {
			it.comp.rt.Logger().Printf("%s.%s: %v", it.id, name, err)
		}
	}
}

func enabled(it *Item) bool {
	p := it.Property("enabled")
	return p == nil || p.Get().AsBool()
}

type PointerKind uint8

const (
	PointerMove PointerKind = iota
	PointerPress
	PointerRelease
	PointerExit
)

// PointerEvent carries window coordinates.
type PointerEvent struct {
	Kind PointerKind
	X, Y float64
}

// ItemAt hit-tests pointer-capable, enabled items front to back.
func (c *Component) ItemAt(x, y float64) *Item {
	var hit *Item
	c.top().Visit(FrontToBack, func(it *Item) bool {
		if !it.Caps().Has(CapPointer) || !enabled(it) {
			return true
		}
		if !it.Absolute().Contains(x, y) || clipped(it, x, y) {
			return true
		}
		hit = it
		return false
	})
	return hit
}

func clipped(it *Item, x, y float64) bool {
	for p := it.Parent(); p != nil; p = p.Parent() {
		if p.Caps().Has(CapClip) && !p.Absolute().Contains(x, y) {
			return true
		}
	}
	return false
}

// DispatchPointer routes a pointer event. A press grabs the pointer for the
// item under it until the matching release, which emits clicked when it
// happens inside the item. It reports whether an item took the event.
func (c *Component) DispatchPointer(ev PointerEvent) bool {
	top := c.top()
	w := top.win
	if g := w.grabber; g != nil && g.comp.destroyed {
		w.grabber = nil
	}

	if ev.Kind == PointerExit {
		if g := w.grabber; g != nil {
			g.setIfPresent("pressed", value.Bool(false))
			w.grabber = nil
		}
		top.setHover(nil)
		return false
	}

	if g := w.grabber; g != nil {
		r := g.Absolute()
		g.setMouse(ev.X-r.X, ev.Y-r.Y)
		if ev.Kind == PointerRelease {
			w.grabber = nil
			g.setIfPresent("pressed", value.Bool(false))
			if r.Contains(ev.X, ev.Y) && g.Callback("clicked") != nil {
				g.Emit("clicked")
			}
		}
		return true
	}

	target := top.ItemAt(ev.X, ev.Y)
	top.setHover(target)
	if target == nil {
		return false
	}
	r := target.Absolute()
	target.setMouse(ev.X-r.X, ev.Y-r.Y)
	if ev.Kind == PointerPress {
		w.grabber = target
		target.setIfPresent("pressed", value.Bool(true))
		if target.Caps().Has(CapFocusable) {
			top.SetFocus(target)
		}
	}
	return true
}

// Grabber is the item holding the pointer between press and release.
func (c *Component) Grabber() *Item {
	return c.win.grabber
}

func (c *Component) setHover(it *Item) {
	w := c.win
	if w.hover == it {
		return
	}
	if prev := w.hover; prev != nil && !prev.comp.destroyed {
		prev.setIfPresent("has_hover", value.Bool(false))
	}
	w.hover = it
	if it != nil {
		it.setIfPresent("has_hover", value.Bool(true))
	}
}

func (it *Item) setMouse(x, y float64) {
	it.setIfPresent("mouse_x", value.Float(x))
	it.setIfPresent("mouse_y", value.Float(y))
}

type Key uint8

const (
	KeyText Key = iota
	KeyBackspace
	KeyReturn
	KeyTab
	KeyEscape
)

type KeyEvent struct {
	Key  Key
	Text string
}

// DispatchKey delivers a key to the focused keyboard item. Text is appended
// and backspace deletes the last character, both emitting edited; return
// emits accepted. Tab moves focus and escape clears it.
func (c *Component) DispatchKey(ev KeyEvent) bool {
	top := c.top()
	switch ev.Key {
	case KeyTab:
		return top.FocusNext()
	case KeyEscape:
		if top.FocusItem() == nil {
			return false
		}
		return top.SetFocus(nil)
	}

	it := top.FocusItem()
	if it == nil || !it.Caps().Has(CapKeyboard) || !enabled(it) {
		return false
	}
	text := it.Get("text").AsString()
	switch ev.Key {
	case KeyText:
		if ev.Text == "" {
			return false
		}
		it.Set("text", value.String(text+ev.Text))
		it.Emit("edited")
	case KeyBackspace:
		if text == "" {
			return true
		}
		_, size := utf8.DecodeLastRuneInString(text)
		it.Set("text", value.String(text[:len(text)-size]))
		it.Emit("edited")
	case KeyReturn:
		it.Emit("accepted")
	default:
		return false
	}
	return true
}
