// Package itemtree instantiates component definitions into trees of items,
// each owning a fixed table of property cells, and routes host access,
// callbacks, focus and input events through them.
package itemtree

import (
	"fmt"

	"github.com/delaneyj/proptree/animation"
	"github.com/delaneyj/proptree/property"
	"github.com/delaneyj/proptree/value"
)

// cells is a property table: an item's kind layout or a component's declared
// properties.
type cells struct {
	layout *Layout
	decls  []PropDecl
	props  []*property.Property[value.Value]
	anims  []*animation.Animated[value.Value]
}

func (s *cells) init(rt *property.Runtime, prefix string, decls []PropDecl) {
	s.decls = decls
	s.props = make([]*property.Property[value.Value], len(decls))
	for i, d := range decls {
		s.props[i] = property.New(rt, d.Default, property.WithName(prefix+"."+d.Name))
	}
}

func (s *cells) slot(name string) (int, bool) {
	if s.layout != nil {
		return s.layout.Index(name)
	}
	for i, d := range s.decls {
		if d.Name == name {
			return i, true
		}
	}
	return 0, false
}

func (s *cells) animated(i int) *animation.Animated[value.Value] {
	if s.anims == nil {
		return nil
	}
	return s.anims[i]
}

func (s *cells) animate(i int, d *animation.Driver, spec animation.Spec) {
	if s.anims == nil {
		s.anims = make([]*animation.Animated[value.Value], len(s.props))
	}
	if s.anims[i] == nil {
		s.anims[i] = animation.NewAnimated(d, s.props[i], spec, animation.LerpValue)
	}
}


func (s *cells) drop() {
	for _, a := range s.anims {
		if a != nil {
			a.Stop()
		}
	}
	for _, p := range s.props {
		p.Drop()
	}
}

// Item is one element of an instantiated tree. Items live in their
// component's arena and are addressed by index; the parent link is a lookup,
// never an owner.
type Item struct {
	cells
	comp      *Component
	index     int
	id        string
	kind      Kind
	parent    int
	children  []int
	callbacks []*Callback
	repeaters []*Repeater
}

func (it *Item) ID() string             { return it.id }
func (it *Item) Kind() Kind             { return it.kind }
func (it *Item) Caps() Caps             { return it.layout.Caps }
func (it *Item) Index() int             { return it.index }
func (it *Item) Component() *Component  { return it.comp }
func (it *Item) Repeaters() []*Repeater { return it.repeaters }

// Parent returns the enclosing item. The root of a repeated instance reports
// the item hosting its repeater.
func (it *Item) Parent() *Item {
	if it.parent >= 0 {
		return &it.comp.items[it.parent]
	}
	return it.comp.host
}

// Children lists the statically declared children. Repeated instances are
// reached through Repeaters or Visit.
func (it *Item) Children() []*Item {
	out := make([]*Item, len(it.children))
	for i, c := range it.children {
		out[i] = &it.comp.items[c]
	}
	return out
}

func (it *Item) Property(name string) *property.Property[value.Value] {
	i, ok := it.slot(name)
	if !ok {
		return nil
	}
	return it.props[i]
}

// Get reads a property, tracking it when called from a binding. Unknown
// names read as void.
func (it *Item) Get(name string) value.Value {
	if p := it.Property(name); p != nil {
		return p.Get()
	}
	return value.Void()
}

func (it *Item) Set(name string, v value.Value) error {
	i, ok := it.slot(name)
	if !ok {
		return fmt.Errorf("%s.%s: %w", it.id, name, ErrNoSuchProperty)
	}
	return it.comp.write(&it.cells, i, v)
}

// Animated returns the animation wrapping a property, if any.
func (it *Item) Animated(name string) *animation.Animated[value.Value] {
	i, ok := it.slot(name)
	if !ok {
		return nil
	}
	return it.animated(i)
}

func (it *Item) Callback(name string) *Callback {
	for _, cb := range it.callbacks {
		if cb.decl.Name == name {
			return cb
		}
	}
	return nil
}

// Emit invokes one of the item's built-in callbacks.
func (it *Item) Emit(name string, args ...value.Value) (value.Value, error) {
	cb := it.Callback(name)
	if cb == nil {
		return value.Void(), fmt.Errorf("%s.%s: %w", it.id, name, ErrNoSuchCallback)
	}
	return cb.Invoke(args...)
}

type Rect struct {
	X, Y, Width, Height float64
}

func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && y >= r.Y && x < r.X+r.Width && y < r.Y+r.Height
}

// Geometry reads the item's rectangle relative to its parent.
func (it *Item) Geometry() Rect {
	return Rect{
		X:      it.props[slotX].Get().AsFloat(),
		Y:      it.props[slotY].Get().AsFloat(),
		Width:  it.props[slotWidth].Get().AsFloat(),
		Height: it.props[slotHeight].Get().AsFloat(),
	}
}

// Absolute returns the item's rectangle in window coordinates. Children of a
// flickable are shifted by its viewport offset.
func (it *Item) Absolute() Rect {
	r := it.Geometry()
	for p := it.Parent(); p != nil; p = p.Parent() {
		g := p.Geometry()
		r.X += g.X
		r.Y += g.Y
		if p.kind == KindFlickable {
			r.X += p.Get("viewport_x").AsFloat()
			r.Y += p.Get("viewport_y").AsFloat()
		}
	}
	return r
}

func (it *Item) String() string {
	return fmt.Sprintf("%s#%s", it.kind, it.id)
}

// Component is one instance of a Definition. It owns every item and cell of
// its tree. Instances are reference counted through Handle; the last release
// tears the whole tree down.
type Component struct {
	def       *Definition
	rt        *property.Runtime
	driver    *animation.Driver
	items     []Item
	scope     cells
	callbacks []*Callback
	outer     *Component
	host      *Item
	// animations by cell, for writes arriving through a two-way link
	anims     map[*property.Property[value.Value]]*animation.Animated[value.Value]
	refs      int
	destroyed bool
	win       *window
}

// Instantiate builds a new instance and returns the first handle to it.
func (d *Definition) Instantiate(rt *property.Runtime, driver *animation.Driver) (*Handle, error) {
	if d.err != nil {
		return nil, d.err
	}
	if len(d.nodes) == 0 {
		return nil, fmt.Errorf("%s: no root element", d.name)
	}
	c := d.build(rt, driver, nil, nil)
	return c.newHandle(), nil
}

func (d *Definition) build(rt *property.Runtime, driver *animation.Driver, outer *Component, host *Item) *Component {
	c := &Component{
		def:    d,
		rt:     rt,
		driver: driver,
		items:  make([]Item, len(d.nodes)),
		outer:  outer,
		host:   host,
	}
	if outer != nil {
		c.win = outer.win
	} else {
		c.win = &window{}
	}

	for i, n := range d.nodes {
		it := &c.items[i]
		it.comp = c
		it.index = i
		it.id = n.id
		it.kind = n.kind
		it.parent = n.parent
		it.children = n.children
		it.layout = LayoutOf(n.kind)
		it.init(rt, d.name+"."+n.id, it.layout.Props)
		for _, decl := range it.layout.Callbacks {
			it.callbacks = append(it.callbacks, newCallback(rt, n.id+"."+decl.Name, decl))
		}
	}
	c.scope.init(rt, d.name, d.declared)
	for _, decl := range d.callbacks {
		c.callbacks = append(c.callbacks, newCallback(rt, d.name+"."+decl.Name, decl))
	}

	for _, s := range d.sets {
		t, i := c.cellsAt(s.node, s.prop)
		t.props[i].Set(s.v)
	}
	for _, a := range d.anims {
		t, i := c.cellsAt(a.node, a.prop)
		t.animate(i, driver, a.spec)
		if c.anims == nil {
			c.anims = make(map[*property.Property[value.Value]]*animation.Animated[value.Value])
		}
		c.anims[t.props[i]] = t.animated(i)
	}
	for _, l := range d.links {
		t, i := c.cellsAt(l.node, l.prop)
		o, j := c.cellsAt(l.other, l.oprop)
		property.LinkTwoWay(t.props[i], o.props[j])
	}

	// Animated bindings evaluate as soon as they are attached, so they go
	// after every plain binding is in place.
	var deferred []func()
	for _, b := range d.binds {
		t, i := c.cellsAt(b.node, b.prop)
		fn := c.coerced(t.props[i].Name(), t.decls[i].Kind, b.factory(c))
		if a := t.animated(i); a != nil {
			deferred = append(deferred, func() { a.SetBinding(fn) })
			continue
		}
		t.props[i].SetBinding(fn)
	}
	for _, f := range deferred {
		f()
	}

	for _, h := range d.handlers {
		c.callbackAt(h.node, h.name).SetHandler(h.factory(c))
	}
	for _, r := range d.repeats {
		it := &c.items[r.host]
		it.repeaters = append(it.repeaters, newRepeater(c, it, r.sub, r.model))
	}
	return c
}

func (c *Component) coerced(name string, kind value.Kind, fn func() value.Value) func() value.Value {
	return func() value.Value {
		v, err := coerceTo(fn(), kind)
		if err != nil {
			c.rt.Logger().Printf("binding %s: %v", name, err)
			return value.Zero(kind)
		}
		return v
	}
}

// cellsAt maps a node resolved by the definition to its property table.
func (c *Component) cellsAt(node int, prop string) (*cells, int) {
	t := &c.scope
	if node >= 0 {
		t = &c.items[node].cells
	}
	i, ok := t.slot(prop)
	if !ok {
		panic(fmt.Sprintf("%s: property %q vanished from node %d", c.def.name, prop, node))
	}
	return t, i
}

func (c *Component) callbackAt(node int, name string) *Callback {
	if node >= 0 {
		return c.items[node].Callback(name)
	}
	return c.Callback(name)
}

func (c *Component) Name() string                { return c.def.name }
func (c *Component) Definition() *Definition     { return c.def }
func (c *Component) Runtime() *property.Runtime  { return c.rt }
func (c *Component) Driver() *animation.Driver   { return c.driver }
func (c *Component) Root() *Item                 { return &c.items[0] }
func (c *Component) Len() int                    { return len(c.items) }
func (c *Component) Destroyed() bool             { return c.destroyed }

// Outer is the component owning the repeater this instance belongs to.
func (c *Component) Outer() *Component { return c.outer }

// Host is the item whose repeater created this instance.
func (c *Component) Host() *Item { return c.host }

// At returns the item at an arena index.
func (c *Component) At(i int) *Item {
	if i < 0 || i >= len(c.items) {
		return nil
	}
	return &c.items[i]
}

// Item looks up an element by id, returning nil when there is none.
func (c *Component) Item(id string) *Item {
	n, ok := c.def.ids[id]
	if !ok {
		return nil
	}
	return &c.items[n]
}

func (c *Component) ItemByID(id string) (*Item, error) {
	it := c.Item(id)
	if it == nil {
		return nil, fmt.Errorf("%s: %w %q", c.def.name, ErrNoSuchItem, id)
	}
	return it, nil
}

// lookup resolves id.prop. The empty id addresses the component scope, where
// declared properties shadow the root element's.
func (c *Component) lookup(id, prop string) (*cells, int, error) {
	if id == "" {
		if i, ok := c.scope.slot(prop); ok {
			return &c.scope, i, nil
		}
		id = c.items[0].id
	}
	it := c.Item(id)
	if it == nil {
		return nil, 0, fmt.Errorf("%s: %w %q", c.def.name, ErrNoSuchItem, id)
	}
	i, ok := it.slot(prop)
	if !ok {
		return nil, 0, fmt.Errorf("%s.%s: %w", id, prop, ErrNoSuchProperty)
	}
	return &it.cells, i, nil
}

func (c *Component) Property(id, prop string) (*property.Property[value.Value], error) {
	t, i, err := c.lookup(id, prop)
	if err != nil {
		return nil, err
	}
	return t.props[i], nil
}

// MustProperty is Property for binding factories, where a missing name is a
// programming error.
func (c *Component) MustProperty(id, prop string) *property.Property[value.Value] {
	p, err := c.Property(id, prop)
	if err != nil {
		panic(err)
	}
	return p
}

// Get reads a top-level property by name.
func (c *Component) Get(name string) (value.Value, error) {
	if c.destroyed {
		return value.Void(), ErrReleased
	}
	t, i, err := c.lookup("", name)
	if err != nil {
		return value.Void(), err
	}
	return t.props[i].Get(), nil
}

// Set writes a top-level property, coercing v to the declared kind first.
// Writes to animated properties start a transition.
func (c *Component) Set(name string, v value.Value) error {
	if c.destroyed {
		return ErrReleased
	}
	t, i, err := c.lookup("", name)
	if err != nil {
		return err
	}
	return c.write(t, i, v)
}

// write coerces v to the declared kind and stores it in the cell that owns
// the value: the link root for a two-way cell. Animated roots start a
// transition instead.
func (c *Component) write(t *cells, i int, v value.Value) error {
	p := t.props[i]
	cv, err := coerceTo(v, t.decls[i].Kind)
	if err != nil {
		return fmt.Errorf("%s: %w", p.Name(), err)
	}
	if a := c.anims[p.LinkRoot()]; a != nil {
		a.Set(cv)
		return nil
	}
	p.Set(cv)
	return nil
}

// Properties lists the component scope: declared properties followed by the
// root element's.
func (c *Component) Properties() []PropDecl {
	out := append([]PropDecl(nil), c.scope.decls...)
	return append(out, c.items[0].decls...)
}

type Order uint8

const (
	// PreOrder visits parents before children, in paint order.
	PreOrder Order = iota
	// FrontToBack visits the topmost item first, as hit testing needs.
	FrontToBack
)

// Visit walks the tree including repeated instances, which are brought up to
// date first. fn returns false to stop; Visit reports whether the walk ran to
// completion.
func (c *Component) Visit(order Order, fn func(*Item) bool) bool {
	if c.destroyed {
		return true
	}
	if order == PreOrder {
		return c.walk(0, fn)
	}
	var all []*Item
	c.walk(0, func(it *Item) bool {
		all = append(all, it)
		return true
	})
	for i := len(all) - 1; i >= 0; i-- {
		if !fn(all[i]) {
			return false
		}
	}
	return true
}

func (c *Component) walk(n int, fn func(*Item) bool) bool {
	it := &c.items[n]
	if !fn(it) {
		return false
	}
	for _, ch := range it.children {
		if !c.walk(ch, fn) {
			return false
		}
	}
	for _, r := range it.repeaters {
		r.EnsureUpdated()
		for _, inst := range r.instances {
			if !inst.c.walk(0, fn) {
				return false
			}
		}
	}
	return true
}

func (c *Component) destroy() {
	if c.destroyed {
		return
	}
	c.destroyed = true
	c.win.forget(c)
	for i := range c.items {
		it := &c.items[i]
		for _, r := range it.repeaters {
			r.release()
		}
		for _, cb := range it.callbacks {
			cb.SetHandler(nil)
		}
		it.drop()
	}
	for _, cb := range c.callbacks {
		cb.SetHandler(nil)
	}
	c.scope.drop()
	c.rt.Logger().Printf("component %s destroyed", c.def.name)
}
