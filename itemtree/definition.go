package itemtree

import (
	"fmt"
	"strings"

	"github.com/delaneyj/proptree/animation"
	"github.com/delaneyj/proptree/value"
)

// BindingFactory is called once per instance, after every cell exists, so
// that it can resolve the cells its binding reads. The returned function is
// the binding itself.
type BindingFactory func(c *Component) func() value.Value

// HandlerFactory builds a callback handler for one instance.
type HandlerFactory func(c *Component) Handler

// ModelFactory returns the model expression of a repeater. The expression is
// re-evaluated whenever a property it reads changes.
type ModelFactory func(c *Component) func() Model

type nodeDef struct {
	id       string
	kind     Kind
	parent   int
	children []int
}

type setDef struct {
	node int
	prop string
	v    value.Value
}

type bindDef struct {
	node    int
	prop    string
	factory BindingFactory
}

type animDef struct {
	node int
	prop string
	spec animation.Spec
}

type linkDef struct {
	node, other int
	prop, oprop string
}

type handlerDef struct {
	node    int
	name    string
	factory HandlerFactory
}

type repeatDef struct {
	host  int
	sub   *Definition
	model ModelFactory
}

// Definition is a fully resolved component description: the element tree,
// declared properties and callbacks, and how each cell is initialized. It is
// built once and instantiated any number of times.
//
// Builder methods record the first error and ignore later calls; Err and
// Instantiate return it. Node -1 stands for the component scope, addressed
// with the empty id.
type Definition struct {
	name         string
	nodes        []nodeDef
	ids          map[string]int
	declared     []PropDecl
	callbacks    []CallbackDecl
	sets         []setDef
	binds        []bindDef
	anims        []animDef
	links        []linkDef
	handlers     []handlerDef
	repeats      []repeatDef
	initialFocus int
	err          error
}

func NewDefinition(name string) *Definition {
	return &Definition{
		name:         name,
		ids:          map[string]int{},
		initialFocus: -1,
	}
}

func (d *Definition) Name() string { return d.name }
func (d *Definition) Err() error   { return d.err }

func (d *Definition) fail(format string, args ...any) *Definition {
	if d.err == nil {
		d.err = fmt.Errorf("%s: "+format, append([]any{d.name}, args...)...)
	}
	return d
}

// Root sets the root element. It must be called exactly once, first.
func (d *Definition) Root(kind Kind, id string) *Definition {
	if d.err != nil {
		return d
	}
	if len(d.nodes) > 0 {
		return d.fail("root already set")
	}
	return d.addNode(kind, id, -1)
}

func (d *Definition) Child(parentID string, kind Kind, id string) *Definition {
	if d.err != nil {
		return d
	}
	p, ok := d.node(parentID)
	if !ok || p < 0 {
		return d.fail("child %q: %w %q", id, ErrNoSuchItem, parentID)
	}
	return d.addNode(kind, id, p)
}

func (d *Definition) addNode(kind Kind, id string, parent int) *Definition {
	if kind >= kindCount {
		return d.fail("unknown kind %d", kind)
	}
	n := len(d.nodes)
	if id == "" {
		id = fmt.Sprintf("%s-%d", strings.ToLower(kind.String()), n)
	}
	if _, dup := d.ids[id]; dup {
		return d.fail("duplicate id %q", id)
	}
	d.ids[id] = n
	d.nodes = append(d.nodes, nodeDef{id: id, kind: kind, parent: parent})
	if parent >= 0 {
		d.nodes[parent].children = append(d.nodes[parent].children, n)
	}
	return d
}

// Declare adds a top-level property. KindVoid declares an untyped property
// that stores any value as is.
func (d *Definition) Declare(name string, kind value.Kind, def value.Value) *Definition {
	if d.err != nil {
		return d
	}
	if _, _, ok := d.lookup(-1, name); ok {
		return d.fail("property %q declared twice", name)
	}
	v, err := coerceTo(def, kind)
	if err != nil {
		return d.fail("property %q: %w", name, err)
	}
	d.declared = append(d.declared, PropDecl{Name: name, Kind: kind, Default: v})
	return d
}

func (d *Definition) DeclareCallback(name string, args ...value.Kind) *Definition {
	if d.err != nil {
		return d
	}
	for _, cb := range d.callbacks {
		if cb.Name == name {
			return d.fail("callback %q declared twice", name)
		}
	}
	d.callbacks = append(d.callbacks, CallbackDecl{Name: name, Args: args})
	return d
}

// Set gives a property a literal initial value.
func (d *Definition) Set(id, prop string, v value.Value) *Definition {
	if d.err != nil {
		return d
	}
	n, decl, ok := d.resolve(id, prop)
	if !ok {
		return d
	}
	cv, err := coerceTo(v, decl.Kind)
	if err != nil {
		return d.fail("%s.%s: %w", id, prop, err)
	}
	d.sets = append(d.sets, setDef{node: n, prop: prop, v: cv})
	return d
}

func (d *Definition) Bind(id, prop string, factory BindingFactory) *Definition {
	if d.err != nil {
		return d
	}
	n, _, ok := d.resolve(id, prop)
	if !ok {
		return d
	}
	d.binds = append(d.binds, bindDef{node: n, prop: prop, factory: factory})
	return d
}

// Animate makes writes to the property, and changes of its binding,
// transition gradually.
func (d *Definition) Animate(id, prop string, spec animation.Spec) *Definition {
	if d.err != nil {
		return d
	}
	n, _, ok := d.resolve(id, prop)
	if !ok {
		return d
	}
	d.anims = append(d.anims, animDef{node: n, prop: prop, spec: spec})
	return d
}

// TwoWay makes id.prop mirror otherID.otherProp.
func (d *Definition) TwoWay(id, prop, otherID, otherProp string) *Definition {
	if d.err != nil {
		return d
	}
	n, a, ok := d.resolve(id, prop)
	if !ok {
		return d
	}
	o, b, ok := d.resolve(otherID, otherProp)
	if !ok {
		return d
	}
	if a.Kind != b.Kind {
		return d.fail("two-way %s.%s <=> %s.%s: %s vs %s", id, prop, otherID, otherProp, a.Kind, b.Kind)
	}
	if n == o && prop == otherProp {
		return d.fail("two-way %s.%s bound to itself", id, prop)
	}
	for _, l := range d.links {
		if l.node == n && l.prop == prop {
			return d.fail("two-way %s.%s is already linked", id, prop)
		}
	}
	// each cell mirrors at most one other, so the chain from the target is
	// a single path
	for cn, cp := o, otherProp; ; {
		next, ok := d.linkFrom(cn, cp)
		if !ok {
			break
		}
		if next.other == n && next.oprop == prop {
			return d.fail("two-way %s.%s <=> %s.%s closes a loop", id, prop, otherID, otherProp)
		}
		cn, cp = next.other, next.oprop
	}
	d.links = append(d.links, linkDef{node: n, prop: prop, other: o, oprop: otherProp})
	return d
}

func (d *Definition) linkFrom(node int, prop string) (linkDef, bool) {
	for _, l := range d.links {
		if l.node == node && l.prop == prop {
			return l, true
		}
	}
	return linkDef{}, false
}

// OnCallback installs a handler on a declared callback (empty id) or an
// item's built-in callback.
func (d *Definition) OnCallback(id, name string, factory HandlerFactory) *Definition {
	if d.err != nil {
		return d
	}
	n, ok := d.node(id)
	if !ok {
		return d.fail("callback %s.%s: %w", id, name, ErrNoSuchItem)
	}
	if _, ok := d.callbackDecl(n, name); !ok {
		return d.fail("%s.%s: %w", id, name, ErrNoSuchCallback)
	}
	d.handlers = append(d.handlers, handlerDef{node: n, name: name, factory: factory})
	return d
}

// Repeat instantiates sub once per model row as children of parentID. The
// sub component gets two extra properties: model_data and index.
func (d *Definition) Repeat(parentID string, sub *Definition, model ModelFactory) *Definition {
	if d.err != nil {
		return d
	}
	p, ok := d.node(parentID)
	if !ok || p < 0 {
		return d.fail("repeat: %w %q", ErrNoSuchItem, parentID)
	}
	if sub.err != nil {
		return d.fail("repeat: %w", sub.err)
	}
	if len(sub.nodes) == 0 {
		return d.fail("repeat: %s has no root", sub.name)
	}
	if _, _, ok := sub.lookup(-1, "model_data"); !ok {
		sub.Declare("model_data", value.KindVoid, value.Void())
	}
	if _, _, ok := sub.lookup(-1, "index"); !ok {
		sub.Declare("index", value.KindInt, value.Int(0))
	}
	d.repeats = append(d.repeats, repeatDef{host: p, sub: sub, model: model})
	return d
}

// InitialFocus names the item that receives focus when the component is
// first shown.
func (d *Definition) InitialFocus(id string) *Definition {
	if d.err != nil {
		return d
	}
	n, ok := d.node(id)
	if !ok || n < 0 {
		return d.fail("initial focus: %w %q", ErrNoSuchItem, id)
	}
	if !d.nodes[n].kind.Caps().Has(CapFocusable) {
		return d.fail("initial focus: %s %q is not focusable", d.nodes[n].kind, id)
	}
	d.initialFocus = n
	return d
}

func (d *Definition) node(id string) (int, bool) {
	if id == "" {
		return -1, true
	}
	n, ok := d.ids[id]
	return n, ok
}

func (d *Definition) resolve(id, prop string) (int, PropDecl, bool) {
	n, ok := d.node(id)
	if !ok {
		d.fail("%s.%s: %w %q", id, prop, ErrNoSuchItem, id)
		return 0, PropDecl{}, false
	}
	n, decl, ok := d.lookup(n, prop)
	if !ok {
		d.fail("%s.%s: %w", id, prop, ErrNoSuchProperty)
		return 0, PropDecl{}, false
	}
	return n, decl, true
}

// lookup finds a property. In the component scope declared properties shadow
// the root element's; the returned node says which one matched.
func (d *Definition) lookup(n int, prop string) (int, PropDecl, bool) {
	if n < 0 {
		for _, p := range d.declared {
			if p.Name == prop {
				return -1, p, true
			}
		}
		if len(d.nodes) == 0 {
			return 0, PropDecl{}, false
		}
		n = 0
	}
	l := LayoutOf(d.nodes[n].kind)
	i, ok := l.Index(prop)
	if !ok {
		return 0, PropDecl{}, false
	}
	return n, l.Props[i], true
}

func (d *Definition) callbackDecl(n int, name string) (CallbackDecl, bool) {
	if n < 0 {
		for _, cb := range d.callbacks {
			if cb.Name == name {
				return cb, true
			}
		}
		return CallbackDecl{}, false
	}
	l := LayoutOf(d.nodes[n].kind)
	i, ok := l.Callback(name)
	if !ok {
		return CallbackDecl{}, false
	}
	return l.Callbacks[i], true
}

// Lookup reports the declaration of id.prop, with the empty id addressing
// the component scope.
func (d *Definition) Lookup(id, prop string) (PropDecl, bool) {
	n, ok := d.node(id)
	if !ok {
		return PropDecl{}, false
	}
	_, decl, ok := d.lookup(n, prop)
	return decl, ok
}

// CallbackArgs returns the argument kinds of a declared or built-in callback.
func (d *Definition) CallbackArgs(id, name string) ([]value.Kind, bool) {
	n, ok := d.node(id)
	if !ok {
		return nil, false
	}
	cb, ok := d.callbackDecl(n, name)
	return cb.Args, ok
}

// HasItem reports whether an element with this id exists.
func (d *Definition) HasItem(id string) bool {
	_, ok := d.ids[id]
	return ok
}

// Declared lists the top-level properties in declaration order.
func (d *Definition) Declared() []PropDecl {
	return append([]PropDecl(nil), d.declared...)
}

func (d *Definition) Callbacks() []CallbackDecl {
	return append([]CallbackDecl(nil), d.callbacks...)
}

func coerceTo(v value.Value, k value.Kind) (value.Value, error) {
	if k == value.KindVoid {
		return v, nil
	}
	return value.Coerce(v, k)
}
