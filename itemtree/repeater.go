package itemtree

import (
	"reflect"

	"github.com/delaneyj/proptree/property"
	"github.com/delaneyj/proptree/value"
)

// Repeater expands a model into a run of sub component instances under its
// host item. Instances are created lazily by EnsureUpdated and matched to rows
// by index, so an instance that survives a model change keeps all of its
// state.
type Repeater struct {
	owner     *Component
	host      *Item
	sub       *Definition
	expr      func() Model
	tracker   *property.Tracker
	model     Model
	instances []*Handle
	dirtyRows []bool
	dirty     *property.Property[bool]
	released  bool
}

func newRepeater(c *Component, host *Item, sub *Definition, factory ModelFactory) *Repeater {
	r := &Repeater{owner: c, host: host, sub: sub}
	if factory != nil {
		r.expr = factory(c)
	}
	r.dirty = property.New(c.rt, true, property.WithName(host.id+".repeater"))
	r.tracker = property.NewTracker(c.rt, r.markDirty, property.WithName(host.id+".model"))
	return r
}

func (r *Repeater) markDirty() {
	if !r.released {
		r.dirty.Set(true)
	}
}

func (r *Repeater) Host() *Item  { return r.host }
func (r *Repeater) Model() Model { return r.model }
func (r *Repeater) Len() int     { return len(r.instances) }

// NeedsUpdate reports whether the model changed since the last
// EnsureUpdated. Read from a binding, it makes the binding depend on the
// repeater.
func (r *Repeater) NeedsUpdate() bool {
	return r.dirty.Get()
}

// Instance returns the component for a row, or nil when out of range.
func (r *Repeater) Instance(row int) *Component {
	if row < 0 || row >= len(r.instances) {
		return nil
	}
	return r.instances[row].c
}

func (r *Repeater) Instances() []*Component {
	out := make([]*Component, len(r.instances))
	for i, h := range r.instances {
		out[i] = h.c
	}
	return out
}

// EnsureUpdated re-evaluates the model expression if needed and diffs the
// instances against the row count: surplus instances are released, missing
// ones default constructed, and only rows reported changed get their
// model_data and index refreshed.
func (r *Repeater) EnsureUpdated() {
	if r.released {
		return
	}
	if r.dirty.Peek() {
		r.update()
		r.dirty.Set(false)
	}
	// Registers the caller, if it is a binding, for the next change.
	r.dirty.Get()
}

func (r *Repeater) update() {
	if r.tracker.IsDirty() {
		var m Model
		if r.expr != nil {
			if err := r.tracker.Evaluate(func() { m = r.expr() }); err != nil {
				r.owner.rt.Logger().Printf("repeater %s: %v", r.host.id, err)
				m = r.model
			}
		}
		if !sameModel(m, r.model) {
			r.model = m
			if m != nil {
				m.Attach(&repeaterPeer{r: r, m: m})
			}
			for i := range r.dirtyRows {
				r.dirtyRows[i] = true
			}
		}
	}

	n := 0
	if r.model != nil {
		n = max(r.model.RowCount(), 0)
	}
	if n < len(r.instances) {
		for i := n; i < len(r.instances); i++ {
			r.instances[i].Release()
			r.instances[i] = nil
		}
		r.instances = r.instances[:n]
		r.dirtyRows = r.dirtyRows[:n]
	}
	for len(r.instances) < n {
		c := r.sub.build(r.owner.rt, r.owner.driver, r.owner, r.host)
		r.instances = append(r.instances, c.newHandle())
		r.dirtyRows = append(r.dirtyRows, true)
	}
	for i, d := range r.dirtyRows {
		if !d {
			continue
		}
		c := r.instances[i].c
		c.scope.props[c.mustSlot("model_data")].Set(r.model.RowData(i))
		c.scope.props[c.mustSlot("index")].Set(value.Int(int64(i)))
		r.dirtyRows[i] = false
	}
}

func (c *Component) mustSlot(name string) int {
	i, ok := c.scope.slot(name)
	if !ok {
		panic("itemtree: repeated component " + c.def.name + " lacks " + name)
	}
	return i
}

// sameModel compares models by identity. Models of a type that cannot be
// compared are always treated as new.
func sameModel(a, b Model) bool {
	if a == nil || b == nil {
		return a == b
	}
	t := reflect.TypeOf(a)
	if t != reflect.TypeOf(b) || !t.Comparable() {
		return false
	}
	return a == b
}

func (r *Repeater) markRows(from int) {
	if from < 0 {
		from = 0
	}
	for i := from; i < len(r.dirtyRows); i++ {
		r.dirtyRows[i] = true
	}
	r.markDirty()
}

func (r *Repeater) release() {
	if r.released {
		return
	}
	for _, h := range r.instances {
		h.Release()
	}
	r.instances = nil
	r.dirtyRows = nil
	r.tracker.Drop()
	r.dirty.Drop()
	r.released = true
}

// repeaterPeer ties a repeater to one model. It dies when the repeater is
// released or switches to another model.
type repeaterPeer struct {
	r *Repeater
	m Model
}

func (p *repeaterPeer) Alive() bool {
	return !p.r.released && p.r.model == p.m
}

func (p *repeaterPeer) RowChanged(row int) {
	if row >= 0 && row < len(p.r.dirtyRows) {
		p.r.dirtyRows[row] = true
		p.r.markDirty()
	}
}

func (p *repeaterPeer) RowsAdded(index, _ int) {
	p.r.markRows(index)
}

func (p *repeaterPeer) RowsRemoved(index, _ int) {
	p.r.markRows(index)
}
