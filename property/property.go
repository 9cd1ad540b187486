// Package property implements reactive property cells: cached values that are
// either written explicitly or computed lazily by a binding, with dependencies
// discovered while the binding runs.
//
//	rt := property.NewRuntime()
//	bar := property.New(rt, 5)
//	foo := property.NewBound(rt, func() int { return bar.Get() * 2 })
//	foo.Get() // 10
//	bar.Set(7)
//	foo.Get() // 14
package property

// Property is a single reactive cell owned by one item or component. Reads
// inside a binding register the reader as a dependent; writes invalidate
// dependents only when the value actually changes.
type Property[T comparable] struct {
	cell
	value     T
	binding   func() T
	bindingID uint32
	partner   *Property[T]
}

func New[T comparable](rt *Runtime, v T, opts ...CellOption) *Property[T] {
	p := &Property[T]{value: v}
	p.init(rt, opts)
	return p
}

// NewBound creates a cell driven by fn. fn runs on the first read.
func NewBound[T comparable](rt *Runtime, fn func() T, opts ...CellOption) *Property[T] {
	p := &Property[T]{}
	p.init(rt, opts)
	p.binding = fn
	p.bindingID++
	p.state = Dirty
	return p
}

// Get returns the current value, re-evaluating the binding first when the
// cell is dirty. Evaluation errors go to the runtime's error handler and the
// last good value is returned.
func (p *Property[T]) Get() T {
	v, err := p.get()
	if err != nil {
		p.rt.report(err)
	}
	return v
}

// TryGet is Get returning evaluation errors such as *CycleError instead of
// reporting them.
func (p *Property[T]) TryGet() (T, error) {
	return p.get()
}

// Peek reads the value, evaluating if needed, without becoming a dependency
// of the binding currently being evaluated.
func (p *Property[T]) Peek() T {
	var v T
	p.rt.Untracked(func() {
		v = p.Get()
	})
	return v
}

func (p *Property[T]) get() (T, error) {
	if p.dropped {
		return p.value, nil
	}
	p.rt.track(&p.cell)
	switch p.state {
	case Evaluating:
		panic(abort{err: p.rt.cycleError(&p.cell)})
	case Dirty:
		if p.binding == nil {
			p.state = Clean
			break
		}
		if err := p.evaluate(); err != nil {
			return p.value, err
		}
	}
	return p.value, nil
}

func (p *Property[T]) evaluate() error {
	binding, id := p.binding, p.bindingID
	return p.rt.run(&p.cell, func() {
		v := binding()
		if p.bindingID != id || p.dropped {
			return
		}
		p.value = v
	})
}

// Set stores v and detaches any binding: an explicit write permanently
// overrides it. A cell linked two-way forwards the write to its partner
// instead.
func (p *Property[T]) Set(v T) {
	if p.dropped {
		p.rt.logger.Printf("write to dropped property %s ignored", p.Name())
		return
	}
	if root := p.LinkRoot(); root != p {
		root.Set(v)
		return
	}
	if p.binding != nil {
		p.detachBinding()
	}
	if p.value == v {
		return
	}
	p.value = v
	p.rt.invalidate(&p.cell, false)
}

// SetBinding attaches fn and marks the cell dirty. fn is not run until the
// next read.
func (p *Property[T]) SetBinding(fn func() T) {
	if p.dropped {
		return
	}
	p.partner = nil
	p.binding = fn
	p.bindingID++
	p.forget()
	p.rt.invalidate(&p.cell, true)
}

func (p *Property[T]) HasBinding() bool {
	return p.binding != nil
}

// IsTwoWay reports whether writes are forwarded to a partner cell.
func (p *Property[T]) IsTwoWay() bool {
	return p.partner != nil && !p.partner.dropped
}

// Drop destroys the cell. Weak references to it stop resolving, later reads
// return the last value and writes are ignored.
func (p *Property[T]) Drop() {
	p.binding = nil
	p.partner = nil
	p.drop()
}

func (p *Property[T]) detachBinding() {
	p.binding = nil
	p.bindingID++
	p.partner = nil
	p.forget()
	if p.state == Dirty {
		p.state = Clean
	}
}

// LinkRoot follows two-way links to the cell that stores writes for p. It is
// p itself when p is not linked.
func (p *Property[T]) LinkRoot() *Property[T] {
	r := p
	for r.partner != nil && !r.partner.dropped {
		r = r.partner
	}
	return r
}

// LinkTwoWay makes a mirror b: a's binding reads b's link root and writes to
// a are performed there. Reads of a always reflect b and writes to either
// side are visible on both. Links never form a loop: when b already mirrors
// a, directly or through a chain, the two share a root and LinkTwoWay
// reports false without changing anything.
func LinkTwoWay[T comparable](a, b *Property[T]) bool {
	root := b.LinkRoot()
	if root == a {
		return false
	}
	a.SetBinding(root.Get)
	a.partner = root
	return true
}
