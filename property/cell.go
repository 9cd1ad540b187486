package property

import "strconv"

type State uint8

const (
	Clean State = iota
	Dirty
	Evaluating
)

func (s State) String() string {
	switch s {
	case Clean:
		return "clean"
	case Dirty:
		return "dirty"
	case Evaluating:
		return "evaluating"
	}
	return "state(" + strconv.Itoa(int(s)) + ")"
}

// edge is a weak back-reference from a producer to a consumer that read it
// during the consumer's evaluation number epoch.
type edge struct {
	ref   ref
	epoch uint32
}

type observer struct {
	fn      func()
	stopped bool
}

// cell is the type-independent part of a property or tracker.
type cell struct {
	rt        *Runtime
	name      string
	state     State
	redirty   bool
	dropped   bool
	hasSlot   bool
	self      ref
	epoch     uint32
	deps      []edge
	observers []*observer
}

type CellOption func(*cell)

// WithName names a cell for diagnostics.
func WithName(name string) CellOption {
	return func(c *cell) {
		c.name = name
	}
}

func (c *cell) init(rt *Runtime, opts []CellOption) {
	c.rt = rt
	for _, opt := range opts {
		opt(c)
	}
}

func (c *cell) Name() string {
	if c.name != "" {
		return c.name
	}
	if c.hasSlot {
		return "#" + strconv.FormatUint(uint64(c.self.idx), 10)
	}
	return "<anonymous>"
}

func (c *cell) State() State  { return c.state }
func (c *cell) IsDirty() bool { return c.state != Clean }
func (c *cell) Dropped() bool { return c.dropped }

// Dependents counts the live consumers that read this cell during their
// latest evaluation.
func (c *cell) Dependents() int {
	n := 0
	for _, e := range c.deps {
		if d := c.rt.resolve(e.ref); d != nil && d.epoch == e.epoch {
			n++
		}
	}
	return n
}

// Observe registers fn to run synchronously whenever the cached value may
// have changed: after a write that changed it, or when a bound cell becomes
// dirty. It returns a function that removes the observer.
func (c *cell) Observe(fn func()) (stop func()) {
	o := &observer{fn: fn}
	c.observers = append(c.observers, o)
	return func() {
		if o.stopped {
			return
		}
		o.stopped = true
		for i, x := range c.observers {
			if x == o {
				c.observers = append(c.observers[:i], c.observers[i+1:]...)
				return
			}
		}
	}
}

func (c *cell) notify() {
	if len(c.observers) == 0 || c.dropped {
		return
	}
	obs := make([]*observer, len(c.observers))
	copy(obs, c.observers)
	for _, o := range obs {
		if !o.stopped {
			o.fn()
		}
	}
}

func (c *cell) addDependent(consumer *cell) {
	e := edge{ref: consumer.self, epoch: consumer.epoch}
	for i := range c.deps {
		if c.deps[i].ref == e.ref {
			c.deps[i].epoch = e.epoch
			return
		}
	}
	if len(c.deps) == cap(c.deps) {
		c.compact()
	}
	c.deps = append(c.deps, e)
}

// compact drops edges whose consumer is gone or has re-evaluated since.
func (c *cell) compact() {
	live := c.deps[:0]
	for _, e := range c.deps {
		if d := c.rt.resolve(e.ref); d != nil && d.epoch == e.epoch {
			live = append(live, e)
		}
	}
	for i := len(live); i < len(c.deps); i++ {
		c.deps[i] = edge{}
	}
	c.deps = live
}

// forget invalidates every edge this cell registered upstream.
func (c *cell) forget() {
	c.epoch++
}

func (c *cell) drop() {
	if c.dropped {
		return
	}
	c.dropped = true
	c.rt.detach(c)
	c.deps = nil
	c.observers = nil
	c.state = Clean
}
