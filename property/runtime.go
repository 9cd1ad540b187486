package property

import (
	"io"
	"log"

	mapset "github.com/deckarep/golang-set/v2"
)

type Option func(*Runtime)

// WithLogger sets the logger used for diagnostics. The default discards.
func WithLogger(l *log.Logger) Option {
	return func(rt *Runtime) {
		rt.logger = l
	}
}

// WithErrorHandler receives errors raised while evaluating bindings for a
// plain Get, such as binding cycles. The default logs them.
func WithErrorHandler(fn func(error)) Option {
	return func(rt *Runtime) {
		rt.onError = fn
	}
}

// Runtime is the evaluation context shared by every cell of one logical
// thread of control. It is not safe for concurrent use.
type Runtime struct {
	frames      []frame
	active      int
	slots       []slot
	free        []uint32
	onError     func(error)
	logger      *log.Logger
	evaluations uint64
}

// frame is one entry of the evaluation stack. A nil consumer marks an
// untracked region.
type frame struct {
	consumer *cell
	seen     mapset.Set[*cell]
}

// slot backs the weak references held in dependents lists. A reference
// resolves only while its generation matches.
type slot struct {
	gen  uint32
	cell *cell
}

type ref struct {
	idx, gen uint32
}

func NewRuntime(opts ...Option) *Runtime {
	rt := &Runtime{
		logger: log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(rt)
	}
	if rt.onError == nil {
		rt.onError = func(err error) {
			rt.logger.Printf("binding error: %v", err)
		}
	}
	return rt
}

func (rt *Runtime) Logger() *log.Logger {
	return rt.logger
}

// Depth is the number of bindings currently being evaluated.
func (rt *Runtime) Depth() int {
	return rt.active
}

// Evaluations counts binding and tracker evaluations since creation.
func (rt *Runtime) Evaluations() uint64 {
	return rt.evaluations
}

// Untracked runs fn without registering any read as a dependency of the
// binding currently being evaluated.
func (rt *Runtime) Untracked(fn func()) {
	rt.pushFrame(nil)
	defer rt.popFrame()
	fn()
}

func (rt *Runtime) report(err error) {
	rt.onError(err)
}

func (rt *Runtime) pushFrame(c *cell) {
	n := len(rt.frames)
	if n < cap(rt.frames) {
		rt.frames = rt.frames[:n+1]
		f := &rt.frames[n]
		f.consumer = c
		if f.seen == nil {
			f.seen = mapset.NewThreadUnsafeSet[*cell]()
		} else {
			f.seen.Clear()
		}
		return
	}
	rt.frames = append(rt.frames, frame{
		consumer: c,
		seen:     mapset.NewThreadUnsafeSet[*cell](),
	})
}

func (rt *Runtime) popFrame() {
	n := len(rt.frames) - 1
	rt.frames[n].consumer = nil
	rt.frames = rt.frames[:n]
}

// track records that the frame on top of the stack read dep.
func (rt *Runtime) track(dep *cell) {
	n := len(rt.frames)
	if n == 0 {
		return
	}
	f := &rt.frames[n-1]
	if f.consumer == nil || f.consumer == dep {
		return
	}
	if !f.seen.Add(dep) {
		return
	}
	dep.addDependent(f.consumer)
}

// run evaluates fn with c as the active consumer. Frames are popped on every
// exit path. A binding cycle unwinds every frame involved and is returned by
// the outermost evaluation; any other panic is left to propagate.
func (rt *Runtime) run(c *cell, fn func()) (err error) {
	rt.begin(c)
	done := false
	defer func() {
		rt.end(c, done)
		if done || rt.active > 0 {
			return
		}
		if r := recover(); r != nil {
			if a, ok := r.(abort); ok {
				err = a.err
				return
			}
			panic(r)
		}
	}()
	fn()
	done = true
	return nil
}

func (rt *Runtime) begin(c *cell) {
	rt.attach(c)
	c.epoch++
	c.state = Evaluating
	c.redirty = false
	rt.pushFrame(c)
	rt.active++
	rt.evaluations++
}

func (rt *Runtime) end(c *cell, done bool) {
	rt.popFrame()
	rt.active--
	if done && !c.redirty {
		c.state = Clean
		return
	}
	c.state = Dirty
}

// attach gives c a slot so that other cells can hold weak references to it.
func (rt *Runtime) attach(c *cell) {
	if c.hasSlot {
		return
	}
	var idx uint32
	if n := len(rt.free); n > 0 {
		idx = rt.free[n-1]
		rt.free = rt.free[:n-1]
	} else {
		idx = uint32(len(rt.slots))
		rt.slots = append(rt.slots, slot{})
	}
	s := &rt.slots[idx]
	s.cell = c
	c.self = ref{idx: idx, gen: s.gen}
	c.hasSlot = true
}

func (rt *Runtime) detach(c *cell) {
	if !c.hasSlot {
		return
	}
	s := &rt.slots[c.self.idx]
	s.gen++
	s.cell = nil
	rt.free = append(rt.free, c.self.idx)
	c.hasSlot = false
}

func (rt *Runtime) resolve(r ref) *cell {
	if int(r.idx) >= len(rt.slots) {
		return nil
	}
	s := rt.slots[r.idx]
	if s.gen != r.gen {
		return nil
	}
	return s.cell
}

// Live reports how many cells currently hold a slot.
func (rt *Runtime) Live() int {
	return len(rt.slots) - len(rt.free)
}

// invalidate marks src's dependents dirty, transitively, using an explicit
// worklist. When self is set src itself becomes dirty too. Observers of every
// cell that changed state run after marking completes, followed by src's own
// observers when src was written.
func (rt *Runtime) invalidate(src *cell, self bool) {
	var notify []*cell
	if self {
		if !rt.markDirty(src) {
			return
		}
	}
	notify = append(notify, src)

	work := []*cell{src}
	for len(work) > 0 {
		c := work[len(work)-1]
		work = work[:len(work)-1]

		deps := c.deps
		c.deps = nil
		for _, e := range deps {
			d := rt.resolve(e.ref)
			if d == nil || d.epoch != e.epoch {
				continue
			}
			if rt.markDirty(d) {
				notify = append(notify, d)
				work = append(work, d)
			}
		}
	}

	for _, c := range notify {
		c.notify()
	}
}

// markDirty reports whether c moved out of the clean state.
func (rt *Runtime) markDirty(c *cell) bool {
	switch c.state {
	case Clean:
		c.state = Dirty
		return true
	case Evaluating:
		if c.redirty {
			return false
		}
		c.redirty = true
		return true
	}
	return false
}
