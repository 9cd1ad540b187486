package property

// Tracker is a consumer without a value. Layout and rendering evaluate their
// work through a tracker to learn, without polling, when anything they read
// has changed.
type Tracker struct {
	cell
}

// NewTracker creates a dirty tracker. onDirty, when not nil, runs each time
// the tracker goes from clean to dirty.
func NewTracker(rt *Runtime, onDirty func(), opts ...CellOption) *Tracker {
	t := &Tracker{}
	t.init(rt, opts)
	t.state = Dirty
	if onDirty != nil {
		t.Observe(onDirty)
	}
	return t
}

// Evaluate runs fn, replacing the set of properties the tracker depends on
// with the ones fn reads.
func (t *Tracker) Evaluate(fn func()) error {
	if t.dropped {
		return nil
	}
	if t.state == Evaluating {
		panic(abort{err: t.rt.cycleError(&t.cell)})
	}
	return t.rt.run(&t.cell, fn)
}

// Invalidate forces the tracker dirty.
func (t *Tracker) Invalidate() {
	if t.dropped {
		return
	}
	t.forget()
	t.rt.invalidate(&t.cell, true)
}

func (t *Tracker) Drop() {
	t.drop()
}
