package itemtree

// Handle is a counted strong reference to a component instance. Every handle
// must be released exactly once; the last release destroys the instance.
type Handle struct {
	c        *Component
	released bool
}

func (c *Component) newHandle() *Handle {
	c.refs++
	return &Handle{c: c}
}

// Component returns the instance. It must not be used after Release.
func (h *Handle) Component() *Component {
	return h.c
}

// Retain returns another handle to the same instance.
func (h *Handle) Retain() *Handle {
	if h.released || h.c.destroyed {
		panic("itemtree: retain of released handle")
	}
	return h.c.newHandle()
}

// Release drops this reference. Releasing twice is a no-op.
func (h *Handle) Release() {
	if h.released {
		return
	}
	h.released = true
	h.c.refs--
	if h.c.refs == 0 {
		h.c.destroy()
	}
}

// Weak returns a reference that does not keep the instance alive.
func (h *Handle) Weak() WeakHandle {
	return WeakHandle{c: h.c}
}

// RefCount is the number of live handles.
func (c *Component) RefCount() int {
	return c.refs
}

type WeakHandle struct {
	c *Component
}

// Upgrade returns a new strong handle while the instance is alive.
func (w WeakHandle) Upgrade() (*Handle, bool) {
	if w.c == nil || w.c.destroyed || w.c.refs == 0 {
		return nil, false
	}
	return w.c.newHandle(), true
}

// Alive reports whether Upgrade would succeed.
func (w WeakHandle) Alive() bool {
	return w.c != nil && !w.c.destroyed && w.c.refs > 0
}
