package property

// Callback is a signal slot: a handler invoked synchronously when the
// associated event is raised. It caches nothing and reads performed by the
// handler are not tracked as dependencies of an enclosing binding.
type Callback[A, R any] struct {
	rt      *Runtime
	name    string
	handler func(A) R
}

func NewCallback[A, R any](rt *Runtime, name string) *Callback[A, R] {
	return &Callback[A, R]{rt: rt, name: name}
}

func (c *Callback[A, R]) Name() string { return c.name }

func (c *Callback[A, R]) SetHandler(fn func(A) R) {
	c.handler = fn
}

func (c *Callback[A, R]) HasHandler() bool {
	return c.handler != nil
}

// Call invokes the handler. ok is false when no handler is set.
func (c *Callback[A, R]) Call(arg A) (ret R, ok bool) {
	h := c.handler
	if h == nil {
		return ret, false
	}
	c.rt.Untracked(func() {
		ret = h(arg)
	})
	return ret, true
}
