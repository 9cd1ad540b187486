package animation

import (
	"time"

	"github.com/delaneyj/proptree/property"
)

// Spec describes one transition.
type Spec struct {
	Duration time.Duration
	Delay    time.Duration
	Easing   Easing
}

type State uint8

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "idle"
}

// Animated wraps a cell so that writes move it gradually to the new value
// instead of jumping. The cell itself always holds the current interpolated
// value and is read like any other property.
type Animated[T comparable] struct {
	driver *Driver
	cell   *property.Property[T]
	spec   Spec
	interp Interpolator[T]

	state   State
	from    T
	to      T
	started time.Duration
	queued  bool
	stopped bool

	binding      func() T
	tracker      *property.Tracker
	bindingDirty bool
}

func NewAnimated[T comparable](d *Driver, cell *property.Property[T], spec Spec, interp Interpolator[T]) *Animated[T] {
	if spec.Easing == nil {
		spec.Easing = Linear
	}
	return &Animated[T]{
		driver: d,
		cell:   cell,
		spec:   spec,
		interp: interp,
		to:     cell.Peek(),
	}
}

func (a *Animated[T]) Cell() *property.Property[T] { return a.cell }
func (a *Animated[T]) State() State                { return a.state }
func (a *Animated[T]) Running() bool               { return a.state == Running }
func (a *Animated[T]) Spec() Spec                  { return a.spec }

// Get reads the current interpolated value.
func (a *Animated[T]) Get() T {
	return a.cell.Get()
}

// Target is the value the animation is heading to, or the current value
// when idle.
func (a *Animated[T]) Target() T {
	if a.state == Running {
		return a.to
	}
	return a.cell.Peek()
}

// Set starts a transition from the current value to v. Setting a new target
// while running restarts from wherever the animation currently is. Set
// detaches an animated binding.
func (a *Animated[T]) Set(v T) {
	if a.binding != nil {
		a.clearBinding()
	}
	a.animateTo(v)
}

// SetBinding animates the cell towards whatever fn evaluates to. The first
// value is applied immediately; later changes are animated.
func (a *Animated[T]) SetBinding(fn func() T) {
	a.clearBinding()
	a.binding = fn
	a.tracker = property.NewTracker(a.driver.rt, func() {
		a.bindingDirty = true
		a.schedule()
	}, property.WithName(a.cell.Name()+".animated-binding"))
	v, ok := a.evalBinding()
	if !ok {
		return
	}
	a.state = Idle
	a.to = v
	a.cell.Set(v)
}

func (a *Animated[T]) HasBinding() bool {
	return a.binding != nil
}

// Stop freezes the cell at its current value and detaches from the driver.
func (a *Animated[T]) Stop() {
	a.clearBinding()
	a.state = Idle
	a.stopped = true
}

func (a *Animated[T]) clearBinding() {
	if a.tracker != nil {
		a.tracker.Drop()
		a.tracker = nil
	}
	a.binding = nil
	a.bindingDirty = false
}

func (a *Animated[T]) evalBinding() (v T, ok bool) {
	fn := a.binding
	if err := a.tracker.Evaluate(func() { v = fn() }); err != nil {
		a.driver.rt.Logger().Printf("animated binding for %s: %v", a.cell.Name(), err)
		return v, false
	}
	return v, true
}

func (a *Animated[T]) animateTo(v T) {
	if a.cell.Dropped() {
		return
	}
	a.stopped = false
	cur := a.cell.Peek()
	switch a.state {
	case Idle:
		if cur == v {
			return
		}
	case Running:
		if a.to == v {
			return
		}
	}
	if a.spec.Duration <= 0 && a.spec.Delay <= 0 {
		a.state = Idle
		a.to = v
		a.cell.Set(v)
		return
	}
	a.from = cur
	a.to = v
	a.started = a.driver.clock()
	a.state = Running
	a.schedule()
}

func (a *Animated[T]) schedule() {
	if a.queued {
		return
	}
	a.queued = true
	a.driver.enqueue(a)
}

func (a *Animated[T]) step(now time.Duration) bool {
	if a.bindingDirty && a.tracker != nil {
		a.bindingDirty = false
		if v, ok := a.evalBinding(); ok {
			a.animateTo(v)
		}
	}
	if a.state != Running {
		return true
	}
	elapsed := now - a.started - a.spec.Delay
	if elapsed < 0 {
		return false
	}
	if elapsed >= a.spec.Duration {
		a.state = Idle
		a.cell.Set(a.to)
		return true
	}
	t := float64(elapsed) / float64(a.spec.Duration)
	a.cell.Set(a.interp(a.from, a.to, a.spec.Easing(t)))
	return false
}

func (a *Animated[T]) alive() bool {
	return !a.stopped && !a.cell.Dropped()
}

func (a *Animated[T]) dequeued() {
	a.queued = false
}
