// Package animation drives time-based transitions of property cells.
//
// A Driver owns the animation clock. Hosts call Update once per frame; every
// running animation then writes its interpolated value into its cell, which
// invalidates dependents like any other write.
package animation

import (
	"time"

	"github.com/delaneyj/proptree/property"
)

// runner is one animation registered with a driver.
type runner interface {
	// step advances to now and reports whether the runner is finished.
	step(now time.Duration) bool
	alive() bool
	dequeued()
}

type Driver struct {
	rt      *property.Runtime
	start   time.Time
	elapsed *property.Property[time.Duration]
	running []runner
	ticking bool
}

// NewDriver creates a driver whose clock reads zero at start.
func NewDriver(rt *property.Runtime, start time.Time) *Driver {
	return &Driver{
		rt:      rt,
		start:   start,
		elapsed: property.New(rt, time.Duration(0), property.WithName("animation-tick")),
	}
}

func (d *Driver) Runtime() *property.Runtime {
	return d.rt
}

// Now is the time elapsed since the driver started. Bindings that read it
// are re-evaluated on every tick.
func (d *Driver) Now() time.Duration {
	return d.elapsed.Get()
}

// Update moves the clock to now and steps every running animation. A time
// earlier than the current clock is ignored.
func (d *Driver) Update(now time.Time) {
	d.advanceTo(now.Sub(d.start))
}

// Advance moves the clock forward by dt.
func (d *Driver) Advance(dt time.Duration) {
	if dt < 0 {
		return
	}
	d.advanceTo(d.elapsed.Peek() + dt)
}

// Active is the number of animations that still need ticks.
func (d *Driver) Active() int {
	return len(d.running)
}

func (d *Driver) advanceTo(now time.Duration) {
	if d.ticking {
		d.rt.Logger().Printf("animation tick re-entered at %v, ignored", now)
		return
	}
	if now < d.elapsed.Peek() {
		now = d.elapsed.Peek()
	}
	d.ticking = true
	defer func() { d.ticking = false }()

	d.elapsed.Set(now)

	list := d.running
	d.running = nil
	keep := list[:0]
	for _, r := range list {
		if !r.alive() || r.step(now) {
			r.dequeued()
			continue
		}
		keep = append(keep, r)
	}
	// Animations started from within a step go after the survivors.
	d.running = append(keep, d.running...)
}

func (d *Driver) enqueue(r runner) {
	d.running = append(d.running, r)
}

func (d *Driver) clock() time.Duration {
	return d.elapsed.Peek()
}
