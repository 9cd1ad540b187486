package property_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/delaneyj/proptree/property"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRuntime(t *testing.T) *property.Runtime {
	return property.NewRuntime(property.WithErrorHandler(func(err error) {
		assert.FailNow(t, err.Error())
	}))
}

func TestBarFoo(t *testing.T) {
	rt := newRuntime(t)

	bar := property.New(rt, 5, property.WithName("bar"))
	callCount := 0
	foo := property.NewBound(rt, func() int {
		callCount++
		return bar.Get() * 2
	}, property.WithName("foo"))

	assert.Equal(t, 10, foo.Get())
	assert.Equal(t, 1, callCount)

	bar.Set(7)
	assert.Equal(t, 14, foo.Get())
	assert.Equal(t, 2, callCount)

	foo.Get()
	assert.Equal(t, 2, callCount)
}

func TestLaziness(t *testing.T) {
	rt := newRuntime(t)

	a := property.New(rt, 1)
	callCount := 0
	b := property.NewBound(rt, func() int {
		callCount++
		return a.Get() + 1
	})
	assert.Equal(t, 0, callCount)
	assert.True(t, b.IsDirty())

	a.Set(2)
	a.Set(3)
	assert.Equal(t, 0, callCount)

	assert.Equal(t, 4, b.Get())
	assert.Equal(t, 1, callCount)

	a.Set(10)
	assert.Equal(t, 1, callCount, "invalidation must not evaluate")
	assert.Equal(t, property.Dirty, b.State())
}

func TestEqualitySuppression(t *testing.T) {
	rt := newRuntime(t)

	a := property.New(rt, 7)
	callCount := 0
	c := property.NewBound(rt, func() int {
		callCount++
		return a.Get() + 10
	})

	c.Get()
	c.Get()
	assert.Equal(t, 1, callCount)

	a.Set(7)
	assert.Equal(t, property.Clean, c.State())
	c.Get()
	assert.Equal(t, 1, callCount)
}

func TestTransitivePropagation(t *testing.T) {
	rt := newRuntime(t)

	// A -> B -> C
	a := property.New(rt, 1)
	bCount, cCount := 0, 0
	b := property.NewBound(rt, func() int {
		bCount++
		return a.Get() * 10
	})
	c := property.NewBound(rt, func() string {
		cCount++
		return fmt.Sprintf("c: %d", b.Get())
	})

	assert.Equal(t, "c: 10", c.Get())
	assert.Equal(t, 1, bCount)
	assert.Equal(t, 1, cCount)

	a.Set(4)
	assert.True(t, b.IsDirty())
	assert.True(t, c.IsDirty())

	assert.Equal(t, "c: 40", c.Get())
	assert.Equal(t, 2, bCount)
	assert.Equal(t, 2, cCount)
}

func TestDiamondEvaluatesOnce(t *testing.T) {
	rt := newRuntime(t)

	//     A
	//   /   \
	//  B     C
	//   \   /
	//     D
	a := property.New(rt, "a")
	b := property.NewBound(rt, a.Get)
	c := property.NewBound(rt, a.Get)
	callCount := 0
	d := property.NewBound(rt, func() string {
		callCount++
		return b.Get() + " " + c.Get()
	})

	assert.Equal(t, "a a", d.Get())
	assert.Equal(t, 1, callCount)

	a.Set("aa")
	assert.Equal(t, "aa aa", d.Get())
	assert.Equal(t, 2, callCount)
}

func TestDependencyRetracking(t *testing.T) {
	rt := newRuntime(t)

	cond := property.New(rt, true, property.WithName("cond"))
	x := property.New(rt, 1, property.WithName("x"))
	y := property.New(rt, 2, property.WithName("y"))
	callCount := 0
	sel := property.NewBound(rt, func() int {
		callCount++
		if cond.Get() {
			return x.Get()
		}
		return y.Get()
	}, property.WithName("sel"))

	assert.Equal(t, 1, sel.Get())
	assert.Equal(t, 1, x.Dependents())
	assert.Equal(t, 0, y.Dependents())

	// untaken branch
	y.Set(20)
	assert.Equal(t, property.Clean, sel.State())

	cond.Set(false)
	assert.Equal(t, 20, sel.Get())
	assert.Equal(t, 2, callCount)
	assert.Equal(t, 0, x.Dependents())
	assert.Equal(t, 1, y.Dependents())

	// previously taken branch is no longer a dependency
	x.Set(100)
	assert.Equal(t, property.Clean, sel.State())
	assert.Equal(t, 20, sel.Get())
	assert.Equal(t, 2, callCount)

	y.Set(21)
	assert.Equal(t, 21, sel.Get())
	assert.Equal(t, 3, callCount)
}

func TestSetOverridesBinding(t *testing.T) {
	rt := newRuntime(t)

	a := property.New(rt, 1)
	b := property.NewBound(rt, func() int { return a.Get() + 1 })
	assert.Equal(t, 2, b.Get())

	b.Set(50)
	assert.False(t, b.HasBinding())
	assert.Equal(t, 0, a.Dependents())

	a.Set(2)
	assert.Equal(t, property.Clean, b.State())
	assert.Equal(t, 50, b.Get())

	b.SetBinding(func() int { return a.Get() * 3 })
	assert.True(t, b.IsDirty())
	assert.Equal(t, 6, b.Get())
}

func TestTwoWayMirroring(t *testing.T) {
	rt := newRuntime(t)

	a := property.New(rt, 0, property.WithName("a"))
	b := property.New(rt, 3, property.WithName("b"))
	property.LinkTwoWay(a, b)
	assert.True(t, a.IsTwoWay())
	assert.Equal(t, 3, a.Get())

	a.Set(8)
	assert.Equal(t, 8, b.Get())
	assert.Equal(t, 8, a.Get())
	assert.True(t, a.HasBinding(), "two-way writes keep the link")

	b.Set(9)
	assert.Equal(t, 9, a.Get())
	assert.Equal(t, 9, b.Get())

	observed := 0
	stop := b.Observe(func() { observed++ })
	defer stop()
	a.Set(9)
	assert.Equal(t, 0, observed)
	a.Set(10)
	assert.Equal(t, 1, observed)
}

func TestTwoWayLinksNeverLoop(t *testing.T) {
	rt := newRuntime(t)

	a := property.New(rt, 1, property.WithName("a"))
	b := property.New(rt, 2, property.WithName("b"))
	require.True(t, property.LinkTwoWay(a, b))
	assert.False(t, property.LinkTwoWay(b, a), "b is already a's root")
	assert.Same(t, b, a.LinkRoot())
	assert.Same(t, b, b.LinkRoot())

	a.Set(5)
	assert.Equal(t, 5, a.Get())
	assert.Equal(t, 5, b.Get())
	b.Set(6)
	assert.Equal(t, 6, a.Get())

	// a -> b -> c, then c -> a would close the chain
	c := property.New(rt, 3, property.WithName("c"))
	require.True(t, property.LinkTwoWay(b, c))
	assert.False(t, property.LinkTwoWay(c, a))
	assert.Same(t, c, a.LinkRoot())

	a.Set(7)
	for _, p := range []*property.Property[int]{a, b, c} {
		assert.Equal(t, 7, p.Get(), p.Name())
	}
	c.Set(8)
	for _, p := range []*property.Property[int]{a, b, c} {
		assert.Equal(t, 8, p.Get(), p.Name())
	}

	d := property.New(rt, 0, property.WithName("d"))
	assert.False(t, property.LinkTwoWay(d, d))
	assert.False(t, d.IsTwoWay())
}

func TestCycleDetection(t *testing.T) {
	var reported []error
	rt := property.NewRuntime(property.WithErrorHandler(func(err error) {
		reported = append(reported, err)
	}))

	closeLoop := property.New(rt, false, property.WithName("closeLoop"))
	var b *property.Property[int]
	a := property.NewBound(rt, func() int {
		if closeLoop.Get() {
			return b.Get() + 1
		}
		return 1
	}, property.WithName("a"))
	b = property.NewBound(rt, func() int { return a.Get() * 2 }, property.WithName("b"))

	assert.Equal(t, 2, b.Get())
	assert.Equal(t, 1, a.Get())

	closeLoop.Set(true)
	_, err := a.TryGet()
	require.Error(t, err)
	assert.True(t, errors.Is(err, property.ErrBindingCycle))

	var ce *property.CycleError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "a", ce.Property)
	assert.Equal(t, []string{"a", "b", "a"}, ce.Path)

	// last good value kept, stack unwound
	assert.Equal(t, 1, a.Get())
	assert.Equal(t, 0, rt.Depth())
	require.Len(t, reported, 1)
	assert.True(t, a.IsDirty())

	closeLoop.Set(false)
	assert.Equal(t, 1, a.Get())
	assert.Equal(t, 2, b.Get())
	assert.Len(t, reported, 1)
}

func TestSelfCycle(t *testing.T) {
	rt := property.NewRuntime(property.WithErrorHandler(func(error) {}))
	var p *property.Property[int]
	p = property.NewBound(rt, func() int { return p.Get() + 1 }, property.WithName("self"))

	v, err := p.TryGet()
	assert.Equal(t, 0, v)
	var ce *property.CycleError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, []string{"self", "self"}, ce.Path)
}

func TestPanicInBindingUnwinds(t *testing.T) {
	rt := newRuntime(t)
	a := property.New(rt, 1)
	boom := property.NewBound(rt, func() int {
		if a.Get() > 1 {
			panic("boom")
		}
		return a.Get()
	})
	outer := property.NewBound(rt, func() int { return boom.Get() + 1 })

	assert.Equal(t, 2, outer.Get())
	a.Set(2)
	assert.PanicsWithValue(t, "boom", func() { outer.Get() })
	assert.Equal(t, 0, rt.Depth())
	assert.True(t, boom.IsDirty())

	a.Set(1)
	assert.Equal(t, 2, outer.Get())
}

func TestWriteDuringEvaluation(t *testing.T) {
	rt := newRuntime(t)

	src := property.New(rt, 1)
	mirror := property.New(rt, 0)
	mirrorReads := property.NewBound(rt, func() int { return mirror.Get() })
	assert.Equal(t, 0, mirrorReads.Get())

	writer := property.NewBound(rt, func() int {
		v := src.Get()
		mirror.Set(v * 100)
		return v
	})

	assert.Equal(t, 1, writer.Get())
	assert.True(t, mirrorReads.IsDirty())
	assert.Equal(t, 100, mirrorReads.Get())

	src.Set(2)
	assert.Equal(t, 2, writer.Get())
	assert.Equal(t, 200, mirrorReads.Get())
}

func TestSelfInvalidationDuringEvaluation(t *testing.T) {
	rt := newRuntime(t)

	counter := property.New(rt, 0)
	calls := 0
	p := property.NewBound(rt, func() int {
		calls++
		v := counter.Get()
		if v < 1 {
			counter.Set(v + 1)
		}
		return v
	})

	assert.Equal(t, 0, p.Get())
	assert.True(t, p.IsDirty(), "input changed while evaluating")
	assert.Equal(t, 1, p.Get())
	assert.Equal(t, 2, calls)
	assert.False(t, p.IsDirty())
}

func TestObservers(t *testing.T) {
	rt := newRuntime(t)

	a := property.New(rt, 1)
	b := property.NewBound(rt, func() int { return a.Get() * 2 })
	c := property.NewBound(rt, func() int { return b.Get() + 1 })
	c.Get()

	var events []string
	stopA := a.Observe(func() { events = append(events, "a") })
	b.Observe(func() { events = append(events, "b") })
	c.Observe(func() {
		events = append(events, fmt.Sprintf("c dirty=%v", c.IsDirty()))
	})

	a.Set(2)
	assert.ElementsMatch(t, []string{"a", "b", "c dirty=true"}, events)

	// already dirty: dependents are not notified again
	events = nil
	a.Set(3)
	assert.Equal(t, []string{"a"}, events)

	stopA()
	events = nil
	assert.Equal(t, 7, c.Get())
	a.Set(4)
	assert.ElementsMatch(t, []string{"b", "c dirty=true"}, events)
}

func TestDroppedConsumerIsSkipped(t *testing.T) {
	rt := newRuntime(t)

	a := property.New(rt, 1)
	b := property.NewBound(rt, func() int { return a.Get() + 1 })
	c := property.NewBound(rt, func() int { return a.Get() + 2 })
	b.Get()
	c.Get()
	assert.Equal(t, 2, a.Dependents())
	live := rt.Live()

	b.Drop()
	assert.True(t, b.Dropped())
	assert.Equal(t, 1, a.Dependents())
	assert.Equal(t, live-1, rt.Live())

	a.Set(5)
	assert.Equal(t, 7, c.Get())
	assert.Equal(t, 2, b.Get(), "dropped cells keep their last value")

	b.Set(100)
	assert.Equal(t, 2, b.Get())
}

func TestUntracked(t *testing.T) {
	rt := newRuntime(t)
	src := property.New(rt, 0)
	c := property.NewBound(rt, func() int {
		var v int
		rt.Untracked(func() {
			v = src.Get()
		})
		return v
	})
	assert.Equal(t, 0, c.Get())

	src.Set(1)
	assert.Equal(t, 0, c.Get())
	assert.Equal(t, 0, src.Dependents())
}

func TestTracker(t *testing.T) {
	rt := newRuntime(t)
	width := property.New(rt, 10.0)
	height := property.New(rt, 5.0)
	unrelated := property.New(rt, "x")

	repaints := 0
	tr := property.NewTracker(rt, func() { repaints++ })
	assert.True(t, tr.IsDirty())

	var area float64
	require.NoError(t, tr.Evaluate(func() {
		area = width.Get() * height.Get()
	}))
	assert.Equal(t, 50.0, area)
	assert.False(t, tr.IsDirty())

	unrelated.Set("y")
	assert.Equal(t, 0, repaints)

	width.Set(20)
	height.Set(6)
	assert.Equal(t, 1, repaints)
	assert.True(t, tr.IsDirty())

	tr.Drop()
	width.Set(1)
	assert.Equal(t, 1, repaints)
}

func TestCallback(t *testing.T) {
	rt := newRuntime(t)
	counter := property.New(rt, 0)
	clicked := property.NewCallback[int, bool](rt, "clicked")

	_, ok := clicked.Call(1)
	assert.False(t, ok)

	clicked.SetHandler(func(n int) bool {
		counter.Set(counter.Get() + n)
		return true
	})
	ret, ok := clicked.Call(2)
	require.True(t, ok)
	assert.True(t, ret)
	assert.Equal(t, 2, counter.Get())

	// reads inside a handler are not dependencies of the calling binding
	b := property.NewBound(rt, func() int {
		clicked.Call(0)
		return 1
	})
	b.Get()
	assert.Equal(t, 0, counter.Dependents())
}

func TestEvaluationsCounter(t *testing.T) {
	rt := newRuntime(t)
	a := property.New(rt, 1)
	b := property.NewBound(rt, func() int { return a.Get() })
	before := rt.Evaluations()
	b.Get()
	b.Get()
	assert.Equal(t, before+1, rt.Evaluations())
}
