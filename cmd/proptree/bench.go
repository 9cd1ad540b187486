package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"github.com/delaneyj/proptree/animation"
	"github.com/delaneyj/proptree/itemtree"
	"github.com/delaneyj/proptree/property"
	"github.com/delaneyj/proptree/value"
	"github.com/dustin/go-humanize"
	"github.com/jamiealquiza/tachymeter"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"
)

type benchResult struct {
	name  string
	calc  *tachymeter.Metrics
	evals uint64
	total time.Duration
}

func (r benchResult) row() []string {
	rate := 0.0
	if r.total > 0 {
		rate = float64(r.evals) / (float64(r.total) / float64(time.Millisecond))
	}
	return []string{
		r.name,
		fmt.Sprint(r.calc.Time.Avg),
		fmt.Sprint(r.calc.Time.Min),
		fmt.Sprint(r.calc.Time.P75),
		fmt.Sprint(r.calc.Time.P99),
		fmt.Sprint(r.calc.Time.Max),
		humanize.Comma(int64(r.evals)),
		humanize.Comma(int64(rate)),
	}
}

func bench(ctx context.Context, cmd *cli.Command) error {
	if path := cmd.String(profileKey); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return err
		}
		defer pprof.StopCPUProfile()
	}

	iters := int(cmd.Int(itersKey))
	log.Printf("Running benchmarks, %s writes per configuration", humanize.Comma(int64(iters)))
	start := time.Now()
	defer func() {
		log.Printf("Benchmarks finished in %v", time.Since(start))
	}()

	// warm up
	benchPropagate(1, 10, iters)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"benchmark", "avg", "min", "p75", "p99", "max", "evaluations", "evals/ms"})
	for _, w := range cmd.IntSlice(widthKey) {
		for _, h := range cmd.IntSlice(heightKey) {
			table.Append(benchPropagate(int(w), int(h), iters).row())
		}
	}
	for _, n := range cmd.IntSlice(rowsKey) {
		table.Append(benchRepeater(int(n), iters).row())
	}
	table.Render()
	return nil
}

// benchPropagate builds w chains of h bindings over one source, each chain
// watched by a tracker, and times a write plus the re-evaluation it causes.
func benchPropagate(w, h, iters int) benchResult {
	rt := property.NewRuntime(property.WithErrorHandler(func(err error) {
		log.Panic(err)
	}))
	src := property.New(rt, 1)

	var dirty []int
	trackers := make([]*property.Tracker, w)
	leaves := make([]*property.Property[int], w)
	for i := range w {
		last := src
		for range h {
			prev := last
			last = property.NewBound(rt, func() int { return prev.Get() + 1 })
		}
		leaves[i] = last
		trackers[i] = property.NewTracker(rt, func() { dirty = append(dirty, i) })
	}
	effect := func(i int) func() {
		return func() { leaves[i].Get() }
	}
	for i, t := range trackers {
		t.Evaluate(effect(i))
	}

	tach := tachymeter.New(&tachymeter.Config{Size: iters})
	before := rt.Evaluations()
	var total time.Duration
	for range iters {
		start := time.Now()
		src.Set(src.Peek() + 1)
		for _, i := range dirty {
			trackers[i].Evaluate(effect(i))
		}
		dirty = dirty[:0]
		elapsed := time.Since(start)
		tach.AddTime(elapsed)
		total += elapsed
	}
	for _, t := range trackers {
		t.Drop()
	}

	return benchResult{
		name:  fmt.Sprintf("propagate: %d * %d", w, h),
		calc:  tach.Calc(),
		evals: rt.Evaluations() - before,
		total: total,
	}
}

// benchRepeater times a single row change in an n row list, through the
// repeater refresh.
func benchRepeater(n, iters int) benchResult {
	n = max(n, 1)
	rt := property.NewRuntime(property.WithErrorHandler(func(err error) {
		log.Panic(err)
	}))
	driver := animation.NewDriver(rt, time.Now())

	rows := make([]value.Value, n)
	for i := range rows {
		rows[i] = value.Int(int64(i))
	}
	model := itemtree.NewVectorModel(rows...)
	row := itemtree.NewDefinition("Row").
		Root(itemtree.KindText, "label").
		Bind("label", "text", func(c *itemtree.Component) func() value.Value {
			data := c.MustProperty("", "model_data")
			return func() value.Value {
				v, _ := value.Add(value.String("row "), data.Get())
				return v
			}
		})
	list := itemtree.NewDefinition("List").
		Root(itemtree.KindWindow, "win").
		Child("win", itemtree.KindFlickable, "list").
		Repeat("list", row, func(*itemtree.Component) func() itemtree.Model {
			return func() itemtree.Model { return model }
		})
	h, err := list.Instantiate(rt, driver)
	if err != nil {
		log.Panic(err)
	}
	defer h.Release()
	rep := h.Component().Item("list").Repeaters()[0]
	rep.EnsureUpdated()

	tach := tachymeter.New(&tachymeter.Config{Size: iters})
	before := rt.Evaluations()
	var total time.Duration
	for i := range iters {
		start := time.Now()
		model.Set(i%n, value.Int(int64(n+i)))
		rep.EnsureUpdated()
		rep.Instance(i % n).Root().Get("text")
		elapsed := time.Since(start)
		tach.AddTime(elapsed)
		total += elapsed
	}

	return benchResult{
		name:  fmt.Sprintf("repeater: %s rows", humanize.Comma(int64(n))),
		calc:  tach.Calc(),
		evals: rt.Evaluations() - before,
		total: total,
	}
}
