package itemtree_test

import (
	"testing"
	"time"

	"github.com/delaneyj/proptree/animation"
	"github.com/delaneyj/proptree/itemtree"
	"github.com/delaneyj/proptree/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rowDef is a rectangle whose width follows the row data and whose x is
// animated.
func rowDef(evals *int) *itemtree.Definition {
	return itemtree.NewDefinition("Row").
		Root(itemtree.KindRectangle, "row").
		Animate("row", "x", animation.Spec{Duration: 100 * time.Millisecond}).
		Bind("row", "width", func(c *itemtree.Component) func() value.Value {
			data := c.MustProperty("", "model_data")
			return func() value.Value {
				if evals != nil {
					*evals++
				}
				return data.Get()
			}
		})
}

func listDef(sub *itemtree.Definition, model itemtree.ModelFactory) *itemtree.Definition {
	return itemtree.NewDefinition("List").
		Root(itemtree.KindWindow, "win").
		Declare("count", value.KindInt, value.Int(3)).
		Child("win", itemtree.KindEmpty, "list").
		Repeat("list", sub, model)
}

func fixedModel(m itemtree.Model) itemtree.ModelFactory {
	return func(*itemtree.Component) func() itemtree.Model {
		return func() itemtree.Model { return m }
	}
}

func floats(vs ...float64) []value.Value {
	out := make([]value.Value, len(vs))
	for i, v := range vs {
		out[i] = value.Float(v)
	}
	return out
}

//	rows: [0 1 2 3]  ->  [0 1]
//	row 0 is mid-animation and must keep going
func TestRepeaterShrinkKeepsSurvivors(t *testing.T) {
	vm := itemtree.NewVectorModel(floats(10, 20, 30, 40)...)
	_, c, d := instantiate(t, listDef(rowDef(nil), fixedModel(vm)))

	rep := c.Item("list").Repeaters()[0]
	assert.Equal(t, 0, rep.Len(), "instances are created on demand")
	rep.EnsureUpdated()
	require.Equal(t, 4, rep.Len())

	first, third, fourth := rep.Instance(0), rep.Instance(2), rep.Instance(3)
	assert.Equal(t, value.Float(10), first.Root().Get("width"))
	assert.Equal(t, value.Int(2), get(t, third, "index"))
	assert.Equal(t, value.Float(30), get(t, third, "model_data"))
	assert.Same(t, c.Item("list"), first.Root().Parent())
	assert.Same(t, c, first.Outer())

	require.NoError(t, first.Root().Set("x", value.Float(100)))
	d.Advance(50 * time.Millisecond)
	require.Equal(t, value.Float(50), first.Root().Get("x"))

	vm.Remove(3)
	vm.Remove(2)
	assert.True(t, rep.NeedsUpdate())
	rep.EnsureUpdated()
	assert.False(t, rep.NeedsUpdate())

	require.Equal(t, 2, rep.Len())
	assert.Same(t, first, rep.Instance(0))
	assert.True(t, third.Destroyed())
	assert.True(t, fourth.Destroyed())
	assert.Nil(t, rep.Instance(2))

	assert.True(t, first.Root().Animated("x").Running())
	d.Advance(50 * time.Millisecond)
	assert.Equal(t, value.Float(100), first.Root().Get("x"))
	assert.Equal(t, value.Float(20), rep.Instance(1).Root().Get("width"))
}

func TestRepeaterGrowFromProperty(t *testing.T) {
	sub := itemtree.NewDefinition("Cell").Root(itemtree.KindText, "cell")
	def := listDef(sub, func(c *itemtree.Component) func() itemtree.Model {
		count := c.MustProperty("", "count")
		return func() itemtree.Model {
			return itemtree.IntModel(count.Get().AsInt())
		}
	})
	_, c, _ := instantiate(t, def)
	rep := c.Item("list").Repeaters()[0]

	rep.EnsureUpdated()
	require.Equal(t, 3, rep.Len())
	for i, inst := range rep.Instances() {
		assert.Equal(t, value.Int(int64(i)), get(t, inst, "index"))
		assert.Equal(t, value.Int(int64(i)), get(t, inst, "model_data"))
	}
	first := rep.Instance(0)
	require.NoError(t, first.Root().Set("text", value.String("kept")))

	require.NoError(t, c.Set("count", value.Int(5)))
	assert.True(t, rep.NeedsUpdate())
	rep.EnsureUpdated()
	assert.Equal(t, 5, rep.Len())
	assert.Same(t, first, rep.Instance(0))
	assert.Equal(t, value.String("kept"), first.Root().Get("text"))
	assert.Equal(t, value.Int(4), get(t, rep.Instance(4), "index"))

	require.NoError(t, c.Set("count", value.Int(-2)))
	rep.EnsureUpdated()
	assert.Equal(t, 0, rep.Len())
}

func TestRepeaterRefreshesOnlyChangedRows(t *testing.T) {
	evals := 0
	vm := itemtree.NewVectorModel(floats(10, 20, 30)...)
	_, c, _ := instantiate(t, listDef(rowDef(&evals), fixedModel(vm)))
	rep := c.Item("list").Repeaters()[0]

	widths := func() []value.Value {
		var out []value.Value
		for _, inst := range rep.Instances() {
			out = append(out, inst.Root().Get("width"))
		}
		return out
	}

	rep.EnsureUpdated()
	assert.Equal(t, floats(10, 20, 30), widths())
	assert.Equal(t, 3, evals)

	vm.Set(1, value.Float(99))
	vm.Set(7, value.Float(1))
	rep.EnsureUpdated()
	assert.Equal(t, floats(10, 99, 30), widths())
	assert.Equal(t, 4, evals)

	vm.Insert(0, value.Float(5))
	rep.EnsureUpdated()
	assert.Equal(t, floats(5, 10, 99, 30), widths())
	assert.Equal(t, 8, evals)

	assert.Equal(t, value.Float(30), vm.RowData(99), "row data is clamped")
	assert.Equal(t, value.Float(5), vm.RowData(-1))
	assert.Equal(t, value.Int(2), itemtree.IntModel(3).RowData(10))
	assert.True(t, itemtree.IntModel(0).RowData(0).IsVoid())
}

func TestVisitIncludesRepeatedInstances(t *testing.T) {
	sub := itemtree.NewDefinition("Item").
		Root(itemtree.KindRectangle, "bg").
		Child("bg", itemtree.KindText, "label")
	def := itemtree.NewDefinition("Menu").
		Root(itemtree.KindWindow, "win").
		Child("win", itemtree.KindEmpty, "list").
		Child("win", itemtree.KindText, "footer").
		Repeat("list", sub, fixedModel(itemtree.IntModel(2)))
	_, c, _ := instantiate(t, def)

	var ids []string
	c.Visit(itemtree.PreOrder, func(it *itemtree.Item) bool {
		ids = append(ids, it.ID())
		return true
	})
	assert.Equal(t, []string{"win", "list", "bg", "label", "bg", "label", "footer"}, ids)
}

func TestModelPeersArePruned(t *testing.T) {
	vm := itemtree.NewVectorModel(floats(1, 2)...)
	rt, d := setup(t)

	h1, err := listDef(rowDef(nil), fixedModel(vm)).Instantiate(rt, d)
	require.NoError(t, err)
	h2, err := listDef(rowDef(nil), fixedModel(vm)).Instantiate(rt, d)
	require.NoError(t, err)

	h1.Component().Item("list").Repeaters()[0].EnsureUpdated()
	h2.Component().Item("list").Repeaters()[0].EnsureUpdated()
	assert.Equal(t, 2, vm.Peers())

	inst := h1.Component().Item("list").Repeaters()[0].Instance(0)
	h1.Release()
	assert.True(t, inst.Destroyed())
	assert.Equal(t, 1, vm.Peers())

	vm.Push(value.Float(3))
	rep := h2.Component().Item("list").Repeaters()[0]
	rep.EnsureUpdated()
	assert.Equal(t, 3, rep.Len())

	h2.Release()
	assert.Equal(t, 0, vm.Peers())
}

func TestSwitchingModelsDetachesOldOne(t *testing.T) {
	a := itemtree.NewVectorModel(floats(1, 2, 3)...)
	b := itemtree.NewVectorModel(floats(7)...)
	def := listDef(rowDef(nil), func(c *itemtree.Component) func() itemtree.Model {
		count := c.MustProperty("", "count")
		return func() itemtree.Model {
			if count.Get().AsInt() > 0 {
				return a
			}
			return b
		}
	})
	_, c, _ := instantiate(t, def)
	rep := c.Item("list").Repeaters()[0]
	rep.EnsureUpdated()
	require.Equal(t, 3, rep.Len())
	first := rep.Instance(0)

	require.NoError(t, c.Set("count", value.Int(0)))
	rep.EnsureUpdated()
	assert.Equal(t, 1, rep.Len())
	assert.Same(t, first, rep.Instance(0))
	assert.Equal(t, value.Float(7), first.Root().Get("width"))

	assert.Equal(t, 0, a.Peers())
	a.Push(value.Float(4))
	assert.False(t, rep.NeedsUpdate())
}

// rowsModel is a value model that cannot be compared with ==.
type rowsModel struct {
	rows []value.Value
}

func (m rowsModel) RowCount() int { return len(m.rows) }

func (m rowsModel) RowData(row int) value.Value {
	if len(m.rows) == 0 {
		return value.Void()
	}
	return m.rows[max(0, min(row, len(m.rows)-1))]
}

func (m rowsModel) SetRowData(row int, v value.Value) {
	if row >= 0 && row < len(m.rows) {
		m.rows[row] = v
	}
}

func (rowsModel) Attach(itemtree.Peer) {}

func TestRepeaterValueModels(t *testing.T) {
	all := floats(1, 2, 3)
	model := func(c *itemtree.Component) func() itemtree.Model {
		count := c.MustProperty("", "count")
		return func() itemtree.Model {
			return rowsModel{rows: all[:count.Get().AsInt()]}
		}
	}
	_, c, _ := instantiate(t, listDef(rowDef(nil), model))

	rep := c.Item("list").Repeaters()[0]
	rep.EnsureUpdated()
	require.Equal(t, 3, rep.Len())

	require.NoError(t, c.Set("count", value.Int(2)))
	require.NotPanics(t, rep.EnsureUpdated)
	require.Equal(t, 2, rep.Len())
	assert.Equal(t, value.Float(2), rep.Instance(1).Root().Get("width"))
}
