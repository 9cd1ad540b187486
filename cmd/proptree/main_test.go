package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/delaneyj/proptree/animation"
	"github.com/delaneyj/proptree/cmd/proptree/templates"
	"github.com/delaneyj/proptree/itemtree"
	"github.com/delaneyj/proptree/loader"
	"github.com/delaneyj/proptree/property"
	"github.com/delaneyj/proptree/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tiny = `
component: Tiny
properties:
  n: int
  pulses: int
callbacks:
  pulse:
    do: {increment: pulses}
root:
  kind: Window
  id: win
  children:
    - kind: Rectangle
      id: box
      props:
        width: {bind: n, op: "*", operand: 10}
    - kind: Empty
      id: list
      children:
        - for: {count: 2}
          template:
            kind: Text
            id: cell
`

func tinyComponent(t *testing.T) *itemtree.Component {
	def, err := loader.Parse([]byte(tiny))
	require.NoError(t, err)
	rt := property.NewRuntime()
	h, err := def.Instantiate(rt, animation.NewDriver(rt, time.Unix(0, 0)))
	require.NoError(t, err)
	t.Cleanup(h.Release)
	return h.Component()
}

func TestApplySetAndEmit(t *testing.T) {
	c := tinyComponent(t)

	require.NoError(t, applySet(c, "n=3"))
	assert.Equal(t, value.Float(30), c.Item("box").Get("width"))
	require.NoError(t, applySet(c, "box.color=#00ff00"))
	assert.Equal(t, value.Color(0xff00ff00), c.Item("box").Get("color"))

	assert.Error(t, applySet(c, "n"))
	assert.ErrorIs(t, applySet(c, "n=lots"), value.ErrCoercion)
	assert.ErrorIs(t, applySet(c, "nope.width=1"), itemtree.ErrNoSuchItem)

	require.NoError(t, applyEmit(c, "pulse"))
	require.NoError(t, applyEmit(c, "pulse"))
	v, err := c.Get("pulses")
	require.NoError(t, err)
	assert.Equal(t, value.Int(2), v)
	assert.ErrorIs(t, applyEmit(c, "box.clicked"), itemtree.ErrNoSuchCallback)
}

func TestSnapshot(t *testing.T) {
	c := tinyComponent(t)
	require.NoError(t, applySet(c, "n=2"))

	nodes := snapshot(c)
	var labels []string
	for _, n := range nodes {
		labels = append(labels, strings.Repeat(">", n.Depth)+n.Label)
	}
	assert.Equal(t, []string{
		"Window#win (Tiny)",
		">Rectangle#box",
		">Empty#list",
		">>Text#cell (Tiny/root-children1-children0)",
		">>Text#cell (Tiny/root-children1-children0)",
	}, labels)

	out := templates.Tree(c.Name(), nodes)
	assert.True(t, strings.HasPrefix(out, "Tiny\nWindow#win (Tiny)\n"))
	assert.Contains(t, out, "\n  Rectangle#box\n")
	assert.Contains(t, out, " float = 20\n")
	assert.Contains(t, out, " int = 1\n", "index of the second instance")

	var buf bytes.Buffer
	renderTable(&buf, c, false)
	assert.Contains(t, buf.String(), "Rectangle#box")
	assert.Contains(t, buf.String(), "pulses")
}

func TestBenchmarks(t *testing.T) {
	r := benchPropagate(2, 3, 5)
	assert.Equal(t, "propagate: 2 * 3", r.name)
	assert.Equal(t, uint64(2*(3+1)*5), r.evals)
	assert.Len(t, r.row(), 8)

	r = benchRepeater(4, 8)
	assert.Equal(t, "repeater: 4 rows", r.name)
	assert.NotZero(t, r.evals)
}
