package itemtree_test

import (
	"testing"

	"github.com/delaneyj/proptree/itemtree"
	"github.com/delaneyj/proptree/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func place(d *itemtree.Definition, id string, x, y, w, h float64) *itemtree.Definition {
	return d.
		Set(id, "x", value.Float(x)).
		Set(id, "y", value.Float(y)).
		Set(id, "width", value.Float(w)).
		Set(id, "height", value.Float(h))
}

func increment(prop string) itemtree.HandlerFactory {
	return func(c *itemtree.Component) itemtree.Handler {
		p := c.MustProperty("", prop)
		return func([]value.Value) value.Value {
			p.Set(value.Int(p.Get().AsInt() + 1))
			return value.Void()
		}
	}
}

//	win 200x200
//	├── overlay (0,0 50x50)
//	└── panel (100,100 100x100)
//	    └── btn (+10,+10 50x20)
func buttonsDef() *itemtree.Definition {
	d := itemtree.NewDefinition("Buttons").
		Root(itemtree.KindWindow, "win").
		Declare("clicks", value.KindInt, value.Int(0)).
		Child("win", itemtree.KindTouchArea, "overlay").
		Child("win", itemtree.KindRectangle, "panel").
		Child("panel", itemtree.KindTouchArea, "btn").
		OnCallback("btn", "clicked", increment("clicks"))
	d = place(d, "win", 0, 0, 200, 200)
	d = place(d, "overlay", 0, 0, 50, 50)
	d = place(d, "panel", 100, 100, 100, 100)
	return place(d, "btn", 10, 10, 50, 20)
}

func TestPointerGrabAndClick(t *testing.T) {
	_, c, _ := instantiate(t, buttonsDef())
	btn, overlay := c.Item("btn"), c.Item("overlay")

	assert.Same(t, btn, c.ItemAt(115, 115))
	assert.Nil(t, c.ItemAt(190, 190))

	require.True(t, c.DispatchPointer(itemtree.PointerEvent{Kind: itemtree.PointerPress, X: 115, Y: 115}))
	assert.Same(t, btn, c.Grabber())
	assert.Equal(t, value.Bool(true), btn.Get("pressed"))
	assert.Equal(t, value.Bool(true), btn.Get("has_hover"))
	assert.Equal(t, value.Float(5), btn.Get("mouse_x"))

	// dragging off the item keeps the grab, releasing there does not click
	assert.True(t, c.DispatchPointer(itemtree.PointerEvent{Kind: itemtree.PointerMove, X: 300, Y: 300}))
	assert.Equal(t, value.Float(190), btn.Get("mouse_x"))
	assert.True(t, c.DispatchPointer(itemtree.PointerEvent{Kind: itemtree.PointerRelease, X: 300, Y: 300}))
	assert.Nil(t, c.Grabber())
	assert.Equal(t, value.Bool(false), btn.Get("pressed"))
	assert.Equal(t, value.Int(0), get(t, c, "clicks"))

	c.DispatchPointer(itemtree.PointerEvent{Kind: itemtree.PointerPress, X: 120, Y: 115})
	c.DispatchPointer(itemtree.PointerEvent{Kind: itemtree.PointerRelease, X: 121, Y: 116})
	assert.Equal(t, value.Int(1), get(t, c, "clicks"))

	assert.True(t, c.DispatchPointer(itemtree.PointerEvent{Kind: itemtree.PointerMove, X: 10, Y: 10}))
	assert.Equal(t, value.Bool(false), btn.Get("has_hover"))
	assert.Equal(t, value.Bool(true), overlay.Get("has_hover"))

	assert.False(t, c.DispatchPointer(itemtree.PointerEvent{Kind: itemtree.PointerExit}))
	assert.Equal(t, value.Bool(false), overlay.Get("has_hover"))
}

func TestPointerFrontmostWins(t *testing.T) {
	_, c, _ := instantiate(t, buttonsDef())
	btn, overlay := c.Item("btn"), c.Item("overlay")

	// panel comes after overlay, so btn is painted on top of it
	require.NoError(t, overlay.Set("x", value.Float(105)))
	require.NoError(t, overlay.Set("y", value.Float(105)))
	assert.Same(t, btn, c.ItemAt(115, 115))

	require.NoError(t, btn.Set("enabled", value.Bool(false)))
	assert.Same(t, overlay, c.ItemAt(115, 115))
}

func TestPointerClipping(t *testing.T) {
	d := itemtree.NewDefinition("Scroll").
		Root(itemtree.KindWindow, "win").
		Child("win", itemtree.KindFlickable, "scroll").
		Child("scroll", itemtree.KindTouchArea, "row")
	d = place(d, "scroll", 0, 0, 100, 100)
	d = place(d, "row", 0, 150, 50, 50)
	_, c, _ := instantiate(t, d)

	assert.Nil(t, c.ItemAt(10, 160), "outside the flickable")
	require.NoError(t, c.Item("scroll").Set("viewport_y", value.Float(-100)))
	assert.Same(t, c.Item("row"), c.ItemAt(10, 60))
}

func TestPointerReachesRepeatedInstances(t *testing.T) {
	sub := itemtree.NewDefinition("Entry").
		Root(itemtree.KindTouchArea, "hit").
		Set("hit", "width", value.Float(100)).
		Set("hit", "height", value.Float(10)).
		Bind("hit", "y", func(c *itemtree.Component) func() value.Value {
			index := c.MustProperty("", "index")
			return func() value.Value {
				v, _ := value.Mul(index.Get(), value.Int(10))
				return v
			}
		})
	d := itemtree.NewDefinition("List").
		Root(itemtree.KindWindow, "win").
		Child("win", itemtree.KindEmpty, "list").
		Repeat("list", sub, fixedModel(itemtree.IntModel(3)))
	_, c, _ := instantiate(t, d)

	hit := c.ItemAt(5, 25)
	require.NotNil(t, hit)
	assert.Equal(t, value.Int(2), get(t, hit.Component(), "index"))
}

func formDef() *itemtree.Definition {
	d := itemtree.NewDefinition("Form").
		Root(itemtree.KindWindow, "win").
		Declare("edits", value.KindInt, value.Int(0)).
		Declare("submitted", value.KindString, value.Void()).
		Child("win", itemtree.KindTextInput, "name").
		Child("win", itemtree.KindText, "hint").
		Child("win", itemtree.KindTextInput, "email").
		OnCallback("name", "edited", increment("edits")).
		OnCallback("name", "accepted", func(c *itemtree.Component) itemtree.Handler {
			name := c.MustProperty("name", "text")
			submitted := c.MustProperty("", "submitted")
			return func([]value.Value) value.Value {
				submitted.Set(name.Get())
				return value.Void()
			}
		}).
		InitialFocus("name")
	d = place(d, "name", 0, 0, 100, 20)
	return place(d, "email", 0, 40, 100, 20)
}

func TestInitialFocusAndTyping(t *testing.T) {
	_, c, _ := instantiate(t, formDef())
	name, email := c.Item("name"), c.Item("email")

	assert.Nil(t, c.FocusItem(), "nothing is focused before the window is shown")
	assert.False(t, c.DispatchKey(itemtree.KeyEvent{Key: itemtree.KeyText, Text: "x"}))

	c.Show()
	assert.True(t, c.Shown())
	assert.Same(t, name, c.FocusItem())
	assert.Equal(t, value.Bool(true), name.Get("has_focus"))

	for _, s := range []string{"h", "é"} {
		assert.True(t, c.DispatchKey(itemtree.KeyEvent{Key: itemtree.KeyText, Text: s}))
	}
	assert.Equal(t, value.String("hé"), name.Get("text"))
	assert.True(t, c.DispatchKey(itemtree.KeyEvent{Key: itemtree.KeyBackspace}))
	assert.Equal(t, value.String("h"), name.Get("text"))
	assert.Equal(t, value.Int(3), get(t, c, "edits"))

	c.DispatchKey(itemtree.KeyEvent{Key: itemtree.KeyReturn})
	assert.Equal(t, value.String("h"), get(t, c, "submitted"))

	assert.True(t, c.DispatchKey(itemtree.KeyEvent{Key: itemtree.KeyTab}))
	assert.Same(t, email, c.FocusItem())
	assert.Equal(t, value.Bool(false), name.Get("has_focus"))
	assert.True(t, c.DispatchKey(itemtree.KeyEvent{Key: itemtree.KeyTab}))
	assert.Same(t, name, c.FocusItem(), "tab wraps around")

	assert.True(t, c.DispatchKey(itemtree.KeyEvent{Key: itemtree.KeyEscape}))
	assert.Nil(t, c.FocusItem())
	assert.False(t, c.DispatchKey(itemtree.KeyEvent{Key: itemtree.KeyText, Text: "x"}))
}

func TestFocusRules(t *testing.T) {
	_, c, _ := instantiate(t, formDef())
	name, email := c.Item("name"), c.Item("email")

	assert.False(t, c.SetFocus(c.Item("hint")), "text is not focusable")
	assert.Nil(t, c.FocusItem())

	c.DispatchPointer(itemtree.PointerEvent{Kind: itemtree.PointerPress, X: 5, Y: 45})
	assert.Same(t, email, c.FocusItem(), "pressing an input focuses it")

	// Show after explicit focus still applies the initial target
	c.Show()
	assert.Same(t, name, c.FocusItem())

	require.NoError(t, name.Set("enabled", value.Bool(false)))
	assert.False(t, c.DispatchKey(itemtree.KeyEvent{Key: itemtree.KeyText, Text: "x"}))

	_, other, _ := instantiate(t, formDef())
	assert.False(t, c.SetFocus(other.Item("name")), "items of another tree are refused")
}
