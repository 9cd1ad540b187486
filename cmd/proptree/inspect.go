package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/delaneyj/proptree/animation"
	"github.com/delaneyj/proptree/cmd/proptree/templates"
	"github.com/delaneyj/proptree/itemtree"
	"github.com/delaneyj/proptree/loader"
	"github.com/delaneyj/proptree/property"
	"github.com/delaneyj/proptree/value"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"
)

func inspect(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return errors.New("inspect: missing description file")
	}
	def, err := loader.LoadFile(path)
	if err != nil {
		return err
	}

	opts := []property.Option{}
	if cmd.Bool(verboseKey) {
		opts = append(opts, property.WithLogger(log.New(os.Stderr, "proptree: ", 0)))
	}
	rt := property.NewRuntime(opts...)
	driver := animation.NewDriver(rt, time.Unix(0, 0))
	h, err := def.Instantiate(rt, driver)
	if err != nil {
		return err
	}
	defer h.Release()
	c := h.Component()

	if cmd.Bool(showKey) {
		c.Show()
	}
	for _, s := range cmd.StringSlice(setKey) {
		if err := applySet(c, s); err != nil {
			return err
		}
	}
	for _, e := range cmd.StringSlice(emitKey) {
		if err := applyEmit(c, e); err != nil {
			return err
		}
	}
	if d := cmd.Duration(advanceKey); d > 0 {
		driver.Advance(d)
	}

	out := os.Stdout
	switch format := cmd.String(formatKey); format {
	case formatTable:
		renderTable(out, c, isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd()))
	case formatTree:
		templates.WriteTree(out, c.Name(), snapshot(c))
	default:
		return fmt.Errorf("inspect: unknown format %q", format)
	}
	return nil
}

// splitTarget splits "id.name" into its parts; a bare name addresses the
// component scope.
func splitTarget(s string) (id, name string) {
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		return s[:i], s[i+1:]
	}
	return "", s
}

// applySet writes the raw text as a string; coercion to the declared kind
// parses numbers, colors and durations.
func applySet(c *itemtree.Component, assignment string) error {
	target, raw, ok := strings.Cut(assignment, "=")
	if !ok {
		return fmt.Errorf("--%s %q: want name=value", setKey, assignment)
	}
	id, name := splitTarget(strings.TrimSpace(target))
	v := value.String(raw)
	if id == "" {
		return c.Set(name, v)
	}
	it, err := c.ItemByID(id)
	if err != nil {
		return err
	}
	return it.Set(name, v)
}

func applyEmit(c *itemtree.Component, target string) error {
	id, name := splitTarget(target)
	if id == "" {
		_, err := c.Invoke(name)
		return err
	}
	it, err := c.ItemByID(id)
	if err != nil {
		return err
	}
	_, err = it.Emit(name)
	return err
}

func depth(it *itemtree.Item) int {
	d := 0
	for p := it.Parent(); p != nil; p = p.Parent() {
		d++
	}
	return d
}

func prop(decl itemtree.PropDecl, v value.Value) templates.Prop {
	kind := decl.Kind.String()
	if decl.Kind == value.KindVoid {
		kind = "any"
	}
	return templates.Prop{Name: decl.Name, Kind: kind, Value: v.String()}
}

// snapshot flattens the tree, repeated instances included. The root of each
// component also lists the component's declared properties.
func snapshot(c *itemtree.Component) []templates.Node {
	var nodes []templates.Node
	c.Visit(itemtree.PreOrder, func(it *itemtree.Item) bool {
		node := templates.Node{Depth: depth(it), Label: it.String()}
		if it.Index() == 0 {
			sub := it.Component()
			node.Label = fmt.Sprintf("%s (%s)", it, sub.Name())
			for _, decl := range sub.Definition().Declared() {
				v, _ := sub.Get(decl.Name)
				node.Props = append(node.Props, prop(decl, v))
			}
		}
		for _, decl := range itemtree.LayoutOf(it.Kind()).Props {
			node.Props = append(node.Props, prop(decl, it.Get(decl.Name)))
		}
		nodes = append(nodes, node)
		return true
	})
	return nodes
}

func renderTable(w io.Writer, c *itemtree.Component, terminal bool) {
	tbl := table.NewWriter()
	tbl.SetTitle(c.Name())
	tbl.SetOutputMirror(w)
	tbl.AppendHeader(table.Row{"item", "property", "kind", "value"})
	if terminal {
		tbl.SetStyle(table.StyleRounded)
	} else {
		tbl.SetStyle(table.StyleLight)
		tbl.Style().Options.DrawBorder = false
	}

	for _, n := range snapshot(c) {
		label := strings.Repeat("  ", n.Depth) + n.Label
		for i, p := range n.Props {
			if i > 0 {
				label = ""
			}
			tbl.AppendRow(table.Row{label, p.Name, p.Kind, p.Value})
		}
		if len(n.Props) == 0 {
			tbl.AppendRow(table.Row{label, "", "", ""})
		}
		tbl.AppendSeparator()
	}
	tbl.Render()
}
