// Package loader reads YAML component descriptions into item tree
// definitions.
//
//	component: Counter
//	properties:
//	  counter: int
//	  label: {type: string, value: "clicks"}
//	root:
//	  kind: Window
//	  id: win
//	  props:
//	    width: 200
//	  children:
//	    - kind: Text
//	      id: caption
//	      props:
//	        text: {bind: counter, op: "+", operand: " clicks"}
//	    - kind: TouchArea
//	      id: touch
//	      on:
//	        clicked: {increment: counter}
package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/delaneyj/proptree/animation"
	"github.com/delaneyj/proptree/itemtree"
	"github.com/delaneyj/proptree/value"
	"gopkg.in/yaml.v3"
)

var ErrInvalidDescription = errors.New("invalid component description")

// DescriptionError locates a problem in a description.
type DescriptionError struct {
	Path string
	Line int
	Err  error
}

func (e *DescriptionError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: %s (line %d): %v", ErrInvalidDescription, e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", ErrInvalidDescription, e.Path, e.Err)
}

func (e *DescriptionError) Unwrap() error { return e.Err }

func (e *DescriptionError) Is(target error) bool { return target == ErrInvalidDescription }

var (
	documentKeys = mapset.NewThreadUnsafeSet("component", "properties", "callbacks", "root", "initial_focus")
	elementKeys  = mapset.NewThreadUnsafeSet("kind", "id", "props", "children", "on")
	repeatKeys   = mapset.NewThreadUnsafeSet("for", "template")
	forKeys      = mapset.NewThreadUnsafeSet("count", "rows", "property")
	propKeys     = mapset.NewThreadUnsafeSet("type", "value", "bind", "op", "operand", "twoway", "animate")
	animateKeys  = mapset.NewThreadUnsafeSet("duration", "delay", "easing")
	callbackKeys = mapset.NewThreadUnsafeSet("args", "do")
	actionKeys   = mapset.NewThreadUnsafeSet("increment", "toggle", "set", "value", "emit")
)

func LoadFile(path string) (*itemtree.Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Load(r io.Reader) (*itemtree.Definition, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes one description. Every reference is checked, so a
// definition returned without error instantiates without panicking.
func Parse(data []byte) (*itemtree.Definition, error) {
	var doc yaml.Node
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &DescriptionError{Path: "$", Err: errors.New("empty document")}
		}
		return nil, &DescriptionError{Path: "$", Err: err}
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}

	l := &loader{}
	def, err := l.document(root)
	if err != nil {
		return nil, err
	}
	for _, check := range l.checks {
		if err := check(); err != nil {
			return nil, err
		}
	}
	if err := def.Err(); err != nil {
		return nil, &DescriptionError{Path: "$", Err: err}
	}
	return def, nil
}

// scope is one definition being loaded; templates nest inside their owner.
type scope struct {
	def   *itemtree.Definition
	outer *scope
	// links are applied once every element of the scope exists.
	links []func() error
}

func (s *scope) link() error {
	for _, fn := range s.links {
		if err := fn(); err != nil {
			return err
		}
	}
	return nil
}

type loader struct {
	// checks run once every element is known, so references may point
	// forward.
	checks []func() error
}

func fail(path string, n *yaml.Node, format string, args ...any) error {
	line := 0
	if n != nil {
		line = n.Line
	}
	return &DescriptionError{Path: path, Line: line, Err: fmt.Errorf(format, args...)}
}

// fields returns the mapping entries of n in order, rejecting keys outside
// allowed and duplicates.
func fields(path string, n *yaml.Node, allowed mapset.Set[string]) ([][2]*yaml.Node, error) {
	if n.Kind != yaml.MappingNode {
		return nil, fail(path, n, "want a mapping")
	}
	seen := mapset.NewThreadUnsafeSet[string]()
	out := make([][2]*yaml.Node, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		if allowed != nil && !allowed.Contains(k.Value) {
			return nil, fail(path, k, "unknown key %q", k.Value)
		}
		if !seen.Add(k.Value) {
			return nil, fail(path, k, "duplicate key %q", k.Value)
		}
		out = append(out, [2]*yaml.Node{k, v})
	}
	return out, nil
}

func field(entries [][2]*yaml.Node, key string) *yaml.Node {
	for _, e := range entries {
		if e[0].Value == key {
			return e[1]
		}
	}
	return nil
}

func scalar(path string, n *yaml.Node) (string, error) {
	if n.Kind != yaml.ScalarNode {
		return "", fail(path, n, "want a scalar")
	}
	return n.Value, nil
}

// literal types a scalar by its YAML tag. Strings stay strings; the declared
// kind of the target decides whether they become colors or durations.
func literal(path string, n *yaml.Node) (value.Value, error) {
	if n.Kind != yaml.ScalarNode {
		return value.Void(), fail(path, n, "want a literal")
	}
	switch n.ShortTag() {
	case "!!null":
		return value.Void(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return value.Void(), fail(path, n, "%v", err)
		}
		return value.Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return value.Void(), fail(path, n, "%v", err)
		}
		return value.Int(i), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return value.Void(), fail(path, n, "%v", err)
		}
		return value.Float(f), nil
	}
	return value.String(n.Value), nil
}

func (l *loader) document(n *yaml.Node) (*itemtree.Definition, error) {
	entries, err := fields("$", n, documentKeys)
	if err != nil {
		return nil, err
	}
	name := "Component"
	if c := field(entries, "component"); c != nil {
		if name, err = scalar("$.component", c); err != nil {
			return nil, err
		}
	}
	rootNode := field(entries, "root")
	if rootNode == nil {
		return nil, fail("$", n, "missing root")
	}

	s := &scope{def: itemtree.NewDefinition(name)}
	if err := l.tree(s, "$.root", rootNode, ""); err != nil {
		return nil, err
	}
	if p := field(entries, "properties"); p != nil {
		if err := l.properties(s, "$.properties", p); err != nil {
			return nil, err
		}
	}
	if cbs := field(entries, "callbacks"); cbs != nil {
		if err := l.callbacks(s, "$.callbacks", cbs); err != nil {
			return nil, err
		}
	}
	if err := l.settle(s, "$.root", rootNode); err != nil {
		return nil, err
	}
	if err := s.link(); err != nil {
		return nil, err
	}
	if f := field(entries, "initial_focus"); f != nil {
		id, err := scalar("$.initial_focus", f)
		if err != nil {
			return nil, err
		}
		if !s.def.HasItem(id) {
			return nil, fail("$.initial_focus", f, "no element %q", id)
		}
		s.def.InitialFocus(id)
	}
	return s.def, nil
}

// tree creates the element nodes of a subtree. Templates are skipped; they
// become their own definitions in settle.
func (l *loader) tree(s *scope, path string, n *yaml.Node, parent string) error {
	entries, err := fields(path, n, elementKeys)
	if err != nil {
		return err
	}
	kn := field(entries, "kind")
	if kn == nil {
		return fail(path, n, "missing kind")
	}
	kindName, err := scalar(path+".kind", kn)
	if err != nil {
		return err
	}
	kind, ok := itemtree.ParseKind(kindName)
	if !ok {
		return fail(path+".kind", kn, "unknown kind %q", kindName)
	}
	id := ""
	in := field(entries, "id")
	if in != nil {
		if id, err = scalar(path+".id", in); err != nil {
			return err
		}
	}
	if id == "" {
		// settle reads the id back from the node
		id = defaultID(path)
		if in != nil {
			in.Value = id
		} else {
			n.Content = append(n.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "id"},
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: id})
		}
	}
	if s.def.HasItem(id) {
		return fail(path+".id", n, "duplicate id %q", id)
	}
	if parent == "" {
		s.def.Root(kind, id)
	} else {
		s.def.Child(parent, kind, id)
	}

	if ch := field(entries, "children"); ch != nil {
		if ch.Kind != yaml.SequenceNode {
			return fail(path+".children", ch, "want a list")
		}
		for i, c := range ch.Content {
			cpath := fmt.Sprintf("%s.children[%d]", path, i)
			if isRepeat(c) {
				continue
			}
			if err := l.tree(s, cpath, c, id); err != nil {
				return err
			}
		}
	}
	return nil
}

func defaultID(path string) string {
	r := strings.NewReplacer("$.", "", ".", "-", "[", "", "]", "")
	return r.Replace(path)
}

func isRepeat(n *yaml.Node) bool {
	if n.Kind != yaml.MappingNode {
		return false
	}
	for i := 0; i < len(n.Content); i += 2 {
		if n.Content[i].Value == "for" {
			return true
		}
	}
	return false
}

// settle applies properties, handlers and repeaters once the tree exists.
func (l *loader) settle(s *scope, path string, n *yaml.Node) error {
	entries, err := fields(path, n, elementKeys)
	if err != nil {
		return err
	}
	id := field(entries, "id").Value

	if props := field(entries, "props"); props != nil {
		pe, err := fields(path+".props", props, nil)
		if err != nil {
			return err
		}
		for _, e := range pe {
			if err := l.property(s, path+".props."+e[0].Value, id, e[0].Value, e[1], false); err != nil {
				return err
			}
		}
	}
	if on := field(entries, "on"); on != nil {
		oe, err := fields(path+".on", on, nil)
		if err != nil {
			return err
		}
		for _, e := range oe {
			if err := l.handler(s, path+".on."+e[0].Value, id, e[0].Value, e[1]); err != nil {
				return err
			}
		}
	}
	if ch := field(entries, "children"); ch != nil {
		for i, c := range ch.Content {
			cpath := fmt.Sprintf("%s.children[%d]", path, i)
			if isRepeat(c) {
				err = l.repeat(s, cpath, c, id)
			} else {
				err = l.settle(s, cpath, c)
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func (l *loader) properties(s *scope, path string, n *yaml.Node) error {
	entries, err := fields(path, n, nil)
	if err != nil {
		return err
	}
	for _, e := range entries {
		name, spec := e[0].Value, e[1]
		ppath := path + "." + name
		typeName := ""
		switch spec.Kind {
		case yaml.ScalarNode:
			typeName = spec.Value
		case yaml.MappingNode:
			pe, err := fields(ppath, spec, propKeys)
			if err != nil {
				return err
			}
			if t := field(pe, "type"); t != nil {
				typeName = t.Value
			}
		default:
			return fail(ppath, spec, "want a type name or a mapping")
		}
		kind, ok := value.ParseKind(typeName)
		if !ok && typeName != "any" {
			return fail(ppath, spec, "unknown type %q", typeName)
		}
		if _, exists := s.def.Lookup("", name); exists {
			return fail(ppath, e[0], "property %q already exists", name)
		}
		s.def.Declare(name, kind, value.Void())
		if spec.Kind == yaml.MappingNode {
			if err := l.property(s, ppath, "", name, spec, true); err != nil {
				return err
			}
		}
	}
	return nil
}

// property applies one property spec: a literal or a mapping with value,
// bind (plus op and operand), twoway and animate.
func (l *loader) property(s *scope, path, id, prop string, n *yaml.Node, declared bool) error {
	decl, ok := s.def.Lookup(id, prop)
	if !ok {
		return fail(path, n, "%s has no property %q", describe(s, id), prop)
	}
	if n.Kind == yaml.ScalarNode {
		v, err := literal(path, n)
		if err != nil {
			return err
		}
		if _, err := coerce(v, decl.Kind); err != nil {
			return fail(path, n, "%v", err)
		}
		s.def.Set(id, prop, v)
		return nil
	}

	entries, err := fields(path, n, propKeys)
	if err != nil {
		return err
	}
	if t := field(entries, "type"); t != nil && !declared {
		return fail(path, t, "type is only allowed on declared properties")
	}
	if v := field(entries, "value"); v != nil {
		lit, err := literal(path+".value", v)
		if err != nil {
			return err
		}
		if _, err := coerce(lit, decl.Kind); err != nil {
			return fail(path+".value", v, "%v", err)
		}
		s.def.Set(id, prop, lit)
	}
	if a := field(entries, "animate"); a != nil {
		spec, err := animationSpec(path+".animate", a)
		if err != nil {
			return err
		}
		s.def.Animate(id, prop, spec)
	}
	if b := field(entries, "bind"); b != nil {
		if err := l.binding(s, path, id, prop, entries, b); err != nil {
			return err
		}
	} else if field(entries, "op") != nil || field(entries, "operand") != nil {
		return fail(path, n, "op and operand need bind")
	}
	if tw := field(entries, "twoway"); tw != nil {
		if field(entries, "bind") != nil {
			return fail(path, tw, "bind and twoway are exclusive")
		}
		r, err := parseRef(path+".twoway", tw)
		if err != nil {
			return err
		}
		if r.outer > 0 {
			return fail(path+".twoway", tw, "two-way links stay within one component")
		}
		s.links = append(s.links, func() error {
			other, ok := s.def.Lookup(r.id, r.prop)
			if !ok {
				return fail(path+".twoway", tw, "unknown property %s", r)
			}
			if other.Kind != decl.Kind {
				return fail(path+".twoway", tw, "%s is %s, %s is %s", prop, decl.Kind, r, other.Kind)
			}
			before := s.def.Err()
			if err := s.def.TwoWay(id, prop, r.id, r.prop).Err(); err != nil && before == nil {
				return fail(path+".twoway", tw, "%v", err)
			}
			return nil
		})
	}
	return nil
}

func describe(s *scope, id string) string {
	if id == "" {
		return s.def.Name()
	}
	return fmt.Sprintf("%s element %q", s.def.Name(), id)
}

func coerce(v value.Value, k value.Kind) (value.Value, error) {
	if k == value.KindVoid {
		return v, nil
	}
	return value.Coerce(v, k)
}

func (l *loader) binding(s *scope, path, id, prop string, entries [][2]*yaml.Node, b *yaml.Node) error {
	src, err := parseRef(path+".bind", b)
	if err != nil {
		return err
	}
	l.requireRef(s, path+".bind", b, src)

	var (
		op      value.Op
		hasOp   bool
		operand value.Value
	)
	if on := field(entries, "op"); on != nil {
		if op, hasOp = value.ParseOp(on.Value); !hasOp {
			return fail(path+".op", on, "unknown operator %q", on.Value)
		}
		rn := field(entries, "operand")
		if rn == nil {
			return fail(path, on, "op needs an operand")
		}
		if operand, err = literal(path+".operand", rn); err != nil {
			return err
		}
	}

	s.def.Bind(id, prop, func(c *itemtree.Component) func() value.Value {
		cell := src.resolve(c)
		if !hasOp {
			return cell.Get
		}
		logger := c.Runtime().Logger()
		return func() value.Value {
			v, err := value.Arith(op, cell.Get(), operand)
			if err != nil {
				logger.Printf("%s: %v", path, err)
				return value.Void()
			}
			return v
		}
	})
	return nil
}

func animationSpec(path string, n *yaml.Node) (animation.Spec, error) {
	var spec animation.Spec
	entries, err := fields(path, n, animateKeys)
	if err != nil {
		return spec, err
	}
	if d := field(entries, "duration"); d != nil {
		if spec.Duration, err = time.ParseDuration(d.Value); err != nil {
			return spec, fail(path+".duration", d, "%v", err)
		}
	}
	if d := field(entries, "delay"); d != nil {
		if spec.Delay, err = time.ParseDuration(d.Value); err != nil {
			return spec, fail(path+".delay", d, "%v", err)
		}
	}
	if e := field(entries, "easing"); e != nil {
		if spec.Easing, err = animation.ParseEasing(e.Value); err != nil {
			return spec, fail(path+".easing", e, "%v", err)
		}
	}
	return spec, nil
}

func (l *loader) callbacks(s *scope, path string, n *yaml.Node) error {
	entries, err := fields(path, n, nil)
	if err != nil {
		return err
	}
	for _, e := range entries {
		name, spec := e[0].Value, e[1]
		cpath := path + "." + name
		var argsNode, doNode *yaml.Node
		switch spec.Kind {
		case yaml.SequenceNode:
			argsNode = spec
		case yaml.MappingNode:
			ce, err := fields(cpath, spec, callbackKeys)
			if err != nil {
				return err
			}
			argsNode, doNode = field(ce, "args"), field(ce, "do")
		case yaml.ScalarNode:
			if spec.ShortTag() != "!!null" {
				return fail(cpath, spec, "want a list of argument types")
			}
		}
		var args []value.Kind
		if argsNode != nil {
			if argsNode.Kind != yaml.SequenceNode {
				return fail(cpath+".args", argsNode, "want a list")
			}
			for i, a := range argsNode.Content {
				k, ok := value.ParseKind(a.Value)
				if !ok && a.Value != "any" {
					return fail(fmt.Sprintf("%s.args[%d]", cpath, i), a, "unknown type %q", a.Value)
				}
				args = append(args, k)
			}
		}
		if _, exists := s.def.CallbackArgs("", name); exists {
			return fail(cpath, e[0], "callback %q declared twice", name)
		}
		s.def.DeclareCallback(name, args...)
		if doNode != nil {
			if err := l.handler(s, cpath+".do", "", name, doNode); err != nil {
				return err
			}
		}
	}
	return nil
}

// action runs on a component instance when a callback fires.
type action func(c *itemtree.Component) func()

func (l *loader) handler(s *scope, path, id, name string, n *yaml.Node) error {
	if _, ok := s.def.CallbackArgs(id, name); !ok {
		return fail(path, n, "%s has no callback %q", describe(s, id), name)
	}
	var nodes []*yaml.Node
	if n.Kind == yaml.SequenceNode {
		nodes = n.Content
	} else {
		nodes = []*yaml.Node{n}
	}
	var actions []action
	for i, an := range nodes {
		a, err := l.action(s, fmt.Sprintf("%s[%d]", path, i), an)
		if err != nil {
			return err
		}
		actions = append(actions, a)
	}
	s.def.OnCallback(id, name, func(c *itemtree.Component) itemtree.Handler {
		steps := make([]func(), len(actions))
		for i, a := range actions {
			steps[i] = a(c)
		}
		return func([]value.Value) value.Value {
			for _, step := range steps {
				step()
			}
			return value.Void()
		}
	})
	return nil
}

func (l *loader) action(s *scope, path string, n *yaml.Node) (action, error) {
	entries, err := fields(path, n, actionKeys)
	if err != nil {
		return nil, err
	}
	switch {
	case field(entries, "increment") != nil:
		rn := field(entries, "increment")
		r, err := parseRef(path+".increment", rn)
		if err != nil {
			return nil, err
		}
		l.requireRef(s, path+".increment", rn, r)
		return func(c *itemtree.Component) func() {
			cell := r.resolve(c)
			logger := c.Runtime().Logger()
			return func() {
				v, err := value.Add(cell.Get(), value.Int(1))
				if err != nil {
					logger.Printf("%s: %v", path, err)
					return
				}
				cell.Set(v)
			}
		}, nil

	case field(entries, "toggle") != nil:
		rn := field(entries, "toggle")
		r, err := parseRef(path+".toggle", rn)
		if err != nil {
			return nil, err
		}
		l.requireRef(s, path+".toggle", rn, r)
		return func(c *itemtree.Component) func() {
			cell := r.resolve(c)
			return func() {
				cell.Set(value.Bool(!cell.Get().AsBool()))
			}
		}, nil

	case field(entries, "set") != nil:
		rn := field(entries, "set")
		r, err := parseRef(path+".set", rn)
		if err != nil {
			return nil, err
		}
		l.requireRef(s, path+".set", rn, r)
		vn := field(entries, "value")
		if vn == nil {
			return nil, fail(path, n, "set needs a value")
		}
		v, err := literal(path+".value", vn)
		if err != nil {
			return nil, err
		}
		return func(c *itemtree.Component) func() {
			cell := r.resolve(c)
			return func() {
				cell.Set(v)
			}
		}, nil

	case field(entries, "emit") != nil:
		en := field(entries, "emit")
		r, err := parseRef(path+".emit", en)
		if err != nil {
			return nil, err
		}
		if r.id != "" {
			return nil, fail(path+".emit", en, "emit takes a component callback name")
		}
		target := s
		for i := 0; i < r.outer && target != nil; i++ {
			target = target.outer
		}
		if target == nil {
			return nil, fail(path+".emit", en, "%s reaches past the outermost component", r)
		}
		name := r.prop
		l.checks = append(l.checks, func() error {
			args, ok := target.def.CallbackArgs("", name)
			if !ok {
				return fail(path+".emit", en, "no callback %q", name)
			}
			if len(args) > 0 {
				return fail(path+".emit", en, "callback %q takes arguments", name)
			}
			return nil
		})
		return func(c *itemtree.Component) func() {
			for i := 0; i < r.outer; i++ {
				c = c.Outer()
			}
			logger := c.Runtime().Logger()
			return func() {
				if _, err := c.Invoke(name); err != nil {
					logger.Printf("%s: %v", path, err)
				}
			}
		}, nil
	}
	return nil, fail(path, n, "empty action")
}

func (l *loader) repeat(s *scope, path string, n *yaml.Node, host string) error {
	entries, err := fields(path, n, repeatKeys)
	if err != nil {
		return err
	}
	fn, tn := field(entries, "for"), field(entries, "template")
	if tn == nil {
		return fail(path, n, "for needs a template")
	}
	fe, err := fields(path+".for", fn, forKeys)
	if err != nil {
		return err
	}
	if len(fe) != 1 {
		return fail(path+".for", fn, "want exactly one of count, rows or property")
	}

	var model itemtree.ModelFactory
	switch src := fe[0]; src[0].Value {
	case "count":
		var count int
		if err := src[1].Decode(&count); err != nil {
			return fail(path+".for.count", src[1], "%v", err)
		}
		model = func(*itemtree.Component) func() itemtree.Model {
			return func() itemtree.Model { return itemtree.IntModel(count) }
		}
	case "rows":
		if src[1].Kind != yaml.SequenceNode {
			return fail(path+".for.rows", src[1], "want a list")
		}
		var rows []value.Value
		for i, rn := range src[1].Content {
			v, err := literal(fmt.Sprintf("%s.for.rows[%d]", path, i), rn)
			if err != nil {
				return err
			}
			rows = append(rows, v)
		}
		model = func(*itemtree.Component) func() itemtree.Model {
			m := itemtree.NewVectorModel(append([]value.Value(nil), rows...)...)
			return func() itemtree.Model { return m }
		}
	case "property":
		r, err := parseRef(path+".for.property", src[1])
		if err != nil {
			return err
		}
		l.requireRef(s, path+".for.property", src[1], r)
		model = func(c *itemtree.Component) func() itemtree.Model {
			cell := r.resolve(c)
			return func() itemtree.Model {
				return itemtree.IntModel(cell.Get().AsInt())
			}
		}
	}

	sub := &scope{
		def:   itemtree.NewDefinition(fmt.Sprintf("%s/%s", s.def.Name(), defaultID(path))),
		outer: s,
	}
	sub.def.Declare("model_data", value.KindVoid, value.Void())
	sub.def.Declare("index", value.KindInt, value.Int(0))
	if err := l.tree(sub, path+".template", tn, ""); err != nil {
		return err
	}
	if err := l.settle(sub, path+".template", tn); err != nil {
		return err
	}
	if err := sub.link(); err != nil {
		return err
	}
	if err := sub.def.Err(); err != nil {
		return &DescriptionError{Path: path + ".template", Line: tn.Line, Err: err}
	}
	s.def.Repeat(host, sub.def, model)
	return nil
}

// requireRef checks, after loading, that a reference resolves.
func (l *loader) requireRef(s *scope, path string, n *yaml.Node, r ref) {
	target := s
	for i := 0; i < r.outer && target != nil; i++ {
		target = target.outer
	}
	l.checks = append(l.checks, func() error {
		if target == nil {
			return fail(path, n, "%s reaches past the outermost component", r)
		}
		if _, ok := target.def.Lookup(r.id, r.prop); !ok {
			return fail(path, n, "unknown property %s", r)
		}
		return nil
	})
}
