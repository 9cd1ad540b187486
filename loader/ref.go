package loader

import (
	"fmt"
	"strings"

	"github.com/delaneyj/proptree/itemtree"
	"github.com/delaneyj/proptree/value"
	"gopkg.in/yaml.v3"
)

// ref names a property relative to the component it appears in:
//
//	counter           declared property (or root element property)
//	caption.text      property of element caption
//	outer.counter     the same, one repeater level up
type ref struct {
	outer int
	id    string
	prop  string
}

func (r ref) String() string {
	var sb strings.Builder
	for i := 0; i < r.outer; i++ {
		sb.WriteString("outer.")
	}
	if r.id != "" {
		sb.WriteString(r.id)
		sb.WriteByte('.')
	}
	sb.WriteString(r.prop)
	return sb.String()
}

func parseRef(path string, n *yaml.Node) (ref, error) {
	var r ref
	if n.Kind != yaml.ScalarNode || n.Value == "" {
		return r, fail(path, n, "want a property reference")
	}
	parts := strings.Split(n.Value, ".")
	for len(parts) > 1 && parts[0] == "outer" {
		r.outer++
		parts = parts[1:]
	}
	switch len(parts) {
	case 1:
		r.prop = parts[0]
	case 2:
		r.id, r.prop = parts[0], parts[1]
	default:
		return r, fail(path, n, "malformed reference %q", n.Value)
	}
	if r.prop == "" || (len(parts) == 2 && r.id == "") {
		return r, fail(path, n, "malformed reference %q", n.Value)
	}
	return r, nil
}

// slot is a resolved reference bound to one component instance.
type slot struct {
	ref  ref
	comp *itemtree.Component
	cell interface{ Get() value.Value }
}

// resolve binds r to c. Loading validated every reference, so a miss here is
// a programming error.
func (r ref) resolve(c *itemtree.Component) *slot {
	for i := 0; i < r.outer; i++ {
		c = c.Outer()
		if c == nil {
			panic(fmt.Sprintf("%s: no outer component", r))
		}
	}
	return &slot{ref: r, comp: c, cell: c.MustProperty(r.id, r.prop)}
}

func (s *slot) Get() value.Value { return s.cell.Get() }

// Set writes through the owning item so coercion and animations apply.
func (s *slot) Set(v value.Value) {
	var err error
	if s.ref.id == "" {
		err = s.comp.Set(s.ref.prop, v)
	} else {
		err = s.comp.Item(s.ref.id).Set(s.ref.prop, v)
	}
	if err != nil {
		s.comp.Runtime().Logger().Printf("set %s: %v", s.ref, err)
	}
}
