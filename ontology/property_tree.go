package ontology

import "github.com/c360/ontocache/vocabulary"

// PropertyTree is the per-domain property hierarchy stored in a ClassEntry.
// It keeps properties in insertion order and derives parent links from each
// property's declared Parent when a view is built, so replacing a property
// with a new parent moves it without further bookkeeping.
type PropertyTree[P Property] struct {
	top   string
	nodes map[string]P
	order []string
}

// NewPropertyTree returns an empty tree rooted below top.
func NewPropertyTree[P Property](top string) *PropertyTree[P] {
	return &PropertyTree[P]{
		top:   vocabulary.FormatURI(top),
		nodes: make(map[string]P),
	}
}

// Top returns the IRI of the hierarchy root.
func (t *PropertyTree[P]) Top() string { return t.top }

// Add inserts p, replacing any property with the same identifier in place.
func (t *PropertyTree[P]) Add(p P) {
	uri := vocabulary.FormatURI(p.Model().URI)
	if _, ok := t.nodes[uri]; !ok {
		t.order = append(t.order, uri)
	}
	t.nodes[uri] = p
}

// Remove deletes the property uri. Its children are promoted to roots of
// later views. Returns false when uri was not present.
func (t *PropertyTree[P]) Remove(uri string) bool {
	uri = vocabulary.FormatURI(uri)
	if _, ok := t.nodes[uri]; !ok {
		return false
	}
	delete(t.nodes, uri)
	for i, u := range t.order {
		if u == uri {
			t.order = append(t.order[:i:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

// Get returns the property uri.
func (t *PropertyTree[P]) Get(uri string) (P, bool) {
	p, ok := t.nodes[vocabulary.FormatURI(uri)]
	return p, ok
}

// Contains reports whether uri is in the tree.
func (t *PropertyTree[P]) Contains(uri string) bool {
	_, ok := t.nodes[vocabulary.FormatURI(uri)]
	return ok
}

// Len returns the number of properties.
func (t *PropertyTree[P]) Len() int { return len(t.nodes) }

// Properties returns the properties in insertion order.
func (t *PropertyTree[P]) Properties() []P {
	out := make([]P, 0, len(t.order))
	for _, uri := range t.order {
		out = append(out, t.nodes[uri])
	}
	return out
}

// Clone returns a tree that can be modified without affecting t. The
// properties themselves are shared.
func (t *PropertyTree[P]) Clone() *PropertyTree[P] {
	out := &PropertyTree[P]{
		top:   t.top,
		nodes: make(map[string]P, len(t.nodes)),
		order: append([]string(nil), t.order...),
	}
	for k, v := range t.nodes {
		out.nodes[k] = v
	}
	return out
}

// View builds a detached tree of copies translated to lang, or left with
// their stored default when lang is empty. A property is a root
// when its parent is the top property or is not part of this tree.
func (t *PropertyTree[P]) View(lang string) *Tree[P] {
	nodes := make(map[string]*Node[P], len(t.nodes))
	for _, uri := range t.order {
		var value P
		if lang == "" {
			value = t.nodes[uri].clone().(P)
		} else {
			value = t.nodes[uri].translated(lang).(P)
		}
		nodes[uri] = &Node[P]{Value: value}
	}

	tree := NewTree[P]()
	attached := make(map[string]bool, len(nodes))
	for _, uri := range t.order {
		parent := vocabulary.FormatURI(t.nodes[uri].Model().Parent)
		if parent == "" || parent == t.top || parent == uri || nodes[parent] == nil {
			tree.Roots = append(tree.Roots, nodes[uri])
			attached[uri] = true
		}
	}
	for _, uri := range t.order {
		if attached[uri] {
			continue
		}
		parent := vocabulary.FormatURI(t.nodes[uri].Model().Parent)
		nodes[parent].Children = append(nodes[parent].Children, nodes[uri])
	}

	// Nodes on a parent cycle are unreachable from any root; surface them
	// as roots with their cycle edges cut.
	reached := make(map[*Node[P]]bool, len(nodes))
	tree.Walk(func(n *Node[P], _ int) bool {
		reached[n] = true
		return true
	})
	for _, uri := range t.order {
		n := nodes[uri]
		if reached[n] {
			continue
		}
		n.Children = nil
		tree.Roots = append(tree.Roots, n)
		reached[n] = true
	}
	return tree
}
