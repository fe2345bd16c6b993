package ontology

// Node is a tree node holding a value and its ordered children.
type Node[T any] struct {
	Value    T
	Children []*Node[T]
}

// Tree is an ordered forest.
type Tree[T any] struct {
	Roots []*Node[T]
}

// NewTree returns a tree with the given roots.
func NewTree[T any](roots ...*Node[T]) *Tree[T] {
	return &Tree[T]{Roots: roots}
}

// Walk visits every node depth-first in pre-order. Returning false from fn
// skips the node's children.
func (t *Tree[T]) Walk(fn func(n *Node[T], depth int) bool) {
	if t == nil {
		return
	}
	var walk func(nodes []*Node[T], depth int)
	walk = func(nodes []*Node[T], depth int) {
		for _, n := range nodes {
			if fn(n, depth) {
				walk(n.Children, depth+1)
			}
		}
	}
	walk(t.Roots, 0)
}

// Values returns every value in pre-order.
func (t *Tree[T]) Values() []T {
	var out []T
	t.Walk(func(n *Node[T], _ int) bool {
		out = append(out, n.Value)
		return true
	})
	return out
}

// Len returns the number of nodes.
func (t *Tree[T]) Len() int {
	n := 0
	t.Walk(func(*Node[T], int) bool {
		n++
		return true
	})
	return n
}

// IsEmpty reports whether the tree has no nodes.
func (t *Tree[T]) IsEmpty() bool {
	return t == nil || len(t.Roots) == 0
}

// Find returns the first node, in pre-order, whose value satisfies match.
func (t *Tree[T]) Find(match func(T) bool) (*Node[T], bool) {
	var found *Node[T]
	t.Walk(func(n *Node[T], _ int) bool {
		if found != nil {
			return false
		}
		if match(n.Value) {
			found = n
			return false
		}
		return true
	})
	return found, found != nil
}
