package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/c360/ontocache/ontology"
	"github.com/c360/ontocache/vocabulary"
)

// writeTree prints one class per line, indented by depth, with its label
// and property counts.
func writeTree(w io.Writer, tree *ontology.Tree[*ontology.ClassModel]) error {
	var err error
	tree.Walk(func(n *ontology.Node[*ontology.ClassModel], depth int) bool {
		if err != nil {
			return false
		}
		c := n.Value
		_, err = fmt.Fprintf(w, "%s%s %q (%d data, %d object)\n",
			strings.Repeat("  ", depth),
			vocabulary.Compact(c.URI),
			c.Label.Value,
			len(c.DatatypeProperties),
			len(c.ObjectProperties))
		return true
	})
	return err
}
