package cache

import (
	"context"

	"github.com/c360/ontocache/ontology"
	"github.com/c360/ontocache/vocabulary"
)

// lookupFunc resolves class identifiers to entries, loading missing ones.
// Unknown identifiers are absent from the result.
type lookupFunc func(ctx context.Context, uris []string) (map[string]*ontology.ClassEntry, error)

// childCheck reports whether child still belongs below parent. It is
// consulted only for children whose recorded parent is another class.
type childCheck func(ctx context.Context, parent string, child *ontology.ClassEntry) (bool, error)

// subclassTree builds a translated view of the subtree below root. Each
// level costs at most one lookup for the children that are not at hand.
// A class reachable through several parents appears under the first one.
// A nil check keeps every child.
func subclassTree(ctx context.Context, lookup lookupFunc, check childCheck, root *ontology.ClassEntry, lang string, excludeRoot bool) (*ontology.Tree[*ontology.ClassModel], error) {
	rootNode := &ontology.Node[*ontology.ClassModel]{Value: root.Class.In(lang)}
	visited := map[string]bool{root.URI(): true}

	level := []*ontology.Node[*ontology.ClassModel]{rootNode}
	for len(level) > 0 {
		var want []string
		for _, n := range level {
			for _, child := range n.Value.Children {
				if !visited[child] {
					want = append(want, child)
				}
			}
		}
		if len(want) == 0 {
			break
		}
		found, err := lookup(ctx, dedupe(want))
		if err != nil {
			return nil, err
		}

		var next []*ontology.Node[*ontology.ClassModel]
		for _, n := range level {
			for _, child := range n.Value.Children {
				e, ok := found[child]
				if visited[child] || !ok {
					continue
				}
				if check != nil && e.Class.Parent != n.Value.URI {
					keep, err := check(ctx, n.Value.URI, e)
					if err != nil {
						return nil, err
					}
					if !keep {
						continue
					}
				}
				visited[child] = true
				node := &ontology.Node[*ontology.ClassModel]{Value: e.Class.In(lang)}
				n.Children = append(n.Children, node)
				next = append(next, node)
			}
		}
		level = next
	}

	if excludeRoot {
		return ontology.NewTree(rootNode.Children...), nil
	}
	return ontology.NewTree(rootNode), nil
}

// normalizeURIs formats, validates and deduplicates class identifiers,
// keeping their order.
func normalizeURIs(uris []string, method string) ([]string, error) {
	if len(uris) == 0 {
		return nil, invalidInput(ErrInvalidClassURIs, method, "validate identifiers")
	}
	out := make([]string, 0, len(uris))
	for _, uri := range uris {
		norm := vocabulary.FormatURI(uri)
		if norm == "" {
			return nil, invalidInput(ErrInvalidClassURIs, method, "validate identifiers")
		}
		out = append(out, norm)
	}
	return dedupe(out), nil
}

func dedupe(list []string) []string {
	seen := make(map[string]bool, len(list))
	out := list[:0:0]
	for _, s := range list {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func index(entries []*ontology.ClassEntry) map[string]*ontology.ClassEntry {
	out := make(map[string]*ontology.ClassEntry, len(entries))
	for _, e := range entries {
		out[e.URI()] = e
	}
	return out
}

func normalizeProperty(m *ontology.PropertyModel, method string) error {
	if vocabulary.FormatURI(m.URI) == "" || vocabulary.FormatURI(m.Domain) == "" {
		return invalidInput(errInvalidProperty, method, "validate property")
	}
	m.URI = vocabulary.FormatURI(m.URI)
	m.Domain = vocabulary.FormatURI(m.Domain)
	m.Parent = vocabulary.FormatURI(m.Parent)
	return nil
}
