package ontology

import (
	"slices"

	"github.com/c360/ontocache/vocabulary"
)

// ClassEntry is the unit stored by the cache: a class plus its per-domain
// property trees. Entries are replaced, never modified, once published;
// writers Clone, change the copy and store it.
type ClassEntry struct {
	Class            *ClassModel
	DataProperties   *PropertyTree[*DatatypeProperty]
	ObjectProperties *PropertyTree[*ObjectProperty]
}

// NewClassEntry wraps class and builds its property trees from the class
// property maps.
func NewClassEntry(class *ClassModel) *ClassEntry {
	e := &ClassEntry{
		Class:            class,
		DataProperties:   NewPropertyTree[*DatatypeProperty](vocabulary.OwlTopDataProperty),
		ObjectProperties: NewPropertyTree[*ObjectProperty](vocabulary.OwlTopObjectProperty),
	}
	for _, uri := range sortedKeys(class.DatatypeProperties) {
		e.DataProperties.Add(class.DatatypeProperties[uri])
	}
	for _, uri := range sortedKeys(class.ObjectProperties) {
		e.ObjectProperties.Add(class.ObjectProperties[uri])
	}
	return e
}

// URI returns the class identifier.
func (e *ClassEntry) URI() string { return e.Class.URI }

// Clone returns an entry that can be modified without affecting e.
func (e *ClassEntry) Clone() *ClassEntry {
	return &ClassEntry{
		Class:            e.Class.Clone(),
		DataProperties:   e.DataProperties.Clone(),
		ObjectProperties: e.ObjectProperties.Clone(),
	}
}

// PutDatatypeProperty adds or replaces p in both the class map and the tree.
func (e *ClassEntry) PutDatatypeProperty(p *DatatypeProperty) {
	uri := vocabulary.FormatURI(p.URI)
	e.Class.DatatypeProperties[uri] = p
	e.DataProperties.Add(p)
}

// RemoveDatatypeProperty removes uri. Returns false when it was not present.
func (e *ClassEntry) RemoveDatatypeProperty(uri string) bool {
	uri = vocabulary.FormatURI(uri)
	_, inMap := e.Class.DatatypeProperties[uri]
	delete(e.Class.DatatypeProperties, uri)
	delete(e.Class.PropertyOrder, uri)
	return e.DataProperties.Remove(uri) || inMap
}

// PutObjectProperty adds or replaces p in both the class map and the tree.
func (e *ClassEntry) PutObjectProperty(p *ObjectProperty) {
	uri := vocabulary.FormatURI(p.URI)
	e.Class.ObjectProperties[uri] = p
	e.ObjectProperties.Add(p)
}

// RemoveObjectProperty removes uri. Returns false when it was not present.
func (e *ClassEntry) RemoveObjectProperty(uri string) bool {
	uri = vocabulary.FormatURI(uri)
	_, inMap := e.Class.ObjectProperties[uri]
	delete(e.Class.ObjectProperties, uri)
	delete(e.Class.PropertyOrder, uri)
	return e.ObjectProperties.Remove(uri) || inMap
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
