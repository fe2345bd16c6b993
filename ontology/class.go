package ontology

import (
	"slices"

	"github.com/c360/ontocache/vocabulary"
)

// ClassModel is one class of the schema. Parent and Children are class
// identifiers resolved through the cache rather than pointers, so a cached
// class never holds another cached class directly.
type ClassModel struct {
	URI     string
	Label   Label
	Comment Label

	// Parent is empty for roots.
	Parent   string
	Children []string

	DatatypeProperties map[string]*DatatypeProperty
	ObjectProperties   map[string]*ObjectProperty
	Restrictions       map[string]*Restriction

	// PropertyOrder holds the display position per property. The schema
	// store does not carry it, so it is set by callers and survives in the
	// cache until the class is reloaded. Deleting a property drops its
	// position.
	PropertyOrder map[string]int

	// Abstract marks classes configured as not instantiable.
	Abstract bool
}

// NewClassModel returns an empty class with its maps allocated.
func NewClassModel(uri string) *ClassModel {
	return &ClassModel{
		URI:                vocabulary.FormatURI(uri),
		DatatypeProperties: make(map[string]*DatatypeProperty),
		ObjectProperties:   make(map[string]*ObjectProperty),
		Restrictions:       make(map[string]*Restriction),
		PropertyOrder:      make(map[string]int),
	}
}

// IsRoot reports whether the class has no parent.
func (c *ClassModel) IsRoot() bool { return c.Parent == "" }

// HasChild reports whether uri is listed as a child.
func (c *ClassModel) HasChild(uri string) bool {
	return slices.Contains(c.Children, vocabulary.FormatURI(uri))
}

// AddChild appends uri unless it is already listed.
func (c *ClassModel) AddChild(uri string) {
	uri = vocabulary.FormatURI(uri)
	if uri == "" || c.HasChild(uri) {
		return
	}
	c.Children = append(c.Children, uri)
}

// RemoveChild drops uri from the children. Returns false when absent.
func (c *ClassModel) RemoveChild(uri string) bool {
	uri = vocabulary.FormatURI(uri)
	i := slices.Index(c.Children, uri)
	if i < 0 {
		return false
	}
	c.Children = slices.Delete(slices.Clone(c.Children), i, i+1)
	return true
}

// RestrictionFor returns the restriction on property uri, if any.
func (c *ClassModel) RestrictionFor(propertyURI string) (*Restriction, bool) {
	propertyURI = vocabulary.FormatURI(propertyURI)
	var found *Restriction
	for _, r := range c.Restrictions {
		if r.OnProperty != propertyURI {
			continue
		}
		// several restrictions may target one property; keep a stable pick
		if found == nil || r.URI < found.URI {
			found = r
		}
	}
	return found, found != nil
}

// Clone returns a copy whose slices and maps can be modified without
// affecting c. Property and restriction values are shared.
func (c *ClassModel) Clone() *ClassModel {
	out := *c
	out.Label = c.Label.Clone()
	out.Comment = c.Comment.Clone()
	out.Children = slices.Clone(c.Children)
	out.DatatypeProperties = cloneMap(c.DatatypeProperties)
	out.ObjectProperties = cloneMap(c.ObjectProperties)
	out.Restrictions = cloneMap(c.Restrictions)
	out.PropertyOrder = cloneMap(c.PropertyOrder)
	return &out
}

// In returns a detached copy with every label of the class and its
// properties defaulting to lang. c is not modified.
func (c *ClassModel) In(lang string) *ClassModel {
	out := c.Clone()
	out.Label = c.Label.In(lang)
	out.Comment = c.Comment.In(lang)
	for k, p := range out.DatatypeProperties {
		out.DatatypeProperties[k] = p.In(lang)
	}
	for k, p := range out.ObjectProperties {
		out.ObjectProperties[k] = p.In(lang)
	}
	return out
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
