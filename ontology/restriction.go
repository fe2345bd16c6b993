package ontology

import (
	"github.com/google/uuid"

	"github.com/c360/ontocache/vocabulary"
)

// Restriction is a cardinality or value constraint on a property, attached
// to one class. The same property may be restricted differently on
// different classes.
type Restriction struct {
	URI        string
	Domain     string
	OnProperty string

	Cardinality    *int
	MinCardinality *int
	MaxCardinality *int

	// OnDataRange or OnClass make the cardinalities qualified.
	OnDataRange string
	OnClass     string

	SomeValuesFrom string
}

// CardinalityOf returns a pointer to n for the cardinality fields.
func CardinalityOf(n int) *int { return &n }

// NewSkolemIRI returns a fresh identifier for nodes that have none.
func NewSkolemIRI() string {
	return "urn:uuid:" + uuid.NewString()
}

// IsQualified reports whether the restriction constrains the value range.
func (r *Restriction) IsQualified() bool {
	return r.OnDataRange != "" || r.OnClass != ""
}

// IsRequired reports whether at least one value is mandatory.
func (r *Restriction) IsRequired() bool {
	return atLeast(r.Cardinality, 1) || atLeast(r.MinCardinality, 1) || r.SomeValuesFrom != ""
}

// IsList reports whether more than one value is allowed.
func (r *Restriction) IsList() bool {
	return !atMost(r.Cardinality, 1) && !atMost(r.MaxCardinality, 1)
}

// Clone returns a deep copy.
func (r *Restriction) Clone() *Restriction {
	out := *r
	out.Cardinality = cloneInt(r.Cardinality)
	out.MinCardinality = cloneInt(r.MinCardinality)
	out.MaxCardinality = cloneInt(r.MaxCardinality)
	return &out
}

// Normalized returns a copy with formatted IRIs and, when the restriction
// has no identifier, a skolem one.
func (r *Restriction) Normalized() *Restriction {
	out := r.Clone()
	out.URI = vocabulary.FormatURI(out.URI)
	if out.URI == "" {
		out.URI = NewSkolemIRI()
	}
	out.Domain = vocabulary.FormatURI(out.Domain)
	out.OnProperty = vocabulary.FormatURI(out.OnProperty)
	out.OnDataRange = vocabulary.FormatURI(out.OnDataRange)
	out.OnClass = vocabulary.FormatURI(out.OnClass)
	out.SomeValuesFrom = vocabulary.FormatURI(out.SomeValuesFrom)
	return out
}

func atLeast(v *int, n int) bool { return v != nil && *v >= n }

func atMost(v *int, n int) bool { return v != nil && *v <= n }

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	n := *v
	return &n
}
