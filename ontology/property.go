package ontology

// PropertyKind distinguishes datatype properties from object properties.
type PropertyKind int

const (
	// KindDatatype marks properties whose values are literals.
	KindDatatype PropertyKind = iota + 1
	// KindObject marks properties whose values are other resources.
	KindObject
)

func (k PropertyKind) String() string {
	switch k {
	case KindDatatype:
		return "datatype"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// PropertyModel holds the fields shared by both property kinds.
type PropertyModel struct {
	URI     string
	Label   Label
	Comment Label

	// Domain is the class the property is declared on.
	Domain string

	// Parent is the declared super property. Empty means the property
	// hangs directly below the top property of its kind.
	Parent string
}

// Property is implemented by *DatatypeProperty and *ObjectProperty only.
// Values are treated as immutable once published in a cache entry: updates
// install a new value rather than modifying the old one.
type Property interface {
	Model() *PropertyModel
	Kind() PropertyKind
	translated(lang string) Property
	clone() Property
}

// DatatypeProperty is a property whose range is a literal datatype.
type DatatypeProperty struct {
	PropertyModel

	// Range is the xsd datatype IRI.
	Range string
}

// Model returns the shared property fields.
func (p *DatatypeProperty) Model() *PropertyModel { return &p.PropertyModel }

// Kind returns KindDatatype.
func (p *DatatypeProperty) Kind() PropertyKind { return KindDatatype }

// Datatype maps Range to a built-in datatype. Unknown or missing ranges
// are treated as strings.
func (p *DatatypeProperty) Datatype() Datatype {
	if dt, ok := DatatypeFor(p.Range); ok {
		return dt
	}
	return DatatypeString
}

// Clone returns a copy with independent labels.
func (p *DatatypeProperty) Clone() *DatatypeProperty {
	out := *p
	out.Label = p.Label.Clone()
	out.Comment = p.Comment.Clone()
	return &out
}

// In returns a copy whose label and comment default to lang.
func (p *DatatypeProperty) In(lang string) *DatatypeProperty {
	out := *p
	out.Label = p.Label.In(lang)
	out.Comment = p.Comment.In(lang)
	return &out
}

func (p *DatatypeProperty) translated(lang string) Property { return p.In(lang) }
func (p *DatatypeProperty) clone() Property { return p.Clone() }

// ObjectProperty is a property whose range is a class.
type ObjectProperty struct {
	PropertyModel

	// Range is the range class IRI.
	Range string

	// RangeLabel is filled when the range class was part of the loaded
	// forest. Otherwise only Range is known.
	RangeLabel Label
}

// Model returns the shared property fields.
func (p *ObjectProperty) Model() *PropertyModel { return &p.PropertyModel }

// Kind returns KindObject.
func (p *ObjectProperty) Kind() PropertyKind { return KindObject }

// Clone returns a copy with independent labels.
func (p *ObjectProperty) Clone() *ObjectProperty {
	out := *p
	out.Label = p.Label.Clone()
	out.Comment = p.Comment.Clone()
	out.RangeLabel = p.RangeLabel.Clone()
	return &out
}

// In returns a copy whose labels default to lang.
func (p *ObjectProperty) In(lang string) *ObjectProperty {
	out := *p
	out.Label = p.Label.In(lang)
	out.Comment = p.Comment.In(lang)
	out.RangeLabel = p.RangeLabel.In(lang)
	return &out
}

func (p *ObjectProperty) translated(lang string) Property { return p.In(lang) }
func (p *ObjectProperty) clone() Property { return p.Clone() }
