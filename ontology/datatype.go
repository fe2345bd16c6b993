package ontology

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/c360/ontocache/errors"
	"github.com/c360/ontocache/vocabulary"
)

// Datatype is the closed set of literal kinds a datatype property can hold.
type Datatype int

const (
	DatatypeString Datatype = iota
	DatatypeURI
	DatatypeBoolean
	DatatypeDate
	DatatypeDateTime
	DatatypeInteger
	DatatypeByte
	DatatypeLong
	DatatypeShort
	DatatypeDouble
	DatatypeFloat
)

var datatypeNames = [...]string{
	DatatypeString:   "string",
	DatatypeURI:      "uri",
	DatatypeBoolean:  "boolean",
	DatatypeDate:     "date",
	DatatypeDateTime: "datetime",
	DatatypeInteger:  "integer",
	DatatypeByte:     "byte",
	DatatypeLong:     "long",
	DatatypeShort:    "short",
	DatatypeDouble:   "double",
	DatatypeFloat:    "float",
}

var datatypeIRIs = map[Datatype][]string{
	DatatypeString:   {vocabulary.XsdString},
	DatatypeURI:      {vocabulary.XsdAnyURI},
	DatatypeBoolean:  {vocabulary.XsdBoolean},
	DatatypeDate:     {vocabulary.XsdDate},
	DatatypeDateTime: {vocabulary.XsdDateTime},
	DatatypeInteger: {
		vocabulary.XsdInteger,
		vocabulary.XsdInt,
		vocabulary.XsdNonNegativeInteger,
		vocabulary.XsdNonPositiveInteger,
		vocabulary.XsdPositiveInteger,
		vocabulary.XsdNegativeInteger,
		vocabulary.XsdUnsignedInt,
	},
	DatatypeByte:   {vocabulary.XsdByte, vocabulary.XsdUnsignedByte},
	DatatypeLong:   {vocabulary.XsdLong, vocabulary.XsdUnsignedLong},
	DatatypeShort:  {vocabulary.XsdShort, vocabulary.XsdUnsignedShort},
	DatatypeDouble: {vocabulary.XsdDouble},
	DatatypeFloat:  {vocabulary.XsdFloat, vocabulary.XsdDecimal},
}

var datatypeByIRI = func() map[string]Datatype {
	m := make(map[string]Datatype)
	for dt, iris := range datatypeIRIs {
		for _, iri := range iris {
			m[iri] = dt
		}
	}
	return m
}()

// Datatypes returns every built-in datatype.
func Datatypes() []Datatype {
	out := make([]Datatype, len(datatypeNames))
	for i := range datatypeNames {
		out[i] = Datatype(i)
	}
	return out
}

// DatatypeFor returns the datatype represented by an xsd IRI. Prefixed
// forms such as "xsd:int" are accepted.
func DatatypeFor(iri string) (Datatype, bool) {
	dt, ok := datatypeByIRI[vocabulary.FormatURI(iri)]
	return dt, ok
}

func (d Datatype) String() string {
	if d < 0 || int(d) >= len(datatypeNames) {
		return fmt.Sprintf("Datatype(%d)", int(d))
	}
	return datatypeNames[d]
}

// IRIs returns the xsd IRIs this datatype represents, primary first.
func (d Datatype) IRIs() []string {
	return append([]string(nil), datatypeIRIs[d]...)
}

// IRI returns the primary xsd IRI.
func (d Datatype) IRI() string {
	if iris := datatypeIRIs[d]; len(iris) > 0 {
		return iris[0]
	}
	return ""
}

// Validate reports whether s is a valid lexical form.
func (d Datatype) Validate(s string) bool {
	_, err := d.Parse(s)
	return err == nil
}

// Parse converts a lexical form to its Go value: string, bool, time.Time,
// int64 (uint64 for unsigned longs above the int64 range), float64 or
// float32.
func (d Datatype) Parse(s string) (any, error) {
	v, err := d.parse(strings.TrimSpace(s))
	if err != nil {
		return nil, errors.WrapInvalid(errors.ErrInvalidData, "ontology", "Datatype.Parse",
			fmt.Sprintf("%q is not a valid %s: %v", s, d, err))
	}
	return v, nil
}

func (d Datatype) parse(s string) (any, error) {
	switch d {
	case DatatypeString:
		return s, nil
	case DatatypeURI:
		if !vocabulary.IsAbsolute(s) {
			return nil, fmt.Errorf("not an absolute IRI")
		}
		return s, nil
	case DatatypeBoolean:
		switch s {
		case "true", "1":
			return true, nil
		case "false", "0":
			return false, nil
		}
		return nil, fmt.Errorf("expected true, false, 1 or 0")
	case DatatypeDate:
		return time.Parse(time.DateOnly, s)
	case DatatypeDateTime:
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t, nil
		}
		return time.Parse("2006-01-02T15:04:05", s)
	case DatatypeInteger:
		return strconv.ParseInt(s, 10, 64)
	case DatatypeByte:
		return parseRange(s, math.MinInt8, math.MaxUint8)
	case DatatypeShort:
		return parseRange(s, math.MinInt16, math.MaxUint16)
	case DatatypeLong:
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, nil
		}
		return strconv.ParseUint(s, 10, 64)
	case DatatypeDouble:
		return strconv.ParseFloat(s, 64)
	case DatatypeFloat:
		f, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return nil, err
		}
		return float32(f), nil
	default:
		return nil, fmt.Errorf("unknown datatype")
	}
}

// parseRange accepts both the signed and unsigned xsd variant of a kind.
func parseRange(s string, lo, hi int64) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if n < lo || n > hi {
		return 0, fmt.Errorf("out of range [%d, %d]", lo, hi)
	}
	return n, nil
}
