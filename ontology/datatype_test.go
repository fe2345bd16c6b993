package ontology

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/ontocache/errors"
	"github.com/c360/ontocache/vocabulary"
)

func TestDatatypeFor(t *testing.T) {
	tests := []struct {
		iri  string
		want Datatype
	}{
		{vocabulary.XsdString, DatatypeString},
		{"xsd:anyURI", DatatypeURI},
		{vocabulary.XsdUnsignedInt, DatatypeInteger},
		{vocabulary.XsdPositiveInteger, DatatypeInteger},
		{vocabulary.XsdDecimal, DatatypeFloat},
		{vocabulary.XsdUnsignedByte, DatatypeByte},
		{vocabulary.XsdUnsignedLong, DatatypeLong},
		{vocabulary.XsdUnsignedShort, DatatypeShort},
		{vocabulary.XsdDouble, DatatypeDouble},
	}
	for _, tt := range tests {
		t.Run(tt.iri, func(t *testing.T) {
			got, ok := DatatypeFor(tt.iri)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}

	_, ok := DatatypeFor("http://example.org/custom")
	assert.False(t, ok)
}

func TestDatatype_IRIsCoverEveryKind(t *testing.T) {
	for _, dt := range Datatypes() {
		assert.NotEmpty(t, dt.IRI(), dt.String())
		back, ok := DatatypeFor(dt.IRI())
		require.True(t, ok)
		assert.Equal(t, dt, back)
	}
}

func TestDatatype_Parse(t *testing.T) {
	tests := []struct {
		dt      Datatype
		in      string
		want    any
		wantErr bool
	}{
		{DatatypeString, "brown", "brown", false},
		{DatatypeURI, "http://example.org/x", "http://example.org/x", false},
		{DatatypeURI, "not an iri", nil, true},
		{DatatypeBoolean, "1", true, false},
		{DatatypeBoolean, "false", false, false},
		{DatatypeBoolean, "yes", nil, true},
		{DatatypeDate, "2024-03-01", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), false},
		{DatatypeDate, "01/03/2024", nil, true},
		{DatatypeDateTime, "2024-03-01T10:20:30", time.Date(2024, 3, 1, 10, 20, 30, 0, time.UTC), false},
		{DatatypeInteger, " 42 ", int64(42), false},
		{DatatypeInteger, "4.2", nil, true},
		{DatatypeByte, "255", int64(255), false},
		{DatatypeByte, "256", nil, true},
		{DatatypeShort, "-32768", int64(-32768), false},
		{DatatypeLong, "18446744073709551615", uint64(18446744073709551615), false},
		{DatatypeDouble, "2.5", 2.5, false},
		{DatatypeFloat, "0.5", float32(0.5), false},
		{DatatypeFloat, "abc", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.dt.String()+"/"+tt.in, func(t *testing.T) {
			got, err := tt.dt.Parse(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsInvalid(err))
				assert.False(t, tt.dt.Validate(tt.in))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, tt.dt.Validate(tt.in))
		})
	}
}

func TestDatatype_DateTimeWithZone(t *testing.T) {
	got, err := DatatypeDateTime.Parse("2024-03-01T10:20:30+02:00")
	require.NoError(t, err)
	assert.True(t, got.(time.Time).Equal(time.Date(2024, 3, 1, 8, 20, 30, 0, time.UTC)))
}

func TestRestriction(t *testing.T) {
	tests := []struct {
		name     string
		r        Restriction
		required bool
		list     bool
	}{
		{"exactly one", Restriction{Cardinality: CardinalityOf(1)}, true, false},
		{"at most one", Restriction{MaxCardinality: CardinalityOf(1)}, false, false},
		{"at least one", Restriction{MinCardinality: CardinalityOf(1)}, true, true},
		{"some values", Restriction{SomeValuesFrom: vocabulary.XsdString}, true, true},
		{"unbounded", Restriction{}, false, true},
		{"exactly three", Restriction{Cardinality: CardinalityOf(3)}, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.required, tt.r.IsRequired())
			assert.Equal(t, tt.list, tt.r.IsList())
		})
	}

	q := Restriction{OnClass: ex + "Animal"}
	assert.True(t, q.IsQualified())
	assert.False(t, (&Restriction{}).IsQualified())
}

func TestRestriction_Normalized(t *testing.T) {
	r := &Restriction{OnProperty: "rdfs:label", Cardinality: CardinalityOf(1)}
	n := r.Normalized()

	assert.Regexp(t, `^urn:uuid:[0-9a-f-]{36}$`, n.URI)
	assert.Equal(t, vocabulary.RdfsLabel, n.OnProperty)
	assert.Empty(t, r.URI, "original must be unchanged")

	*n.Cardinality = 5
	assert.Equal(t, 1, *r.Cardinality)
}
