package vocabulary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatURI(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"blank", "   ", ""},
		{"absolute unchanged", "http://example.org/Dog", "http://example.org/Dog"},
		{"trims whitespace", "  http://example.org/Dog\n", "http://example.org/Dog"},
		{"strips angle brackets", "<http://example.org/Dog>", "http://example.org/Dog"},
		{"expands owl", "owl:Thing", OwlThing},
		{"expands xsd", "xsd:string", XsdString},
		{"unknown prefix unchanged", "zoo:Dog", "zoo:Dog"},
		{"urn unchanged", "urn:uuid:1234", "urn:uuid:1234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatURI(tt.in))
		})
	}
}

func TestEqualAndCompact(t *testing.T) {
	assert.True(t, Equal("owl:Thing", "<http://www.w3.org/2002/07/owl#Thing>"))
	assert.False(t, Equal("owl:Thing", "owl:Class"))

	assert.Equal(t, "rdfs:subClassOf", Compact(RdfsSubClassOf))
	assert.Equal(t, "http://example.org/x", Compact("http://example.org/x"))
}

func TestPrefixRegistry(t *testing.T) {
	r := NewPrefixRegistry()
	require.NoError(t, r.Register("vocab", "http://www.opensilex.org/vocabulary/oeso#"))

	assert.Equal(t, "http://www.opensilex.org/vocabulary/oeso#Germplasm", r.Expand("vocab:Germplasm"))
	assert.Equal(t, "vocab:Germplasm", r.Compact("http://www.opensilex.org/vocabulary/oeso#Germplasm"))
	assert.Contains(t, r.Prefixes(), "vocab")

	assert.Error(t, r.Register("", "http://x/"))
	assert.Error(t, r.Register("bad", "not an iri"))
	assert.Error(t, r.Register("a:b", "http://x/"))
}

func TestIsAbsoluteAndLocalName(t *testing.T) {
	assert.True(t, IsAbsolute("http://example.org/a"))
	assert.True(t, IsAbsolute("urn:uuid:abc"))
	assert.False(t, IsAbsolute("Dog"))
	assert.False(t, IsAbsolute("1http://x"))

	assert.Equal(t, "Thing", LocalName(OwlThing))
	assert.Equal(t, "Dog", LocalName("http://example.org/zoo/Dog"))
	assert.Equal(t, "plain", LocalName("plain"))
}
