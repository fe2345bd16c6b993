package vocabulary

// Namespace IRIs of the W3C vocabularies the ontology store is described with.
//
// References:
// - RDF 1.1: https://www.w3.org/TR/rdf11-concepts/
// - RDFS: https://www.w3.org/TR/rdf-schema/
// - OWL 2: https://www.w3.org/TR/owl2-overview/
// - XSD datatypes: https://www.w3.org/TR/xmlschema11-2/
// - SKOS: https://www.w3.org/TR/skos-reference/
const (
	RDFNamespace  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFSNamespace = "http://www.w3.org/2000/01/rdf-schema#"
	OWLNamespace  = "http://www.w3.org/2002/07/owl#"
	XSDNamespace  = "http://www.w3.org/2001/XMLSchema#"
	SKOSNamespace = "http://www.w3.org/2004/02/skos/core#"
	DCNamespace   = "http://purl.org/dc/terms/"
)

// RDF and RDF Schema IRIs
const (
	// RdfType relates a resource to its class.
	RdfType = RDFNamespace + "type"

	// RdfLangString is the datatype of language-tagged literals.
	RdfLangString = RDFNamespace + "langString"

	// RdfsLabel provides a human-readable name for a resource.
	RdfsLabel = RDFSNamespace + "label"

	// RdfsComment provides a human-readable description
	RdfsComment = RDFSNamespace + "comment"

	// RdfsSubClassOf states that every instance of the subject class is an instance of the object class.
	RdfsSubClassOf = RDFSNamespace + "subClassOf"

	// RdfsSubPropertyOf relates a property to its parent property.
	RdfsSubPropertyOf = RDFSNamespace + "subPropertyOf"

	// RdfsDomain declares the class a property is usable on.
	RdfsDomain = RDFSNamespace + "domain"

	// RdfsRange declares the class or datatype of a property's values.
	RdfsRange = RDFSNamespace + "range"

	RdfsLiteral = RDFSNamespace + "Literal"
)

// OWL IRIs
const (
	OwlClass            = OWLNamespace + "Class"
	OwlThing            = OWLNamespace + "Thing"
	OwlDatatypeProperty = OWLNamespace + "DatatypeProperty"
	OwlObjectProperty   = OWLNamespace + "ObjectProperty"

	// OwlTopDataProperty is the root of the datatype property hierarchy.
	OwlTopDataProperty = OWLNamespace + "topDataProperty"

	// OwlTopObjectProperty is the root of the object property hierarchy.
	OwlTopObjectProperty = OWLNamespace + "topObjectProperty"

	// OwlSameAs indicates that two URI references refer to the same entity.
	OwlSameAs = OWLNamespace + "sameAs"
)

// OWL restriction vocabulary.
// A restriction is an anonymous class, rdfs:subClassOf'd by the class it constrains.
const (
	OwlRestriction             = OWLNamespace + "Restriction"
	OwlOnProperty              = OWLNamespace + "onProperty"
	OwlCardinality             = OWLNamespace + "cardinality"
	OwlMinCardinality          = OWLNamespace + "minCardinality"
	OwlMaxCardinality          = OWLNamespace + "maxCardinality"
	OwlQualifiedCardinality    = OWLNamespace + "qualifiedCardinality"
	OwlMinQualifiedCardinality = OWLNamespace + "minQualifiedCardinality"
	OwlMaxQualifiedCardinality = OWLNamespace + "maxQualifiedCardinality"
	OwlOnDataRange             = OWLNamespace + "onDataRange"
	OwlOnClass                 = OWLNamespace + "onClass"
	OwlSomeValuesFrom          = OWLNamespace + "someValuesFrom"
)

// XML Schema datatype IRIs
const (
	XsdString             = XSDNamespace + "string"
	XsdAnyURI             = XSDNamespace + "anyURI"
	XsdBoolean            = XSDNamespace + "boolean"
	XsdDate               = XSDNamespace + "date"
	XsdDateTime           = XSDNamespace + "dateTime"
	XsdInteger            = XSDNamespace + "integer"
	XsdInt                = XSDNamespace + "int"
	XsdNonNegativeInteger = XSDNamespace + "nonNegativeInteger"
	XsdNonPositiveInteger = XSDNamespace + "nonPositiveInteger"
	XsdPositiveInteger    = XSDNamespace + "positiveInteger"
	XsdNegativeInteger    = XSDNamespace + "negativeInteger"
	XsdUnsignedInt        = XSDNamespace + "unsignedInt"
	XsdDecimal            = XSDNamespace + "decimal"
	XsdByte               = XSDNamespace + "byte"
	XsdUnsignedByte       = XSDNamespace + "unsignedByte"
	XsdLong               = XSDNamespace + "long"
	XsdUnsignedLong       = XSDNamespace + "unsignedLong"
	XsdShort              = XSDNamespace + "short"
	XsdUnsignedShort      = XSDNamespace + "unsignedShort"
	XsdDouble             = XSDNamespace + "double"
	XsdFloat              = XSDNamespace + "float"
)

// SKOS Standard IRIs
const (
	// SkosPrefLabel provides the preferred lexical label for a resource.
	SkosPrefLabel = SKOSNamespace + "prefLabel"

	// SkosAltLabel provides an alternative lexical label for a resource.
	SkosAltLabel = SKOSNamespace + "altLabel"
)
