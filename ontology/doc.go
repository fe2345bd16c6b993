// Package ontology holds the in-memory model of an OWL schema as served by
// the ontology cache: classes with multi-language labels, datatype and
// object properties, cardinality restrictions, and the per-class entries
// the cache stores.
//
// Classes refer to each other by identifier. Hierarchies handed to callers
// are detached Tree values built from those identifiers, with labels
// switched to the requested language on copies; the cached values keep
// every translation and are never modified in place.
package ontology
