package cache

import (
	stderrors "errors"
	"fmt"

	"github.com/c360/ontocache/errors"
)

var (
	// ErrOntologyCache is carried by every schema store failure surfaced by
	// the cache. The store error stays in the chain.
	ErrOntologyCache = stderrors.New("ontology cache failure")

	// ErrTopPropertyMissing is returned at construction when the schema
	// store does not know owl:topDataProperty or owl:topObjectProperty.
	ErrTopPropertyMissing = stderrors.New("top property not found in schema store")

	// ErrInvalidClassURIs is returned by bulk operations given no identifiers
	// or an empty identifier.
	ErrInvalidClassURIs = stderrors.New("class identifiers must be a non-empty list of non-empty values")

	errMissingService  = stderrors.New("schema store is required")
	errInvalidProperty = stderrors.New("property must have an identifier and a domain")
	errInvalidClass    = stderrors.New("class must have an identifier")
	errInvalidRestrict = stderrors.New("restriction must have a domain")
)

func storeFailure(err error, method, action string) error {
	return errors.WrapTransient(fmt.Errorf("%w: %w", ErrOntologyCache, err), "ontology-cache", method, action)
}

func invalidInput(err error, method, action string) error {
	return errors.WrapInvalid(err, "ontology-cache", method, action)
}
