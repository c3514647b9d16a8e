package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation signals a missing or invalid request parameter.
	ErrValidation = errors.New("validation failed")
	// ErrUnknownCollection signals a collection name outside the registry.
	ErrUnknownCollection = fmt.Errorf("%w: unknown collection", ErrValidation)
	// ErrForbidden signals that the caller's role may not search a collection.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthenticated signals a missing or invalid caller identity.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// CollectionError ties a gate failure to the collection it concerns.
type CollectionError struct {
	Collection string
	Err        error
}

func (e *CollectionError) Error() string {
	return fmt.Sprintf("%s: %q", e.Err.Error(), e.Collection)
}

func (e *CollectionError) Unwrap() error { return e.Err }

// NewUnknownCollection returns an ErrUnknownCollection for name.
func NewUnknownCollection(name string) error {
	return &CollectionError{Collection: name, Err: ErrUnknownCollection}
}

// NewForbidden returns an ErrForbidden for name.
func NewForbidden(name string) error {
	return &CollectionError{Collection: name, Err: ErrForbidden}
}
