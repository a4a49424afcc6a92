package vector

import "errors"

var (
	// ErrCollectionNotFound indicates an operation on an unknown collection.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrDimensionMismatch indicates a vector whose dimension disagrees
	// with the collection's.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)
