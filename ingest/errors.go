package ingest

import "errors"

var (
	// ErrNoStrategy indicates no strategy is registered for a source type.
	ErrNoStrategy = errors.New("no ingestion strategy for source type")

	// ErrRepositoryRequired is returned when a pipeline is built without
	// a session repository.
	ErrRepositoryRequired = errors.New("session repository required")
)
