package badger

import "fmt"

// Key prefixes for different data types
const (
	collectionPrefix  = "veccol"
	pointPrefix       = "vecpnt"
	pointSourcePrefix = "vecsrc"
)

// makeCollectionKey generates a key for collection metadata.
func makeCollectionKey(name string) []byte {
	return []byte(fmt.Sprintf("%s:%s", collectionPrefix, name))
}

// makePointKey generates a key for a point by ID.
func makePointKey(collection, pointId string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", pointPrefix, collection, pointId))
}

// makePartialPointKey generates a prefix for scanning a collection's points.
func makePartialPointKey(collection string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", pointPrefix, collection))
}

// makeSourceKey generates a composite key for the source index.
// Format: prefix:collection:sourceId:pointId
func makeSourceKey(collection, sourceId, pointId string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s:%s", pointSourcePrefix, collection, sourceId, pointId))
}

// makePartialSourceKey generates a prefix for one source's index entries.
func makePartialSourceKey(collection, sourceId string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s:", pointSourcePrefix, collection, sourceId))
}
