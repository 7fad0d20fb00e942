package badger

import (
	"fmt"
)

// Key prefixes for stored documents and the collection index
const (
	documentPrefix    = "docrec"
	documentColPrefix = "doccol"
)

// makeDocumentKey generates a key for a document by id.
func makeDocumentKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", documentPrefix, id))
}

// makeCollectionKey generates a composite key for the collection index.
// Format: prefix:collection:id
func makeCollectionKey(collection, id string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", documentColPrefix, collection, id))
}

// makePartialCollectionKey generates the prefix covering one collection's
// index entries.
func makePartialCollectionKey(collection string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", documentColPrefix, collection))
}
