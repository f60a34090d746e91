package wikidata

import (
	"fmt"
	"strconv"
	"strings"
)

// EntityPrefix is the URI prefix of Wikidata entities in SPARQL results.
const EntityPrefix = "http://www.wikidata.org/entity/"

// EntityID returns the item id ("Q123") of an entity URI.
func EntityID(uri string) string {
	if i := strings.LastIndexByte(uri, '/'); i >= 0 {
		return uri[i+1:]
	}
	return uri
}

// NumericID returns the number of an item id or entity URI: "Q123" -> 123.
func NumericID(id string) (int64, error) {
	s := strings.TrimPrefix(EntityID(id), "Q")
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse item id %q: %w", id, err)
	}
	return n, nil
}
