// Package cache implements the search-result cache: stable keys for
// normalized query parameters, category TTL policies, and the manager that
// serves hits, populates misses, and reclaims expired rows.
package cache

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/fernwind/tripstore/pkg/types"
)

// KeyLength is the hex length of a cache key: a full 64-bit digest, short
// enough to index cheaply and wide enough that collisions are negligible
// for tens of thousands of distinct query shapes.
const KeyLength = 16

// Normalize returns the canonical form of search parameters. Two requests
// that differ only in destination casing/whitespace, extras whitespace, or
// map iteration order normalize to the same value.
func Normalize(p types.SearchParams) types.SearchParams {
	n := types.SearchParams{
		Category:    strings.ToLower(strings.TrimSpace(p.Category)),
		Destination: collapse(strings.ToLower(p.Destination)),
		StartDate:   strings.TrimSpace(p.StartDate),
		EndDate:     strings.TrimSpace(p.EndDate),
		Adults:      p.Adults,
		Children:    p.Children,
		Rooms:       p.Rooms,
	}
	for k, v := range p.Extras {
		k = strings.ToLower(strings.TrimSpace(k))
		v = strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		if n.Extras == nil {
			n.Extras = make(map[string]string)
		}
		n.Extras[k] = v
	}
	return n
}

// Key normalizes params, serializes them canonically (encoding/json sorts
// map keys), and hashes to a KeyLength hex digest.
func Key(p types.SearchParams) string {
	data, err := json.Marshal(Normalize(p))
	if err != nil {
		// SearchParams contains only strings, ints, and a string map.
		panic(fmt.Sprintf("marshaling search params: %v", err))
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}

// CanonicalParams returns the canonical JSON stored in the cache index.
func CanonicalParams(p types.SearchParams) string {
	data, err := json.Marshal(Normalize(p))
	if err != nil {
		panic(fmt.Sprintf("marshaling search params: %v", err))
	}
	return string(data)
}

// collapse trims s and squeezes runs of whitespace to single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
