// Package types defines the entity types, configuration, and standard
// errors shared by the tripstore storage layer: trips and their services,
// the search-cache index, the dirty queue, and precomputed trip facts.
package types
