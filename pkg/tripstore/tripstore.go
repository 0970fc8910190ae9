// Package tripstore holds module-level metadata.
package tripstore

// Version is the tripstore release version.
const Version = "0.1.0"
