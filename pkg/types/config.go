package types

import "errors"

// DefaultDBFileName is the SQLite database file created inside DataDir.
const DefaultDBFileName = "tripstore.db"

// Config holds the parameters for Store.Open.
type Config struct {
	// DataDir is the directory holding the database file.
	// Created on Open if it does not exist. Empty means the current directory.
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// DBFileName overrides the database file name. Empty means
	// DefaultDBFileName.
	DBFileName string `json:"db_file" yaml:"db_file"`
}

// Config validation errors.
var (
	ErrDBFileNameInvalid = errors.New("db file name must not contain a path separator")
)

// Validate checks that the Config is well-formed. It returns a sentinel
// error from this package on failure.
func (c Config) Validate() error {
	for _, r := range c.DBFileName {
		if r == '/' || r == '\\' {
			return ErrDBFileNameInvalid
		}
	}
	return nil
}

// File returns the effective database file name.
func (c Config) File() string {
	if c.DBFileName == "" {
		return DefaultDBFileName
	}
	return c.DBFileName
}
