// Migration registry: an ordered, named, append-only catalog. Registration
// order is apply order; published entries must never be edited or
// reordered, since their content may already be applied elsewhere.
package migrate

import (
	"errors"
	"fmt"
)

// ErrDuplicateMigration is returned when a name is registered twice.
var ErrDuplicateMigration = errors.New("duplicate migration name")

// Migration is one named unit of schema evolution. SQL may hold several
// statements; the Runner splits and executes them one at a time.
type Migration struct {
	Name string
	SQL  string
}

// Registry holds migrations in registration order.
type Registry struct {
	migrations []Migration
	names      map[string]bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{names: make(map[string]bool)}
}

// Register appends a migration. Returns ErrDuplicateMigration if the name
// is already registered.
func (r *Registry) Register(name, sql string) error {
	if r.names[name] {
		return fmt.Errorf("%w: %s", ErrDuplicateMigration, name)
	}
	r.names[name] = true
	r.migrations = append(r.migrations, Migration{Name: name, SQL: sql})
	return nil
}

// MustRegister is Register for build-time catalogs, where a duplicate name
// is a programming error.
func (r *Registry) MustRegister(name, sql string) {
	if err := r.Register(name, sql); err != nil {
		panic(err)
	}
}

// Migrations returns the registered migrations in registration order.
// The returned slice is a copy.
func (r *Registry) Migrations() []Migration {
	out := make([]Migration, len(r.migrations))
	copy(out, r.migrations)
	return out
}

// Len returns the number of registered migrations.
func (r *Registry) Len() int {
	return len(r.migrations)
}
