package migrate

import (
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// openTestDB opens a fresh database file in a temp directory.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRunner_Bootstrap(t *testing.T) {
	db := openTestDB(t)
	r := NewRunner(db, NewRegistry())

	t.Run("ListApplied is empty before bookkeeping exists", func(t *testing.T) {
		applied, err := r.ListApplied()
		require.NoError(t, err)
		assert.Empty(t, applied)
	})

	t.Run("EnsureBookkeeping is idempotent", func(t *testing.T) {
		require.NoError(t, r.EnsureBookkeeping())
		require.NoError(t, r.EnsureBookkeeping())

		applied, err := r.ListApplied()
		require.NoError(t, err)
		assert.Empty(t, applied)
	})
}

func TestRunner_ApplyPending(t *testing.T) {
	tests := []struct {
		name  string
		check func(t *testing.T)
	}{
		{
			name: "applies registered migrations in order",
			check: func(t *testing.T) {
				db := openTestDB(t)
				reg := NewRegistry()
				reg.MustRegister("001_a", "CREATE TABLE IF NOT EXISTS a (id INTEGER);")
				reg.MustRegister("002_b", "CREATE TABLE IF NOT EXISTS b (a_id INTEGER REFERENCES a(id));")

				applied, err := NewRunner(db, reg).ApplyPending()
				require.NoError(t, err)
				assert.Equal(t, []string{"001_a", "002_b"}, applied)
			},
		},
		{
			name: "second run is an empty no-op",
			check: func(t *testing.T) {
				db := openTestDB(t)
				r := NewRunner(db, DefaultRegistry())

				first, err := r.ApplyPending()
				require.NoError(t, err)
				assert.Len(t, first, 5)

				second, err := r.ApplyPending()
				require.NoError(t, err)
				assert.Empty(t, second)
			},
		},
		{
			name: "later migration applies without re-running earlier ones",
			check: func(t *testing.T) {
				db := openTestDB(t)

				reg1 := NewRegistry()
				// Not idempotent on purpose: re-execution would error.
				reg1.MustRegister("001_a", "CREATE TABLE a (id INTEGER);")
				_, err := NewRunner(db, reg1).ApplyPending()
				require.NoError(t, err)

				reg2 := NewRegistry()
				reg2.MustRegister("001_a", "CREATE TABLE a (id INTEGER);")
				reg2.MustRegister("002_b", "CREATE TABLE b (id INTEGER);")
				applied, err := NewRunner(db, reg2).ApplyPending()
				require.NoError(t, err)
				assert.Equal(t, []string{"002_b"}, applied)
			},
		},
		{
			name: "statement failure aborts the migration and is not recorded",
			check: func(t *testing.T) {
				db := openTestDB(t)
				reg := NewRegistry()
				reg.MustRegister("001_good", "CREATE TABLE IF NOT EXISTS good (id INTEGER);")
				reg.MustRegister("002_bad",
					"CREATE TABLE IF NOT EXISTS partial (id INTEGER);\nNOT VALID SQL AT ALL;")
				reg.MustRegister("003_never", "CREATE TABLE IF NOT EXISTS never (id INTEGER);")

				r := NewRunner(db, reg)
				applied, err := r.ApplyPending()
				require.Error(t, err)
				assert.Contains(t, err.Error(), "002_bad")
				assert.Contains(t, err.Error(), "NOT VALID SQL")
				assert.Equal(t, []string{"001_good"}, applied)

				// Partial application is visible: the first statement of the
				// failed migration ran, but the migration is not recorded and
				// the later one was never attempted.
				recorded, err := r.ListApplied()
				require.NoError(t, err)
				assert.True(t, recorded["001_good"])
				assert.False(t, recorded["002_bad"])
				assert.False(t, recorded["003_never"])

				var n int
				require.NoError(t, db.QueryRow(
					"SELECT COUNT(*) FROM sqlite_master WHERE name = 'partial'").Scan(&n))
				assert.Equal(t, 1, n)

				// Retry succeeds once the registry is fixed.
				regFixed := NewRegistry()
				regFixed.MustRegister("001_good", "CREATE TABLE IF NOT EXISTS good (id INTEGER);")
				regFixed.MustRegister("002_bad", "CREATE TABLE IF NOT EXISTS partial (id INTEGER);")
				regFixed.MustRegister("003_never", "CREATE TABLE IF NOT EXISTS never (id INTEGER);")
				applied, err = NewRunner(db, regFixed).ApplyPending()
				require.NoError(t, err)
				assert.Equal(t, []string{"002_bad", "003_never"}, applied)
			},
		},
		{
			name: "failing statement is truncated in the error",
			check: func(t *testing.T) {
				db := openTestDB(t)
				long := "THIS IS NOT SQL " + strings.Repeat("PADDING ", 40)
				reg := NewRegistry()
				reg.MustRegister("001_long", long+";")

				_, err := NewRunner(db, reg).ApplyPending()
				require.Error(t, err)
				assert.Contains(t, err.Error(), "001_long")
				assert.Contains(t, err.Error(), "...")
				assert.NotContains(t, err.Error(), long)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, tt.check)
	}
}

func TestRunner_Pending(t *testing.T) {
	db := openTestDB(t)
	reg := NewRegistry()
	reg.MustRegister("001_a", "CREATE TABLE IF NOT EXISTS a (id INTEGER);")
	reg.MustRegister("002_b", "CREATE TABLE IF NOT EXISTS b (id INTEGER);")
	r := NewRunner(db, reg)

	pending, err := r.Pending()
	require.NoError(t, err)
	assert.Equal(t, []string{"001_a", "002_b"}, pending)

	_, err = r.ApplyPending()
	require.NoError(t, err)

	pending, err = r.Pending()
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestRunner_CatalogSchema(t *testing.T) {
	db := openTestDB(t)
	_, err := NewRunner(db, DefaultRegistry()).ApplyPending()
	require.NoError(t, err)

	t.Run("tables exist", func(t *testing.T) {
		for _, table := range []string{"trips", "services", "search_cache", "trip_facts", "trip_dirty"} {
			var n int
			require.NoError(t, db.QueryRow(
				"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?",
				table).Scan(&n))
			assert.Equal(t, 1, n, "missing table %s", table)
		}
	})

	t.Run("triggers exist", func(t *testing.T) {
		for _, trigger := range []string{
			"services_dirty_insert", "services_dirty_update",
			"services_dirty_delete", "search_cache_sweep",
		} {
			var n int
			require.NoError(t, db.QueryRow(
				"SELECT COUNT(*) FROM sqlite_master WHERE type = 'trigger' AND name = ?",
				trigger).Scan(&n))
			assert.Equal(t, 1, n, "missing trigger %s", trigger)
		}
	})
}
