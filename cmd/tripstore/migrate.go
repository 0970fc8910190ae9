// Migrate command: applies all pending migrations from the catalog.
// Idempotent; intended to run once at deploy start.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fernwind/tripstore/internal/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openRawDB()
		if err != nil {
			fmt.Fprintln(os.Stderr, "migrate:", err)
			os.Exit(exitSysError)
		}
		defer db.Close()

		runner := migrate.NewRunner(db, migrate.DefaultRegistry())
		applied, err := runner.ApplyPending()
		for _, name := range applied {
			fmt.Println("applied", name)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, "migrate:", err)
			os.Exit(exitSysError)
		}
		if len(applied) == 0 {
			fmt.Println("schema up to date")
		}
		return nil
	},
}
