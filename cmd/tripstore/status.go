// Status command: shows applied and pending migrations without changing
// anything.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fernwind/tripstore/internal/migrate"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show applied and pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openRawDB()
		if err != nil {
			fmt.Fprintln(os.Stderr, "status:", err)
			os.Exit(exitSysError)
		}
		defer db.Close()

		runner := migrate.NewRunner(db, migrate.DefaultRegistry())
		applied, err := runner.ListApplied()
		if err != nil {
			fmt.Fprintln(os.Stderr, "status:", err)
			os.Exit(exitSysError)
		}
		pending, err := runner.Pending()
		if err != nil {
			fmt.Fprintln(os.Stderr, "status:", err)
			os.Exit(exitSysError)
		}

		for _, m := range migrate.DefaultRegistry().Migrations() {
			state := "pending"
			if applied[m.Name] {
				state = "applied"
			}
			fmt.Printf("%-8s %s\n", state, m.Name)
		}
		fmt.Printf("%d applied, %d pending\n", len(applied), len(pending))
		return nil
	},
}
