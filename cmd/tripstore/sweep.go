// Sweep command: reclaims expired cache rows and stale dirty entries.
// Intended to run from a scheduler; the in-database probabilistic trigger
// only covers deployments that never do.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fernwind/tripstore/internal/cache"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Reclaim expired cache rows and stale dirty entries",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, "sweep:", err)
			os.Exit(exitSysError)
		}
		defer st.Close()

		stats, err := cache.NewManager(st).Sweep()
		if err != nil {
			fmt.Fprintln(os.Stderr, "sweep:", err)
			os.Exit(exitSysError)
		}
		fmt.Printf("swept %d services, %d index entries, %d dirty entries\n",
			stats.Services, stats.IndexEntries, stats.DirtyEntries)
		return nil
	},
}
