// Invalidate command: deletes cached service rows by category, source,
// location substring, or age.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fernwind/tripstore/internal/cache"
)

var (
	flagInvCategory  string
	flagInvSource    string
	flagInvLocation  string
	flagInvOlderThan time.Duration
)

var invalidateCmd = &cobra.Command{
	Use:   "invalidate",
	Short: "Delete cached results matching the given criteria",
	Long: `Invalidate deletes unowned cached service rows. Criteria combine
with AND; no criteria deletes every unowned cached row.

Example:
  tripstore invalidate --category hotel
  tripstore invalidate --source bookingsite --location "paris"
  tripstore invalidate --older-than 48h`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, "invalidate:", err)
			os.Exit(exitSysError)
		}
		defer st.Close()

		criteria := cache.Criteria{
			Category:         flagInvCategory,
			Source:           flagInvSource,
			LocationContains: flagInvLocation,
		}
		if flagInvOlderThan > 0 {
			criteria.CreatedBefore = time.Now().Add(-flagInvOlderThan)
		}

		n, err := cache.NewManager(st).Invalidate(criteria)
		if err != nil {
			fmt.Fprintln(os.Stderr, "invalidate:", err)
			os.Exit(exitSysError)
		}
		fmt.Printf("invalidated %d cached services\n", n)
		return nil
	},
}

func init() {
	invalidateCmd.Flags().StringVar(&flagInvCategory, "category", "", "service category to invalidate")
	invalidateCmd.Flags().StringVar(&flagInvSource, "source", "", "provider platform to invalidate")
	invalidateCmd.Flags().StringVar(&flagInvLocation, "location", "", "location substring to invalidate")
	invalidateCmd.Flags().DurationVar(&flagInvOlderThan, "older-than", 0, "invalidate rows older than this duration")
}
