// Facts command: drains the dirty queue and recomputes trip facts.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var factsCmd = &cobra.Command{
	Use:   "facts [trip-id]",
	Short: "Recompute trip facts for dirty trips",
	Long: `Facts recomputes the precomputed aggregates for trips with queued
dirty entries. With a trip ID, recomputes that trip regardless of queue
state.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStore()
		if err != nil {
			fmt.Fprintln(os.Stderr, "facts:", err)
			os.Exit(exitSysError)
		}
		defer st.Close()

		if len(args) == 1 {
			facts, err := st.RecomputeFacts(args[0])
			if err != nil {
				fmt.Fprintln(os.Stderr, "facts:", err)
				os.Exit(exitSysError)
			}
			fmt.Printf("%s: %d services, %d booked, total %.2f (v%d)\n",
				facts.TripID, facts.ServiceCount, facts.BookedCount,
				facts.TotalPrice, facts.Version)
			return nil
		}

		trips, err := st.RecomputeAllDirty()
		if err != nil {
			fmt.Fprintln(os.Stderr, "facts:", err)
			os.Exit(exitSysError)
		}
		if len(trips) == 0 {
			fmt.Println("no dirty trips")
			return nil
		}
		for _, id := range trips {
			fmt.Println("recomputed", id)
		}
		return nil
	},
}
