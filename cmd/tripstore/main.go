// Package main provides the tripstore CLI: schema migration, cache
// maintenance, and trip-facts recomputation for the travel data store.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitUserError)
	}
}
