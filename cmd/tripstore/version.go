// Version command for the tripstore CLI.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fernwind/tripstore/pkg/tripstore"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the tripstore version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("tripstore", tripstore.Version)
	},
}
