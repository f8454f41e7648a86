package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/smartdb-go/smartdb/internal/version"
)

var verboseVersion bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print smartdbctl's version",
	RunE: func(cmd *cobra.Command, args []string) error {
		info := version.Get()
		if verboseVersion {
			fmt.Println(info.FullString())
		} else {
			fmt.Println(info.String())
		}
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVarP(&verboseVersion, "verbose", "v", false, "print full build information")
}
