package main

import (
	"fmt"

	"github.com/google/autoparse"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of autoparse",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "autoparse version %s\n", autoparse.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
