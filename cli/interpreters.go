package main

import (
	"github.com/fatih/color"
	"github.com/gammadia/prereq/prerequisite"
	"github.com/spf13/cobra"
)

var interpretersCmd = &cobra.Command{
	Use:   "interpreters",
	Short: "List the interpreters prerequisite scripts can be written for",
	Args:  cobra.NoArgs,

	RunE: func(cmd *cobra.Command, args []string) error {
		for _, interpreter := range prerequisite.Interpreters() {
			cmd.Printf("%s %s\n", interpreter, color.HiBlackString("(%s)", interpreter.Platform()))
		}
		return nil
	},
}
