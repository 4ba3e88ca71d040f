package main

import (
	"fmt"

	"github.com/gammadia/prereq/cli/flags"
	"github.com/gammadia/prereq/cli/ui"
	"github.com/gammadia/prereq/prerequisite"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render JOBFILE",
	Short: "Print the prerequisite script as it is written on a node",
	Args:  cobra.ExactArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		platform, err := parsePlatform(lo.Must(cmd.Flags().GetString(flags.Platform)))
		if err != nil {
			return err
		}

		j, err := readJobfile(cmd, args[0])
		if err != nil {
			return err
		}

		script := prerequisite.Materialize(j.Prerequisites.Script, platform)
		if verbose() {
			cmd.PrintErrln(ui.SectionHeaderColor.Sprintf("  %s script (%s)  ", platform, script.Extension))
		}
		cmd.Print(script.Content)
		return nil
	},
}

func init() {
	renderCmd.Flags().String(flags.Platform, "posix", "platform of the node (posix, windows)")
	renderCmd.Flags().StringArrayP(flags.Param, "p", nil, "job parameter (NAME=VALUE), available to the jobfile template")
}

func parsePlatform(s string) (prerequisite.Platform, error) {
	switch s {
	case prerequisite.PlatformPOSIX.String():
		return prerequisite.PlatformPOSIX, nil
	case prerequisite.PlatformWindows.String():
		return prerequisite.PlatformWindows, nil
	default:
		return prerequisite.PlatformPOSIX, fmt.Errorf("unsupported platform '%s'", s)
	}
}
