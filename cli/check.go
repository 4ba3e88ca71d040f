package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gammadia/prereq/cli/flags"
	"github.com/gammadia/prereq/cli/jobfile"
	"github.com/gammadia/prereq/cli/ui"
	"github.com/gammadia/prereq/prerequisite"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var checkCmd = &cobra.Command{
	Use:   "check JOBFILE",
	Short: "Check whether a job's prerequisites are met on a node",
	Args:  cobra.ExactArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		j, err := readJobfile(cmd, args[0])
		if err != nil {
			return err
		}

		item, err := j.Item(params(cmd))
		if err != nil {
			return fmt.Errorf("invalid parameters for '%s': %w", j.Name, err)
		}

		gate, err := prerequisite.New(j.Prerequisites, prerequisite.Config{Logger: logger})
		if err != nil {
			return err
		}

		node, release, err := openNode(cmd.Context(), viper.GetString(flags.Node), nodeOptions{
			sshKey:     viper.GetString(flags.SshKey),
			knownHosts: viper.GetString(flags.SshKnownHosts),
			region:     viper.GetString(flags.OpenstackRegion),
			logger:     logger,
		})
		if err != nil {
			return err
		}
		defer release()

		spinner := spinnerUnlessVerbose(fmt.Sprintf("Checking prerequisites of '%s' on '%s'", j.Name, node.Name()))
		cause, err := gate.Check(cmd.Context(), node, &item)
		if err != nil {
			spinner.Fail()
			return err
		}

		switch prerequisite.OutcomeOf(cause) {
		case prerequisite.Admitted:
			spinner.Success()
			cmd.Println(color.HiGreenString("Job '%s' can run on '%s'", j.Name, node.Name()))
			return nil
		case prerequisite.BlockedOffline:
			spinner.Warn()
		default:
			spinner.Fail()
		}
		cmd.Println(color.HiRedString(cause.ShortDescription()))
		return errBlocked
	},
}

func init() {
	checkCmd.Flags().String(flags.Node, "local", "node to check (local[:///path], ssh://user@host[:port]/path, openstack://server/path, docker://container[/path])")
	checkCmd.Flags().StringArrayP(flags.Param, "p", nil, "job parameter (NAME=VALUE)")
	checkCmd.Flags().String(flags.SshKey, "", "private key used for ssh nodes (defaults to ~/.ssh/id_ed25519 or ~/.ssh/id_rsa)")
	checkCmd.Flags().String(flags.SshKnownHosts, "", "known_hosts file verifying ssh nodes, host keys are not checked when empty")
	checkCmd.Flags().String(flags.OpenstackRegion, "", "region of openstack nodes (defaults to OS_REGION_NAME)")
}

func params(cmd *cobra.Command) map[string]string {
	return lo.SliceToMap(lo.Must(cmd.Flags().GetStringArray(flags.Param)), func(item string) (key, value string) {
		key, value, _ = strings.Cut(item, "=")
		return
	})
}

func spinnerUnlessVerbose(msg string) *ui.Spinner {
	if verbose() {
		return nil
	}
	return ui.NewSpinner(msg)
}

func readJobfile(cmd *cobra.Command, file string) (*jobfile.Jobfile, error) {
	j, err := jobfile.Read(file, jobfile.ReadOptions{Params: params(cmd)})
	if err != nil {
		if e, ok := err.(jobfile.UnmarshalError); ok && verbose() {
			cmd.PrintErrln(e.Source)
		}
		return nil, fmt.Errorf("failed to read job from '%s': %w", file, err)
	}
	return j, nil
}
