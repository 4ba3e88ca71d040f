package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/gammadia/prereq/cli/flags"
	"github.com/gammadia/prereq/cli/log"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Versioning information set at build time
var version, commit = "dev", "n/a"

var logger *slog.Logger

// errBlocked is returned once a blocked decision has been reported, it only sets the exit code.
var errBlocked = errors.New("blocked")

var prereqCmd = &cobra.Command{
	Use:   "prereq",
	Short: "Prereq checks whether a job may run on a node.",

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) (err error) {
		if err := flags.Bind(cmd.Flags()); err != nil {
			return fmt.Errorf("failed to bind flags: %w", err)
		}
		logger, err = log.New(cmd.ErrOrStderr())
		return err
	},
}

func init() {
	prereqCmd.AddCommand(checkCmd)
	prereqCmd.AddCommand(interpretersCmd)
	prereqCmd.AddCommand(renderCmd)
	prereqCmd.AddCommand(versionCmd)

	flags.Persistent(prereqCmd.PersistentFlags())
}

func verbose() bool {
	return viper.GetBool(flags.Verbose)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	prereqCmd.SetOut(os.Stdout)
	if err := prereqCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errBlocked) {
			lo.Must(fmt.Fprintln(os.Stderr, color.HiRedString(fmt.Sprint(err))))
		}
		os.Exit(1)
	}
}
