package remote

import (
	"slices"

	"github.com/alessio/shellescape"
	"github.com/gammadia/prereq/prerequisite"
	"github.com/samber/lo"
)

// remoteCommand renders a command for the remote login shell. Every argument
// is quoted on its own and the environment is overlaid with env(1), which
// does not depend on the daemon accepting SetEnv requests.
func remoteCommand(command prerequisite.Command) string {
	args := []string{"env"}
	keys := lo.Keys(command.Env)
	slices.Sort(keys)
	for _, key := range keys {
		args = append(args, key+"="+command.Env[key])
	}
	args = append(args, command.Argv...)

	line := "exec " + shellescape.QuoteCommand(args)
	if command.Dir != "" {
		line = "cd " + shellescape.Quote(command.Dir) + " && " + line
	}
	return line
}
