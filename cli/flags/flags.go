package flags

import (
	"strings"

	flag "github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	Verbose   = "verbose"
	LogFormat = "log-format"
	LogLevel  = "log-level"
	LogSource = "log-source"

	Node     = "node"
	Param    = "param"
	Platform = "platform"

	SshKey          = "ssh-key"
	SshKnownHosts   = "ssh-known-hosts"
	OpenstackRegion = "os-region"
)

// Persistent registers the flags shared by every command.
func Persistent(flags *flag.FlagSet) {
	flags.BoolP(Verbose, "v", false, "verbose output")
	flags.String(LogFormat, "text", "log format (json, text)")
	flags.String(LogLevel, "WARN", "minimum log level")
	flags.Bool(LogSource, false, "add source code location to logs")
}

// Bind makes the flags readable through viper, PREREQ_* environment variables
// taking precedence over flag defaults.
func Bind(flags *flag.FlagSet) error {
	viper.SetEnvPrefix("prereq")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	return viper.BindPFlags(flags)
}
