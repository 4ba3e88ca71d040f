package remote

import (
	"log/slog"

	"golang.org/x/crypto/ssh"
)

type Config struct {
	// Name of the node, defaults to Address
	Name string
	// Address of the SSH daemon, port 22 is used when missing
	Address  string
	Username string
	Signer   ssh.Signer
	// HostKeyCallback verifies the node identity, host keys are not checked when nil
	HostKeyCallback ssh.HostKeyCallback
	// Directory in which prerequisite scripts are written and run
	Workspace string
	Logger    *slog.Logger
}
