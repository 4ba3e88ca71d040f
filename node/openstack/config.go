package openstack

import (
	"log/slog"

	"golang.org/x/crypto/ssh"
)

type Config struct {
	// Name or ID of the server hosting the node
	Server string
	// Region of the compute service, defaults to OS_REGION_NAME
	Region string

	Username        string
	Signer          ssh.Signer
	HostKeyCallback ssh.HostKeyCallback
	Workspace       string
	Logger          *slog.Logger
}
