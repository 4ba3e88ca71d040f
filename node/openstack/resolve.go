package openstack

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/gammadia/prereq/node/remote"
	"github.com/gophercloud/gophercloud/openstack/compute/v2/servers"
	"github.com/samber/lo"
)

var ErrServerNotActive = errors.New("server is not active")

// Resolve locates the server in OpenStack (credentials are read from the OS_*
// environment variables) and returns an SSH node for its IPv4 address.
// The returned node is not connected yet.
func Resolve(ctx context.Context, config Config) (*remote.Node, error) {
	client, err := newComputeClient(ctx, config.Region)
	if err != nil {
		return nil, err
	}
	return resolve(client, config)
}

func resolve(client compute, config Config) (*remote.Node, error) {
	logger := lo.Ternary(config.Logger != nil, config.Logger, slog.New(slog.NewTextHandler(io.Discard, nil)))

	server, err := client.FindServer(config.Server)
	if err != nil {
		return nil, err
	}
	log := logger.With("server", server.Name, "id", server.ID)

	if server.Status != "ACTIVE" {
		log.Debug("Server is not active", "status", server.Status)
		return nil, fmt.Errorf("%w: '%s' is %s", ErrServerNotActive, server.Name, server.Status)
	}

	addresses, err := client.ServerAddresses(server.ID)
	if err != nil {
		return nil, fmt.Errorf("server '%s': %w", server.Name, err)
	}

	address := pickIPv4(addresses)
	if address == "" {
		return nil, fmt.Errorf("failed to find IPv4 address for server '%s'", server.Name)
	}
	log.Debug("Resolved server address", "address", address)

	return remote.New(remote.Config{
		Name:            server.Name,
		Address:         address,
		Username:        config.Username,
		Signer:          config.Signer,
		HostKeyCallback: config.HostKeyCallback,
		Workspace:       config.Workspace,
		Logger:          logger,
	}), nil
}

// pickIPv4 returns the first IPv4 address, networks being sorted by name.
func pickIPv4(addresses map[string][]servers.Address) string {
	networks := lo.Keys(addresses)
	slices.Sort(networks)

	for _, network := range networks {
		for _, address := range addresses[network] {
			if address.Version == 4 {
				return address.Address
			}
		}
	}
	return ""
}
