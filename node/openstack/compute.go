package openstack

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/gophercloud/gophercloud"
	"github.com/gophercloud/gophercloud/openstack"
	"github.com/gophercloud/gophercloud/openstack/compute/v2/servers"
)

// compute is the part of the OpenStack compute API needed to locate a node.
type compute interface {
	FindServer(nameOrID string) (*servers.Server, error)
	ServerAddresses(id string) (map[string][]servers.Address, error)
}

type computeClient struct {
	client *gophercloud.ServiceClient
}

// computeClient implements compute
var _ compute = (*computeClient)(nil)

func newComputeClient(ctx context.Context, region string) (*computeClient, error) {
	opts, err := openstack.AuthOptionsFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to get auth options from env: %w", err)
	}

	provider, err := openstack.AuthenticatedClient(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get authenticated client: %w", err)
	}
	provider.Context = ctx

	if region == "" {
		region = os.Getenv("OS_REGION_NAME")
	}

	client, err := openstack.NewComputeV2(provider, gophercloud.EndpointOpts{Region: region})
	if err != nil {
		return nil, fmt.Errorf("failed to get compute client: %w", err)
	}

	return &computeClient{client}, nil
}

func (c *computeClient) FindServer(nameOrID string) (*servers.Server, error) {
	server, err := servers.Get(c.client, nameOrID).Extract()
	if err == nil {
		return server, nil
	}
	var notFound gophercloud.ErrDefault404
	if !errors.As(err, &notFound) {
		return nil, fmt.Errorf("failed to get server '%s': %w", nameOrID, err)
	}

	pages, err := servers.List(c.client, servers.ListOpts{
		Name: "^" + regexp.QuoteMeta(nameOrID) + "$",
	}).AllPages()
	if err != nil {
		return nil, fmt.Errorf("failed to list servers named '%s': %w", nameOrID, err)
	}

	found, err := servers.ExtractServers(pages)
	if err != nil {
		return nil, fmt.Errorf("failed to extract servers named '%s': %w", nameOrID, err)
	}

	switch len(found) {
	case 0:
		return nil, fmt.Errorf("server '%s' not found", nameOrID)
	case 1:
		return &found[0], nil
	default:
		return nil, fmt.Errorf("%d servers are named '%s', use an ID instead", len(found), nameOrID)
	}
}

func (c *computeClient) ServerAddresses(id string) (map[string][]servers.Address, error) {
	pages, err := servers.ListAddresses(c.client, id).AllPages()
	if err != nil {
		return nil, fmt.Errorf("failed to get server addresses: %w", err)
	}

	addresses, err := servers.ExtractAddresses(pages)
	if err != nil {
		return nil, fmt.Errorf("failed to extract server addresses: %w", err)
	}
	return addresses, nil
}
