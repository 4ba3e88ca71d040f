package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/docker/docker/client"
	"github.com/gammadia/prereq/node/docker"
	"github.com/gammadia/prereq/node/local"
	"github.com/gammadia/prereq/node/openstack"
	"github.com/gammadia/prereq/node/remote"
	"github.com/gammadia/prereq/prerequisite"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

type nodeOptions struct {
	sshKey     string
	knownHosts string
	region     string
	logger     *slog.Logger
}

// openNode returns the node designated by uri along with a function releasing it.
// A node that can't be reached is returned anyway, it is then reported offline.
func openNode(ctx context.Context, uri string, options nodeOptions) (prerequisite.Node, func(), error) {
	noop := func() {}

	if uri == "" || uri == "local" {
		node, err := local.New(local.Config{Logger: options.logger})
		return node, noop, err
	}

	u, err := url.Parse(uri)
	if err != nil {
		return nil, noop, fmt.Errorf("invalid node '%s': %w", uri, err)
	}
	if u.Scheme != "local" && u.Host == "" {
		return nil, noop, fmt.Errorf("invalid node '%s': missing host", uri)
	}
	log := options.logger.With("uri", uri)

	switch u.Scheme {
	case "local":
		node, err := local.New(local.Config{Workspace: u.Path, Logger: options.logger})
		return node, noop, err

	case "ssh":
		config, err := sshConfig(u, options)
		if err != nil {
			return nil, noop, err
		}
		config.Address = u.Host
		node := remote.New(config)
		if err := node.Connect(ctx); err != nil {
			log.Warn("Failed to connect to node", "error", err)
		}
		return node, func() { _ = node.Close() }, nil

	case "openstack":
		config, err := sshConfig(u, options)
		if err != nil {
			return nil, noop, err
		}
		node, err := openstack.Resolve(ctx, openstack.Config{
			Server:          u.Host,
			Region:          options.region,
			Username:        config.Username,
			Signer:          config.Signer,
			HostKeyCallback: config.HostKeyCallback,
			Workspace:       config.Workspace,
			Logger:          options.logger,
		})
		if err != nil {
			log.Warn("Failed to resolve node", "error", err)
			return offline(u.Host), noop, nil
		}
		if err := node.Connect(ctx); err != nil {
			log.Warn("Failed to connect to node", "error", err)
		}
		return node, func() { _ = node.Close() }, nil

	case "docker":
		cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
		if err != nil {
			return nil, noop, fmt.Errorf("failed to create docker client: %w", err)
		}
		node, err := docker.New(ctx, cli, u.Host, docker.Config{Workspace: u.Path, Logger: options.logger})
		if err != nil {
			log.Warn("Failed to inspect node", "error", err)
			_ = cli.Close()
			return offline(u.Host), noop, nil
		}
		return node, func() { _ = cli.Close() }, nil

	default:
		return nil, noop, fmt.Errorf("invalid node '%s': unsupported scheme '%s'", uri, u.Scheme)
	}
}

// offline returns a node that is never connected.
func offline(name string) prerequisite.Node {
	return remote.New(remote.Config{Name: name})
}

func sshConfig(u *url.URL, options nodeOptions) (remote.Config, error) {
	config := remote.Config{
		Username:  u.User.Username(),
		Workspace: u.Path,
		Logger:    options.logger,
	}
	if config.Username == "" {
		if current, err := user.Current(); err == nil {
			config.Username = current.Username
		}
	}

	signer, err := loadSigner(options.sshKey)
	if err != nil {
		return config, err
	}
	config.Signer = signer

	if options.knownHosts != "" {
		if config.HostKeyCallback, err = knownhosts.New(expandHome(options.knownHosts)); err != nil {
			return config, fmt.Errorf("failed to read known hosts: %w", err)
		}
	}

	return config, nil
}

func loadSigner(keyFile string) (ssh.Signer, error) {
	candidates := []string{keyFile}
	if keyFile == "" {
		candidates = []string{"~/.ssh/id_ed25519", "~/.ssh/id_rsa"}
	}

	for _, candidate := range candidates {
		buf, err := os.ReadFile(expandHome(candidate))
		if err != nil {
			if keyFile == "" && os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read ssh key: %w", err)
		}

		signer, err := ssh.ParsePrivateKey(buf)
		if err != nil {
			return nil, fmt.Errorf("failed to parse ssh key '%s': %w", candidate, err)
		}
		return signer, nil
	}

	return nil, fmt.Errorf("no ssh key found in %s", strings.Join(candidates, ", "))
}

func expandHome(p string) string {
	rest, ok := strings.CutPrefix(p, "~/")
	if !ok {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, rest)
}
