package docker

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/artpar/appcompose/internal/core/environment"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"
)

// =============================================================================
// Docker Client Implementation
// =============================================================================

// DockerClient implements the Client interface using the Docker SDK.
type DockerClient struct {
	cli *client.Client
}

// NewDockerClient creates a new Docker client.
// If host is empty, it uses the default Docker host from environment.
// On macOS with Docker Desktop, it automatically detects the correct socket.
func NewDockerClient(host string) (*DockerClient, error) {
	opts := []client.Opt{
		client.FromEnv,
		client.WithAPIVersionNegotiation(),
	}
	if host != "" {
		opts = append(opts, client.WithHost(host))
	}

	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, NewDockerError("NewDockerClient", "", "", "failed to create client", ErrConnectionFailed)
	}

	ctx := context.Background()
	if host == "" {
		if _, pingErr := cli.Ping(ctx); pingErr != nil {
			homeDir, _ := os.UserHomeDir()
			dockerDesktopSocket := "unix://" + homeDir + "/.docker/run/docker.sock"

			cli2, err2 := client.NewClientWithOpts(
				client.WithHost(dockerDesktopSocket),
				client.WithAPIVersionNegotiation(),
			)
			if err2 == nil {
				if _, pingErr2 := cli2.Ping(ctx); pingErr2 == nil {
					cli.Close()
					return &DockerClient{cli: cli2}, nil
				}
				cli2.Close()
			}
		}
	}

	return &DockerClient{cli: cli}, nil
}

// Ping checks if Docker daemon is reachable.
func (d *DockerClient) Ping(ctx context.Context) error {
	if _, err := d.cli.Ping(ctx); err != nil {
		return NewDockerError("Ping", "", "", fmt.Sprintf("failed to ping docker: %v", err), ErrConnectionFailed)
	}
	return nil
}

// Close closes the Docker client connection.
func (d *DockerClient) Close() error {
	return d.cli.Close()
}

// =============================================================================
// Engine Operations
// =============================================================================

// Architecture returns the engine's CPU architecture as an app label ("x64", "arm64").
func (d *DockerClient) Architecture(ctx context.Context) (string, error) {
	info, err := d.cli.Info(ctx)
	if err != nil {
		return "", NewDockerError("Architecture", "engine", "", err.Error(), ErrEngineInfo)
	}
	if info.Architecture == "" {
		return "", NewDockerError("Architecture", "engine", "", "engine reported no architecture", ErrEngineInfo)
	}
	return environment.NormalizeArch(info.Architecture), nil
}

// =============================================================================
// Project Operations
// =============================================================================

// ListProjectContainers returns every container, running or not, labeled
// with the given compose project. Results are sorted by service then name.
func (d *DockerClient) ListProjectContainers(ctx context.Context, project string) ([]ContainerInfo, error) {
	containers, err := d.cli.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filters.NewArgs(filters.Arg("label", LabelProject+"="+project)),
	})
	if err != nil {
		return nil, NewDockerError("ListProjectContainers", "project", project, err.Error(), ErrListFailed)
	}

	result := make([]ContainerInfo, 0, len(containers))
	for _, c := range containers {
		name := ""
		if len(c.Names) > 0 {
			name = strings.TrimPrefix(c.Names[0], "/")
		}

		var ports []PortBinding
		for _, p := range c.Ports {
			ports = append(ports, PortBinding{
				ContainerPort: int(p.PrivatePort),
				HostPort:      int(p.PublicPort),
				Protocol:      p.Type,
				HostIP:        p.IP,
			})
		}

		result = append(result, ContainerInfo{
			ID:      c.ID,
			Name:    name,
			Service: c.Labels[LabelService],
			Image:   c.Image,
			Status:  c.Status,
			State:   ContainerStatus(c.State),
			Ports:   ports,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Service != result[j].Service {
			return result[i].Service < result[j].Service
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}
