// Package docker provides a Docker engine client for inspecting composed apps.
package docker

import (
	"context"
	"fmt"
	"strconv"

	"github.com/docker/go-connections/nat"
)

// =============================================================================
// Container Info
// =============================================================================

// ContainerStatus represents the container status.
type ContainerStatus string

const (
	ContainerStatusCreated    ContainerStatus = "created"
	ContainerStatusRunning    ContainerStatus = "running"
	ContainerStatusPaused     ContainerStatus = "paused"
	ContainerStatusRestarting ContainerStatus = "restarting"
	ContainerStatusRemoving   ContainerStatus = "removing"
	ContainerStatusExited     ContainerStatus = "exited"
	ContainerStatusDead       ContainerStatus = "dead"
)

// ContainerInfo describes one container of a compose project.
type ContainerInfo struct {
	ID      string
	Name    string
	Service string // compose service name
	Image   string
	Status  string // human readable, e.g. "Up 2 hours"
	State   ContainerStatus
	Ports   []PortBinding
}

// PortBinding defines a port mapping.
type PortBinding struct {
	ContainerPort int
	HostPort      int    // 0 when not published
	Protocol      string // "tcp" or "udp"
	HostIP        string
}

// String renders the binding the way `docker ps` does, e.g. "0.0.0.0:8080->80/tcp".
func (p PortBinding) String() string {
	proto := p.Protocol
	if proto == "" {
		proto = "tcp"
	}
	port, err := nat.NewPort(proto, strconv.Itoa(p.ContainerPort))
	if err != nil {
		return fmt.Sprintf("%d/%s", p.ContainerPort, proto)
	}
	if p.HostPort == 0 {
		return string(port)
	}
	return fmt.Sprintf("%s:%d->%s", p.HostIP, p.HostPort, port)
}

// =============================================================================
// Client Interface
// =============================================================================

// Client defines the Docker client interface.
type Client interface {
	// Engine operations
	Architecture(ctx context.Context) (string, error)

	// Project operations
	ListProjectContainers(ctx context.Context, project string) ([]ContainerInfo, error)

	// Health operations
	Ping(ctx context.Context) error
	Close() error
}

// =============================================================================
// Label Constants
// =============================================================================

// Labels set by docker compose on every container it creates.
const (
	LabelProject = "com.docker.compose.project"
	LabelService = "com.docker.compose.service"
)
