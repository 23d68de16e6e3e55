//go:build nodocker

package core

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
)

// DockerSource stub implementation when Docker support is disabled
type DockerSource struct{}

// NewDockerSource always fails in nodocker builds
func NewDockerSource(ctx context.Context, config DockerConfig, logger logrus.FieldLogger) (*DockerSource, error) {
	return nil, errors.New("docker support not compiled in (built with -tags nodocker)")
}

// ContainerSamples returns no containers
func (ds *DockerSource) ContainerSamples(ctx context.Context) ([]ProcessSample, error) {
	return nil, nil
}

// Close is a no-op
func (ds *DockerSource) Close() error {
	return nil
}
