// container.go implements Docker container lifecycle operations for the
// ASIS deployment toolkit: listing, grouping, launching, starting,
// stopping, and removing the containers created from variant images.
//
// All managed containers are identified by the "asis.managed-by" label,
// which enables filtering them from unrelated containers on the same
// host.
package docker

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/image"

	"github.com/asisai/asis-deploy/internal/model"
)

// ListManagedContainers queries the Docker daemon for all containers
// that have the "asis.managed-by=asis-deploy" label, including stopped
// ones. It is the primary entry point for discovering which variants are
// currently deployed: all state is derived from Docker labels rather
// than any external database.
func ListManagedContainers(ctx context.Context, cli *Client) ([]model.ContainerInfo, error) {
	// Filtering happens server-side in the Docker daemon, which is more
	// efficient than listing everything and filtering in Go.
	filterArgs := filters.NewArgs(
		filters.Arg("label", LabelManagedBy+"="+ManagedByValue),
	)

	containers, err := cli.Inner().ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filterArgs,
	})
	if err != nil {
		return nil, model.WrapCLIError(
			model.ExitDockerNotRunning,
			"failed to list Docker containers",
			err,
		)
	}

	result := make([]model.ContainerInfo, 0, len(containers))
	for _, c := range containers {
		result = append(result, containerToInfo(c))
	}

	return result, nil
}

// containerToInfo converts a Docker API Container struct to our domain
// model ContainerInfo. This is a pure mapping function with no side
// effects.
//
// The Docker API returns container names with a leading "/" prefix
// (e.g. "/asis-production"), which we strip for cleaner CLI display.
func containerToInfo(c types.Container) model.ContainerInfo {
	name := ""
	if len(c.Names) > 0 {
		name = strings.TrimPrefix(c.Names[0], "/")
	}

	return model.ContainerInfo{
		ContainerID:   c.ID,
		ContainerName: name,
		Image:         c.Image,
		Status:        c.State,
		Labels:        c.Labels,
	}
}

// GroupContainersByVariant groups a slice of ContainerInfo by their
// "asis.variant" label value. Containers without the label are silently
// skipped, since they cannot be attributed to any variant; this should
// not happen because ListManagedContainers already filters on the
// management label.
func GroupContainersByVariant(containers []model.ContainerInfo) map[string][]model.ContainerInfo {
	groups := make(map[string][]model.ContainerInfo)

	for _, c := range containers {
		variantName, ok := c.Labels[LabelVariant]
		if !ok || variantName == "" {
			continue
		}
		groups[variantName] = append(groups[variantName], c)
	}

	return groups
}

// BuildDeployment constructs a Deployment domain object from a group of
// containers that belong to the same variant. It parses the first
// container's labels for the variant identity — all containers of the
// same variant carry identical asis.* labels — and derives the aggregate
// status from container states and image presence.
func BuildDeployment(ctx context.Context, cli *Client, variantName string, containers []model.ContainerInfo) (*model.Deployment, error) {
	if len(containers) == 0 {
		return nil, fmt.Errorf("cannot build deployment %q: no containers provided", variantName)
	}

	variant, err := ParseLabels(containers[0].Labels)
	if err != nil {
		return nil, fmt.Errorf("failed to parse labels for variant %q: %w", variantName, err)
	}

	return &model.Deployment{
		Variant:    *variant,
		Containers: containers,
		Status:     determineStatus(ctx, cli, containers, variant.ImageTag()),
	}, nil
}

// determineStatus calculates the aggregate status of a deployed variant.
//
// The priority order is:
//  1. Orphaned: the variant image no longer exists on the host.
//  2. Running: at least one container is running.
//  3. Stopped: all containers are stopped/exited.
func determineStatus(ctx context.Context, cli *Client, containers []model.ContainerInfo, imageTag string) model.VariantStatus {
	if !imageExists(ctx, cli, imageTag) {
		return model.StatusOrphaned
	}

	for _, c := range containers {
		if c.Status == "running" {
			return model.StatusRunning
		}
	}

	return model.StatusStopped
}

// imageExists reports whether the given image reference is present on
// the Docker host.
func imageExists(ctx context.Context, cli *Client, imageTag string) bool {
	filterArgs := filters.NewArgs(filters.Arg("reference", imageTag))
	images, err := cli.Inner().ImageList(ctx, image.ListOptions{Filters: filterArgs})
	if err != nil {
		// If the listing itself fails the daemon is in trouble; treat the
		// image as present so the status degrades to running/stopped
		// rather than a misleading "orphaned".
		return true
	}
	return len(images) > 0
}

// LaunchLabels records the launch time on the variant and returns its
// label set. CreatedAt is zero until a container is actually created
// for the variant, so the stamp happens here rather than at descriptor
// load.
func LaunchLabels(v *model.Variant) map[string]string {
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now().UTC()
	}
	return BuildLabels(v)
}

// RunVariant launches a variant's container with "docker run -d",
// publishing the declared port on 0.0.0.0 and applying the asis.*
// management labels.
//
// os/exec is used rather than the SDK's ContainerCreate + ContainerStart
// workflow: "docker run" accepts the same flags users know, and the
// label/port flag set stays readable.
func RunVariant(ctx context.Context, cli *Client, v *model.Variant) error {
	args := []string{"run", "-d", "--name", v.ContainerName()}

	for key, value := range LaunchLabels(v) {
		args = append(args, "--label", key+"="+value)
	}

	// Publish on all interfaces; the in-container process binds 0.0.0.0
	// and the orchestrator reaches the health endpoint through this
	// mapping.
	args = append(args, "-p", fmt.Sprintf("%d:%d", v.Port, v.Port))
	args = append(args, v.ImageTag())

	cmd := exec.CommandContext(ctx, "docker", args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("docker run failed for variant %q: %s",
				v.Name, strings.TrimSpace(string(output))),
			err,
		)
	}

	return nil
}

// StartContainer starts a stopped container by its ID using the Docker
// SDK. If the container is already running, Docker returns an error.
func StartContainer(ctx context.Context, cli *Client, containerID string) error {
	err := cli.Inner().ContainerStart(ctx, containerID, container.StartOptions{})
	if err != nil {
		return model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("failed to start container %q", containerID),
			err,
		)
	}
	return nil
}

// StopContainer stops a running container by its ID using the Docker
// SDK. The daemon sends SIGTERM and falls back to SIGKILL after its
// default timeout.
func StopContainer(ctx context.Context, cli *Client, containerID string) error {
	// StopOptions with nil Timeout uses Docker's default (10 seconds),
	// giving the container a chance to shut down gracefully.
	err := cli.Inner().ContainerStop(ctx, containerID, container.StopOptions{})
	if err != nil {
		return model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("failed to stop container %q", containerID),
			err,
		)
	}
	return nil
}

// RemoveContainer removes a container by its ID using the Docker SDK.
// The container must be stopped first unless force is true, in which
// case Docker kills it before removal.
func RemoveContainer(ctx context.Context, cli *Client, containerID string, force bool) error {
	err := cli.Inner().ContainerRemove(ctx, containerID, container.RemoveOptions{
		Force: force,
	})
	if err != nil {
		return model.WrapCLIError(
			model.ExitDockerNotRunning,
			fmt.Sprintf("failed to remove container %q", containerID),
			err,
		)
	}
	return nil
}
