// Package cli — stop.go implements the "asisctl stop" command.
//
// The stop command stops a variant's containers without removing them,
// so "asisctl up --no-build" (or a plain docker start) can bring the
// same containers back later.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/asisai/asis-deploy/internal/docker"
	"github.com/asisai/asis-deploy/internal/model"
)

// NewStopCommand creates the "stop" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewStopCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop <variant>",
		Short: "Stop a running variant",
		Long: `Stop the containers of a deployment variant.

The containers are stopped but not removed; their images and labels
are preserved for a later restart or "asisctl down".

Examples:
  asisctl stop production`,

		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runStop(cmd.Context(), args[0])
		},
	}

	return cmd
}

// runStop is the main logic function for the stop command.
func runStop(ctx context.Context, name string) error {
	cli, err := docker.NewClient()
	if err != nil {
		return err
	}
	defer func() { _ = cli.Close() }()

	containers, err := variantContainers(ctx, cli, name)
	if err != nil {
		return err
	}

	for _, c := range containers {
		VerboseLog("Stopping container %s", c.ContainerName)
		if stopErr := docker.StopContainer(ctx, cli, c.ContainerID); stopErr != nil {
			return stopErr
		}
	}

	if !IsJSONOutput() {
		fmt.Printf("Stopped variant %q (%d container(s))\n", name, len(containers))
	}
	return nil
}

// variantContainers returns the managed containers belonging to the
// named variant. Returns exit code 6 when the variant has none.
func variantContainers(ctx context.Context, cli *docker.Client, name string) ([]model.ContainerInfo, error) {
	containers, err := docker.ListManagedContainers(ctx, cli)
	if err != nil {
		return nil, err
	}

	groups := docker.GroupContainersByVariant(containers)
	group, ok := groups[name]
	if !ok || len(group) == 0 {
		return nil, model.NewCLIError(model.ExitVariantNotFound,
			fmt.Sprintf("no deployed containers found for variant %q", name))
	}
	return group, nil
}
