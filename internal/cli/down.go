// Package cli — down.go implements the "asisctl down" command.
//
// The down command tears a variant deployment down: its containers are
// stopped and removed. Images are left in place; docker image prune
// handles those. With --all, every managed variant is removed.
package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/asisai/asis-deploy/internal/docker"
	"github.com/asisai/asis-deploy/internal/model"
)

// downFlags holds the flag values for the down command.
type downFlags struct {
	all   bool // --all: remove every managed variant
	force bool // --force: remove containers even if still running
}

// NewDownCommand creates the "down" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewDownCommand() *cobra.Command {
	flags := &downFlags{}

	cmd := &cobra.Command{
		Use:   "down [variant]",
		Short: "Stop and remove variant containers",
		Long: `Stop and remove the containers of a deployment variant.

Running containers are stopped first. Images are kept. With --all,
every container managed by asisctl is removed.

Examples:
  asisctl down production
  asisctl down --all
  asisctl down minimal --force`,

		Args: cobra.MaximumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			if name == "" && !flags.all {
				return model.NewCLIError(model.ExitGeneralError,
					"a variant name or --all is required")
			}
			return runDown(cmd.Context(), name, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.all, "all", false, "Remove every managed variant")
	cmd.Flags().BoolVar(&flags.force, "force", false, "Remove containers even if still running")

	return cmd
}

// runDown is the main logic function for the down command.
func runDown(ctx context.Context, name string, flags *downFlags) error {
	cli, err := docker.NewClient()
	if err != nil {
		return err
	}
	defer func() { _ = cli.Close() }()

	var targets []model.ContainerInfo
	if flags.all {
		containers, listErr := docker.ListManagedContainers(ctx, cli)
		if listErr != nil {
			return listErr
		}
		targets = containers
	} else {
		group, groupErr := variantContainers(ctx, cli, name)
		if groupErr != nil {
			return groupErr
		}
		targets = group
	}

	// Removal order is deterministic so repeated runs log identically.
	sort.Slice(targets, func(i, j int) bool {
		return targets[i].ContainerName < targets[j].ContainerName
	})

	for _, c := range targets {
		if !flags.force {
			VerboseLog("Stopping container %s", c.ContainerName)
			if stopErr := docker.StopContainer(ctx, cli, c.ContainerID); stopErr != nil {
				return stopErr
			}
		}
		VerboseLog("Removing container %s", c.ContainerName)
		if rmErr := docker.RemoveContainer(ctx, cli, c.ContainerID, flags.force); rmErr != nil {
			return rmErr
		}
	}

	if !IsJSONOutput() {
		if flags.all {
			fmt.Printf("Removed %d managed container(s)\n", len(targets))
		} else {
			fmt.Printf("Removed variant %q (%d container(s))\n", name, len(targets))
		}
	}
	return nil
}
