// Package cli — list.go implements the "asisctl list" command.
//
// The list command displays all deployed variants by querying Docker
// for containers with the "asis.managed-by=asis-deploy" label.
// Containers are grouped by variant name and presented as a text table
// or JSON array, depending on the --json flag.
//
// An optional --status flag allows filtering by deployment lifecycle
// state (running, stopped, orphaned, or all).
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/asisai/asis-deploy/internal/docker"
	"github.com/asisai/asis-deploy/internal/model"
)

// listFlags holds the flag values for the list command.
type listFlags struct {
	// status filters deployments by their lifecycle state.
	// Valid values: "running", "stopped", "orphaned", "all" (default).
	status string
}

// NewListCommand creates the "list" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewListCommand() *cobra.Command {
	flags := &listFlags{}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List deployed variants",
		Long: `List all deployed variants and their status.

Each deployment is shown with its variant name, base image, lifecycle
status, published port, and container count. State is reconstructed
entirely from Docker labels; there is no state file.

Examples:
  asisctl list
  asisctl list --status running
  asisctl list --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.status, "status", "all",
		"Filter by status: running, stopped, orphaned, all (default: all)")

	return cmd
}

// runList is the main logic function for the list command.
// It connects to Docker, discovers deployed variants, applies the
// status filter, and outputs results in the appropriate format.
func runList(ctx context.Context, flags *listFlags) error {
	// Step 1: Validate the --status flag value.
	statusFilter := flags.status
	if statusFilter != "all" {
		if _, err := model.ParseVariantStatus(statusFilter); err != nil {
			return model.NewCLIError(model.ExitGeneralError,
				fmt.Sprintf("invalid status filter %q: valid values are running, stopped, orphaned, all", statusFilter))
		}
	}

	// Step 2: Connect to Docker and verify the daemon is available.
	cli, err := docker.NewClient()
	if err != nil {
		return err // NewClient already returns CLIError with ExitDockerNotRunning
	}
	defer func() { _ = cli.Close() }()

	VerboseLog("Connected to Docker daemon")

	// Step 3: List all containers managed by asisctl.
	containers, err := docker.ListManagedContainers(ctx, cli)
	if err != nil {
		return err
	}
	VerboseLog("Found %d managed containers", len(containers))

	// Step 4: Group containers by variant name.
	groups := docker.GroupContainersByVariant(containers)

	// Step 5: Build Deployment domain objects for each group.
	var deployments []*model.Deployment
	for variantName, group := range groups {
		dep, buildErr := docker.BuildDeployment(ctx, cli, variantName, group)
		if buildErr != nil {
			// A single deployment with corrupted labels should not prevent
			// listing the others.
			VerboseLog("Warning: skipping variant %q: %v", variantName, buildErr)
			continue
		}
		deployments = append(deployments, dep)
	}

	// Step 6: Sort deployments alphabetically for consistent output.
	sort.Slice(deployments, func(i, j int) bool {
		return deployments[i].Variant.Name < deployments[j].Variant.Name
	})

	// Step 7: Apply the --status filter if specified.
	if statusFilter != "all" {
		filtered := make([]*model.Deployment, 0, len(deployments))
		for _, dep := range deployments {
			if dep.Status.String() == statusFilter {
				filtered = append(filtered, dep)
			}
		}
		deployments = filtered
	}

	// Step 8: Output results in the appropriate format.
	printListResult(deployments)
	return nil
}

// printListResult outputs the deployments in text or JSON format,
// depending on the global --json flag.
func printListResult(deployments []*model.Deployment) {
	if IsJSONOutput() {
		printListResultJSON(deployments)
	} else {
		printListResultText(deployments)
	}
}

// listDeploymentJSON is the JSON output structure for a single
// deployment in the list command.
type listDeploymentJSON struct {
	Variant    string `json:"variant"`
	BaseImage  string `json:"baseImage"`
	Status     string `json:"status"`
	Port       int    `json:"port"`
	Containers int    `json:"containers"`
	HealthPath string `json:"healthPath,omitempty"`
}

// printListResultJSON outputs the deployment list as structured JSON.
// The top-level key is "deployments" containing an array of objects.
func printListResultJSON(deployments []*model.Deployment) {
	type resultJSON struct {
		Deployments []listDeploymentJSON `json:"deployments"`
	}

	result := resultJSON{
		// Empty slice instead of nil so JSON output shows [] rather than
		// null when nothing is deployed.
		Deployments: make([]listDeploymentJSON, 0, len(deployments)),
	}

	for _, dep := range deployments {
		entry := listDeploymentJSON{
			Variant:    dep.Variant.Name,
			BaseImage:  dep.Variant.BaseImage,
			Status:     dep.Status.String(),
			Port:       dep.Variant.Port,
			Containers: len(dep.Containers),
		}
		if dep.Variant.HealthCheck != nil {
			entry.HealthPath = dep.Variant.HealthCheck.Path
		}
		result.Deployments = append(result.Deployments, entry)
	}

	data, _ := json.MarshalIndent(result, "", "  ")
	fmt.Println(string(data))
}

// printListResultText outputs the deployment list as a human-readable
// text table with aligned columns.
//
// The table format is:
//
//	VARIANT      STATUS    PORT   CONTAINERS  IMAGE
//	production   running   8000   1           python:3.11-slim
//	simple       stopped   8080   1           python:3.11-slim
func printListResultText(deployments []*model.Deployment) {
	if len(deployments) == 0 {
		fmt.Println("No deployed variants found.")
		return
	}

	fmt.Printf("%-16s %-10s %-6s %-11s %s\n",
		"VARIANT", "STATUS", "PORT", "CONTAINERS", "IMAGE")

	for _, dep := range deployments {
		fmt.Printf("%-16s %-10s %-6d %-11d %s\n",
			dep.Variant.Name,
			dep.Status.String(),
			dep.Variant.Port,
			len(dep.Containers),
			dep.Variant.BaseImage,
		)
	}
}
