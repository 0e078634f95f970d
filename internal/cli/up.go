// Package cli — up.go implements the "asisctl up" command.
//
// The up command is the primary user-facing operation. It takes a
// variant from descriptor to running container:
//
//  1. Load and validate the descriptor
//  2. Verify the variant's host port is free
//  3. Build the image (unless --no-build)
//  4. Run the container with the asis.* management labels
//  5. Wait for the port to accept connections
//  6. If the variant declares a health check, wait for it to pass
//     (unless --no-wait)
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/asisai/asis-deploy/internal/descriptor"
	"github.com/asisai/asis-deploy/internal/docker"
	"github.com/asisai/asis-deploy/internal/model"
	"github.com/asisai/asis-deploy/internal/port"
	"github.com/asisai/asis-deploy/internal/probe"
)

// bindDeadline is how long up waits for the container to start
// accepting TCP connections on the published port when the variant
// declares no health check.
const bindDeadline = 30 * time.Second

// bindWaitDeadline bounds the wait for the container to bind its port.
// A declared health check already states how long startup may take, so
// its start period is the bound; otherwise the default applies.
func bindWaitDeadline(v *model.Variant) time.Duration {
	if v.HealthCheck != nil && v.HealthCheck.StartPeriod > 0 {
		return v.HealthCheck.StartPeriod
	}
	return bindDeadline
}

// upFlags holds the flag values for the up command.
type upFlags struct {
	noBuild bool // --no-build: run the existing image without rebuilding
	noWait  bool // --no-wait: don't block on the health check
}

// NewUpCommand creates the "up" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewUpCommand() *cobra.Command {
	flags := &upFlags{}

	cmd := &cobra.Command{
		Use:   "up <variant>",
		Short: "Build and run a deployment variant",
		Long: `Build a variant's image and run it as a managed container.

The container is named asis-<variant>, labeled for later discovery,
and publishes the variant port host-side. When the variant declares a
health check, up blocks until the check reports healthy (exit code 8
if it never does).

Examples:
  asisctl up production
  asisctl up minimal --no-build
  asisctl up railway --no-wait`,

		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runUp(cmd.Context(), args[0], flags)
		},
	}

	cmd.Flags().BoolVar(&flags.noBuild, "no-build", false, "Run the existing image without rebuilding")
	cmd.Flags().BoolVar(&flags.noWait, "no-wait", false, "Don't wait for the health check to pass")

	return cmd
}

// runUp is the main orchestration function for the up command.
func runUp(ctx context.Context, name string, flags *upFlags) error {
	// Step 1: Load and validate the descriptor, find the variant.
	desc, err := loadDescriptor()
	if err != nil {
		return err
	}
	if err := descriptor.ValidateStrict(desc); err != nil {
		return err
	}
	v, err := descriptor.FindVariant(desc, name)
	if err != nil {
		return err
	}

	// Step 2: Verify the host port is free before doing any Docker work.
	scanner := port.NewScanner()
	if err := scanner.EnsureAvailable([]int{v.Port}); err != nil {
		return model.WrapCLIError(model.ExitPortUnavailable,
			fmt.Sprintf("port %d is not available", v.Port), err)
	}
	VerboseLog("Port %d is available", v.Port)

	// Step 3: Build the image.
	if !flags.noBuild {
		if buildErr := docker.BuildVariant(ctx, desc.Context, v); buildErr != nil {
			return buildErr
		}
		VerboseLog("Built %s", v.ImageTag())
	}

	// Step 4: Connect to Docker and run the container.
	cli, err := docker.NewClient()
	if err != nil {
		return err // NewClient already returns CLIError with ExitDockerNotRunning
	}
	defer func() { _ = cli.Close() }()

	if err := docker.RunVariant(ctx, cli, v); err != nil {
		return err
	}
	VerboseLog("Started container %s", v.ContainerName())

	// Step 5: Wait for the published port to accept connections.
	if err := scanner.WaitForBind(ctx, v.Port, bindWaitDeadline(v)); err != nil {
		return model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("container did not bind port %d", v.Port), err)
	}

	// Step 6: Wait for the health check, when one is declared.
	state := model.HealthStarting
	if v.HealthCheck != nil && !flags.noWait {
		p := probe.New(fmt.Sprintf("http://localhost:%d", v.Port), *v.HealthCheck)
		if err := p.WaitHealthy(ctx); err != nil {
			return err
		}
		state = p.State()
	}

	printUpResult(v, state)
	return nil
}

// printUpResult outputs the up command results in text or JSON format.
func printUpResult(v *model.Variant, state model.HealthState) {
	if IsJSONOutput() {
		type resultJSON struct {
			Variant   string `json:"variant"`
			Container string `json:"container"`
			Image     string `json:"image"`
			Port      int    `json:"port"`
			URL       string `json:"url"`
			Health    string `json:"health,omitempty"`
		}

		result := resultJSON{
			Variant:   v.Name,
			Container: v.ContainerName(),
			Image:     v.ImageTag(),
			Port:      v.Port,
			URL:       fmt.Sprintf("http://localhost:%d", v.Port),
		}
		if v.HealthCheck != nil {
			result.Health = state.String()
		}

		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Variant %q is up\n", v.Name)
	fmt.Printf("  Container: %s\n", v.ContainerName())
	fmt.Printf("  Image:     %s\n", v.ImageTag())
	fmt.Printf("  URL:       http://localhost:%d\n", v.Port)
	if v.HealthCheck != nil {
		fmt.Printf("  Health:    %s\n", state)
	}
}
