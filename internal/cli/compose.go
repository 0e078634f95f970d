// Package cli — compose.go implements the "asisctl compose" command.
//
// The compose command renders all deployment variants as a single
// docker-compose file, one service per variant, so the whole matrix
// can be brought up side by side for comparison testing.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/asisai/asis-deploy/internal/docker"
	"github.com/asisai/asis-deploy/internal/dockerfile"
	"github.com/asisai/asis-deploy/internal/model"
)

// composeFlags holds the flag values for the compose command.
type composeFlags struct {
	output string // --output: file to write instead of stdout
}

// NewComposeCommand creates the "compose" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewComposeCommand() *cobra.Command {
	flags := &composeFlags{}

	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Render all variants as a docker-compose file",
		Long: `Render every deployment variant as one docker-compose service.

Each service builds from its own rendered Dockerfile.<variant> and
publishes its variant port host-side, so all variants can run
simultaneously. Variants sharing a port will conflict at "up" time;
use "asisctl validate" to catch that first.

Examples:
  asisctl compose
  asisctl compose --output docker-compose.asis.yml`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompose(flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "File to write the compose document to")

	return cmd
}

// runCompose is the main logic function for the compose command.
func runCompose(flags *composeFlags) error {
	desc, err := loadDescriptor()
	if err != nil {
		return err
	}

	content, err := dockerfile.RenderCompose(desc.Variants, desc.Context, docker.LaunchLabels)
	if err != nil {
		return model.WrapCLIError(model.ExitValidationFailed, "failed to render compose document", err)
	}

	if flags.output == "" {
		fmt.Print(content)
		return nil
	}

	if writeErr := os.WriteFile(flags.output, []byte(content), 0o644); writeErr != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to write compose file", writeErr)
	}
	if !IsJSONOutput() {
		fmt.Printf("Wrote %s\n", flags.output)
	}
	return nil
}
