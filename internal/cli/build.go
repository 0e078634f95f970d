// Package cli — build.go implements the "asisctl build" command.
//
// The build command renders a variant's Dockerfile into the build
// context and runs a docker image build for it, tagging the result
// asis/<variant>:latest. With --all, every variant in the descriptor
// is built in declaration order, stopping at the first failure.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/asisai/asis-deploy/internal/descriptor"
	"github.com/asisai/asis-deploy/internal/docker"
	"github.com/asisai/asis-deploy/internal/model"
)

// buildFlags holds the flag values for the build command.
type buildFlags struct {
	all bool // --all: build every variant in the descriptor
}

// NewBuildCommand creates the "build" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewBuildCommand() *cobra.Command {
	flags := &buildFlags{}

	cmd := &cobra.Command{
		Use:   "build [variant]",
		Short: "Build variant images",
		Long: `Build the Docker image for one or all deployment variants.

The variant's Dockerfile is rendered into the build context as
Dockerfile.<variant> and the image is tagged asis/<variant>:latest.
The descriptor is validated first; a missing entrypoint or manifest
fails before Docker is invoked.

Examples:
  asisctl build production
  asisctl build --all`,

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
			return runBuild(cmd.Context(), name, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.all, "all", false, "Build every variant in the descriptor")

	return cmd
}

// runBuild is the main logic function for the build command.
func runBuild(ctx context.Context, name string, flags *buildFlags) error {
	desc, err := loadDescriptor()
	if err != nil {
		return err
	}

	if err := descriptor.ValidateStrict(desc); err != nil {
		return err
	}

	variants, err := selectVariants(desc, name, flags.all)
	if err != nil {
		return err
	}

	for _, v := range variants {
		VerboseLog("Building variant %q (context %s)", v.Name, desc.Context)
		if buildErr := docker.BuildVariant(ctx, desc.Context, v); buildErr != nil {
			return buildErr
		}
		if !IsJSONOutput() {
			fmt.Printf("Built %s\n", v.ImageTag())
		}
	}

	return nil
}
