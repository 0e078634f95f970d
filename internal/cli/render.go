// Package cli — render.go implements the "asisctl render" command.
//
// The render command materializes one or all deployment variants into
// Dockerfile text. A single variant renders to stdout by default;
// --output writes Dockerfile.<variant> files into a directory instead,
// which is how the checked-in Dockerfiles are regenerated.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/asisai/asis-deploy/internal/dockerfile"
	"github.com/asisai/asis-deploy/internal/model"
)

// renderFlags holds the flag values for the render command.
type renderFlags struct {
	all    bool   // --all: render every variant in the descriptor
	output string // --output: directory to write Dockerfile.<name> files into
}

// NewRenderCommand creates the "render" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewRenderCommand() *cobra.Command {
	flags := &renderFlags{}

	cmd := &cobra.Command{
		Use:   "render [variant]",
		Short: "Render deployment variants to Dockerfile text",
		Long: `Render one or all deployment variants to Dockerfile text.

A single variant prints to stdout. With --output, each rendered variant
is written to <dir>/Dockerfile.<variant> instead, overwriting any
previous render.

Examples:
  asisctl render production
  asisctl render --all --output deploy/
  asisctl render railway > Dockerfile.railway`,

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
			return runRender(name, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.all, "all", false, "Render every variant in the descriptor")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Directory to write Dockerfile.<variant> files into")

	return cmd
}

// runRender is the main logic function for the render command.
func runRender(name string, flags *renderFlags) error {
	// Stdout mode only makes sense for a single variant; with --all the
	// renders would run together indistinguishably.
	if flags.all && flags.output == "" {
		return model.NewCLIError(model.ExitGeneralError,
			"--all requires --output to direct the rendered files")
	}

	desc, err := loadDescriptor()
	if err != nil {
		return err
	}

	variants, err := selectVariants(desc, name, flags.all)
	if err != nil {
		return err
	}

	for _, v := range variants {
		content, renderErr := dockerfile.Render(v)
		if renderErr != nil {
			return model.WrapCLIError(model.ExitValidationFailed,
				fmt.Sprintf("failed to render variant %q", v.Name), renderErr)
		}

		if flags.output == "" {
			fmt.Print(content)
			continue
		}

		if mkErr := os.MkdirAll(flags.output, 0o755); mkErr != nil {
			return model.WrapCLIError(model.ExitGeneralError, "failed to create output directory", mkErr)
		}
		outPath := filepath.Join(flags.output, dockerfile.DockerfileName(v.Name))
		if writeErr := os.WriteFile(outPath, []byte(content), 0o644); writeErr != nil {
			return model.WrapCLIError(model.ExitGeneralError, "failed to write Dockerfile", writeErr)
		}
		VerboseLog("Rendered %s", outPath)
		if !IsJSONOutput() {
			fmt.Printf("Wrote %s\n", outPath)
		}
	}

	return nil
}
