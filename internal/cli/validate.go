// Package cli — validate.go implements the "asisctl validate" command.
//
// The validate command checks the deployment descriptor without touching
// Docker: structural validation of every variant, duplicate name and
// port detection, and presence of the referenced files in the build
// context. It is meant to run in CI before any image is built.
package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/asisai/asis-deploy/internal/descriptor"
	"github.com/asisai/asis-deploy/internal/model"
)

// NewValidateCommand creates the "validate" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the deployment descriptor",
		Long: `Validate the deployment descriptor and its build context.

Checks performed:
  - every variant is structurally valid (name, image, port, launch)
  - no two variants share a name or a host port
  - the entrypoint, manifest, asset, and script files referenced by
    each variant exist in the build context

Exit code 4 is returned when any check fails.

Examples:
  asisctl validate
  asisctl validate -f deploy/asis-deploy.jsonc --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate()
		},
	}

	return cmd
}

// runValidate is the main logic function for the validate command.
func runValidate() error {
	desc, err := loadDescriptor()
	if err != nil {
		return err
	}

	errs := descriptor.Validate(desc)
	printValidateResult(desc, errs)

	if len(errs) > 0 {
		return model.NewCLIError(model.ExitValidationFailed,
			fmt.Sprintf("descriptor has %d validation error(s)", len(errs)))
	}
	return nil
}

// printValidateResult outputs the validation results in text or JSON
// format, depending on the global --json flag.
func printValidateResult(desc *descriptor.Descriptor, errs []descriptor.ValidationError) {
	if IsJSONOutput() {
		type errJSON struct {
			Variant string `json:"variant,omitempty"`
			Field   string `json:"field,omitempty"`
			Message string `json:"message"`
		}
		type resultJSON struct {
			Valid    bool      `json:"valid"`
			Variants int       `json:"variants"`
			Errors   []errJSON `json:"errors"`
		}

		result := resultJSON{
			Valid:    len(errs) == 0,
			Variants: len(desc.Variants),
			Errors:   make([]errJSON, 0, len(errs)),
		}
		for _, e := range errs {
			result.Errors = append(result.Errors, errJSON{
				Variant: e.Variant,
				Field:   e.Field,
				Message: e.Message,
			})
		}

		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
		return
	}

	if len(errs) == 0 {
		fmt.Printf("Descriptor OK: %d variant(s) valid\n", len(desc.Variants))
		return
	}

	fmt.Printf("Descriptor has %d error(s):\n", len(errs))
	for _, e := range errs {
		fmt.Printf("  - %s\n", e.Error())
	}
}
