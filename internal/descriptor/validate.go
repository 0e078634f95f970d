// validate.go performs descriptor-level validation: structural checks on
// every variant plus cross-variant uniqueness and build-context file
// presence. A missing entrypoint or dependency manifest is a build-time
// failure and must be reported before any image build starts, so that
// "validate" exits non-zero deterministically.
package descriptor

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/asisai/asis-deploy/internal/model"
)

// ValidationError represents a specific validation failure in a
// deployment descriptor.
type ValidationError struct {
	// Variant is the name of the offending variant, or "" for
	// descriptor-level problems.
	Variant string

	// Field is the descriptor field that failed validation.
	Field string

	// Message describes what is wrong with the field value.
	Message string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if e.Variant == "" {
		return fmt.Sprintf("descriptor validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("descriptor validation error: variant %q: %s: %s", e.Variant, e.Field, e.Message)
}

// Validate checks the descriptor for structural problems, duplicate
// names/ports, and missing build-context files. It returns all problems
// found (empty slice = valid descriptor).
func Validate(desc *Descriptor) []ValidationError {
	var errs []ValidationError

	if len(desc.Variants) == 0 {
		errs = append(errs, ValidationError{
			Field:   "variants",
			Message: "descriptor declares no variants",
		})
		return errs
	}

	// Cross-variant uniqueness: names must be unique, and host ports must
	// not collide between variants that would run side by side.
	seenNames := make(map[string]bool)
	seenPorts := make(map[int]string)

	for i := range desc.Variants {
		v := &desc.Variants[i]

		if err := v.Validate(); err != nil {
			errs = append(errs, ValidationError{
				Variant: v.Name,
				Field:   "(variant)",
				Message: err.Error(),
			})
			continue
		}

		if seenNames[v.Name] {
			errs = append(errs, ValidationError{
				Variant: v.Name,
				Field:   "name",
				Message: "duplicate variant name",
			})
		}
		seenNames[v.Name] = true

		if owner, ok := seenPorts[v.Port]; ok {
			errs = append(errs, ValidationError{
				Variant: v.Name,
				Field:   "port",
				Message: fmt.Sprintf("port %d is already declared by variant %q", v.Port, owner),
			})
		} else {
			seenPorts[v.Port] = v.Name
		}

		errs = append(errs, validateFiles(desc.Context, v)...)
	}

	return errs
}

// validateFiles checks that every file the variant's launch command and
// build reference exists in the build context. The image must contain
// the files referenced by the launch command; a missing entrypoint or
// manifest aborts the build, so it is surfaced here first.
func validateFiles(context string, v *model.Variant) []ValidationError {
	var errs []ValidationError

	if !fileExists(filepath.Join(context, v.Entrypoint)) {
		errs = append(errs, ValidationError{
			Variant: v.Name,
			Field:   "entrypoint",
			Message: fmt.Sprintf("entrypoint file %q not found in build context %s", v.Entrypoint, context),
		})
	}

	if v.ManifestPath != "" && !fileExists(filepath.Join(context, v.ManifestPath)) {
		errs = append(errs, ValidationError{
			Variant: v.Name,
			Field:   "manifestPath",
			Message: fmt.Sprintf("dependency manifest %q not found in build context %s", v.ManifestPath, context),
		})
	}

	for _, asset := range v.Assets {
		if !fileExists(filepath.Join(context, asset.Source)) {
			errs = append(errs, ValidationError{
				Variant: v.Name,
				Field:   "assets",
				Message: fmt.Sprintf("asset %q not found in build context %s", asset.Source, context),
			})
		}
	}

	// Script launches must also ship the script itself.
	if v.Launch.Kind == model.LaunchScript {
		script := filepath.Clean(v.Launch.Target)
		if !fileExists(filepath.Join(context, script)) {
			errs = append(errs, ValidationError{
				Variant: v.Name,
				Field:   "launch.target",
				Message: fmt.Sprintf("startup script %q not found in build context %s", v.Launch.Target, context),
			})
		}
	}

	return errs
}

// ValidateStrict runs Validate and converts any failure into a single
// CLIError with ExitValidationFailed, for callers that need a go/no-go
// answer rather than a report.
func ValidateStrict(desc *Descriptor) error {
	errs := Validate(desc)
	if len(errs) == 0 {
		return nil
	}
	first := errs[0]
	return model.WrapCLIError(
		model.ExitValidationFailed,
		fmt.Sprintf("descriptor validation failed with %d problem(s)", len(errs)),
		&first,
	)
}

// FindVariant returns the named variant from the descriptor, or a
// CLIError with ExitVariantNotFound.
func FindVariant(desc *Descriptor, name string) (*model.Variant, error) {
	for i := range desc.Variants {
		if desc.Variants[i].Name == name {
			return &desc.Variants[i], nil
		}
	}
	return nil, model.NewCLIError(
		model.ExitVariantNotFound,
		fmt.Sprintf("variant %q not found in descriptor", name),
	)
}

// fileExists reports whether the path exists on disk (file or directory).
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
