// Package cli — helpers.go holds the descriptor-loading logic shared by
// every subcommand.
package cli

import (
	"os"
	"path/filepath"

	"github.com/asisai/asis-deploy/internal/descriptor"
	"github.com/asisai/asis-deploy/internal/model"
)

// loadDescriptor resolves the deployment descriptor for the current
// invocation.
//
// Resolution order:
//  1. If the --file path exists, load and materialize it.
//  2. If the flag was left at its default and the file is absent, fall
//     back to the built-in stock variants so asisctl works out of the
//     box in an ASIS source checkout.
//  3. If the user named a file explicitly and it is absent, that is an
//     error (exit code 2).
//
// The --context flag, when set, overrides the build context directory.
func loadDescriptor() (*descriptor.Descriptor, error) {
	path := descriptorFile

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if path != descriptor.DefaultFileName {
			return nil, model.NewCLIError(model.ExitDescriptorNotFound,
				"descriptor file not found: "+path)
		}

		// Stock variants, rooted at the current directory (or --context).
		ctxDir := buildContext
		if ctxDir == "" {
			ctxDir, err = os.Getwd()
			if err != nil {
				return nil, model.WrapCLIError(model.ExitGeneralError, "failed to get current directory", err)
			}
		}
		VerboseLog("No descriptor file found, using built-in stock variants")
		return descriptor.Default(ctxDir), nil
	}

	desc, err := descriptor.Load(path)
	if err != nil {
		return nil, err
	}
	if buildContext != "" {
		abs, absErr := filepath.Abs(buildContext)
		if absErr != nil {
			return nil, model.WrapCLIError(model.ExitGeneralError, "failed to resolve build context", absErr)
		}
		desc.Context = abs
	}
	VerboseLog("Loaded descriptor %s (%d variants)", desc.Path, len(desc.Variants))
	return desc, nil
}

// selectVariants returns either the single named variant or, when
// name is empty and all is true, every variant in the descriptor.
func selectVariants(desc *descriptor.Descriptor, name string, all bool) ([]*model.Variant, error) {
	if all {
		variants := make([]*model.Variant, 0, len(desc.Variants))
		for i := range desc.Variants {
			variants = append(variants, &desc.Variants[i])
		}
		return variants, nil
	}

	v, err := descriptor.FindVariant(desc, name)
	if err != nil {
		return nil, err
	}
	return []*model.Variant{v}, nil
}
