package cli

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asisai/asis-deploy/internal/descriptor"
	"github.com/asisai/asis-deploy/internal/model"
)

// setDescriptorFlags sets the package-level flag variables for a test
// and restores them on cleanup.
func setDescriptorFlags(t *testing.T, file, context string) {
	t.Helper()
	prevFile, prevContext := descriptorFile, buildContext
	descriptorFile, buildContext = file, context
	t.Cleanup(func() {
		descriptorFile, buildContext = prevFile, prevContext
	})
}

func TestLoadDescriptorStockFallback(t *testing.T) {
	// No descriptor file in the working directory and the flag at its
	// default: the built-in stock variants are used.
	tmp := t.TempDir()
	t.Chdir(tmp)
	setDescriptorFlags(t, descriptor.DefaultFileName, "")

	desc, err := loadDescriptor()
	require.NoError(t, err)
	assert.Len(t, desc.Variants, 5)
	assert.Equal(t, tmp, desc.Context)
}

func TestLoadDescriptorExplicitMissing(t *testing.T) {
	setDescriptorFlags(t, filepath.Join(t.TempDir(), "nope.jsonc"), "")

	_, err := loadDescriptor()
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitDescriptorNotFound, cliErr.Code)
}

func TestLoadDescriptorFromFile(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "asis-deploy.jsonc")
	content := `{
	  // single test variant
	  "variants": [
	    {
	      "name": "minimal",
	      "baseImage": "python:3.11-slim",
	      "manifestPath": "requirements.txt",
	      "entrypoint": "app_minimal.py",
	      "port": 8000,
	      "launch": {"kind": "interpreter", "target": "app_minimal.py"},
	    },
	  ],
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	setDescriptorFlags(t, path, "")

	desc, err := loadDescriptor()
	require.NoError(t, err)
	require.Len(t, desc.Variants, 1)
	assert.Equal(t, "minimal", desc.Variants[0].Name)
	assert.Equal(t, tmp, desc.Context)
}

func TestLoadDescriptorContextOverride(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "asis-deploy.jsonc")
	content := `{"variants": [{"name": "minimal", "baseImage": "python:3.11-slim",
	  "manifestPath": "requirements.txt", "entrypoint": "app_minimal.py",
	  "port": 8000, "launch": {"kind": "interpreter", "target": "app_minimal.py"}}]}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	otherCtx := t.TempDir()
	setDescriptorFlags(t, path, otherCtx)

	desc, err := loadDescriptor()
	require.NoError(t, err)
	assert.Equal(t, otherCtx, desc.Context)
}

func TestSelectVariants(t *testing.T) {
	desc := descriptor.Default(t.TempDir())

	t.Run("by name", func(t *testing.T) {
		variants, err := selectVariants(desc, "production", false)
		require.NoError(t, err)
		require.Len(t, variants, 1)
		assert.Equal(t, "production", variants[0].Name)
	})

	t.Run("all", func(t *testing.T) {
		variants, err := selectVariants(desc, "", true)
		require.NoError(t, err)
		assert.Len(t, variants, len(desc.Variants))
	})

	t.Run("unknown name", func(t *testing.T) {
		_, err := selectVariants(desc, "nonexistent", false)
		require.Error(t, err)

		var cliErr *model.CLIError
		require.True(t, errors.As(err, &cliErr))
		assert.Equal(t, model.ExitVariantNotFound, cliErr.Code)
	})
}
