package descriptor

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asisai/asis-deploy/internal/model"
)

// writeContext creates a temporary build context populated with the given
// file names, so file-presence validation has something to find.
func writeContext(t *testing.T, files ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("# placeholder\n"), 0o644))
	}
	return dir
}

// TestLoad parses a JSONC descriptor with comments and verifies the
// materialized variants, including duration parsing and defaulting.
func TestLoad(t *testing.T) {
	dir := writeContext(t, "requirements.txt", "app_minimal.py")
	descriptorJSON := `{
		// ASIS deployment descriptor
		"variants": [
			{
				"name": "minimal",
				"baseImage": "python:3.11-slim",
				"manifestPath": "requirements.txt",
				"entrypoint": "app_minimal.py",
				"port": 8000,
				"healthCheck": {
					"path": "/health",
					"interval": "10s",
					"timeout": "2s",
					"startPeriod": "15s",
					"retries": 5, // trailing comma tolerated below
				},
				"launch": {"kind": "interpreter", "target": "app_minimal.py"},
			},
		],
	}`
	path := filepath.Join(dir, DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte(descriptorJSON), 0o644))

	desc, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, dir, desc.Context)
	require.Len(t, desc.Variants, 1)

	v := desc.Variants[0]
	assert.Equal(t, "minimal", v.Name)
	assert.Equal(t, "python:3.11-slim", v.BaseImage)
	assert.Equal(t, 8000, v.Port)
	assert.Equal(t, model.LaunchInterpreter, v.Launch.Kind)

	require.NotNil(t, v.HealthCheck)
	assert.Equal(t, 10*time.Second, v.HealthCheck.Interval)
	assert.Equal(t, 2*time.Second, v.HealthCheck.Timeout)
	assert.Equal(t, 15*time.Second, v.HealthCheck.StartPeriod)
	assert.Equal(t, 5, v.HealthCheck.Retries)

	// Defaults applied during materialization.
	assert.Equal(t, "/app", v.WorkDir)
	assert.Equal(t, "8000", v.Env["PORT"])
}

// TestLoad_NotFound verifies the descriptor-not-found exit code.
func TestLoad_NotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.jsonc"))
	require.Error(t, err)

	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.ExitDescriptorNotFound, cliErr.Code)
}

// TestLoad_MalformedDuration verifies that a bad duration string is a
// validation failure rather than a silent default.
func TestLoad_MalformedDuration(t *testing.T) {
	dir := t.TempDir()
	descriptorJSON := `{
		"variants": [{
			"name": "bad",
			"baseImage": "python:3.11-slim",
			"entrypoint": "main.py",
			"port": 8000,
			"healthCheck": {"interval": "thirty seconds"},
			"launch": {"kind": "interpreter", "target": "main.py"}
		}]
	}`
	path := filepath.Join(dir, DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte(descriptorJSON), 0o644))

	_, err := Load(path)
	require.Error(t, err)

	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.ExitValidationFailed, cliErr.Code)
}

// TestDefault verifies the five stock variants and their distinguishing
// fields: entrypoints, ports, launch kinds, and health check presence.
func TestDefault(t *testing.T) {
	desc := Default("/src/asis")

	require.Len(t, desc.Variants, 5)
	assert.Equal(t, "/src/asis", desc.Context)

	byName := map[string]model.Variant{}
	for _, v := range desc.Variants {
		byName[v.Name] = v
	}

	minimal := byName["minimal"]
	assert.Equal(t, "app_minimal.py", minimal.Entrypoint)
	assert.Equal(t, 8000, minimal.Port)
	assert.Nil(t, minimal.HealthCheck)
	assert.Equal(t, model.LaunchInterpreter, minimal.Launch.Kind)

	production := byName["production"]
	assert.Equal(t, model.LaunchAppServer, production.Launch.Kind)
	assert.Equal(t, 1, production.Launch.Workers)
	require.NotNil(t, production.HealthCheck)
	assert.Equal(t, "/health", production.HealthCheck.Path)

	simple := byName["simple"]
	assert.Equal(t, 8080, simple.Port)

	railway := byName["railway"]
	assert.Equal(t, "/app/config", railway.Env["ASIS_CONFIG_PATH"])
	assert.Equal(t, "/app/logs", railway.Env["ASIS_LOG_PATH"])
	assert.Equal(t, "/app/data", railway.Env["ASIS_DATA_PATH"])
	assert.Equal(t, "/app", railway.Env["PYTHONPATH"])

	bootstrap := byName["bootstrap"]
	assert.Equal(t, model.LaunchScript, bootstrap.Launch.Kind)
	assert.Equal(t, "./start.sh", bootstrap.Launch.Target)
}

// TestValidate_OK checks that a complete context yields no errors.
func TestValidate_OK(t *testing.T) {
	dir := writeContext(t,
		"requirements.txt",
		"app_minimal.py", "asis_production_system.py",
		"main_simple.py", "main.py", "start.sh",
	)
	desc := Default(dir)

	errs := Validate(desc)
	assert.Empty(t, errs)
	assert.NoError(t, ValidateStrict(desc))
}

// TestValidate_MissingEntrypoint verifies that omitting a referenced
// entrypoint file is reported deterministically.
func TestValidate_MissingEntrypoint(t *testing.T) {
	dir := writeContext(t, "requirements.txt")
	desc := &Descriptor{
		Context: dir,
		Variants: []model.Variant{{
			Name:         "minimal",
			BaseImage:    "python:3.11-slim",
			ManifestPath: "requirements.txt",
			Entrypoint:   "app_minimal.py",
			WorkDir:      "/app",
			Port:         8000,
			Launch:       model.LaunchSpec{Kind: model.LaunchInterpreter, Target: "app_minimal.py"},
		}},
	}

	errs := Validate(desc)
	require.Len(t, errs, 1)
	assert.Equal(t, "entrypoint", errs[0].Field)
	assert.Contains(t, errs[0].Message, "app_minimal.py")

	err := ValidateStrict(desc)
	require.Error(t, err)
	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.ExitValidationFailed, cliErr.Code)
}

// TestValidate_Duplicates verifies cross-variant uniqueness checks.
func TestValidate_Duplicates(t *testing.T) {
	dir := writeContext(t, "requirements.txt", "main.py")
	base := model.Variant{
		BaseImage:    "python:3.11-slim",
		ManifestPath: "requirements.txt",
		Entrypoint:   "main.py",
		WorkDir:      "/app",
		Port:         8000,
		Launch:       model.LaunchSpec{Kind: model.LaunchInterpreter, Target: "main.py"},
	}

	a, b := base, base
	a.Name = "app"
	b.Name = "app"
	dupName := &Descriptor{Context: dir, Variants: []model.Variant{a, b}}

	errs := Validate(dupName)
	require.NotEmpty(t, errs)
	foundDup := false
	for _, e := range errs {
		if e.Field == "name" {
			foundDup = true
		}
	}
	assert.True(t, foundDup, "duplicate name should be reported")

	c, d := base, base
	c.Name = "first"
	d.Name = "second" // same port as first
	dupPort := &Descriptor{Context: dir, Variants: []model.Variant{c, d}}

	errs = Validate(dupPort)
	require.NotEmpty(t, errs)
	foundPort := false
	for _, e := range errs {
		if e.Field == "port" {
			foundPort = true
		}
	}
	assert.True(t, foundPort, "port collision should be reported")
}

// TestValidate_MissingScript covers the script-launch file presence check.
func TestValidate_MissingScript(t *testing.T) {
	dir := writeContext(t, "requirements.txt", "main.py")
	desc := &Descriptor{
		Context: dir,
		Variants: []model.Variant{{
			Name:         "bootstrap",
			BaseImage:    "python:3.11-slim",
			ManifestPath: "requirements.txt",
			Entrypoint:   "main.py",
			WorkDir:      "/app",
			Port:         8000,
			Launch:       model.LaunchSpec{Kind: model.LaunchScript, Target: "./start.sh"},
		}},
	}

	errs := Validate(desc)
	require.Len(t, errs, 1)
	assert.Equal(t, "launch.target", errs[0].Field)
}

// TestFindVariant verifies lookup and the variant-not-found exit code.
func TestFindVariant(t *testing.T) {
	desc := Default(t.TempDir())

	v, err := FindVariant(desc, "production")
	require.NoError(t, err)
	assert.Equal(t, "production", v.Name)

	_, err = FindVariant(desc, "ghost")
	require.Error(t, err)
	var cliErr *model.CLIError
	require.ErrorAs(t, err, &cliErr)
	assert.Equal(t, model.ExitVariantNotFound, cliErr.Code)
}
