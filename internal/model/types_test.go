package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestVariantStatus_String verifies that VariantStatus values produce
// the expected string representations for CLI output and JSON serialization.
func TestVariantStatus_String(t *testing.T) {
	tests := []struct {
		status   VariantStatus
		expected string
	}{
		{StatusRunning, "running"},
		{StatusStopped, "stopped"},
		{StatusOrphaned, "orphaned"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.status.String())
		})
	}
}

// TestVariantStatus_IsValid checks that only defined status values pass validation.
func TestVariantStatus_IsValid(t *testing.T) {
	assert.True(t, StatusRunning.IsValid())
	assert.True(t, StatusStopped.IsValid())
	assert.True(t, StatusOrphaned.IsValid())
	assert.False(t, VariantStatus("invalid").IsValid())
	assert.False(t, VariantStatus("").IsValid())
}

// TestParseVariantStatus verifies string-to-status conversion,
// including case normalization and error cases.
func TestParseVariantStatus(t *testing.T) {
	tests := []struct {
		input    string
		expected VariantStatus
		hasError bool
	}{
		{"running", StatusRunning, false},
		{"stopped", StatusStopped, false},
		{"orphaned", StatusOrphaned, false},
		{"Running", StatusRunning, false}, // case insensitive
		{"STOPPED", StatusStopped, false}, // case insensitive
		{"invalid", "", true},             // unknown value
		{"", "", true},                    // empty string
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := ParseVariantStatus(tt.input)
			if tt.hasError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

// TestParseLaunchKind verifies string-to-kind conversion for all launch
// command shapes.
func TestParseLaunchKind(t *testing.T) {
	tests := []struct {
		input    string
		expected LaunchKind
		hasError bool
	}{
		{"interpreter", LaunchInterpreter, false},
		{"app-server", LaunchAppServer, false},
		{"script", LaunchScript, false},
		{"App-Server", LaunchAppServer, false},
		{"gunicorn", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := ParseLaunchKind(tt.input)
			if tt.hasError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

// TestLaunchSpec_Argv covers the three launch command shapes: direct
// interpreter invocation, application-server invocation with bind address
// and workers, and shell script invocation.
func TestLaunchSpec_Argv(t *testing.T) {
	tests := []struct {
		name     string
		spec     LaunchSpec
		port     int
		expected []string
	}{
		{
			name:     "interpreter with default program",
			spec:     LaunchSpec{Kind: LaunchInterpreter, Target: "app_minimal.py"},
			port:     8000,
			expected: []string{"python3", "app_minimal.py"},
		},
		{
			name:     "interpreter with explicit program",
			spec:     LaunchSpec{Kind: LaunchInterpreter, Program: "python", Target: "main_simple.py"},
			port:     8080,
			expected: []string{"python", "main_simple.py"},
		},
		{
			name: "app-server with workers",
			spec: LaunchSpec{Kind: LaunchAppServer, Target: "asis_production_system:app", Workers: 1},
			port: 8000,
			expected: []string{
				"uvicorn", "asis_production_system:app",
				"--host", "0.0.0.0", "--port", "8000", "--workers", "1",
			},
		},
		{
			name: "gunicorn with worker class",
			spec: LaunchSpec{
				Kind:        LaunchAppServer,
				Program:     "gunicorn",
				Target:      "main:app",
				Workers:     1,
				WorkerClass: "uvicorn.workers.UvicornWorker",
			},
			port: 8000,
			expected: []string{
				"gunicorn", "main:app",
				"--host", "0.0.0.0", "--port", "8000",
				"--workers", "1", "--worker-class", "uvicorn.workers.UvicornWorker",
			},
		},
		{
			name:     "script",
			spec:     LaunchSpec{Kind: LaunchScript, Target: "./start.sh"},
			port:     8000,
			expected: []string{"./start.sh"},
		},
		{
			name:     "extra args appended last",
			spec:     LaunchSpec{Kind: LaunchInterpreter, Target: "main.py", ExtraArgs: []string{"--debug"}},
			port:     8000,
			expected: []string{"python3", "main.py", "--debug"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			argv, err := tt.spec.Argv(tt.port)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, argv)
		})
	}
}

// TestLaunchSpec_Argv_Errors verifies that malformed specs are rejected.
func TestLaunchSpec_Argv_Errors(t *testing.T) {
	_, err := (&LaunchSpec{Kind: LaunchInterpreter}).Argv(8000)
	assert.Error(t, err, "empty target should be rejected")

	_, err = (&LaunchSpec{Kind: LaunchKind("container"), Target: "x"}).Argv(8000)
	assert.Error(t, err, "unknown kind should be rejected")
}

// TestLaunchSpec_Validate checks cross-field launch spec constraints.
func TestLaunchSpec_Validate(t *testing.T) {
	tests := []struct {
		name     string
		spec     LaunchSpec
		hasError bool
	}{
		{"valid interpreter", LaunchSpec{Kind: LaunchInterpreter, Target: "main.py"}, false},
		{"valid app-server", LaunchSpec{Kind: LaunchAppServer, Target: "main:app", Workers: 1}, false},
		{"missing target", LaunchSpec{Kind: LaunchScript}, true},
		{"negative workers", LaunchSpec{Kind: LaunchAppServer, Target: "main:app", Workers: -1}, true},
		{"workers on interpreter", LaunchSpec{Kind: LaunchInterpreter, Target: "main.py", Workers: 2}, true},
		{"worker class on script", LaunchSpec{Kind: LaunchScript, Target: "./start.sh", WorkerClass: "x"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.hasError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestHealthCheck_ApplyDefaults verifies that omitted fields receive the
// standard defaults and explicit values are preserved.
func TestHealthCheck_ApplyDefaults(t *testing.T) {
	hc := &HealthCheck{}
	hc.ApplyDefaults()
	assert.Equal(t, "/health", hc.Path)
	assert.Equal(t, 30*time.Second, hc.Interval)
	assert.Equal(t, 5*time.Second, hc.Timeout)
	assert.Equal(t, 5*time.Second, hc.StartPeriod)
	assert.Equal(t, 3, hc.Retries)

	custom := &HealthCheck{Path: "/", Interval: 10 * time.Second, Retries: 5}
	custom.ApplyDefaults()
	assert.Equal(t, "/", custom.Path)
	assert.Equal(t, 10*time.Second, custom.Interval)
	assert.Equal(t, 5, custom.Retries)
}

// TestHealthCheck_Validate exercises the health check field constraints.
func TestHealthCheck_Validate(t *testing.T) {
	valid := HealthCheck{
		Path:        "/health",
		Interval:    30 * time.Second,
		Timeout:     5 * time.Second,
		StartPeriod: 5 * time.Second,
		Retries:     3,
	}

	tests := []struct {
		name   string
		mutate func(h *HealthCheck)
	}{
		{"relative path", func(h *HealthCheck) { h.Path = "health" }},
		{"zero interval", func(h *HealthCheck) { h.Interval = 0 }},
		{"zero timeout", func(h *HealthCheck) { h.Timeout = 0 }},
		{"timeout >= interval", func(h *HealthCheck) { h.Timeout = h.Interval }},
		{"negative start period", func(h *HealthCheck) { h.StartPeriod = -time.Second }},
		{"zero retries", func(h *HealthCheck) { h.Retries = 0 }},
	}

	require.NoError(t, valid.Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := valid
			tt.mutate(&hc)
			assert.Error(t, hc.Validate())
		})
	}
}

// TestValidateName checks the variant naming rules.
func TestValidateName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		hasError bool
	}{
		{"simple name", "minimal", false},
		{"hyphenated", "asis-production", false},
		{"single char", "a", false},
		{"digits", "v2", false},
		{"empty", "", true},
		{"leading hyphen", "-minimal", true},
		{"trailing hyphen", "minimal-", true},
		{"underscore", "asis_prod", true},
		{"slash", "asis/prod", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if tt.hasError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestVariant_ApplyDefaults verifies working directory and environment
// defaulting, including the PORT/PYTHONPATH conventions.
func TestVariant_ApplyDefaults(t *testing.T) {
	v := Variant{
		Name:       "minimal",
		BaseImage:  "python:3.11-slim",
		Entrypoint: "app_minimal.py",
		Port:       8000,
		Launch:     LaunchSpec{Kind: LaunchInterpreter, Target: "app_minimal.py"},
	}
	v.ApplyDefaults()

	assert.Equal(t, "/app", v.WorkDir)
	assert.Equal(t, "/app", v.Env["PYTHONPATH"])
	assert.Equal(t, "8000", v.Env["PORT"])

	// Explicit values survive defaulting.
	custom := Variant{
		Name:    "simple",
		WorkDir: "/srv/asis",
		Env:     map[string]string{"PORT": "8080", "PYTHONPATH": "/srv"},
		Port:    8080,
	}
	custom.ApplyDefaults()
	assert.Equal(t, "/srv/asis", custom.WorkDir)
	assert.Equal(t, "8080", custom.Env["PORT"])
	assert.Equal(t, "/srv", custom.Env["PYTHONPATH"])
}

// TestVariant_Validate exercises the structural variant constraints.
func TestVariant_Validate(t *testing.T) {
	valid := func() Variant {
		return Variant{
			Name:       "production",
			BaseImage:  "python:3.11-slim",
			Entrypoint: "asis_production_system.py",
			Port:       8000,
			Launch:     LaunchSpec{Kind: LaunchAppServer, Target: "asis_production_system:app", Workers: 1},
			HealthCheck: &HealthCheck{
				Path:        "/health",
				Interval:    30 * time.Second,
				Timeout:     5 * time.Second,
				StartPeriod: 5 * time.Second,
				Retries:     3,
			},
		}
	}

	require.NoError(t, func() error { v := valid(); return v.Validate() }())

	tests := []struct {
		name   string
		mutate func(v *Variant)
	}{
		{"empty name", func(v *Variant) { v.Name = "" }},
		{"bad name", func(v *Variant) { v.Name = "prod_1" }},
		{"empty base image", func(v *Variant) { v.BaseImage = "" }},
		{"empty entrypoint", func(v *Variant) { v.Entrypoint = "" }},
		{"port zero", func(v *Variant) { v.Port = 0 }},
		{"port too high", func(v *Variant) { v.Port = 70000 }},
		{"bad launch", func(v *Variant) { v.Launch.Target = "" }},
		{"bad health check", func(v *Variant) { v.HealthCheck.Retries = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := valid()
			tt.mutate(&v)
			assert.Error(t, v.Validate())
		})
	}
}

// TestVariant_Naming verifies the derived image tag and container name.
func TestVariant_Naming(t *testing.T) {
	v := Variant{Name: "railway"}
	assert.Equal(t, "asis/railway:latest", v.ImageTag())
	assert.Equal(t, "asis-railway", v.ContainerName())
}

// TestCLIError verifies error formatting and unwrapping behavior.
func TestCLIError(t *testing.T) {
	plain := NewCLIError(ExitValidationFailed, "descriptor invalid")
	assert.Equal(t, "descriptor invalid", plain.Error())
	assert.Equal(t, ExitValidationFailed, plain.Code)
	assert.Nil(t, plain.Unwrap())

	underlying := assert.AnError
	wrapped := WrapCLIError(ExitBuildFailed, "image build aborted", underlying)
	assert.Contains(t, wrapped.Error(), "image build aborted")
	assert.ErrorIs(t, wrapped, underlying)
}
