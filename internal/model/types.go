// Package model defines the domain types for the ASIS deployment toolkit.
//
// The central entity is the Deployment Variant: one way of packaging and
// launching the ASIS platform inside a container image. A variant pins a
// base image, names a dependency manifest and entrypoint, declares the
// environment and exposed port, optionally carries a health check
// specification, and describes the launch command.
//
// All runtime state is persisted via Docker container labels (see the
// docker package), so these types are transient representations
// reconstructed from descriptor files and Docker API queries.
package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// VariantStatus represents the lifecycle state of a deployed variant.
// The state transitions are:
//
//	[Built] → Running → Stopped ⇄ Running → [Removed]
//	Running/Stopped → Orphaned (when the image is removed out-of-band)
type VariantStatus string

const (
	// StatusRunning indicates the variant's container is running.
	StatusRunning VariantStatus = "running"

	// StatusStopped indicates the container exists but is not running.
	StatusStopped VariantStatus = "stopped"

	// StatusOrphaned indicates the image the container was created from no
	// longer exists on the host, so the container cannot be recreated.
	StatusOrphaned VariantStatus = "orphaned"
)

// String returns the string representation of VariantStatus.
func (s VariantStatus) String() string {
	return string(s)
}

// IsValid checks whether the VariantStatus value is one of the
// predefined valid states.
func (s VariantStatus) IsValid() bool {
	switch s {
	case StatusRunning, StatusStopped, StatusOrphaned:
		return true
	default:
		return false
	}
}

// ParseVariantStatus converts a string to a VariantStatus.
// Returns an error if the string does not match any valid status.
func ParseVariantStatus(s string) (VariantStatus, error) {
	status := VariantStatus(strings.ToLower(s))
	if !status.IsValid() {
		return "", fmt.Errorf("invalid variant status: %q (valid: running, stopped, orphaned)", s)
	}
	return status, nil
}

// LaunchKind represents how a variant's container process is started.
//
// Three kinds are supported, matching the launch command shapes observed
// across the ASIS deployment variants:
//   - interpreter: direct interpreter invocation of a script
//     (e.g. "python app_minimal.py")
//   - app-server: an application-server invocation with worker count and
//     bind address (e.g. "uvicorn main:app --host 0.0.0.0 --workers 1")
//   - script: a shell script that performs its own startup sequence
//     (e.g. "./start.sh")
type LaunchKind string

const (
	// LaunchInterpreter runs the entrypoint file directly under the
	// language interpreter.
	LaunchInterpreter LaunchKind = "interpreter"

	// LaunchAppServer runs an ASGI application server pointed at an
	// application module, with explicit bind address and worker count.
	LaunchAppServer LaunchKind = "app-server"

	// LaunchScript runs a shell script as the container entrypoint.
	LaunchScript LaunchKind = "script"
)

// String returns the string representation of LaunchKind.
func (k LaunchKind) String() string {
	return string(k)
}

// IsValid checks whether the LaunchKind value is one of the
// predefined valid kinds.
func (k LaunchKind) IsValid() bool {
	switch k {
	case LaunchInterpreter, LaunchAppServer, LaunchScript:
		return true
	default:
		return false
	}
}

// ParseLaunchKind converts a string to a LaunchKind.
// Returns an error if the string does not match any valid kind.
func ParseLaunchKind(s string) (LaunchKind, error) {
	kind := LaunchKind(strings.ToLower(s))
	if !kind.IsValid() {
		return "", fmt.Errorf("invalid launch kind: %q (valid: interpreter, app-server, script)", s)
	}
	return kind, nil
}

// LaunchSpec describes the command executed when the container starts.
type LaunchSpec struct {
	// Kind selects the launch command shape (interpreter, app-server, script).
	Kind LaunchKind `json:"kind"`

	// Program is the binary to invoke. Defaults depend on Kind:
	// "python3" for interpreter launches, "uvicorn" for app-server
	// launches. Ignored for script launches.
	Program string `json:"program,omitempty"`

	// Target is the interpreter script path, the app-server module spec
	// ("module:attribute"), or the shell script path, depending on Kind.
	Target string `json:"target"`

	// Workers is the application-server worker count. Only meaningful for
	// app-server launches. Zero means the server's own default.
	Workers int `json:"workers,omitempty"`

	// WorkerClass is the application-server worker class flag value
	// (e.g. "uvicorn.workers.UvicornWorker" for gunicorn). Only meaningful
	// for app-server launches.
	WorkerClass string `json:"workerClass,omitempty"`

	// ExtraArgs are appended verbatim after the generated arguments.
	ExtraArgs []string `json:"extraArgs,omitempty"`
}

// Argv builds the container command for this launch spec. The port
// parameter supplies the bind port for app-server launches; the bind
// address is always 0.0.0.0 so the process is reachable through the
// container's published port.
func (l *LaunchSpec) Argv(port int) ([]string, error) {
	if l.Target == "" {
		return nil, fmt.Errorf("launch spec: target must not be empty")
	}

	switch l.Kind {
	case LaunchInterpreter:
		program := l.Program
		if program == "" {
			program = "python3"
		}
		argv := []string{program, l.Target}
		return append(argv, l.ExtraArgs...), nil

	case LaunchAppServer:
		program := l.Program
		if program == "" {
			program = "uvicorn"
		}
		argv := []string{program, l.Target, "--host", "0.0.0.0", "--port", fmt.Sprintf("%d", port)}
		if l.Workers > 0 {
			argv = append(argv, "--workers", fmt.Sprintf("%d", l.Workers))
		}
		if l.WorkerClass != "" {
			argv = append(argv, "--worker-class", l.WorkerClass)
		}
		return append(argv, l.ExtraArgs...), nil

	case LaunchScript:
		argv := []string{l.Target}
		return append(argv, l.ExtraArgs...), nil

	default:
		return nil, fmt.Errorf("launch spec: invalid kind %q", l.Kind)
	}
}

// Validate checks the launch spec for structural problems.
func (l *LaunchSpec) Validate() error {
	if !l.Kind.IsValid() {
		return fmt.Errorf("launch spec: invalid kind %q (valid: interpreter, app-server, script)", l.Kind)
	}
	if l.Target == "" {
		return fmt.Errorf("launch spec: target must not be empty")
	}
	if l.Workers < 0 {
		return fmt.Errorf("launch spec: worker count %d must not be negative", l.Workers)
	}
	if l.Kind != LaunchAppServer && (l.Workers > 0 || l.WorkerClass != "") {
		return fmt.Errorf("launch spec: workers/workerClass only apply to app-server launches")
	}
	return nil
}

// Health check defaults, matching the values used across the ASIS
// Dockerfile variants. They apply when the corresponding descriptor
// field is omitted.
const (
	DefaultHealthInterval    = 30 * time.Second
	DefaultHealthTimeout     = 5 * time.Second
	DefaultHealthStartPeriod = 5 * time.Second
	DefaultHealthRetries     = 3
	DefaultHealthPath        = "/health"
)

// HealthCheck declares the HTTP liveness contract for a variant: an
// orchestrator issues GET requests to Path every Interval, each allowed
// Timeout to succeed. Probing starts after StartPeriod, and Retries
// consecutive failures mark the instance unhealthy.
//
// The toolkit only declares and evaluates this contract; restart and
// routing policy on an unhealthy instance belongs to the orchestrator.
type HealthCheck struct {
	// Path is the HTTP request path probed for liveness.
	Path string `json:"path"`

	// Interval is the time between consecutive probes.
	Interval time.Duration `json:"interval"`

	// Timeout is the per-probe response deadline.
	Timeout time.Duration `json:"timeout"`

	// StartPeriod is the grace period after container start during which
	// probe failures are not counted.
	StartPeriod time.Duration `json:"startPeriod"`

	// Retries is the number of consecutive failures tolerated before the
	// instance is marked unhealthy.
	Retries int `json:"retries"`
}

// ApplyDefaults fills zero-valued fields with the standard defaults.
func (h *HealthCheck) ApplyDefaults() {
	if h.Path == "" {
		h.Path = DefaultHealthPath
	}
	if h.Interval == 0 {
		h.Interval = DefaultHealthInterval
	}
	if h.Timeout == 0 {
		h.Timeout = DefaultHealthTimeout
	}
	if h.StartPeriod == 0 {
		h.StartPeriod = DefaultHealthStartPeriod
	}
	if h.Retries == 0 {
		h.Retries = DefaultHealthRetries
	}
}

// Validate checks the health check fields for structural problems.
// ApplyDefaults should be called first; zero values are rejected here.
func (h *HealthCheck) Validate() error {
	if !strings.HasPrefix(h.Path, "/") {
		return fmt.Errorf("health check: path %q must start with /", h.Path)
	}
	if h.Interval <= 0 {
		return fmt.Errorf("health check: interval must be positive, got %v", h.Interval)
	}
	if h.Timeout <= 0 {
		return fmt.Errorf("health check: timeout must be positive, got %v", h.Timeout)
	}
	if h.Timeout >= h.Interval {
		return fmt.Errorf("health check: timeout %v must be shorter than interval %v", h.Timeout, h.Interval)
	}
	if h.StartPeriod < 0 {
		return fmt.Errorf("health check: start period must not be negative, got %v", h.StartPeriod)
	}
	if h.Retries < 1 {
		return fmt.Errorf("health check: retries must be at least 1, got %d", h.Retries)
	}
	return nil
}

// HealthState is the orchestrator-visible liveness state of an instance.
//
// The state transitions are:
//
//	starting → healthy (first successful probe)
//	starting/healthy → unhealthy (Retries consecutive failures after StartPeriod)
//	unhealthy → healthy (a later successful probe)
type HealthState string

const (
	// HealthStarting means the instance is inside its start grace period
	// and has not yet passed a probe.
	HealthStarting HealthState = "starting"

	// HealthHealthy means the most recent probe succeeded.
	HealthHealthy HealthState = "healthy"

	// HealthUnhealthy means the tolerated number of consecutive probe
	// failures has been exceeded.
	HealthUnhealthy HealthState = "unhealthy"
)

// String returns the string representation of HealthState.
func (s HealthState) String() string {
	return string(s)
}

// CopySpec names one file or directory placed into the image filesystem.
type CopySpec struct {
	// Source is the path relative to the build context.
	Source string `json:"source"`

	// Dest is the destination inside the image. Defaults to Source placed
	// under the variant's working directory.
	Dest string `json:"dest,omitempty"`
}

// Variant is a Deployment Variant: one complete recipe for building and
// launching the ASIS platform in a container. The five stock variants
// differ only in these fields; they are configuration permutations of the
// same application, not distinct architectures.
type Variant struct {
	// Name is the unique identifier for this variant.
	// Must contain only alphanumeric characters and hyphens.
	Name string `json:"name"`

	// BaseImage is the pinned language runtime base image
	// (e.g. "python:3.11-slim").
	BaseImage string `json:"baseImage"`

	// OSPackages are OS-level packages installed before the language
	// ecosystem packages (e.g. "curl" for the health check command).
	OSPackages []string `json:"osPackages,omitempty"`

	// ManifestPath is the dependency manifest copied into the image and
	// fed to the package installer (e.g. "requirements.txt"). Installation
	// failure aborts the image build.
	ManifestPath string `json:"manifestPath"`

	// Entrypoint is the application file referenced by the launch command.
	// The build fails if this file is missing from the build context.
	Entrypoint string `json:"entrypoint"`

	// Assets are additional files or directories copied into the image.
	Assets []CopySpec `json:"assets,omitempty"`

	// WorkDir is the working directory inside the image. Defaults to /app.
	WorkDir string `json:"workDir,omitempty"`

	// Env holds process-wide environment variables set in the image
	// (PYTHONPATH, PORT, ASIS_CONFIG_PATH, ASIS_LOG_PATH, ASIS_DATA_PATH).
	Env map[string]string `json:"env,omitempty"`

	// Port is the TCP port the process binds (on 0.0.0.0) and the image
	// exposes. 8000 or 8080 depending on the variant.
	Port int `json:"port"`

	// HealthCheck is the optional liveness contract. Nil means the variant
	// declares no health check and the orchestrator cannot observe
	// readiness through this mechanism.
	HealthCheck *HealthCheck `json:"healthCheck,omitempty"`

	// Launch describes the command executed when the container starts.
	Launch LaunchSpec `json:"launch"`

	// CreatedAt is set when the variant's container is launched. It is
	// persisted in Docker labels, not in the descriptor.
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// nameRegex validates variant names: alphanumeric + hyphens only,
// must start and end with alphanumeric.
var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]*[a-zA-Z0-9]$|^[a-zA-Z0-9]$`)

// ValidateName checks if the given name is a valid variant name.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("variant name must not be empty")
	}
	if !nameRegex.MatchString(name) {
		return fmt.Errorf("invalid variant name %q: must contain only alphanumeric characters and hyphens, and start/end with alphanumeric", name)
	}
	return nil
}

// ApplyDefaults fills zero-valued variant fields with their defaults and
// normalizes the health check if one is declared.
func (v *Variant) ApplyDefaults() {
	if v.WorkDir == "" {
		v.WorkDir = "/app"
	}
	if v.Env == nil {
		v.Env = map[string]string{}
	}
	if _, ok := v.Env["PYTHONPATH"]; !ok {
		v.Env["PYTHONPATH"] = v.WorkDir
	}
	if _, ok := v.Env["PORT"]; !ok && v.Port != 0 {
		v.Env["PORT"] = fmt.Sprintf("%d", v.Port)
	}
	if v.HealthCheck != nil {
		v.HealthCheck.ApplyDefaults()
	}
}

// Validate checks the variant for structural problems. Filesystem
// presence of the entrypoint and manifest is checked separately by the
// descriptor package, since it depends on the build context directory.
func (v *Variant) Validate() error {
	if err := ValidateName(v.Name); err != nil {
		return err
	}
	if v.BaseImage == "" {
		return fmt.Errorf("variant %q: base image must not be empty", v.Name)
	}
	if v.Entrypoint == "" {
		return fmt.Errorf("variant %q: entrypoint must not be empty", v.Name)
	}
	if v.Port < 1 || v.Port > 65535 {
		return fmt.Errorf("variant %q: port %d out of range (1-65535)", v.Name, v.Port)
	}
	if err := v.Launch.Validate(); err != nil {
		return fmt.Errorf("variant %q: %w", v.Name, err)
	}
	if v.HealthCheck != nil {
		if err := v.HealthCheck.Validate(); err != nil {
			return fmt.Errorf("variant %q: %w", v.Name, err)
		}
	}
	return nil
}

// ImageTag returns the Docker image tag used for this variant's build.
func (v *Variant) ImageTag() string {
	return fmt.Sprintf("asis/%s:latest", v.Name)
}

// ContainerName returns the Docker container name used when launching
// this variant.
func (v *Variant) ContainerName() string {
	return "asis-" + v.Name
}

// ContainerInfo holds runtime information about a Docker container.
// This data is fetched dynamically from the Docker API, not persisted.
type ContainerInfo struct {
	// ContainerID is the unique Docker container identifier.
	ContainerID string `json:"containerId"`

	// ContainerName is the human-readable Docker container name.
	ContainerName string `json:"containerName"`

	// Image is the image reference the container was created from.
	Image string `json:"image"`

	// Status is the Docker container status (e.g. "running", "exited").
	Status string `json:"status"`

	// Labels is the full set of Docker labels on the container,
	// including the asis.* management labels.
	Labels map[string]string `json:"labels,omitempty"`
}

// Deployment pairs a variant's label-derived identity with its
// containers and aggregate status. It is reconstructed entirely from
// Docker API queries; there is no state file on disk.
type Deployment struct {
	// Variant is the variant identity parsed from container labels.
	Variant Variant `json:"variant"`

	// Containers holds the Docker containers belonging to this variant.
	// Must contain at least one container.
	Containers []ContainerInfo `json:"containers,omitempty"`

	// Status is the aggregate lifecycle state.
	Status VariantStatus `json:"status"`
}

// ExitCode defines standard CLI exit codes. These codes allow scripts
// and CI systems to programmatically determine the outcome of a command.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitDescriptorNotFound indicates the deployment descriptor file
	// was not found in the expected location.
	ExitDescriptorNotFound ExitCode = 2

	// ExitDockerNotRunning indicates the Docker daemon is not accessible.
	ExitDockerNotRunning ExitCode = 3

	// ExitValidationFailed indicates the descriptor failed validation,
	// including a missing entrypoint or manifest file.
	ExitValidationFailed ExitCode = 4

	// ExitBuildFailed indicates an image build aborted (dependency
	// installation failure or a failed copy).
	ExitBuildFailed ExitCode = 5

	// ExitVariantNotFound indicates the named variant does not exist in
	// the descriptor or on the Docker host.
	ExitVariantNotFound ExitCode = 6

	// ExitPortUnavailable indicates the variant's host port is already
	// in use.
	ExitPortUnavailable ExitCode = 7

	// ExitProbeUnhealthy indicates the health probe declared the target
	// unhealthy.
	ExitProbeUnhealthy ExitCode = 8
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
