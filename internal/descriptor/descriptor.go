// Package descriptor handles loading and validation of ASIS deployment
// descriptor files.
//
// A descriptor (asis-deploy.jsonc) declares the set of Deployment Variants:
// which base image each one pins, which dependency manifest and entrypoint
// it packages, its environment, exposed port, health check, and launch
// command. The file format is JSONC (JSON with Comments), so this package
// uses github.com/tidwall/jsonc to strip comments before parsing with the
// standard encoding/json library.
package descriptor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tidwall/jsonc"

	"github.com/asisai/asis-deploy/internal/model"
)

// DefaultFileName is the descriptor file name looked up in the build
// context directory when no explicit path is given.
const DefaultFileName = "asis-deploy.jsonc"

// RawDescriptor is the raw JSON structure of a descriptor file.
// Duration fields are strings ("30s", "1m") and are converted to typed
// durations when the descriptor is materialized into model.Variant values.
type RawDescriptor struct {
	// Context is the image build context directory, relative to the
	// descriptor file. Defaults to the descriptor's own directory.
	Context string `json:"context,omitempty"`

	// Variants lists the deployment variants in declaration order.
	Variants []RawVariant `json:"variants"`
}

// RawVariant mirrors model.Variant with descriptor-file field types.
type RawVariant struct {
	Name         string            `json:"name"`
	BaseImage    string            `json:"baseImage"`
	OSPackages   []string          `json:"osPackages,omitempty"`
	ManifestPath string            `json:"manifestPath,omitempty"`
	Entrypoint   string            `json:"entrypoint"`
	Assets       []model.CopySpec  `json:"assets,omitempty"`
	WorkDir      string            `json:"workDir,omitempty"`
	Env          map[string]string `json:"env,omitempty"`
	Port         int               `json:"port"`
	HealthCheck  *RawHealthCheck   `json:"healthCheck,omitempty"`
	Launch       RawLaunch         `json:"launch"`
}

// RawHealthCheck carries health check fields with human-readable
// duration strings, matching the Dockerfile HEALTHCHECK flag syntax.
type RawHealthCheck struct {
	Path        string `json:"path,omitempty"`
	Interval    string `json:"interval,omitempty"`
	Timeout     string `json:"timeout,omitempty"`
	StartPeriod string `json:"startPeriod,omitempty"`
	Retries     int    `json:"retries,omitempty"`
}

// RawLaunch mirrors model.LaunchSpec in descriptor-file form.
type RawLaunch struct {
	Kind        string   `json:"kind"`
	Program     string   `json:"program,omitempty"`
	Target      string   `json:"target"`
	Workers     int      `json:"workers,omitempty"`
	WorkerClass string   `json:"workerClass,omitempty"`
	ExtraArgs   []string `json:"extraArgs,omitempty"`
}

// Descriptor is the materialized form of a descriptor file: typed
// variants plus the resolved build context directory.
type Descriptor struct {
	// Path is the absolute path of the loaded descriptor file. Empty for
	// the built-in default descriptor.
	Path string

	// Context is the absolute build context directory.
	Context string

	// Variants are the materialized deployment variants with defaults
	// applied, in declaration order.
	Variants []model.Variant
}

// Load reads a descriptor file, strips JSONC comments, parses it, and
// materializes the typed Descriptor with defaults applied.
//
// Returns a CLIError with ExitDescriptorNotFound if the file does not
// exist, and ExitValidationFailed for malformed content.
func Load(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, model.WrapCLIError(
				model.ExitDescriptorNotFound,
				fmt.Sprintf("deployment descriptor not found: %s", path),
				err,
			)
		}
		return nil, fmt.Errorf("failed to read descriptor: %w", err)
	}

	// Strip JSONC comments (// and /* */) and trailing commas before
	// parsing. Descriptor files are hand-edited, so comments are expected.
	cleanJSON := jsonc.ToJSON(data)

	var raw RawDescriptor
	if err := json.Unmarshal(cleanJSON, &raw); err != nil {
		return nil, model.WrapCLIError(
			model.ExitValidationFailed,
			fmt.Sprintf("failed to parse descriptor %s", path),
			err,
		)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve descriptor path: %w", err)
	}

	desc, err := Materialize(&raw, filepath.Dir(absPath))
	if err != nil {
		return nil, err
	}
	desc.Path = absPath
	return desc, nil
}

// Materialize converts a RawDescriptor into a typed Descriptor. The
// baseDir parameter anchors the relative build context path.
//
// Duration strings are parsed here; a malformed duration is a validation
// failure, not a silent fallback to defaults.
func Materialize(raw *RawDescriptor, baseDir string) (*Descriptor, error) {
	context := raw.Context
	if context == "" {
		context = "."
	}
	if !filepath.IsAbs(context) {
		context = filepath.Join(baseDir, context)
	}

	variants := make([]model.Variant, 0, len(raw.Variants))
	for i := range raw.Variants {
		v, err := materializeVariant(&raw.Variants[i])
		if err != nil {
			return nil, model.WrapCLIError(
				model.ExitValidationFailed,
				fmt.Sprintf("variant %q is invalid", raw.Variants[i].Name),
				err,
			)
		}
		variants = append(variants, *v)
	}

	return &Descriptor{Context: context, Variants: variants}, nil
}

// materializeVariant converts one RawVariant into a model.Variant with
// defaults applied. Structural validation is left to Validate so that
// callers can collect all problems at once.
func materializeVariant(raw *RawVariant) (*model.Variant, error) {
	kind, err := model.ParseLaunchKind(raw.Launch.Kind)
	if err != nil {
		return nil, err
	}

	v := model.Variant{
		Name:         raw.Name,
		BaseImage:    raw.BaseImage,
		OSPackages:   raw.OSPackages,
		ManifestPath: raw.ManifestPath,
		Entrypoint:   raw.Entrypoint,
		Assets:       raw.Assets,
		WorkDir:      raw.WorkDir,
		Env:          raw.Env,
		Port:         raw.Port,
		Launch: model.LaunchSpec{
			Kind:        kind,
			Program:     raw.Launch.Program,
			Target:      raw.Launch.Target,
			Workers:     raw.Launch.Workers,
			WorkerClass: raw.Launch.WorkerClass,
			ExtraArgs:   raw.Launch.ExtraArgs,
		},
	}

	if raw.HealthCheck != nil {
		hc, err := materializeHealthCheck(raw.HealthCheck)
		if err != nil {
			return nil, err
		}
		v.HealthCheck = hc
	}

	v.ApplyDefaults()
	return &v, nil
}

// materializeHealthCheck parses the duration strings of a RawHealthCheck.
func materializeHealthCheck(raw *RawHealthCheck) (*model.HealthCheck, error) {
	hc := &model.HealthCheck{
		Path:    raw.Path,
		Retries: raw.Retries,
	}

	var err error
	if hc.Interval, err = parseDuration("healthCheck.interval", raw.Interval); err != nil {
		return nil, err
	}
	if hc.Timeout, err = parseDuration("healthCheck.timeout", raw.Timeout); err != nil {
		return nil, err
	}
	if hc.StartPeriod, err = parseDuration("healthCheck.startPeriod", raw.StartPeriod); err != nil {
		return nil, err
	}

	hc.ApplyDefaults()
	return hc, nil
}

// parseDuration parses an optional duration string. An empty string
// yields zero, which ApplyDefaults later replaces with the default.
func parseDuration(field, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", field, s, err)
	}
	return d, nil
}
