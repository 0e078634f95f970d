package docker

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/asisai/asis-deploy/internal/model"
)

// Label key constants define the Docker label keys used to persist
// variant metadata on containers. These labels serve as the sole
// persistence mechanism — there is no external state file.
//
// All keys share the "asis." prefix to namespace them and avoid
// collisions with labels set by other tools.
const (
	// LabelPrefix is the common prefix for all asis-deploy labels.
	LabelPrefix = "asis."

	// LabelManagedBy identifies containers managed by asis-deploy.
	// This is the primary label used for filtering and discovery.
	// Key: "asis.managed-by", Value: always "asis-deploy".
	LabelManagedBy = LabelPrefix + "managed-by"

	// LabelVariant stores the variant's unique name.
	// Key: "asis.variant", Value: variant name (e.g. "production").
	LabelVariant = LabelPrefix + "variant"

	// LabelBaseImage stores the pinned base image the variant was built
	// from. Key: "asis.base-image".
	LabelBaseImage = LabelPrefix + "base-image"

	// LabelEntrypoint stores the application file the launch command
	// references. Key: "asis.entrypoint".
	LabelEntrypoint = LabelPrefix + "entrypoint"

	// LabelLaunchKind stores the launch command shape.
	// Key: "asis.launch-kind", Value: "interpreter", "app-server", or
	// "script".
	LabelLaunchKind = LabelPrefix + "launch-kind"

	// LabelLaunchTarget stores the launch target (script path or module
	// spec). Key: "asis.launch-target".
	LabelLaunchTarget = LabelPrefix + "launch-target"

	// LabelPort stores the TCP port the variant binds and exposes.
	// Key: "asis.port", Value: decimal port number.
	LabelPort = LabelPrefix + "port"

	// LabelHealthPath stores the health check request path. Absent when
	// the variant declares no health check.
	// Key: "asis.health-path".
	LabelHealthPath = LabelPrefix + "health-path"

	// LabelCreatedAt stores the ISO-8601 timestamp of container launch.
	// Key: "asis.created-at", Value: RFC3339 formatted timestamp.
	LabelCreatedAt = LabelPrefix + "created-at"
)

// ManagedByValue is the constant value for the LabelManagedBy label.
// All containers created by this toolkit are tagged with this value,
// enabling discovery via Docker API label filters.
const ManagedByValue = "asis-deploy"

// BuildLabels constructs a Docker label map from a Variant. These labels
// are applied to the variant's container, allowing reconstruction of the
// variant's runtime identity from container inspection alone.
func BuildLabels(v *model.Variant) map[string]string {
	labels := map[string]string{
		LabelManagedBy:    ManagedByValue,
		LabelVariant:      v.Name,
		LabelBaseImage:    v.BaseImage,
		LabelEntrypoint:   v.Entrypoint,
		LabelLaunchKind:   v.Launch.Kind.String(),
		LabelLaunchTarget: v.Launch.Target,
		LabelPort:         strconv.Itoa(v.Port),
		// UTC RFC3339 keeps timestamps consistent regardless of the host
		// machine's timezone.
		LabelCreatedAt: v.CreatedAt.UTC().Format(time.RFC3339),
	}

	if v.HealthCheck != nil {
		labels[LabelHealthPath] = v.HealthCheck.Path
	}

	return labels
}

// ParseLabels reconstructs a Variant's runtime identity from Docker
// container labels. This is the inverse of BuildLabels and is used when
// listing or inspecting containers to rebuild the domain model.
//
// Required labels: managed-by, variant, base-image, entrypoint,
// launch-kind, launch-target, port, created-at. Missing required labels
// cause an error. The health-path label is optional: its absence means
// the variant declared no health check.
func ParseLabels(labels map[string]string) (*model.Variant, error) {
	// Check all required labels at once so the error message can list
	// everything that is missing.
	requiredKeys := []string{
		LabelManagedBy,
		LabelVariant,
		LabelBaseImage,
		LabelEntrypoint,
		LabelLaunchKind,
		LabelLaunchTarget,
		LabelPort,
		LabelCreatedAt,
	}

	var missing []string
	for _, key := range requiredKeys {
		if _, ok := labels[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required Docker labels: %s", strings.Join(missing, ", "))
	}

	if labels[LabelManagedBy] != ManagedByValue {
		return nil, fmt.Errorf(
			"label %s has unexpected value %q (expected %q)",
			LabelManagedBy, labels[LabelManagedBy], ManagedByValue,
		)
	}

	kind, err := model.ParseLaunchKind(labels[LabelLaunchKind])
	if err != nil {
		return nil, fmt.Errorf("invalid label %s: %w", LabelLaunchKind, err)
	}

	port, err := strconv.Atoi(labels[LabelPort])
	if err != nil {
		return nil, fmt.Errorf("invalid label %s=%q: %w", LabelPort, labels[LabelPort], err)
	}

	createdAt, err := time.Parse(time.RFC3339, labels[LabelCreatedAt])
	if err != nil {
		return nil, fmt.Errorf("invalid label %s: %w", LabelCreatedAt, err)
	}

	v := &model.Variant{
		Name:       labels[LabelVariant],
		BaseImage:  labels[LabelBaseImage],
		Entrypoint: labels[LabelEntrypoint],
		Port:       port,
		Launch: model.LaunchSpec{
			Kind:   kind,
			Target: labels[LabelLaunchTarget],
		},
		CreatedAt: createdAt,
	}

	if path, ok := labels[LabelHealthPath]; ok {
		// Only the path survives the label round trip; interval, timeout,
		// start period, and retries live in the image's HEALTHCHECK
		// instruction, not on the container.
		v.HealthCheck = &model.HealthCheck{Path: path}
		v.HealthCheck.ApplyDefaults()
	}

	return v, nil
}
