// Package dockerfile renders container build descriptors from Deployment
// Variants: a Dockerfile per variant and a docker-compose.yml covering a
// set of variants.
//
// Rendering is deterministic — map-backed sections (ENV, labels) are
// emitted in sorted key order — so generated files are stable across runs
// and diff cleanly in version control.
package dockerfile

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/asisai/asis-deploy/internal/model"
)

// Render produces the Dockerfile text for a variant. The layout follows
// the build steps shared by all ASIS variants: pinned base image, OS
// packages, dependency manifest install, artifact copy, environment
// block, exposed port, optional health check, and the launch command.
//
// Dependency installation uses `pip install -r <manifest>`; a resolution
// failure there aborts the image build with a non-zero exit, which is
// the desired fatal behavior. COPY of a missing file likewise aborts,
// though the descriptor validator reports that earlier.
func Render(v *model.Variant) (string, error) {
	argv, err := v.Launch.Argv(v.Port)
	if err != nil {
		return "", fmt.Errorf("variant %q: %w", v.Name, err)
	}

	var b strings.Builder

	fmt.Fprintf(&b, "# Deployment variant: %s\n", v.Name)
	fmt.Fprintf(&b, "FROM %s\n\n", v.BaseImage)

	fmt.Fprintf(&b, "WORKDIR %s\n\n", v.WorkDir)

	if len(v.OSPackages) > 0 {
		fmt.Fprintf(&b, "RUN apt-get update && apt-get install -y --no-install-recommends %s \\\n",
			strings.Join(v.OSPackages, " "))
		b.WriteString("    && rm -rf /var/lib/apt/lists/*\n\n")
	}

	if v.ManifestPath != "" {
		// Manifest is copied before the application files so dependency
		// layers cache across source-only changes.
		fmt.Fprintf(&b, "COPY %s ./\n", v.ManifestPath)
		fmt.Fprintf(&b, "RUN pip install --no-cache-dir -r %s\n\n", v.ManifestPath)
	}

	fmt.Fprintf(&b, "COPY %s ./\n", v.Entrypoint)
	for _, asset := range v.Assets {
		dest := asset.Dest
		if dest == "" {
			dest = "./"
		}
		fmt.Fprintf(&b, "COPY %s %s\n", asset.Source, dest)
	}
	if v.Launch.Kind == model.LaunchScript {
		fmt.Fprintf(&b, "RUN chmod +x %s\n", v.Launch.Target)
	}
	b.WriteString("\n")

	for _, key := range sortedKeys(v.Env) {
		fmt.Fprintf(&b, "ENV %s=%s\n", key, v.Env[key])
	}
	if len(v.Env) > 0 {
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "EXPOSE %d\n\n", v.Port)

	if v.HealthCheck != nil {
		hc := v.HealthCheck
		fmt.Fprintf(&b, "HEALTHCHECK --interval=%s --timeout=%s --start-period=%s --retries=%d \\\n",
			formatDuration(hc.Interval), formatDuration(hc.Timeout),
			formatDuration(hc.StartPeriod), hc.Retries)
		fmt.Fprintf(&b, "    CMD curl -f http://localhost:%d%s || exit 1\n\n", v.Port, hc.Path)
	}

	fmt.Fprintf(&b, "CMD [%s]\n", quoteArgv(argv))

	return b.String(), nil
}

// quoteArgv renders an argv slice in Dockerfile exec form:
// ["python3", "main.py"].
func quoteArgv(argv []string) string {
	quoted := make([]string, len(argv))
	for i, arg := range argv {
		quoted[i] = fmt.Sprintf("%q", arg)
	}
	return strings.Join(quoted, ", ")
}

// formatDuration renders a duration in the compact form Dockerfile
// HEALTHCHECK flags use ("30s", "1m30s"), dropping Go's zero-valued
// trailing units ("1m0s" → "1m").
func formatDuration(d time.Duration) string {
	s := d.String()
	if strings.HasSuffix(s, "m0s") {
		s = s[:len(s)-2]
	}
	if strings.HasSuffix(s, "h0m") {
		s = s[:len(s)-2]
	}
	return s
}

// sortedKeys returns the map's keys in ascending order for deterministic
// output.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
