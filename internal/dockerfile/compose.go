// compose.go generates a docker-compose.yml covering a set of Deployment
// Variants. Each variant becomes one service with its build context and
// per-variant Dockerfile, published port, environment, health check, and
// asis.* management labels.
//
// Compose merges this file with any user-supplied override files, so only
// the fields the toolkit owns are emitted.
package dockerfile

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/asisai/asis-deploy/internal/model"
)

// ComposeProjectName is the top-level Compose project name. Compose
// prefixes container, network, and volume names with it, namespacing the
// ASIS services away from unrelated projects on the same host.
const ComposeProjectName = "asis"

// composeFile is the yaml.v3 serialization structure for the generated
// docker-compose.yml.
type composeFile struct {
	// Name sets COMPOSE_PROJECT_NAME for the whole file.
	Name string `yaml:"name"`

	// Services maps variant names to their service definitions.
	Services map[string]composeService `yaml:"services"`
}

// composeService is one variant rendered as a Compose service.
type composeService struct {
	// Build points Compose at the shared context with this variant's
	// Dockerfile.
	Build composeBuild `yaml:"build"`

	// ContainerName fixes the container name to the variant's canonical
	// name so `docker ps` output matches CLI-launched containers.
	ContainerName string `yaml:"container_name"`

	// Ports lists the "host:container" mappings. The host port equals the
	// container port; variants declare non-colliding ports.
	Ports []string `yaml:"ports"`

	// Environment holds the variant's process environment.
	Environment map[string]string `yaml:"environment,omitempty"`

	// Labels carries the asis.* management labels so Compose-launched
	// containers are discoverable by the same label queries as
	// CLI-launched ones.
	Labels map[string]string `yaml:"labels,omitempty"`

	// Healthcheck mirrors the variant's liveness contract. Omitted for
	// variants that declare none.
	Healthcheck *composeHealthcheck `yaml:"healthcheck,omitempty"`
}

// composeBuild is the service build section.
type composeBuild struct {
	Context    string `yaml:"context"`
	Dockerfile string `yaml:"dockerfile"`
}

// composeHealthcheck is the Compose translation of model.HealthCheck.
type composeHealthcheck struct {
	Test        []string `yaml:"test"`
	Interval    string   `yaml:"interval"`
	Timeout     string   `yaml:"timeout"`
	StartPeriod string   `yaml:"start_period"`
	Retries     int      `yaml:"retries"`
}

// DockerfileName returns the per-variant Dockerfile file name used when
// rendering a descriptor to disk (e.g. "Dockerfile.production").
func DockerfileName(variantName string) string {
	return "Dockerfile." + variantName
}

// RenderCompose generates the docker-compose.yml text for the given
// variants. The context parameter is the build context path written into
// each service's build section (typically "." relative to the output
// directory). The labels function supplies the asis.* management labels
// for each variant; pass nil to omit labels.
func RenderCompose(variants []model.Variant, context string, labels func(*model.Variant) map[string]string) (string, error) {
	if len(variants) == 0 {
		return "", fmt.Errorf("compose rendering requires at least one variant")
	}

	services := make(map[string]composeService, len(variants))
	for i := range variants {
		v := &variants[i]

		svc := composeService{
			Build: composeBuild{
				Context:    context,
				Dockerfile: DockerfileName(v.Name),
			},
			ContainerName: v.ContainerName(),
			Ports:         []string{fmt.Sprintf("%d:%d", v.Port, v.Port)},
			Environment:   v.Env,
		}

		if labels != nil {
			svc.Labels = labels(v)
		}

		if v.HealthCheck != nil {
			hc := v.HealthCheck
			svc.Healthcheck = &composeHealthcheck{
				Test: []string{
					"CMD-SHELL",
					fmt.Sprintf("curl -f http://localhost:%d%s || exit 1", v.Port, hc.Path),
				},
				Interval:    formatDuration(hc.Interval),
				Timeout:     formatDuration(hc.Timeout),
				StartPeriod: formatDuration(hc.StartPeriod),
				Retries:     hc.Retries,
			}
		}

		services[v.Name] = svc
	}

	out, err := yaml.Marshal(composeFile{
		Name:     ComposeProjectName,
		Services: services,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal compose file: %w", err)
	}
	return string(out), nil
}
