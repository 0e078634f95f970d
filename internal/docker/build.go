// build.go runs image builds for deployment variants. Builds go through
// the docker CLI rather than the SDK's ImageBuild endpoint: the CLI
// handles build-context tarring and BuildKit progress output, and its
// non-zero exit on a failed RUN step (dependency resolution failure) or
// failed COPY (missing file) is exactly the fatal, non-retried behavior
// the build contract requires.
package docker

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/asisai/asis-deploy/internal/dockerfile"
	"github.com/asisai/asis-deploy/internal/model"
)

// BuildVariant renders the variant's Dockerfile into the build context
// and runs "docker build" with the variant's image tag. The rendered
// Dockerfile is left in place (Dockerfile.<variant>) so the build is
// reproducible by hand.
//
// Returns a CLIError with ExitBuildFailed when the build aborts; the
// docker CLI's combined output is included in the message so dependency
// resolution failures surface to the operator.
func BuildVariant(ctx context.Context, contextDir string, v *model.Variant) error {
	content, err := dockerfile.Render(v)
	if err != nil {
		return model.WrapCLIError(
			model.ExitValidationFailed,
			fmt.Sprintf("failed to render Dockerfile for variant %q", v.Name),
			err,
		)
	}

	dockerfilePath := filepath.Join(contextDir, dockerfile.DockerfileName(v.Name))
	if err := os.WriteFile(dockerfilePath, []byte(content), 0o644); err != nil {
		return model.WrapCLIError(
			model.ExitBuildFailed,
			fmt.Sprintf("failed to write Dockerfile for variant %q", v.Name),
			err,
		)
	}

	log.WithFields(log.Fields{
		"variant": v.Name,
		"image":   v.ImageTag(),
		"context": contextDir,
	}).Info("building image")

	cmd := exec.CommandContext(ctx, "docker",
		"build",
		"-f", dockerfilePath,
		"-t", v.ImageTag(),
		contextDir,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return model.WrapCLIError(
			model.ExitBuildFailed,
			fmt.Sprintf("image build failed for variant %q: %s", v.Name, string(output)),
			err,
		)
	}

	log.WithField("image", v.ImageTag()).Info("image built")
	return nil
}
