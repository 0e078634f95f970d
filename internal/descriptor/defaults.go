package descriptor

import (
	"github.com/asisai/asis-deploy/internal/model"
)

// Default returns the built-in descriptor with the five stock ASIS
// deployment variants. These are the configuration permutations shipped
// with the platform; they differ only in base image tag, manifest path,
// entrypoint, launch command, exposed port, and health check presence.
//
// The context parameter is the build context directory the variants'
// file references resolve against.
func Default(context string) *Descriptor {
	variants := []model.Variant{
		{
			// Smallest possible image: interpreter launch, no health check.
			Name:         "minimal",
			BaseImage:    "python:3.11-slim",
			ManifestPath: "requirements.txt",
			Entrypoint:   "app_minimal.py",
			Port:         8000,
			Launch: model.LaunchSpec{
				Kind:   model.LaunchInterpreter,
				Target: "app_minimal.py",
			},
		},
		{
			// Production system under uvicorn with a single worker.
			Name:         "production",
			BaseImage:    "python:3.11-slim",
			OSPackages:   []string{"curl"},
			ManifestPath: "requirements.txt",
			Entrypoint:   "asis_production_system.py",
			Port:         8000,
			HealthCheck:  &model.HealthCheck{},
			Launch: model.LaunchSpec{
				Kind:    model.LaunchAppServer,
				Target:  "asis_production_system:app",
				Workers: 1,
			},
		},
		{
			// Simplified entrypoint on the alternate port.
			Name:         "simple",
			BaseImage:    "python:3.11-slim",
			ManifestPath: "requirements.txt",
			Entrypoint:   "main_simple.py",
			Port:         8080,
			Launch: model.LaunchSpec{
				Kind:   model.LaunchInterpreter,
				Target: "main_simple.py",
			},
		},
		{
			// Platform deployment: uvicorn bound to $PORT with the full
			// ASIS_* environment surface.
			Name:         "railway",
			BaseImage:    "python:3.11-slim",
			OSPackages:   []string{"curl"},
			ManifestPath: "requirements.txt",
			Entrypoint:   "main.py",
			Port:         8000,
			Env: map[string]string{
				"ASIS_CONFIG_PATH": "/app/config",
				"ASIS_LOG_PATH":    "/app/logs",
				"ASIS_DATA_PATH":   "/app/data",
			},
			HealthCheck: &model.HealthCheck{},
			Launch: model.LaunchSpec{
				Kind:   model.LaunchAppServer,
				Target: "main:app",
			},
		},
		{
			// Startup-script variant: the script owns the launch sequence.
			Name:         "bootstrap",
			BaseImage:    "python:3.11-slim",
			ManifestPath: "requirements.txt",
			Entrypoint:   "main.py",
			Assets:       []model.CopySpec{{Source: "start.sh"}},
			Port:         8000,
			Launch: model.LaunchSpec{
				Kind:   model.LaunchScript,
				Target: "./start.sh",
			},
		},
	}

	for i := range variants {
		variants[i].ApplyDefaults()
	}

	return &Descriptor{Context: context, Variants: variants}
}
