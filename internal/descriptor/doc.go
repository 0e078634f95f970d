// Package descriptor loads, materializes, and validates ASIS deployment
// descriptor files (asis-deploy.jsonc).
//
// A descriptor declares the Deployment Variants: base image, dependency
// manifest, entrypoint, environment, exposed port, optional health check,
// and launch command for each way of packaging the platform. The package
// also ships the built-in default descriptor with the five stock variants.
package descriptor
