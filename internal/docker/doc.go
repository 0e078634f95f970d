// Package docker wraps the Docker Engine SDK and the docker CLI for the
// ASIS deployment toolkit.
//
// Responsibilities:
//   - Docker client creation with automatic socket detection (client.go)
//   - Variant metadata persistence via asis.* container labels (label.go)
//   - Image builds from rendered Dockerfiles (build.go)
//   - Container lifecycle: run, start, stop, remove, list (container.go)
//
// All deployment state is derived from Docker labels at query time;
// there is no state file on disk.
package docker
