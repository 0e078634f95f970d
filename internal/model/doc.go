// Package model defines the domain types and value objects for the
// ASIS deployment toolkit.
//
// This package contains pure data structures with no external dependencies.
// All entities (Variant, LaunchSpec, HealthCheck, Deployment, etc.) are
// transient representations built from descriptor files or reconstructed
// from Docker container labels at runtime — there are no persistent state
// files.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
