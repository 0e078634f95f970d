// Package port implements host port availability scanning for the ASIS
// deployment toolkit.
//
// Variants publish their container port 1:1 on the host, so the scanner
// checks declared ports are free before launch, and waits for the
// launched process to bind within the health check's start grace period.
package port
