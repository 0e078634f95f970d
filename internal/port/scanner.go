// Package port implements host port availability checks for deployment
// variants.
//
// Every variant publishes its container port 1:1 on the host, so a port
// already held by another process would make "docker run" fail late with
// an opaque error. The scanner asks the OS directly before launch, and
// after launch it waits for the containerized process to actually bind
// within the health check's start grace period.
package port

import (
	"context"
	"fmt"
	"net"
	"time"
)

// Scanner checks whether specific ports are available on the host
// machine.
//
// It uses the operating system's network stack (net.Listen) to determine
// if a port is free. This is the most reliable method because it asks
// the OS directly, rather than parsing /proc/net/* or relying on
// external commands like `lsof` or `ss` which may require elevated
// permissions.
//
// The struct is stateless but defined as a struct so the Scanner is
// injectable as a dependency and future options (bind address, timeout)
// can be added without breaking the API.
type Scanner struct{}

// NewScanner creates a new Scanner instance.
func NewScanner() *Scanner {
	return &Scanner{}
}

// IsPortAvailable checks whether a single TCP port is free on the host
// machine by attempting net.Listen(":port"). If the bind succeeds, the
// port is available and the probe listener is closed immediately.
//
// All interfaces are checked (":port" rather than "127.0.0.1:port")
// because Docker publishes ports on 0.0.0.0, so the same address space
// must be probed to avoid false positives.
func (s *Scanner) IsPortAvailable(port int) bool {
	if port < 1 || port > 65535 {
		return false
	}

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return false
	}
	_ = listener.Close()
	return true
}

// EnsureAvailable verifies that every port in the list is free on the
// host. It returns the first port found occupied, allowing the caller
// to abort before any container is launched.
func (s *Scanner) EnsureAvailable(ports []int) error {
	for _, p := range ports {
		if !s.IsPortAvailable(p) {
			return fmt.Errorf("host port %d is already in use", p)
		}
	}
	return nil
}

// defaultBindPollInterval is the delay between connection attempts while
// waiting for a launched process to bind its port.
const defaultBindPollInterval = 250 * time.Millisecond

// WaitForBind waits until something is accepting TCP connections on the
// given host port, polling until the deadline expires or the context is
// cancelled. It is used after launching a variant to verify the process
// binds within the health check's start grace period.
//
// Returns nil once a connection succeeds, or an error describing the
// timeout.
func (s *Scanner) WaitForBind(ctx context.Context, port int, deadline time.Duration) error {
	addr := fmt.Sprintf("127.0.0.1:%d", port)
	timeout := time.After(deadline)
	ticker := time.NewTicker(defaultBindPollInterval)
	defer ticker.Stop()

	for {
		conn, err := net.DialTimeout("tcp", addr, defaultBindPollInterval)
		if err == nil {
			_ = conn.Close()
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timeout:
			return fmt.Errorf("port %d was not bound within %v", port, deadline)
		case <-ticker.C:
		}
	}
}
