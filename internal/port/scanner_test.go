package port

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// reservePort opens a real listener on an OS-assigned port and returns
// the port number plus a cleanup-registered listener.
func reservePort(t *testing.T) (int, net.Listener) {
	t.Helper()
	listener, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })
	return listener.Addr().(*net.TCPAddr).Port, listener
}

// TestIsPortAvailable verifies detection of both free and occupied ports.
func TestIsPortAvailable(t *testing.T) {
	s := NewScanner()

	occupied, _ := reservePort(t)
	assert.False(t, s.IsPortAvailable(occupied), "port held by a listener should be unavailable")

	// A port freed by closing its listener becomes available again.
	freed, listener := reservePort(t)
	require.NoError(t, listener.Close())
	assert.True(t, s.IsPortAvailable(freed))
}

// TestIsPortAvailable_InvalidRange rejects out-of-range port numbers.
func TestIsPortAvailable_InvalidRange(t *testing.T) {
	s := NewScanner()
	assert.False(t, s.IsPortAvailable(0))
	assert.False(t, s.IsPortAvailable(-1))
	assert.False(t, s.IsPortAvailable(65536))
}

// TestEnsureAvailable reports the first occupied port.
func TestEnsureAvailable(t *testing.T) {
	s := NewScanner()

	occupied, _ := reservePort(t)
	free, listener := reservePort(t)
	require.NoError(t, listener.Close())

	assert.NoError(t, s.EnsureAvailable([]int{free}))
	assert.NoError(t, s.EnsureAvailable(nil))

	err := s.EnsureAvailable([]int{free, occupied})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already in use")
}

// TestWaitForBind succeeds immediately when a listener is present.
func TestWaitForBind(t *testing.T) {
	s := NewScanner()
	port, _ := reservePort(t)

	err := s.WaitForBind(context.Background(), port, 2*time.Second)
	assert.NoError(t, err)
}

// TestWaitForBind_Timeout reports the deadline when nothing binds.
func TestWaitForBind_Timeout(t *testing.T) {
	s := NewScanner()
	port, listener := reservePort(t)
	require.NoError(t, listener.Close())

	err := s.WaitForBind(context.Background(), port, 300*time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "was not bound")
}

// TestWaitForBind_ContextCancel honors caller cancellation.
func TestWaitForBind_ContextCancel(t *testing.T) {
	s := NewScanner()
	port, listener := reservePort(t)
	require.NoError(t, listener.Close())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.WaitForBind(ctx, port, 5*time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}
