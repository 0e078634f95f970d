// Package probe evaluates the HTTP liveness contract declared by a
// deployment variant, from the orchestrator's point of view.
//
// The contract is the one encoded in the image's HEALTHCHECK
// instruction: GET the health path every interval, allow each request
// the per-probe timeout, ignore failures during the start grace period,
// and mark the instance unhealthy after the tolerated number of
// consecutive failures. A later success flips the instance back to
// healthy. The prober itself never restarts anything — recovery policy
// belongs to the orchestrator consuming the reported state.
package probe

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"

	"github.com/asisai/asis-deploy/internal/model"
)

// Result is one probe observation delivered to Watch subscribers.
type Result struct {
	// State is the orchestrator-visible state after this probe.
	State model.HealthState `json:"state"`

	// StatusCode is the HTTP status of the probe response; zero when the
	// request itself failed.
	StatusCode int `json:"statusCode,omitempty"`

	// Failures is the current consecutive-failure count.
	Failures int `json:"failures"`

	// Err is the transport error, if the request failed.
	Err error `json:"-"`

	// At is the probe timestamp.
	At time.Time `json:"at"`
}

// Prober drives the liveness state machine for a single target URL.
//
// State transitions:
//
//	starting → healthy    (first successful probe)
//	starting → unhealthy  (retries exceeded after the start period)
//	healthy  → unhealthy  (retries consecutive failures)
//	unhealthy → healthy   (a later successful probe)
type Prober struct {
	spec   model.HealthCheck
	target string
	client *resty.Client

	mu       sync.Mutex
	state    model.HealthState
	failures int
	started  time.Time
}

// New creates a Prober for the given base URL ("http://localhost:8000")
// and health check spec. The spec must already have defaults applied.
func New(baseURL string, spec model.HealthCheck) *Prober {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(spec.Timeout).
		// The contract counts failures itself; resty must not mask them
		// with its own retry loop.
		SetRetryCount(0)

	return &Prober{
		spec:   spec,
		target: baseURL,
		client: client,
		state:  model.HealthStarting,
	}
}

// State returns the current orchestrator-visible state.
func (p *Prober) State() model.HealthState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// probeOnce issues a single GET against the health path and applies the
// observation to the state machine.
func (p *Prober) probeOnce(ctx context.Context) Result {
	resp, err := p.client.R().SetContext(ctx).Get(p.spec.Path)
	// Any 2xx response counts as a pass; the endpoint may legitimately
	// report "degraded" detail in its body while remaining alive.
	success := err == nil && resp.StatusCode() >= 200 && resp.StatusCode() < 300

	p.mu.Lock()
	defer p.mu.Unlock()

	now := time.Now()
	if success {
		p.failures = 0
		p.state = model.HealthHealthy
	} else {
		inGrace := p.state == model.HealthStarting && now.Sub(p.started) < p.spec.StartPeriod
		if !inGrace {
			p.failures++
			if p.failures >= p.spec.Retries {
				p.state = model.HealthUnhealthy
			}
		}
	}

	result := Result{
		State:    p.state,
		Failures: p.failures,
		Err:      err,
		At:       now,
	}
	if err == nil {
		result.StatusCode = resp.StatusCode()
	}
	return result
}

// Watch probes the target on the contract's schedule until the context
// is cancelled, delivering each observation on the returned channel.
// The first probe fires after one interval, then every interval,
// matching Docker's HEALTHCHECK cadence; failures inside the start
// grace period are observed but not counted.
//
// The channel is closed when the context ends.
func (p *Prober) Watch(ctx context.Context) <-chan Result {
	results := make(chan Result, 1)

	p.mu.Lock()
	p.started = time.Now()
	p.state = model.HealthStarting
	p.failures = 0
	p.mu.Unlock()

	go func() {
		defer close(results)

		ticker := time.NewTicker(p.spec.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			result := p.probeOnce(ctx)
			log.WithFields(log.Fields{
				"target":   p.target,
				"state":    result.State,
				"failures": result.Failures,
			}).Debug("health probe")

			select {
			case results <- result:
			case <-ctx.Done():
				return
			}
		}
	}()

	return results
}

// WaitHealthy probes the target until it reports healthy, the tolerated
// failures are exhausted, or the context ends. Probing starts
// immediately (the start period only suppresses failure counting, not
// probing itself), so a fast-starting instance is reported healthy
// without waiting out the grace period.
//
// Returns nil once the instance is healthy, a CLIError with
// ExitProbeUnhealthy once the state machine reaches unhealthy, or the
// context error on cancellation.
func (p *Prober) WaitHealthy(ctx context.Context) error {
	p.mu.Lock()
	p.started = time.Now()
	p.state = model.HealthStarting
	p.failures = 0
	p.mu.Unlock()

	ticker := time.NewTicker(p.spec.Interval)
	defer ticker.Stop()

	for {
		result := p.probeOnce(ctx)

		switch result.State {
		case model.HealthHealthy:
			return nil
		case model.HealthUnhealthy:
			return model.WrapCLIError(
				model.ExitProbeUnhealthy,
				fmt.Sprintf("target %s%s is unhealthy after %d consecutive failures",
					p.target, p.spec.Path, result.Failures),
				result.Err,
			)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
