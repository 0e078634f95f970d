// Package cli — probe.go implements the "asisctl probe" command.
//
// The probe command exercises a variant's declared health check from
// the host, without touching Docker. It either waits for the check to
// reach healthy (the default, mirroring what "up" does) or streams
// every probe result with --watch.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/asisai/asis-deploy/internal/descriptor"
	"github.com/asisai/asis-deploy/internal/model"
	"github.com/asisai/asis-deploy/internal/probe"
)

// probeFlags holds the flag values for the probe command.
type probeFlags struct {
	watch bool   // --watch: stream probe results until interrupted
	url   string // --url: override the probe target base URL
}

// NewProbeCommand creates the "probe" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewProbeCommand() *cobra.Command {
	flags := &probeFlags{}

	cmd := &cobra.Command{
		Use:   "probe <variant>",
		Short: "Run a variant's health check from the host",
		Long: `Probe a deployment variant's health endpoint.

By default the command waits until the health check reports healthy
and exits 0, or exits 8 once the failure threshold is reached. With
--watch, every probe result is printed until interrupted.

The target defaults to http://localhost:<variant-port>; --url overrides
it for containers published elsewhere.

Examples:
  asisctl probe production
  asisctl probe production --watch
  asisctl probe railway --url http://staging.internal:8000`,

		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runProbe(cmd.Context(), args[0], flags)
		},
	}

	cmd.Flags().BoolVar(&flags.watch, "watch", false, "Stream probe results until interrupted")
	cmd.Flags().StringVar(&flags.url, "url", "", "Override the probe target base URL")

	return cmd
}

// runProbe is the main logic function for the probe command.
func runProbe(ctx context.Context, name string, flags *probeFlags) error {
	desc, err := loadDescriptor()
	if err != nil {
		return err
	}

	v, err := descriptor.FindVariant(desc, name)
	if err != nil {
		return err
	}

	if v.HealthCheck == nil {
		return model.NewCLIError(model.ExitGeneralError,
			fmt.Sprintf("variant %q declares no health check", name))
	}

	target := flags.url
	if target == "" {
		target = fmt.Sprintf("http://localhost:%d", v.Port)
	}

	p := probe.New(target, *v.HealthCheck)
	VerboseLog("Probing %s%s every %s", target, v.HealthCheck.Path, v.HealthCheck.Interval)

	if flags.watch {
		return watchProbe(ctx, p)
	}

	if err := p.WaitHealthy(ctx); err != nil {
		return err
	}
	if !IsJSONOutput() {
		fmt.Printf("Variant %q is healthy\n", name)
	} else {
		printProbeResult(probe.Result{State: model.HealthHealthy, At: time.Now()})
	}
	return nil
}

// watchProbe streams probe results until the context is cancelled
// (Ctrl-C). The final state decides the exit code: a stream ending
// while unhealthy exits 8.
func watchProbe(ctx context.Context, p *probe.Prober) error {
	for result := range p.Watch(ctx) {
		printProbeResult(result)
	}

	if p.State() == model.HealthUnhealthy {
		return model.NewCLIError(model.ExitProbeUnhealthy, "health check is failing")
	}
	return nil
}

// printProbeResult outputs one probe result in text or JSON format.
func printProbeResult(r probe.Result) {
	if IsJSONOutput() {
		type resultJSON struct {
			State      string `json:"state"`
			StatusCode int    `json:"statusCode,omitempty"`
			Failures   int    `json:"failures,omitempty"`
			Error      string `json:"error,omitempty"`
			At         string `json:"at"`
		}

		entry := resultJSON{
			State:      r.State.String(),
			StatusCode: r.StatusCode,
			Failures:   r.Failures,
			At:         r.At.UTC().Format(time.RFC3339),
		}
		if r.Err != nil {
			entry.Error = r.Err.Error()
		}

		data, _ := json.Marshal(entry)
		fmt.Println(string(data))
		return
	}

	ts := r.At.Format("15:04:05")
	if r.Err != nil {
		fmt.Printf("%s  %-9s  error: %v\n", ts, r.State, r.Err)
		return
	}
	fmt.Printf("%s  %-9s  HTTP %d\n", ts, r.State, r.StatusCode)
}
