package cli

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/asisai/asis-deploy/internal/model"
)

func TestBindWaitDeadline(t *testing.T) {
	tests := []struct {
		name string
		hc   *model.HealthCheck
		want time.Duration
	}{
		{
			name: "no health check uses default",
			hc:   nil,
			want: bindDeadline,
		},
		{
			name: "start period bounds the wait",
			hc:   &model.HealthCheck{Path: "/health", StartPeriod: 5 * time.Second},
			want: 5 * time.Second,
		},
		{
			name: "zero start period falls back to default",
			hc:   &model.HealthCheck{Path: "/health"},
			want: bindDeadline,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &model.Variant{Name: "production", Port: 8000, HealthCheck: tt.hc}
			assert.Equal(t, tt.want, bindWaitDeadline(v))
		})
	}
}
