package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTier(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Tier
		wantErr bool
	}{
		{name: "academic", input: "academic", want: TierAcademic},
		{name: "professional", input: "professional", want: TierProfessional},
		{name: "enterprise", input: "enterprise", want: TierEnterprise},
		{name: "invalid", input: "platinum", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "case sensitive", input: "Academic", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTier(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAmount(t *testing.T) {
	tests := []struct {
		name    string
		tier    Tier
		period  BillingPeriod
		want    int
		wantErr bool
	}{
		{name: "academic monthly", tier: TierAcademic, period: PeriodMonthly, want: 4950},
		{name: "academic annual", tier: TierAcademic, period: PeriodAnnual, want: 49500},
		{name: "professional monthly", tier: TierProfessional, period: PeriodMonthly, want: 29900},
		{name: "professional annual", tier: TierProfessional, period: PeriodAnnual, want: 299000},
		{name: "enterprise monthly", tier: TierEnterprise, period: PeriodMonthly, want: 99900},
		{name: "enterprise annual", tier: TierEnterprise, period: PeriodAnnual, want: 999000},
		{name: "unknown tier", tier: Tier("platinum"), period: PeriodMonthly, wantErr: true},
		{name: "unknown period", tier: TierAcademic, period: BillingPeriod("weekly"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Amount(tt.tier, tt.period)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMonthlyRevenue(t *testing.T) {
	assert.Equal(t, 49.5, MonthlyRevenue(TierAcademic))
	assert.Equal(t, 299.0, MonthlyRevenue(TierProfessional))
	assert.Equal(t, 999.0, MonthlyRevenue(TierEnterprise))
	assert.Equal(t, 0.0, MonthlyRevenue(Tier("unknown")))
}

func TestIsAcademicEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{email: "alice@mit.edu", want: true},
		{email: "bob@cs.stanford.edu", want: true},
		{email: "carol@univ.ac.uk", want: true},
		{email: "dan@titech.ac.jp", want: true},
		{email: "ALICE@MIT.EDU", want: true},
		{email: "eve@example.com", want: false},
		{email: "frank@edu.com", want: false},
		{email: "grace@academia.org", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAcademicEmail(tt.email))
		})
	}
}

func TestDiscountFor(t *testing.T) {
	assert.Equal(t, 50, DiscountFor("alice@mit.edu"))
	assert.Equal(t, 0, DiscountFor("eve@example.com"))
}
