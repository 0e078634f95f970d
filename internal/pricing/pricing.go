// Package pricing holds the subscription tier catalog and the academic
// discount rules for the ASIS research platform.
package pricing

import (
	"fmt"
	"strings"
)

// Tier represents a subscription tier.
type Tier string

const (
	// TierAcademic is the discounted tier for academic institutions.
	TierAcademic Tier = "academic"

	// TierProfessional is the standard corporate tier.
	TierProfessional Tier = "professional"

	// TierEnterprise is the top tier with unlimited usage.
	TierEnterprise Tier = "enterprise"
)

// String returns the string representation of the tier.
func (t Tier) String() string {
	return string(t)
}

// IsValid returns true if the tier is one of the defined values.
func (t Tier) IsValid() bool {
	switch t {
	case TierAcademic, TierProfessional, TierEnterprise:
		return true
	}
	return false
}

// ParseTier converts a string to a Tier, returning an error for
// unknown values.
func ParseTier(s string) (Tier, error) {
	t := Tier(s)
	if !t.IsValid() {
		return "", fmt.Errorf("invalid tier: %q", s)
	}
	return t, nil
}

// BillingPeriod is the subscription billing cadence.
type BillingPeriod string

const (
	// PeriodMonthly bills every month.
	PeriodMonthly BillingPeriod = "monthly"

	// PeriodAnnual bills every year.
	PeriodAnnual BillingPeriod = "annual"
)

// String returns the string representation of the billing period.
func (p BillingPeriod) String() string {
	return string(p)
}

// IsValid returns true if the period is one of the defined values.
func (p BillingPeriod) IsValid() bool {
	return p == PeriodMonthly || p == PeriodAnnual
}

// ParseBillingPeriod converts a string to a BillingPeriod, returning
// an error for unknown values.
func ParseBillingPeriod(s string) (BillingPeriod, error) {
	p := BillingPeriod(s)
	if !p.IsValid() {
		return "", fmt.Errorf("invalid billing period: %q", s)
	}
	return p, nil
}

// catalog maps tier and period to the charge amount in US cents.
// The academic tier already carries the 50% institutional discount.
var catalog = map[Tier]map[BillingPeriod]int{
	TierAcademic:     {PeriodMonthly: 4950, PeriodAnnual: 49500},
	TierProfessional: {PeriodMonthly: 29900, PeriodAnnual: 299000},
	TierEnterprise:   {PeriodMonthly: 99900, PeriodAnnual: 999000},
}

// Amount returns the charge in US cents for a tier and billing period.
func Amount(tier Tier, period BillingPeriod) (int, error) {
	periods, ok := catalog[tier]
	if !ok {
		return 0, fmt.Errorf("invalid tier: %q", tier)
	}
	amount, ok := periods[period]
	if !ok {
		return 0, fmt.Errorf("invalid billing period: %q", period)
	}
	return amount, nil
}

// MonthlyRevenue returns the estimated monthly revenue in US dollars
// for one active subscription of the given tier. Used by the admin
// statistics endpoint.
func MonthlyRevenue(tier Tier) float64 {
	switch tier {
	case TierAcademic:
		return 49.5
	case TierProfessional:
		return 299
	case TierEnterprise:
		return 999
	}
	return 0
}

// AcademicDiscountPercent is the discount applied to users registering
// with an academic email address.
const AcademicDiscountPercent = 50

// IsAcademicEmail reports whether an email address qualifies for the
// academic discount: a .edu top-level domain or a .ac. country domain
// (e.g. .ac.uk, .ac.jp).
func IsAcademicEmail(email string) bool {
	email = strings.ToLower(email)
	return strings.HasSuffix(email, ".edu") || strings.Contains(email, ".ac.")
}

// DiscountFor returns the discount percentage for an email address.
func DiscountFor(email string) int {
	if IsAcademicEmail(email) {
		return AcademicDiscountPercent
	}
	return 0
}
