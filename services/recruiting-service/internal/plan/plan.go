// Package plan maps subscription tiers to the features a startup may use and
// enforces those limits.
package plan

import (
	"errors"
	"fmt"
	"strings"
)

type Tier string

const (
	TierFree       Tier = "FREE"
	TierGrowth     Tier = "GROWTH"
	TierPro        Tier = "PRO"
	TierEnterprise Tier = "ENTERPRISE"
)

// AnalyticsLevel is the depth of job analytics a tier unlocks.
type AnalyticsLevel string

const (
	AnalyticsNone     AnalyticsLevel = "none"
	AnalyticsBasic    AnalyticsLevel = "basic"
	AnalyticsAdvanced AnalyticsLevel = "advanced"
)

// Unlimited as MaxActiveJobs removes the quota.
const Unlimited = 0

var (
	ErrUpgradeRequired = errors.New("upgrade required")
	ErrUnknownTier     = errors.New("unknown plan tier")
)

// Capabilities is what a tier allows.
type Capabilities struct {
	Tier                Tier           `json:"tier"`
	MaxActiveJobs       int            `json:"maxActiveJobs"`
	JobAnalysis         AnalyticsLevel `json:"jobAnalysis"`
	InterviewScheduling bool           `json:"interviewScheduling"`
}

var tiers = []Capabilities{
	{Tier: TierFree, MaxActiveJobs: 1, JobAnalysis: AnalyticsNone, InterviewScheduling: false},
	{Tier: TierGrowth, MaxActiveJobs: 5, JobAnalysis: AnalyticsBasic, InterviewScheduling: true},
	{Tier: TierPro, MaxActiveJobs: 20, JobAnalysis: AnalyticsAdvanced, InterviewScheduling: true},
	{Tier: TierEnterprise, MaxActiveJobs: Unlimited, JobAnalysis: AnalyticsAdvanced, InterviewScheduling: true},
}

// ParseTier accepts a tier name in any case.
func ParseTier(s string) (Tier, error) {
	t := Tier(strings.ToUpper(strings.TrimSpace(s)))
	for _, c := range tiers {
		if c.Tier == t {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownTier, s)
}

// For returns the capabilities of tier. Unknown tiers get the free tier.
func For(tier Tier) Capabilities {
	for _, c := range tiers {
		if c.Tier == tier {
			return c
		}
	}
	return tiers[0]
}

// All lists every tier from cheapest to most expensive.
func All() []Capabilities {
	out := make([]Capabilities, len(tiers))
	copy(out, tiers)
	return out
}

// CheckActiveJobs fails when opening one more job would exceed the quota.
func (c Capabilities) CheckActiveJobs(active int64) error {
	if c.MaxActiveJobs != Unlimited && active >= int64(c.MaxActiveJobs) {
		return fmt.Errorf("%w: %s allows %d active jobs", ErrUpgradeRequired, c.Tier, c.MaxActiveJobs)
	}
	return nil
}

func (c Capabilities) CheckInterviewScheduling() error {
	if !c.InterviewScheduling {
		return fmt.Errorf("%w: %s does not include interview scheduling", ErrUpgradeRequired, c.Tier)
	}
	return nil
}

func (c Capabilities) CheckAnalytics() error {
	if c.JobAnalysis == AnalyticsNone {
		return fmt.Errorf("%w: %s does not include job analytics", ErrUpgradeRequired, c.Tier)
	}
	return nil
}
