// Package policy decides whether a customer should be contacted and
// which message archetype fits. Decisions are ordered rule tables over
// the assessment and customer record; low-value contacts are suppressed
// deliberately to avoid notification fatigue.
package policy

import (
	"fmt"
	"strings"

	"github.com/caledonia-energy/engage-cli/internal/config"
	"github.com/caledonia-energy/engage-cli/internal/model"
)

// Thresholds are the numeric cutoffs shared by the contact policy and
// the fallback rule engine. All values are config-overridable.
type Thresholds struct {
	HighChurnRisk       int     // above this, churn alone forces high priority
	MediumChurnRisk     int     // above this (up to high), churn reads as medium
	ContactChurnRisk    int     // medium-priority contact gate
	RetentionChurnRisk  int     // churn-prevention archetype gate
	LowEngagement       int
	VeryLowEngagement   int
	LowSatisfaction     int
	HighDailyUsageKWh   float64
	DormantTenureYears  float64
	UnopenedNotifyRatio float64
	MediumContactRisk   int // medium-priority risk-score contact gate
	LowContactRiskFloor int // low-priority risk-score contact gate
}

// DefaultThresholds returns the production cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		HighChurnRisk:       70,
		MediumChurnRisk:     40,
		ContactChurnRisk:    60,
		RetentionChurnRisk:  80,
		LowEngagement:       30,
		VeryLowEngagement:   20,
		LowSatisfaction:     3,
		HighDailyUsageKWh:   30,
		DormantTenureYears:  2,
		UnopenedNotifyRatio: 0.5,
		MediumContactRisk:   5,
		LowContactRiskFloor: 6,
	}
}

// ThresholdsFromConfig maps the engage config section onto Thresholds.
func ThresholdsFromConfig(cfg config.EngageConfig) Thresholds {
	return Thresholds{
		HighChurnRisk:       cfg.HighChurnRisk,
		MediumChurnRisk:     cfg.MediumChurnRisk,
		ContactChurnRisk:    cfg.ContactChurnRisk,
		RetentionChurnRisk:  cfg.RetentionChurnRisk,
		LowEngagement:       cfg.LowEngagement,
		VeryLowEngagement:   cfg.VeryLowEngagement,
		LowSatisfaction:     cfg.LowSatisfaction,
		HighDailyUsageKWh:   cfg.HighDailyUsageKWh,
		DormantTenureYears:  cfg.DormantTenureYears,
		UnopenedNotifyRatio: cfg.UnopenedNotifyRatio,
		MediumContactRisk:   cfg.MediumContactRisk,
		LowContactRiskFloor: cfg.LowContactRiskFloor,
	}
}

// Policy applies the contact and archetype decision tables.
type Policy struct {
	t Thresholds
}

// New returns a Policy using the given thresholds.
func New(t Thresholds) *Policy {
	return &Policy{t: t}
}

// ShouldContact reports whether the customer warrants outreach, with a
// human-readable reason. First matching rule wins:
//
//  1. high priority always contacts
//  2. medium priority contacts when risk score or churn risk is elevated
//  3. low priority contacts only for a billing signal, a cost-saving
//     opportunity for a cost-sensitive segment, or a dead-engagement
//     customer with elevated risk
//
// Everything else is suppressed.
func (p *Policy) ShouldContact(c model.CustomerRecord, a model.PriorityAssessment) (bool, string) {
	switch a.Priority {
	case model.PriorityHigh:
		return true, fmt.Sprintf("High priority: %s", a.ContactReason)

	case model.PriorityMedium:
		if a.RiskScore >= p.t.MediumContactRisk || c.ChurnRisk > p.t.ContactChurnRisk {
			return true, fmt.Sprintf("Medium priority with risk score %d: %s", a.RiskScore, a.ContactReason)
		}

	case model.PriorityLow:
		if p.hasBillingSignal(c, a) {
			return true, fmt.Sprintf("Actionable opportunity: %s", a.ContactReason)
		}
		if c.DailyUsageKWh > p.t.HighDailyUsageKWh && c.Segment == model.SegmentValueSeekers {
			return true, fmt.Sprintf("Actionable opportunity: %s", a.ContactReason)
		}
		if c.CampaignClicks == 0 && a.RiskScore >= p.t.LowContactRiskFloor {
			return true, fmt.Sprintf("Actionable opportunity: %s", a.ContactReason)
		}
	}

	return false, "No urgent need for contact - avoiding notification fatigue"
}

func (p *Policy) hasBillingSignal(c model.CustomerRecord, a model.PriorityAssessment) bool {
	if c.BillingAnomaly != "" && c.BillingAnomaly != "None" {
		return true
	}
	return strings.Contains(strings.ToLower(a.ContactReason), "billing")
}

// ChooseArchetype selects the message archetype, first match wins.
func (p *Policy) ChooseArchetype(c model.CustomerRecord, h *model.CustomerHistory, a model.PriorityAssessment) model.Archetype {
	var interactions []model.InteractionRecord
	if h != nil {
		interactions = h.Interactions
	}

	for _, i := range interactions {
		if i.Sentiment == model.SentimentNegative && strings.Contains(strings.ToLower(i.Summary), "billing") {
			return model.ArchetypeBillingSupport
		}
	}
	if c.BillingAnomaly != "" && c.BillingAnomaly != "None" {
		return model.ArchetypeBillingSupport
	}

	for _, i := range interactions {
		if i.Type == model.InteractionUnsubscribe {
			return model.ArchetypeRetentionOffer
		}
	}

	if c.ChurnRisk > p.t.RetentionChurnRisk && c.AccountStatus == model.StatusAtRisk {
		return model.ArchetypeChurnPrevention
	}

	if c.AccountStatus == model.StatusDormant && c.TenureYears > p.t.DormantTenureYears {
		return model.ArchetypeReactivation
	}

	if c.EngagementScore < p.t.VeryLowEngagement && c.ChurnRisk > p.t.HighChurnRisk {
		return model.ArchetypeGentleReengagement
	}

	if c.Segment == model.SegmentValueSeekers {
		return model.ArchetypeValueOpportunity
	}
	return model.ArchetypeEngagement
}

// Decide combines ShouldContact and ChooseArchetype into one
// ContactDecision. Suppressed customers carry no archetype.
func (p *Policy) Decide(c model.CustomerRecord, h *model.CustomerHistory, a model.PriorityAssessment) model.ContactDecision {
	ok, reason := p.ShouldContact(c, a)
	if !ok {
		return model.ContactDecision{ShouldContact: false, Reason: reason}
	}
	return model.ContactDecision{
		ShouldContact: true,
		Archetype:     p.ChooseArchetype(c, h, a),
		Reason:        reason,
	}
}
