package classifier

import (
	"fmt"
	"strings"

	"github.com/caledonia-energy/engage-cli/internal/model"
	"github.com/caledonia-energy/engage-cli/internal/policy"
)

// Fallback is the deterministic rule engine used when the insight
// provider is absent, unreachable, or times out. It evaluates a fixed
// three-tier decision table and always produces a complete assessment
// whose trigger factors enumerate the exact conditions that fired.
func Fallback(c model.CustomerRecord, s Signals, t policy.Thresholds) model.PriorityAssessment {
	if triggers := highTierTriggers(c, s, t); len(triggers) > 0 {
		risk := 8
		if len(triggers) > 2 {
			risk = 9
		}
		return model.PriorityAssessment{
			Priority:             model.PriorityHigh,
			Urgency:              model.UrgencyImmediate,
			RiskScore:            risk,
			ContactReason:        "Urgent attention needed: " + triggers[0],
			TriggerFactors:       strings.Join(triggers, "; "),
			PotentialImpact:      "Customer may switch suppliers if not addressed quickly. High risk of negative reviews.",
			CustomerInsights:     "Likely frustrated and seeking quick resolution. Price-conscious customers expect issues fixed promptly.",
			CommunicationStyle:   "Empathetic and solution-focused. Acknowledge frustration and provide a clear timeline.",
			ConversationStarters: "We've noticed an issue on your account and want to help resolve it straight away.",
			Source:               model.SourceFallback,
		}
	}

	if triggers := mediumTierTriggers(c, s, t); len(triggers) > 0 {
		risk := 4 + len(triggers)
		if risk > 6 {
			risk = 6
		}
		return model.PriorityAssessment{
			Priority:             model.PriorityMedium,
			Urgency:              model.UrgencyWithinWeek,
			RiskScore:            risk,
			ContactReason:        "Engagement opportunity: " + triggers[0],
			TriggerFactors:       strings.Join(triggers, "; "),
			PotentialImpact:      "Customer may drift towards a competitor if engagement keeps declining.",
			CustomerInsights:     "May be busy, overwhelmed, or not finding current communications relevant.",
			CommunicationStyle:   "Helpful and advisory. Focus on practical benefits and potential savings.",
			ConversationStarters: "We want to make sure you're getting the most value from your energy service.",
			Source:               model.SourceFallback,
		}
	}

	return model.PriorityAssessment{
		Priority:             model.PriorityLow,
		Urgency:              model.UrgencyRoutine,
		RiskScore:            3,
		ContactReason:        "Standard customer profile - routine engagement opportunity",
		TriggerFactors:       fmt.Sprintf("Stable profile: churn risk %d%%, engagement score %d, no unresolved issues", c.ChurnRisk, c.EngagementScore),
		PotentialImpact:      "Minimal risk, but an opportunity to strengthen the relationship.",
		CustomerInsights:     "Stable customer who appreciates good value and service.",
		CommunicationStyle:   "Friendly and informative. Focus on value and appreciation.",
		ConversationStarters: "We wanted to check in and see how your energy service is working for you.",
		Source:               model.SourceFallback,
	}
}

func highTierTriggers(c model.CustomerRecord, s Signals, t policy.Thresholds) []string {
	var triggers []string
	if c.ChurnRisk > t.HighChurnRisk {
		triggers = append(triggers, fmt.Sprintf("Very high churn risk: %d%%", c.ChurnRisk))
	}
	if c.AccountStatus == model.StatusAtRisk {
		triggers = append(triggers, "Account flagged At Risk")
	}
	if c.Satisfaction < t.LowSatisfaction {
		triggers = append(triggers, fmt.Sprintf("Low satisfaction score: %d/10", c.Satisfaction))
	}
	if s.UnresolvedCount > 1 {
		triggers = append(triggers, fmt.Sprintf("%d unresolved issues", s.UnresolvedCount))
	}
	if s.UnsubscribeCount > 0 {
		triggers = append(triggers, "Unsubscribe request on record")
	}
	if s.HighUrgencyActions > 0 {
		triggers = append(triggers, fmt.Sprintf("%d high-urgency recommended actions outstanding", s.HighUrgencyActions))
	}
	return triggers
}

func mediumTierTriggers(c model.CustomerRecord, s Signals, t policy.Thresholds) []string {
	var triggers []string
	if c.ChurnRisk > t.MediumChurnRisk && c.ChurnRisk <= t.HighChurnRisk {
		triggers = append(triggers, fmt.Sprintf("Elevated churn risk: %d%%", c.ChurnRisk))
	}
	if c.EngagementScore < t.LowEngagement {
		triggers = append(triggers, fmt.Sprintf("Low engagement score: %d", c.EngagementScore))
	}
	if s.BillingFlagged > 0 {
		triggers = append(triggers, fmt.Sprintf("%d billing-related interactions", s.BillingFlagged))
	}
	if s.ComplaintCount > 0 {
		triggers = append(triggers, fmt.Sprintf("%d recent complaints", s.ComplaintCount))
	}
	if s.NotificationCount > 0 && s.UnopenedRatio > t.UnopenedNotifyRatio {
		triggers = append(triggers, fmt.Sprintf("%.0f%% of recent notifications unopened", s.UnopenedRatio*100))
	}
	return triggers
}
