package classifier

import (
	"fmt"
	"strings"

	"github.com/caledonia-energy/engage-cli/internal/model"
	"github.com/caledonia-energy/engage-cli/internal/policy"
)

// Signals are the derived counts one classification pass works from.
// They are computed once from the bounded history windows and shared by
// the prompt builder and the fallback rule engine.
type Signals struct {
	UnresolvedCount    int
	BillingFlagged     int
	NegativeCount      int
	ComplaintCount     int
	UnsubscribeCount   int
	HighUrgencyActions int
	NotificationCount  int
	UnopenedRatio      float64
}

// DeriveSignals computes Signals from a customer's history. A nil
// history yields zero signals, not an error.
func DeriveSignals(h *model.CustomerHistory) Signals {
	var s Signals
	if h == nil {
		return s
	}

	for _, i := range h.Interactions {
		if i.Resolution == model.ResolutionPending || i.Resolution == model.ResolutionEscalated {
			s.UnresolvedCount++
		}
		if strings.Contains(strings.ToLower(i.Summary), "billing") {
			s.BillingFlagged++
		}
		if i.Sentiment == model.SentimentNegative {
			s.NegativeCount++
		}
		if i.Type == model.InteractionComplaint {
			s.ComplaintCount++
		}
		if i.Type == model.InteractionUnsubscribe {
			s.UnsubscribeCount++
		}
	}

	s.NotificationCount = len(h.Notifications)
	if s.NotificationCount > 0 {
		unopened := 0
		for _, n := range h.Notifications {
			if !n.Opened {
				unopened++
			}
		}
		s.UnopenedRatio = float64(unopened) / float64(s.NotificationCount)
	}

	for _, a := range h.Actions {
		if a.Urgency == model.UrgencyLevelHigh {
			s.HighUrgencyActions++
		}
	}

	return s
}

// ContextSummary renders the signals as the semicolon-joined context
// line fed to the insight provider.
func ContextSummary(c model.CustomerRecord, s Signals, t policy.Thresholds) string {
	var parts []string

	if c.AccountStatus == model.StatusAtRisk {
		parts = append(parts, "Account at risk of churn")
	}
	if c.ChurnRisk > t.RetentionChurnRisk {
		parts = append(parts, fmt.Sprintf("High churn risk: %d%%", c.ChurnRisk))
	} else if c.ChurnRisk > t.ContactChurnRisk {
		parts = append(parts, fmt.Sprintf("Medium churn risk: %d%%", c.ChurnRisk))
	}
	if c.EngagementScore < t.LowEngagement {
		parts = append(parts, "Low engagement with services")
	}
	if s.UnresolvedCount > 0 {
		parts = append(parts, fmt.Sprintf("Unresolved issues: %d", s.UnresolvedCount))
	}
	if s.NegativeCount > 0 {
		parts = append(parts, fmt.Sprintf("Recent negative interactions: %d", s.NegativeCount))
	}
	if s.BillingFlagged > 0 {
		parts = append(parts, "Recent billing-related interactions")
	}
	if s.UnsubscribeCount > 0 {
		parts = append(parts, "Unsubscribe request on record")
	}
	if s.NotificationCount > 0 {
		if s.UnopenedRatio >= 1 {
			parts = append(parts, "Never opens notifications")
		} else if s.UnopenedRatio > t.UnopenedNotifyRatio {
			parts = append(parts, "Low notification engagement")
		}
	}
	if s.HighUrgencyActions > 0 {
		parts = append(parts, fmt.Sprintf("Urgent actions required: %d", s.HighUrgencyActions))
	}

	if c.Segment == model.SegmentValueSeekers {
		parts = append(parts, "Target segment: Value Seekers - focus on cost savings and value")
		if c.IncomeBracket == "Low" {
			parts = append(parts, "Low income bracket - price sensitive")
		}
	}

	if len(parts) == 0 {
		return "Standard customer analysis"
	}
	return strings.Join(parts, "; ")
}
