package model

import (
	"strings"
	"time"
)

// Priority is the contact priority tier.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank orders priorities for sorting: high 3, medium 2, low 1.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	default:
		return 1
	}
}

// CoercePriority maps free text onto a defined tier. Unrecognized
// input falls back to the given default, never an out-of-set value.
func CoercePriority(s string, def Priority) Priority {
	switch v := Priority(strings.ToLower(strings.TrimSpace(s))); v {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return v
	}
	return def
}

// Urgency is how soon contact should happen.
type Urgency string

const (
	UrgencyImmediate  Urgency = "immediate"
	UrgencyWithin24h  Urgency = "within_24h"
	UrgencyWithinWeek Urgency = "within_week"
	UrgencyRoutine    Urgency = "routine"
)

// CoerceUrgency maps free text onto a defined urgency, defaulting on
// anything unrecognized.
func CoerceUrgency(s string, def Urgency) Urgency {
	switch v := Urgency(strings.ToLower(strings.TrimSpace(s))); v {
	case UrgencyImmediate, UrgencyWithin24h, UrgencyWithinWeek, UrgencyRoutine:
		return v
	}
	return def
}

// AssessmentSource records which path produced an assessment, so
// callers can tell "used fallback" (expected, loggable) apart from a
// clean model response.
type AssessmentSource string

const (
	SourceModel         AssessmentSource = "model"
	SourceModelDegraded AssessmentSource = "model_degraded"
	SourceFallback      AssessmentSource = "fallback"
)

// PriorityAssessment is the structured result of classifying one
// customer. RiskScore is always within [1,10] and Priority/Urgency are
// always members of their closed sets; TriggerFactors is never empty.
type PriorityAssessment struct {
	Priority             Priority         `json:"priority"`
	Urgency              Urgency          `json:"urgency"`
	RiskScore            int              `json:"risk_score"`
	ContactReason        string           `json:"contact_reason"`
	TriggerFactors       string           `json:"trigger_factors"`
	PotentialImpact      string           `json:"potential_impact"`
	CustomerInsights     string           `json:"customer_insights"`
	CommunicationStyle   string           `json:"communication_style"`
	ConversationStarters string           `json:"conversation_starters"`
	Source               AssessmentSource `json:"source"`
}

// Archetype names a message template and purpose.
type Archetype string

const (
	ArchetypeBillingSupport     Archetype = "billing_support"
	ArchetypeRetentionOffer     Archetype = "retention_offer"
	ArchetypeChurnPrevention    Archetype = "churn_prevention"
	ArchetypeReactivation       Archetype = "reactivation"
	ArchetypeGentleReengagement Archetype = "gentle_reengagement"
	ArchetypeValueOpportunity   Archetype = "value_opportunity"
	ArchetypeEngagement         Archetype = "engagement"
)

// ContactDecision is whether and how to reach a customer.
type ContactDecision struct {
	ShouldContact bool      `json:"should_contact"`
	Archetype     Archetype `json:"archetype"`
	Reason        string    `json:"reason"`
}

// Notification is one outward-facing outreach record.
type Notification struct {
	ID            string           `json:"id"`
	CustomerID    string           `json:"customer_id"`
	CustomerName  string           `json:"customer_name"`
	Segment       Segment          `json:"segment"`
	Archetype     Archetype        `json:"archetype"`
	Priority      Priority         `json:"priority"`
	Urgency       Urgency          `json:"urgency"`
	RiskScore     int              `json:"risk_score"`
	ChurnRisk     int              `json:"churn_risk"`
	Message       string           `json:"message"`
	Channel       string           `json:"channel"`
	ContactReason string           `json:"contact_reason"`
	Source        AssessmentSource `json:"source"`
	CreatedAt     time.Time        `json:"created_at"`
}

// CustomerAnalysis pairs a customer with its assessment for the
// analysis endpoint, which reports priorities without composing.
type CustomerAnalysis struct {
	CustomerID string             `json:"customer_id"`
	Name       string             `json:"name"`
	Segment    Segment            `json:"segment"`
	Assessment PriorityAssessment `json:"assessment"`
}
