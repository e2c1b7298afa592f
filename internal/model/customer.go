package model

import "time"

// Segment is a closed customer category driving archetype and tone.
type Segment string

const (
	SegmentValueSeekers    Segment = "Value Seekers"
	SegmentTraditionalists Segment = "Traditionalists"
	SegmentDigitalNatives  Segment = "Digital Natives"
	SegmentEcoSavers       Segment = "Eco Savers"
)

// ContactChannel is a customer's preferred contact channel as stored.
type ContactChannel string

const (
	ChannelEmail   ContactChannel = "Email"
	ChannelSMS     ContactChannel = "SMS"
	ChannelAppPush ContactChannel = "App Push"
	ChannelPhone   ContactChannel = "Phone"
)

// AccountStatus describes the current state of a customer account.
type AccountStatus string

const (
	StatusActive  AccountStatus = "Active"
	StatusAtRisk  AccountStatus = "At Risk"
	StatusDormant AccountStatus = "Dormant"
	StatusClosed  AccountStatus = "Closed"
)

// CustomerRecord is an immutable per-run snapshot of one customer.
// Normalization happens once at the store boundary: numeric
// usage/engagement fields default to 0 and free-text anomaly/ownership
// fields default to the literal "None", so downstream components never
// re-derive defaults.
type CustomerRecord struct {
	ID               string         `json:"customer_id"`
	Name             string         `json:"name"`
	Segment          Segment        `json:"segment"`
	OptedIn          bool           `json:"opted_in"`
	PreferredChannel ContactChannel `json:"preferred_channel"`
	Location         string         `json:"location"`
	Region           string         `json:"region"`
	Age              int            `json:"age"`
	IncomeBracket    string         `json:"income_bracket"`
	TenureYears      float64        `json:"tenure_years"`
	Satisfaction     int            `json:"satisfaction_score"` // 0-10
	AccountStatus    AccountStatus  `json:"account_status"`
	ChurnRisk        int            `json:"churn_risk"`       // 0-100
	EngagementScore  int            `json:"engagement_score"` // 0-100
	SubscriptionType string         `json:"subscription_type"`

	// Usage and campaign signals.
	DailyUsageKWh      float64 `json:"daily_usage_kwh"`
	SeasonalUsageKWh   float64 `json:"seasonal_usage_kwh"`
	SolarEVOwnership   string  `json:"solar_ev_ownership"`
	BillingAnomaly     string  `json:"billing_anomaly"`
	CampaignClicks     int     `json:"campaign_clicks"`
	CampaignOpens      int     `json:"campaign_opens"`
	SupportTicketIssue string  `json:"support_ticket_issue"`
}

// FirstName returns the customer's first name for message
// personalisation, or "Valued Customer" when the name is missing.
func (c CustomerRecord) FirstName() string {
	for i, r := range c.Name {
		if r == ' ' {
			return c.Name[:i]
		}
	}
	if c.Name == "" {
		return "Valued Customer"
	}
	return c.Name
}

// InteractionType classifies a past contact event.
type InteractionType string

const (
	InteractionComplaint      InteractionType = "Complaint"
	InteractionQuery          InteractionType = "Query"
	InteractionUnsubscribe    InteractionType = "Unsubscribe"
	InteractionCompliment     InteractionType = "Compliment"
	InteractionServiceRequest InteractionType = "Service Request"
)

// Sentiment is the recorded tone of an interaction.
type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNeutral  Sentiment = "Neutral"
	SentimentNegative Sentiment = "Negative"
)

// ResolutionStatus tracks whether an interaction was resolved.
type ResolutionStatus string

const (
	ResolutionPending   ResolutionStatus = "Pending"
	ResolutionEscalated ResolutionStatus = "Escalated"
	ResolutionResolved  ResolutionStatus = "Resolved"
)

// InteractionRecord is one past contact event.
type InteractionRecord struct {
	CustomerID string           `json:"customer_id"`
	Type       InteractionType  `json:"interaction_type"`
	Channel    ContactChannel   `json:"channel"`
	Summary    string           `json:"summary"`
	Sentiment  Sentiment        `json:"sentiment"`
	Resolution ResolutionStatus `json:"resolution_status"`
	OccurredAt time.Time        `json:"occurred_at"`
}

// NotificationHistoryRecord is one past outbound message.
type NotificationHistoryRecord struct {
	CustomerID     string    `json:"customer_id"`
	Type           string    `json:"type"`
	Channel        string    `json:"channel"`
	Opened         bool      `json:"opened"`
	Clicked        bool      `json:"clicked"`
	DeliveryStatus string    `json:"delivery_status"`
	ActionTaken    string    `json:"action_taken"`
	Priority       string    `json:"priority"`
	SentAt         time.Time `json:"sent_at"`
}

// UrgencyLevel grades a recommended action.
type UrgencyLevel string

const (
	UrgencyLevelHigh   UrgencyLevel = "High"
	UrgencyLevelMedium UrgencyLevel = "Medium"
	UrgencyLevelLow    UrgencyLevel = "Low"
)

// RecommendedActionRecord is an operationally flagged follow-up.
type RecommendedActionRecord struct {
	CustomerID       string       `json:"customer_id"`
	Scenario         string       `json:"scenario"`
	Action           string       `json:"recommended_action"`
	Urgency          UrgencyLevel `json:"urgency_level"`
	FollowUpRequired bool         `json:"follow_up_required"`
	AssignedTeam     string       `json:"assigned_team"`
}

// History windows: only the most recent events inform classification.
const (
	InteractionWindow  = 5
	NotificationWindow = 10
)

// CustomerHistory bundles the bounded, most-recent-first history used
// for one classification pass.
type CustomerHistory struct {
	Interactions  []InteractionRecord         `json:"interactions"`
	Notifications []NotificationHistoryRecord `json:"notifications"`
	Actions       []RecommendedActionRecord   `json:"actions"`
}

// SegmentStats aggregates one segment for the dashboard.
type SegmentStats struct {
	Segment               Segment        `json:"segment"`
	Count                 int            `json:"count"`
	AvgAge                float64        `json:"avg_age"`
	AvgEngagement         float64        `json:"avg_engagement_score"`
	AvgChurnRisk          float64        `json:"avg_churn_risk"`
	AvgSatisfaction       float64        `json:"avg_satisfaction"`
	SubscriptionBreakdown map[string]int `json:"subscription_breakdown"`
}
