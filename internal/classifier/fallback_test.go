package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caledonia-energy/engage-cli/internal/model"
	"github.com/caledonia-energy/engage-cli/internal/policy"
)

func TestFallback_HighRiskCustomer(t *testing.T) {
	t.Parallel()

	c := model.CustomerRecord{
		ID:            "CUST-001",
		ChurnRisk:     85,
		AccountStatus: model.StatusAtRisk,
		Satisfaction:  2,
	}

	a := Fallback(c, Signals{}, policy.DefaultThresholds())

	assert.Equal(t, model.PriorityHigh, a.Priority)
	assert.Equal(t, model.UrgencyImmediate, a.Urgency)
	assert.GreaterOrEqual(t, a.RiskScore, 7)
	assert.LessOrEqual(t, a.RiskScore, 9)
	assert.Equal(t, model.SourceFallback, a.Source)
	assert.Contains(t, a.TriggerFactors, "85%")
	assert.Contains(t, a.TriggerFactors, "At Risk")
	assert.Contains(t, a.TriggerFactors, "2/10")
}

func TestFallback_StableCustomer(t *testing.T) {
	t.Parallel()

	c := model.CustomerRecord{
		ID:              "CUST-002",
		ChurnRisk:       10,
		EngagementScore: 75,
		Satisfaction:    8,
		AccountStatus:   model.StatusActive,
	}

	a := Fallback(c, Signals{}, policy.DefaultThresholds())

	assert.Equal(t, model.PriorityLow, a.Priority)
	assert.Equal(t, model.UrgencyRoutine, a.Urgency)
	assert.GreaterOrEqual(t, a.RiskScore, 1)
	assert.LessOrEqual(t, a.RiskScore, 3)
	assert.NotEmpty(t, a.TriggerFactors)
}

func TestFallback_MediumTierConditions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		c       model.CustomerRecord
		s       Signals
		trigger string
	}{
		{
			name:    "elevated churn risk",
			c:       model.CustomerRecord{ChurnRisk: 55, EngagementScore: 60, Satisfaction: 7},
			trigger: "55%",
		},
		{
			name:    "low engagement",
			c:       model.CustomerRecord{ChurnRisk: 20, EngagementScore: 15, Satisfaction: 7},
			trigger: "engagement",
		},
		{
			name:    "billing interactions",
			c:       model.CustomerRecord{ChurnRisk: 20, EngagementScore: 60, Satisfaction: 7},
			s:       Signals{BillingFlagged: 2},
			trigger: "billing",
		},
		{
			name:    "unopened notifications",
			c:       model.CustomerRecord{ChurnRisk: 20, EngagementScore: 60, Satisfaction: 7},
			s:       Signals{NotificationCount: 10, UnopenedRatio: 0.8},
			trigger: "unopened",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			a := Fallback(tt.c, tt.s, policy.DefaultThresholds())
			assert.Equal(t, model.PriorityMedium, a.Priority)
			assert.Equal(t, model.UrgencyWithinWeek, a.Urgency)
			assert.GreaterOrEqual(t, a.RiskScore, 4)
			assert.LessOrEqual(t, a.RiskScore, 6)
			assert.Contains(t, a.TriggerFactors, tt.trigger)
		})
	}
}

func TestFallback_HighTierBeatsMedium(t *testing.T) {
	t.Parallel()

	// Satisfies both tiers; high wins.
	c := model.CustomerRecord{ChurnRisk: 90, EngagementScore: 10, Satisfaction: 1}
	a := Fallback(c, Signals{BillingFlagged: 1}, policy.DefaultThresholds())

	assert.Equal(t, model.PriorityHigh, a.Priority)
}

func TestFallback_UnsubscribeAndUrgentActionsAreHighTier(t *testing.T) {
	t.Parallel()

	c := model.CustomerRecord{ChurnRisk: 10, EngagementScore: 70, Satisfaction: 8}

	a := Fallback(c, Signals{UnsubscribeCount: 1}, policy.DefaultThresholds())
	assert.Equal(t, model.PriorityHigh, a.Priority)
	assert.Contains(t, a.TriggerFactors, "Unsubscribe")

	a = Fallback(c, Signals{HighUrgencyActions: 2}, policy.DefaultThresholds())
	assert.Equal(t, model.PriorityHigh, a.Priority)
	assert.Contains(t, a.TriggerFactors, "high-urgency")
}

func TestFallback_Deterministic(t *testing.T) {
	t.Parallel()

	c := model.CustomerRecord{
		ID:              "CUST-003",
		ChurnRisk:       65,
		EngagementScore: 25,
		Satisfaction:    4,
	}
	s := Signals{NegativeCount: 1, BillingFlagged: 1}

	first := Fallback(c, s, policy.DefaultThresholds())
	second := Fallback(c, s, policy.DefaultThresholds())

	require.Equal(t, first, second)
}
