package assembler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caledonia-energy/engage-cli/internal/model"
)

func TestDeliveryChannel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   model.ContactChannel
		want string
	}{
		{model.ChannelEmail, "email"},
		{model.ChannelSMS, "sms"},
		{model.ChannelAppPush, "app_notification"},
		{model.ChannelPhone, "phone_call"},
		{model.ContactChannel("Fax"), "email"},
		{model.ContactChannel(""), "email"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DeliveryChannel(tt.in), "channel %q", tt.in)
	}
}

func TestAssemble(t *testing.T) {
	t.Parallel()

	c := model.CustomerRecord{
		ID:               "CUST-042",
		Name:             "Priya Patel",
		Segment:          model.SegmentValueSeekers,
		PreferredChannel: model.ChannelAppPush,
		ChurnRisk:        72,
	}
	a := model.PriorityAssessment{
		Priority:  model.PriorityHigh,
		Urgency:   model.UrgencyImmediate,
		RiskScore: 8,
	}
	d := model.ContactDecision{
		ShouldContact: true,
		Archetype:     model.ArchetypeChurnPrevention,
		Reason:        "High priority: churn risk",
	}

	n := Assemble(c, a, d, "Dear Priya, how can we help?", model.SourceModel)

	require.NotEmpty(t, n.ID)
	assert.Equal(t, "CUST-042", n.CustomerID)
	assert.Equal(t, "Priya Patel", n.CustomerName)
	assert.Equal(t, model.SegmentValueSeekers, n.Segment)
	assert.Equal(t, model.ArchetypeChurnPrevention, n.Archetype)
	assert.Equal(t, model.PriorityHigh, n.Priority)
	assert.Equal(t, 8, n.RiskScore)
	assert.Equal(t, 72, n.ChurnRisk)
	assert.Equal(t, "app_notification", n.Channel)
	assert.Equal(t, "High priority: churn risk", n.ContactReason)
	assert.Equal(t, model.SourceModel, n.Source)
	assert.False(t, n.CreatedAt.IsZero())
}

func TestSortNotifications_PriorityDominatesRisk(t *testing.T) {
	t.Parallel()

	list := []model.Notification{
		{CustomerID: "B", Priority: model.PriorityMedium, RiskScore: 9},
		{CustomerID: "A", Priority: model.PriorityHigh, RiskScore: 7},
	}

	SortNotifications(list)

	assert.Equal(t, "A", list[0].CustomerID)
	assert.Equal(t, "B", list[1].CustomerID)
}

func TestSortNotifications_RiskBreaksTies(t *testing.T) {
	t.Parallel()

	list := []model.Notification{
		{CustomerID: "low", Priority: model.PriorityHigh, RiskScore: 7},
		{CustomerID: "high", Priority: model.PriorityHigh, RiskScore: 9},
	}

	SortNotifications(list)

	assert.Equal(t, "high", list[0].CustomerID)
}

func TestSortNotifications_StableOnFullTies(t *testing.T) {
	t.Parallel()

	list := []model.Notification{
		{CustomerID: "first", Priority: model.PriorityMedium, RiskScore: 5},
		{CustomerID: "second", Priority: model.PriorityMedium, RiskScore: 5},
		{CustomerID: "third", Priority: model.PriorityMedium, RiskScore: 5},
	}

	SortNotifications(list)

	assert.Equal(t, "first", list[0].CustomerID)
	assert.Equal(t, "second", list[1].CustomerID)
	assert.Equal(t, "third", list[2].CustomerID)
}
