package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caledonia-energy/engage-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func seedCustomer(t *testing.T, st *SQLiteStore, c model.CustomerRecord) {
	t.Helper()
	require.NoError(t, st.UpsertCustomer(context.Background(), c))
}

func TestSQLite_GetCustomer(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	seedCustomer(t, st, model.CustomerRecord{
		ID:               "CUST-001",
		Name:             "Sarah Hughes",
		Segment:          model.SegmentValueSeekers,
		OptedIn:          true,
		PreferredChannel: model.ChannelSMS,
		ChurnRisk:        72,
		EngagementScore:  18,
		Satisfaction:     3,
		TenureYears:      4.5,
		DailyUsageKWh:    31.2,
		BillingAnomaly:   "Unexpected spike",
		SolarEVOwnership: "Solar",
	})

	c, err := st.GetCustomer(ctx, "CUST-001")
	require.NoError(t, err)
	assert.Equal(t, "Sarah Hughes", c.Name)
	assert.Equal(t, model.SegmentValueSeekers, c.Segment)
	assert.True(t, c.OptedIn)
	assert.Equal(t, 72, c.ChurnRisk)
	assert.Equal(t, 4.5, c.TenureYears)
	assert.Equal(t, "Unexpected spike", c.BillingAnomaly)
}

func TestSQLite_GetCustomer_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetCustomer(context.Background(), "CUST-MISSING")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_DefaultFillOnMissingFields(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	// Insert a minimal row directly so the nullable columns stay NULL.
	_, err := st.db.ExecContext(ctx,
		`INSERT INTO customers (id, name) VALUES ('CUST-BARE', 'Bare Row')`)
	require.NoError(t, err)

	c, err := st.GetCustomer(ctx, "CUST-BARE")
	require.NoError(t, err)

	assert.Zero(t, c.DailyUsageKWh)
	assert.Zero(t, c.CampaignClicks)
	assert.Zero(t, c.CampaignOpens)
	assert.Equal(t, "None", c.BillingAnomaly)
	assert.Equal(t, "None", c.SolarEVOwnership)
	assert.Equal(t, "None", c.SupportTicketIssue)
}

func TestSQLite_ListCustomers_Filters(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	seedCustomer(t, st, model.CustomerRecord{ID: "CUST-001", Name: "A", Segment: model.SegmentValueSeekers, OptedIn: true})
	seedCustomer(t, st, model.CustomerRecord{ID: "CUST-002", Name: "B", Segment: model.SegmentValueSeekers, OptedIn: false})
	seedCustomer(t, st, model.CustomerRecord{ID: "CUST-003", Name: "C", Segment: model.SegmentEcoSavers, OptedIn: true})

	t.Run("no filter", func(t *testing.T) {
		all, err := st.ListCustomers(ctx, Filter{})
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("by segment", func(t *testing.T) {
		vs, err := st.ListCustomers(ctx, Filter{Segment: "Value Seekers"})
		require.NoError(t, err)
		assert.Len(t, vs, 2)
	})

	t.Run("opted in only", func(t *testing.T) {
		opted, err := st.ListCustomers(ctx, Filter{Segment: "Value Seekers", OptedInOnly: true})
		require.NoError(t, err)
		require.Len(t, opted, 1)
		assert.Equal(t, "CUST-001", opted[0].ID)
	})

	t.Run("limit", func(t *testing.T) {
		limited, err := st.ListCustomers(ctx, Filter{Limit: 2})
		require.NoError(t, err)
		assert.Len(t, limited, 2)
	})
}

func TestSQLite_LoadHistory_WindowsAndOrder(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	seedCustomer(t, st, model.CustomerRecord{ID: "CUST-001", Name: "A"})

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < model.InteractionWindow+3; i++ {
		require.NoError(t, st.InsertInteraction(ctx, uniqueID("int", i), model.InteractionRecord{
			CustomerID: "CUST-001",
			Type:       model.InteractionQuery,
			Summary:    "Query",
			Sentiment:  model.SentimentNeutral,
			Resolution: model.ResolutionResolved,
			OccurredAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}
	for i := 0; i < model.NotificationWindow+5; i++ {
		require.NoError(t, st.InsertNotificationHistory(ctx, uniqueID("not", i), model.NotificationHistoryRecord{
			CustomerID: "CUST-001",
			Type:       "engagement",
			Opened:     i%2 == 0,
			SentAt:     base.Add(time.Duration(i) * time.Hour),
		}))
	}
	require.NoError(t, st.InsertRecommendedAction(ctx, "act-1", model.RecommendedActionRecord{
		CustomerID: "CUST-001",
		Scenario:   "High churn",
		Urgency:    model.UrgencyLevelHigh,
	}))

	h, err := st.LoadHistory(ctx, "CUST-001")
	require.NoError(t, err)

	require.Len(t, h.Interactions, model.InteractionWindow)
	require.Len(t, h.Notifications, model.NotificationWindow)
	require.Len(t, h.Actions, 1)

	// Most recent first.
	assert.True(t, h.Interactions[0].OccurredAt.After(h.Interactions[1].OccurredAt))
	assert.True(t, h.Notifications[0].SentAt.After(h.Notifications[1].SentAt))
	assert.Equal(t, model.UrgencyLevelHigh, h.Actions[0].Urgency)
}

func TestSQLite_LoadHistory_EmptyCustomer(t *testing.T) {
	st := newTestSQLiteStore(t)

	seedCustomer(t, st, model.CustomerRecord{ID: "CUST-001", Name: "A"})

	h, err := st.LoadHistory(context.Background(), "CUST-001")
	require.NoError(t, err)
	assert.Empty(t, h.Interactions)
	assert.Empty(t, h.Notifications)
	assert.Empty(t, h.Actions)
}

func TestSQLite_SegmentStats(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	seedCustomer(t, st, model.CustomerRecord{ID: "CUST-001", Name: "A", Segment: model.SegmentValueSeekers, Age: 30, EngagementScore: 40, ChurnRisk: 60, Satisfaction: 6, SubscriptionType: "Fixed"})
	seedCustomer(t, st, model.CustomerRecord{ID: "CUST-002", Name: "B", Segment: model.SegmentValueSeekers, Age: 50, EngagementScore: 60, ChurnRisk: 20, Satisfaction: 8, SubscriptionType: "Variable"})
	seedCustomer(t, st, model.CustomerRecord{ID: "CUST-003", Name: "C", Segment: model.SegmentEcoSavers, Age: 99, EngagementScore: 1, ChurnRisk: 99, Satisfaction: 1, SubscriptionType: "Fixed"})

	stats, err := st.SegmentStats(ctx, "Value Seekers")
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Count)
	assert.InDelta(t, 40.0, stats.AvgAge, 0.001)
	assert.InDelta(t, 50.0, stats.AvgEngagement, 0.001)
	assert.InDelta(t, 40.0, stats.AvgChurnRisk, 0.001)
	assert.InDelta(t, 7.0, stats.AvgSatisfaction, 0.001)
	assert.Equal(t, map[string]int{"Fixed": 1, "Variable": 1}, stats.SubscriptionBreakdown)
}

func TestSQLite_UpsertOverwrites(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	seedCustomer(t, st, model.CustomerRecord{ID: "CUST-001", Name: "Old Name", ChurnRisk: 10})
	seedCustomer(t, st, model.CustomerRecord{ID: "CUST-001", Name: "New Name", ChurnRisk: 90})

	c, err := st.GetCustomer(ctx, "CUST-001")
	require.NoError(t, err)
	assert.Equal(t, "New Name", c.Name)
	assert.Equal(t, 90, c.ChurnRisk)
}

func uniqueID(prefix string, i int) string {
	return fmt.Sprintf("%s-%d", prefix, i)
}
