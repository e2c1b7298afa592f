package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caledonia-energy/engage-cli/internal/classifier"
	"github.com/caledonia-energy/engage-cli/internal/composer"
	"github.com/caledonia-energy/engage-cli/internal/engine"
	"github.com/caledonia-energy/engage-cli/internal/insight"
	"github.com/caledonia-energy/engage-cli/internal/model"
	"github.com/caledonia-energy/engage-cli/internal/policy"
	"github.com/caledonia-energy/engage-cli/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))

	seed := []model.CustomerRecord{
		{ID: "CUST-HIGH", Name: "Anna Morris", Segment: model.SegmentValueSeekers, OptedIn: true, ChurnRisk: 85, AccountStatus: model.StatusAtRisk, Satisfaction: 2, PreferredChannel: model.ChannelAppPush, BillingAnomaly: "None"},
		{ID: "CUST-STABLE", Name: "Cara Lindsey", Segment: model.SegmentValueSeekers, OptedIn: true, ChurnRisk: 10, EngagementScore: 75, Satisfaction: 8, CampaignClicks: 5, AccountStatus: model.StatusActive, BillingAnomaly: "None"},
		{ID: "CUST-OPTOUT", Name: "Omar Khan", Segment: model.SegmentValueSeekers, OptedIn: false, ChurnRisk: 90, AccountStatus: model.StatusAtRisk, Satisfaction: 1, BillingAnomaly: "None"},
	}
	for _, c := range seed {
		require.NoError(t, st.UpsertCustomer(context.Background(), c))
	}

	thresholds := policy.DefaultThresholds()
	provider := insight.Unavailable()
	eng := engine.New(
		st,
		classifier.New(provider, thresholds, 600),
		policy.New(thresholds),
		composer.New(provider, 200),
		2,
	)

	srv := httptest.NewServer(New(eng, st, "Value Seekers").Router())
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, out any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

func TestServer_Health(t *testing.T) {
	srv := newTestServer(t)

	var body map[string]string
	status := getJSON(t, srv.URL+"/health", &body)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}

func TestServer_Customers(t *testing.T) {
	srv := newTestServer(t)

	var customers []model.CustomerRecord
	status := getJSON(t, srv.URL+"/api/customers", &customers)

	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, customers, 3)
}

func TestServer_NotificationsRun(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Post(srv.URL+"/api/notifications/run", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var notifications []model.Notification
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&notifications))

	// Only the opted-in at-risk customer qualifies: the stable one is
	// suppressed and the opted-out one is filtered before classification.
	require.Len(t, notifications, 1)
	assert.Equal(t, "CUST-HIGH", notifications[0].CustomerID)
	assert.Equal(t, model.PriorityHigh, notifications[0].Priority)
	assert.Equal(t, "app_notification", notifications[0].Channel)
	assert.NotEmpty(t, notifications[0].Message)
}

func TestServer_Analysis(t *testing.T) {
	srv := newTestServer(t)

	var analyses []model.CustomerAnalysis
	status := getJSON(t, srv.URL+"/api/analysis", &analyses)

	assert.Equal(t, http.StatusOK, status)
	// Analysis covers everyone in the segment, contacted or not.
	assert.Len(t, analyses, 3)
}

func TestServer_AnalysisOne(t *testing.T) {
	srv := newTestServer(t)

	var analysis model.CustomerAnalysis
	status := getJSON(t, srv.URL+"/api/analysis/CUST-HIGH", &analysis)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, model.PriorityHigh, analysis.Assessment.Priority)

	status = getJSON(t, srv.URL+"/api/analysis/CUST-MISSING", nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestServer_Segments(t *testing.T) {
	srv := newTestServer(t)

	var body map[string]model.SegmentStats
	status := getJSON(t, srv.URL+"/api/segments", &body)

	assert.Equal(t, http.StatusOK, status)
	require.Contains(t, body, "Value Seekers")
	assert.Equal(t, 3, body["Value Seekers"].Count)
}

func TestServer_SendSimulatesDelivery(t *testing.T) {
	srv := newTestServer(t)

	payload, _ := json.Marshal(map[string]string{"customer_id": "CUST-HIGH", "channel": "sms"})
	resp, err := http.Post(srv.URL+"/api/send", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "sent", body["status"])
	assert.Equal(t, "CUST-HIGH", body["customer_id"])
	assert.Equal(t, "sms", body["channel"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestServer_SendValidation(t *testing.T) {
	srv := newTestServer(t)

	payload, _ := json.Marshal(map[string]string{"customer_id": "CUST-MISSING"})
	resp, err := http.Post(srv.URL+"/api/send", "application/json", bytes.NewReader(payload))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/api/send", "application/json", bytes.NewReader([]byte(`{}`)))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
