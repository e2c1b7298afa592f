package store

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/caledonia-energy/engage-cli/internal/model"
)

// Source CSV file names, as exported from the CRM.
const (
	profilesCSV      = "Customer Profiles.csv"
	activityCSV      = "Account Activity Logs.csv"
	interactionsCSV  = "Interaction History.csv"
	notificationsCSV = "Notification History.csv"
	actionsCSV       = "Recommended Actions.csv"
)

// ImportCSVDir loads the CRM export CSVs from dir into the store.
// Profile and activity rows are merged into one customer record per
// id; history files are optional. Returns the number of customers
// imported.
func ImportCSVDir(ctx context.Context, s *SQLiteStore, dir string) (int, error) {
	profiles, err := readCSV(filepath.Join(dir, profilesCSV))
	if err != nil {
		return 0, eris.Wrap(err, "import: customer profiles")
	}

	// Activity logs are keyed by customer id; merge into profiles.
	activity := map[string]csvRow{}
	if rows, err := readCSV(filepath.Join(dir, activityCSV)); err == nil {
		for _, row := range rows {
			activity[row.get("Customer_ID")] = row
		}
	} else if !os.IsNotExist(eris.Cause(err)) {
		return 0, eris.Wrap(err, "import: account activity")
	}

	imported := 0
	for _, row := range profiles {
		id := row.get("Customer_ID")
		if id == "" {
			continue
		}
		c := customerFromRows(row, activity[id])
		if err := s.UpsertCustomer(ctx, c); err != nil {
			return imported, err
		}
		imported++
	}

	if err := importInteractions(ctx, s, filepath.Join(dir, interactionsCSV)); err != nil {
		return imported, err
	}
	if err := importNotifications(ctx, s, filepath.Join(dir, notificationsCSV)); err != nil {
		return imported, err
	}
	if err := importActions(ctx, s, filepath.Join(dir, actionsCSV)); err != nil {
		return imported, err
	}

	zap.L().Info("csv import complete",
		zap.Int("customers", imported),
		zap.String("dir", dir),
	)
	return imported, nil
}

func customerFromRows(profile, activity csvRow) model.CustomerRecord {
	return model.CustomerRecord{
		ID:               profile.get("Customer_ID"),
		Name:             profile.get("Name"),
		Segment:          model.Segment(defaultStr(profile.get("Segment"), profile.get("customer_segment"))),
		OptedIn:          isYes(profile.get("Opted_In")),
		PreferredChannel: model.ContactChannel(defaultStr(profile.get("Preferred_Channel"), "Email")),
		Location:         profile.get("Location"),
		Region:           profile.get("Region"),
		Age:              profile.getInt("Age"),
		IncomeBracket:    profile.get("Income_Bracket"),
		Satisfaction:     profile.getInt("Satisfaction_Score"),

		AccountStatus:    model.AccountStatus(defaultStr(activity.get("Account_Status"), "Active")),
		TenureYears:      activity.getFloat("Account_Tenure_Years"),
		ChurnRisk:        activity.getInt("Churn_Risk_Score"),
		EngagementScore:  activity.getInt("Engagement_Score"),
		SubscriptionType: activity.get("Subscription_Type"),

		DailyUsageKWh:      profile.getFloat("Daily_Energy_Usage_kWh"),
		SeasonalUsageKWh:   profile.getFloat("Seasonal_Energy_Usage_kWh"),
		SolarEVOwnership:   defaultStr(profile.get("Solar_EV_Ownership"), "None"),
		BillingAnomaly:     defaultStr(profile.get("Billing_Anomaly"), "None"),
		CampaignClicks:     profile.getInt("Campaign_Clicks"),
		CampaignOpens:      profile.getInt("Campaign_Opens"),
		SupportTicketIssue: defaultStr(profile.get("Support_Ticket_Issue"), "None"),
	}
}

func importInteractions(ctx context.Context, s *SQLiteStore, path string) error {
	rows, err := readCSV(path)
	if os.IsNotExist(eris.Cause(err)) {
		return nil
	}
	if err != nil {
		return eris.Wrap(err, "import: interaction history")
	}
	for _, row := range rows {
		r := model.InteractionRecord{
			CustomerID: row.get("Customer_ID"),
			Type:       model.InteractionType(row.get("Interaction_Type")),
			Channel:    model.ContactChannel(row.get("Channel")),
			Summary:    row.get("Summary"),
			Sentiment:  model.Sentiment(row.get("Sentiment")),
			Resolution: model.ResolutionStatus(row.get("Resolution_Status")),
			OccurredAt: row.getTime("Date & Time"),
		}
		if r.CustomerID == "" {
			continue
		}
		if err := s.InsertInteraction(ctx, uuid.New().String(), r); err != nil {
			return err
		}
	}
	return nil
}

func importNotifications(ctx context.Context, s *SQLiteStore, path string) error {
	rows, err := readCSV(path)
	if os.IsNotExist(eris.Cause(err)) {
		return nil
	}
	if err != nil {
		return eris.Wrap(err, "import: notification history")
	}
	for _, row := range rows {
		r := model.NotificationHistoryRecord{
			CustomerID:     row.get("Customer_ID"),
			Type:           row.get("Notification_Type"),
			Channel:        row.get("Channel"),
			Opened:         isYes(row.get("Opened")),
			Clicked:        isYes(row.get("Clicked")),
			DeliveryStatus: row.get("Delivery_Status"),
			ActionTaken:    row.get("Action_Taken"),
			Priority:       row.get("Priority"),
			SentAt:         row.getTime("Sent_Date"),
		}
		if r.CustomerID == "" {
			continue
		}
		if err := s.InsertNotificationHistory(ctx, uuid.New().String(), r); err != nil {
			return err
		}
	}
	return nil
}

func importActions(ctx context.Context, s *SQLiteStore, path string) error {
	rows, err := readCSV(path)
	if os.IsNotExist(eris.Cause(err)) {
		return nil
	}
	if err != nil {
		return eris.Wrap(err, "import: recommended actions")
	}
	for _, row := range rows {
		r := model.RecommendedActionRecord{
			CustomerID:       row.get("Customer_ID"),
			Scenario:         row.get("Scenario"),
			Action:           row.get("Recommended_Action"),
			Urgency:          model.UrgencyLevel(row.get("Urgency_Level")),
			FollowUpRequired: isYes(row.get("Follow_Up_Required")),
			AssignedTeam:     row.get("Assigned_Team"),
		}
		if r.CustomerID == "" {
			continue
		}
		if err := s.InsertRecommendedAction(ctx, uuid.New().String(), r); err != nil {
			return err
		}
	}
	return nil
}

// --- CSV plumbing ---

// csvRow maps normalized header names to values for one record.
type csvRow map[string]string

func (r csvRow) get(key string) string {
	return strings.TrimSpace(r[normalizeHeader(key)])
}

func (r csvRow) getInt(key string) int {
	n, err := strconv.Atoi(r.get(key))
	if err != nil {
		return 0
	}
	return n
}

func (r csvRow) getFloat(key string) float64 {
	f, err := strconv.ParseFloat(r.get(key), 64)
	if err != nil {
		return 0
	}
	return f
}

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02/01/2006 15:04",
	"02/01/2006",
}

func (r csvRow) getTime(key string) time.Time {
	v := r.get(key)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func readCSV(path string) ([]csvRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // tolerate ragged exports

	header, err := reader.Read()
	if err != nil {
		return nil, eris.Wrapf(err, "read header %s", path)
	}
	for i, h := range header {
		header[i] = normalizeHeader(h)
	}

	var rows []csvRow
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "read row %s", path)
		}
		row := csvRow{}
		for i, v := range record {
			if i < len(header) {
				row[header[i]] = v
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func normalizeHeader(h string) string {
	h = strings.TrimSpace(strings.ToLower(h))
	h = strings.ReplaceAll(h, " ", "_")
	return h
}

func isYes(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "yes", "true", "1", "y":
		return true
	}
	return false
}

func defaultStr(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
