package store

import (
	"context"
	"database/sql"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/caledonia-energy/engage-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS customers (
	id                TEXT PRIMARY KEY,
	name              TEXT NOT NULL,
	segment           TEXT NOT NULL DEFAULT 'Value Seekers',
	opted_in          INTEGER NOT NULL DEFAULT 0,
	preferred_channel TEXT NOT NULL DEFAULT 'Email',
	location          TEXT,
	region            TEXT,
	age               INTEGER,
	income_bracket    TEXT,
	tenure_years      REAL,
	satisfaction      INTEGER,
	account_status    TEXT NOT NULL DEFAULT 'Active',
	churn_risk        INTEGER NOT NULL DEFAULT 0,
	engagement_score  INTEGER NOT NULL DEFAULT 0,
	subscription_type TEXT,
	daily_usage_kwh   REAL,
	seasonal_usage_kwh REAL,
	solar_ev_ownership TEXT,
	billing_anomaly   TEXT,
	campaign_clicks   INTEGER,
	campaign_opens    INTEGER,
	support_ticket_issue TEXT
);

CREATE TABLE IF NOT EXISTS interactions (
	id          TEXT PRIMARY KEY,
	customer_id TEXT NOT NULL REFERENCES customers(id),
	type        TEXT NOT NULL,
	channel     TEXT,
	summary     TEXT,
	sentiment   TEXT,
	resolution  TEXT,
	occurred_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS notification_history (
	id              TEXT PRIMARY KEY,
	customer_id     TEXT NOT NULL REFERENCES customers(id),
	type            TEXT,
	channel         TEXT,
	opened          INTEGER NOT NULL DEFAULT 0,
	clicked         INTEGER NOT NULL DEFAULT 0,
	delivery_status TEXT,
	action_taken    TEXT,
	priority        TEXT,
	sent_at         DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS recommended_actions (
	id                 TEXT PRIMARY KEY,
	customer_id        TEXT NOT NULL REFERENCES customers(id),
	scenario           TEXT,
	action             TEXT,
	urgency            TEXT,
	follow_up_required INTEGER NOT NULL DEFAULT 0,
	assigned_team      TEXT
);

CREATE INDEX IF NOT EXISTS idx_customers_segment ON customers(segment);
CREATE INDEX IF NOT EXISTS idx_interactions_customer ON interactions(customer_id, occurred_at);
CREATE INDEX IF NOT EXISTS idx_notification_history_customer ON notification_history(customer_id, sent_at);
CREATE INDEX IF NOT EXISTS idx_actions_customer ON recommended_actions(customer_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

const customerColumns = `id, name, segment, opted_in, preferred_channel, location, region,
	age, income_bracket, tenure_years, satisfaction, account_status, churn_risk,
	engagement_score, subscription_type, daily_usage_kwh, seasonal_usage_kwh,
	solar_ev_ownership, billing_anomaly, campaign_clicks, campaign_opens, support_ticket_issue`

func (s *SQLiteStore) ListCustomers(ctx context.Context, filter Filter) ([]model.CustomerRecord, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE 1=1`
	var args []any

	if filter.Segment != "" {
		query += ` AND segment = ?`
		args = append(args, filter.Segment)
	}
	if filter.OptedInOnly {
		query += ` AND opted_in = 1`
	}
	query += ` ORDER BY id`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list customers")
	}
	defer rows.Close()

	var customers []model.CustomerRecord
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, *c)
	}
	return customers, eris.Wrap(rows.Err(), "sqlite: list customers iterate")
}

func (s *SQLiteStore) GetCustomer(ctx context.Context, id string) (*model.CustomerRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id = ?`, id)
	return scanCustomer(row)
}

func (s *SQLiteStore) LoadHistory(ctx context.Context, id string) (*model.CustomerHistory, error) {
	history := &model.CustomerHistory{}

	rows, err := s.db.QueryContext(ctx,
		`SELECT customer_id, type, channel, summary, sentiment, resolution, occurred_at
		 FROM interactions WHERE customer_id = ?
		 ORDER BY occurred_at DESC LIMIT ?`,
		id, model.InteractionWindow,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: load interactions")
	}
	defer rows.Close()
	for rows.Next() {
		var r model.InteractionRecord
		var channel, summary, sentiment, resolution sql.NullString
		if err := rows.Scan(&r.CustomerID, &r.Type, &channel, &summary, &sentiment, &resolution, &r.OccurredAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan interaction")
		}
		r.Channel = model.ContactChannel(channel.String)
		r.Summary = summary.String
		r.Sentiment = model.Sentiment(sentiment.String)
		r.Resolution = model.ResolutionStatus(resolution.String)
		history.Interactions = append(history.Interactions, r)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate interactions")
	}

	nrows, err := s.db.QueryContext(ctx,
		`SELECT customer_id, type, channel, opened, clicked, delivery_status, action_taken, priority, sent_at
		 FROM notification_history WHERE customer_id = ?
		 ORDER BY sent_at DESC LIMIT ?`,
		id, model.NotificationWindow,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: load notification history")
	}
	defer nrows.Close()
	for nrows.Next() {
		var r model.NotificationHistoryRecord
		var typ, channel, status, action, priority sql.NullString
		if err := nrows.Scan(&r.CustomerID, &typ, &channel, &r.Opened, &r.Clicked, &status, &action, &priority, &r.SentAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan notification history")
		}
		r.Type = typ.String
		r.Channel = channel.String
		r.DeliveryStatus = status.String
		r.ActionTaken = action.String
		r.Priority = priority.String
		history.Notifications = append(history.Notifications, r)
	}
	if err := nrows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate notification history")
	}

	arows, err := s.db.QueryContext(ctx,
		`SELECT customer_id, scenario, action, urgency, follow_up_required, assigned_team
		 FROM recommended_actions WHERE customer_id = ?`,
		id,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: load recommended actions")
	}
	defer arows.Close()
	for arows.Next() {
		var r model.RecommendedActionRecord
		var scenario, action, urgency, team sql.NullString
		if err := arows.Scan(&r.CustomerID, &scenario, &action, &urgency, &r.FollowUpRequired, &team); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan recommended action")
		}
		r.Scenario = scenario.String
		r.Action = action.String
		r.Urgency = model.UrgencyLevel(urgency.String)
		r.AssignedTeam = team.String
		history.Actions = append(history.Actions, r)
	}
	return history, eris.Wrap(arows.Err(), "sqlite: iterate recommended actions")
}

func (s *SQLiteStore) SegmentStats(ctx context.Context, segment string) (*model.SegmentStats, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
		        COALESCE(AVG(age), 0),
		        COALESCE(AVG(engagement_score), 0),
		        COALESCE(AVG(churn_risk), 0),
		        COALESCE(AVG(satisfaction), 0)
		 FROM customers WHERE segment = ?`, segment)

	stats := &model.SegmentStats{Segment: model.Segment(segment)}
	if err := row.Scan(&stats.Count, &stats.AvgAge, &stats.AvgEngagement, &stats.AvgChurnRisk, &stats.AvgSatisfaction); err != nil {
		return nil, eris.Wrap(err, "sqlite: segment stats")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT COALESCE(subscription_type, 'Unknown'), COUNT(*)
		 FROM customers WHERE segment = ? GROUP BY subscription_type`, segment)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: subscription breakdown")
	}
	defer rows.Close()

	stats.SubscriptionBreakdown = make(map[string]int)
	for rows.Next() {
		var sub string
		var n int
		if err := rows.Scan(&sub, &n); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan subscription breakdown")
		}
		stats.SubscriptionBreakdown[sub] = n
	}
	return stats, eris.Wrap(rows.Err(), "sqlite: iterate subscription breakdown")
}

// --- write path (used by the CSV importer and tests) ---

// UpsertCustomer inserts or replaces a customer record.
func (s *SQLiteStore) UpsertCustomer(ctx context.Context, c model.CustomerRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO customers (`+customerColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, string(c.Segment), c.OptedIn, string(c.PreferredChannel),
		c.Location, c.Region, c.Age, c.IncomeBracket, c.TenureYears, c.Satisfaction,
		string(c.AccountStatus), c.ChurnRisk, c.EngagementScore, c.SubscriptionType,
		c.DailyUsageKWh, c.SeasonalUsageKWh, c.SolarEVOwnership, c.BillingAnomaly,
		c.CampaignClicks, c.CampaignOpens, c.SupportTicketIssue,
	)
	return eris.Wrapf(err, "sqlite: upsert customer %s", c.ID)
}

// InsertInteraction appends one interaction event.
func (s *SQLiteStore) InsertInteraction(ctx context.Context, id string, r model.InteractionRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO interactions (id, customer_id, type, channel, summary, sentiment, resolution, occurred_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, r.CustomerID, string(r.Type), string(r.Channel), r.Summary,
		string(r.Sentiment), string(r.Resolution), r.OccurredAt.UTC(),
	)
	return eris.Wrapf(err, "sqlite: insert interaction for %s", r.CustomerID)
}

// InsertNotificationHistory appends one past outbound message.
func (s *SQLiteStore) InsertNotificationHistory(ctx context.Context, id string, r model.NotificationHistoryRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notification_history (id, customer_id, type, channel, opened, clicked, delivery_status, action_taken, priority, sent_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, r.CustomerID, r.Type, r.Channel, r.Opened, r.Clicked,
		r.DeliveryStatus, r.ActionTaken, r.Priority, r.SentAt.UTC(),
	)
	return eris.Wrapf(err, "sqlite: insert notification history for %s", r.CustomerID)
}

// InsertRecommendedAction appends one flagged action.
func (s *SQLiteStore) InsertRecommendedAction(ctx context.Context, id string, r model.RecommendedActionRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO recommended_actions (id, customer_id, scenario, action, urgency, follow_up_required, assigned_team)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, r.CustomerID, r.Scenario, r.Action, string(r.Urgency), r.FollowUpRequired, r.AssignedTeam,
	)
	return eris.Wrapf(err, "sqlite: insert recommended action for %s", r.CustomerID)
}

// --- helpers ---

type scannable interface {
	Scan(dest ...any) error
}

// scanCustomer reads one customer row and applies the default-fill
// policy: nullable numeric fields become 0, nullable anomaly/ownership
// text fields become "None".
func scanCustomer(row scannable) (*model.CustomerRecord, error) {
	var c model.CustomerRecord
	var location, region, income, subscription sql.NullString
	var solarEV, anomaly, supportIssue sql.NullString
	var age, satisfaction, clicks, opens sql.NullInt64
	var tenure, dailyUsage, seasonalUsage sql.NullFloat64

	err := row.Scan(
		&c.ID, &c.Name, &c.Segment, &c.OptedIn, &c.PreferredChannel,
		&location, &region, &age, &income, &tenure, &satisfaction,
		&c.AccountStatus, &c.ChurnRisk, &c.EngagementScore, &subscription,
		&dailyUsage, &seasonalUsage, &solarEV, &anomaly, &clicks, &opens, &supportIssue,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan customer")
	}

	c.Location = location.String
	c.Region = region.String
	c.Age = int(age.Int64)
	c.IncomeBracket = income.String
	c.TenureYears = tenure.Float64
	c.Satisfaction = int(satisfaction.Int64)
	c.SubscriptionType = subscription.String
	c.DailyUsageKWh = dailyUsage.Float64
	c.SeasonalUsageKWh = seasonalUsage.Float64
	c.CampaignClicks = int(clicks.Int64)
	c.CampaignOpens = int(opens.Int64)
	c.SolarEVOwnership = textOrNone(solarEV)
	c.BillingAnomaly = textOrNone(anomaly)
	c.SupportTicketIssue = textOrNone(supportIssue)
	return &c, nil
}

func textOrNone(v sql.NullString) string {
	if !v.Valid || v.String == "" {
		return "None"
	}
	return v.String
}
