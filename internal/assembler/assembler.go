// Package assembler builds the outward-facing notification record and
// orders the batch result.
package assembler

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/caledonia-energy/engage-cli/internal/model"
)

// channelTable maps stored preferred channels to delivery channels.
var channelTable = map[model.ContactChannel]string{
	model.ChannelEmail:   "email",
	model.ChannelSMS:     "sms",
	model.ChannelAppPush: "app_notification",
	model.ChannelPhone:   "phone_call",
}

// DeliveryChannel resolves a stored channel; anything unrecognized
// delivers as email.
func DeliveryChannel(ch model.ContactChannel) string {
	if mapped, ok := channelTable[ch]; ok {
		return mapped
	}
	return "email"
}

// Assemble merges one customer's assessment, decision, and composed
// message into a Notification. Pure construction, no side effects.
func Assemble(c model.CustomerRecord, a model.PriorityAssessment, d model.ContactDecision, message string, source model.AssessmentSource) model.Notification {
	return model.Notification{
		ID:            uuid.New().String(),
		CustomerID:    c.ID,
		CustomerName:  c.Name,
		Segment:       c.Segment,
		Archetype:     d.Archetype,
		Priority:      a.Priority,
		Urgency:       a.Urgency,
		RiskScore:     a.RiskScore,
		ChurnRisk:     c.ChurnRisk,
		Message:       message,
		Channel:       DeliveryChannel(c.PreferredChannel),
		ContactReason: d.Reason,
		Source:        source,
		CreatedAt:     time.Now().UTC(),
	}
}

// SortNotifications orders a batch descending by (priority rank, risk
// score). The sort is stable so ties keep original input order.
func SortNotifications(list []model.Notification) {
	sort.SliceStable(list, func(i, j int) bool {
		ri, rj := list[i].Priority.Rank(), list[j].Priority.Rank()
		if ri != rj {
			return ri > rj
		}
		return list[i].RiskScore > list[j].RiskScore
	})
}
