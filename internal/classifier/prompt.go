package classifier

import (
	"fmt"
	"strings"

	"github.com/caledonia-energy/engage-cli/internal/model"
)

// systemPrompt is shared verbatim across every customer in a batch so
// the provider can cache it.
const systemPrompt = `You are an AI customer engagement strategist for a British energy supplier. Analyse customer profiles and provide comprehensive insights for customer service agents.

CRITICAL RULES:
- Use British English spelling and terminology throughout
- NEVER invent or mention specific names of customers, staff, or departments
- NEVER make up specific dates, times, reference numbers, or contact details
- Base recommendations only on the actual customer data provided
- Use general terms like "our team", "customer services", "billing department"`

// BuildPrompt renders the per-customer analysis prompt. The response
// format section names the exact fields ParseAssessment looks for.
func BuildPrompt(c model.CustomerRecord, context string) string {
	var b strings.Builder

	b.WriteString("Customer Profile:\n")
	fmt.Fprintf(&b, "- Segment: %s\n", c.Segment)
	fmt.Fprintf(&b, "- Daily Energy Usage: %.1f kWh\n", c.DailyUsageKWh)
	fmt.Fprintf(&b, "- Seasonal Energy Usage: %.1f kWh\n", c.SeasonalUsageKWh)
	fmt.Fprintf(&b, "- Solar/EV Ownership: %s\n", c.SolarEVOwnership)
	fmt.Fprintf(&b, "- Billing Anomaly: %s\n", c.BillingAnomaly)
	fmt.Fprintf(&b, "- Campaign Engagement: %d clicks, %d opens\n", c.CampaignClicks, c.CampaignOpens)
	fmt.Fprintf(&b, "- Recent Support Issue: %s\n", c.SupportTicketIssue)
	fmt.Fprintf(&b, "- Region: %s\n", c.Region)
	fmt.Fprintf(&b, "- Account Status: %s\n", c.AccountStatus)
	fmt.Fprintf(&b, "- Churn Risk Score: %d/100\n", c.ChurnRisk)
	fmt.Fprintf(&b, "- Engagement Score: %d/100\n", c.EngagementScore)
	fmt.Fprintf(&b, "- Satisfaction Score: %d/10\n", c.Satisfaction)
	fmt.Fprintf(&b, "- Tenure: %.1f years\n", c.TenureYears)

	b.WriteString("\nContext: ")
	if context == "" {
		context = "General customer analysis"
	}
	b.WriteString(context)

	b.WriteString(`

Provide a comprehensive analysis in this EXACT format:

PRIORITY: [HIGH/MEDIUM/LOW]
URGENCY: [IMMEDIATE/WITHIN_24H/WITHIN_WEEK/ROUTINE]
RISK_SCORE: [1-10 scale where 10 is highest risk of churn/dissatisfaction]

CONTACT_REASON: [Detailed explanation of the underlying issue or opportunity that requires attention]
TRIGGER_FACTORS: [Specific data points that led to this recommendation]
POTENTIAL_IMPACT: [What could happen if this issue isn't addressed]

CUSTOMER_INSIGHTS: [Analysis of likely personality traits based on segment and behaviour]
COMMUNICATION_STYLE: [Recommended tone and approach - direct/empathetic/technical/etc]
CONVERSATION_STARTERS: [Suggested opening lines or key points to mention]

Consider factors like:
- Value Seekers are price-conscious and respond to cost savings
- Billing issues create immediate frustration and churn risk
- Low engagement may indicate dissatisfaction or confusion
- High energy usage presents efficiency opportunities
- Support issues suggest ongoing problems needing resolution

IMPORTANT: Use British English throughout (e.g., "recognised", "organised", "prioritise", "realise")`)

	return b.String()
}
