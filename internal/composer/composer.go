// Package composer produces the final outreach copy for one customer.
// It shares the classifier's availability contract: try the insight
// provider with an archetype-specific prompt, fall back to a
// deterministic template on any failure. Fallback output is bounded by
// construction; generated output gets basic length and emptiness
// checks only.
package composer

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/caledonia-energy/engage-cli/internal/insight"
	"github.com/caledonia-energy/engage-cli/internal/model"
)

const composeSystemPrompt = `You are a customer communication specialist for a British energy supplier. Create personalised engagement messages.

CRITICAL RULES:
- Use British English spelling and terminology throughout (realise, organised, centre, colour)
- Generate ONLY the message text, no explanations
- Do NOT mention specific staff names, dates, monetary figures, or reference numbers
- Use general terms like "our team", "customer services", "billing department"
- Base the message only on the customer data provided`

// Per-channel character caps. SMS is the strictest; everything else
// gets room for a sentence or two more.
const (
	capSMS   = 160
	capApp   = 240
	capEmail = 320
	capPhone = 400
)

// ChannelCap returns the message length cap for a stored channel.
// Unknown channels get the email cap.
func ChannelCap(ch model.ContactChannel) int {
	switch ch {
	case model.ChannelSMS:
		return capSMS
	case model.ChannelAppPush:
		return capApp
	case model.ChannelPhone:
		return capPhone
	default:
		return capEmail
	}
}

// archetypeBriefs are the per-archetype message requirements injected
// into the prompt.
var archetypeBriefs = map[model.Archetype]string{
	model.ArchetypeBillingSupport:     "Acknowledge their recent billing enquiry, reassure them our team is on it, and invite them to get in touch. Empathetic, not defensive.",
	model.ArchetypeRetentionOffer:     "They asked to reduce communications. Offer more control over what they receive, without pressure. Respectful and brief.",
	model.ArchetypeChurnPrevention:    "Acknowledge their loyalty and value to us, offer genuine help, and show we want to keep them as a customer without being presumptuous.",
	model.ArchetypeReactivation:       "They have been away a while. Welcome them back warmly and mention there are service updates that might interest them.",
	model.ArchetypeGentleReengagement: "Re-engage with genuinely useful content such as energy tips. Not pushy about their low engagement; focus on how we can help.",
	model.ArchetypeValueOpportunity:   "Highlight cost-saving opportunities and energy efficiency. Appeal to a practical, value-conscious mindset with a gentle call to action.",
	model.ArchetypeEngagement:         "Share a friendly service update tailored to them. Light, informative, no sales pressure.",
}

// fallbackTemplates produce the deterministic message per archetype,
// parameterised only by first name. Each is under the SMS cap.
var fallbackTemplates = map[model.Archetype]string{
	model.ArchetypeBillingSupport:     "Hello %s, we've noticed your recent enquiry about billing. Our customer services team is here to help resolve any concerns.",
	model.ArchetypeRetentionOffer:     "Hi %s, we understand you may wish to reduce communications. We'd like to offer you more control over what you receive from us.",
	model.ArchetypeChurnPrevention:    "Dear %s, we value your custom and want to ensure you're getting the best from your energy service. How can we help?",
	model.ArchetypeReactivation:       "Hello %s, we've missed you! We have some updates that might interest you about your energy service.",
	model.ArchetypeGentleReengagement: "Hi %s, we have some helpful energy tips that could benefit you. Would you like to learn more?",
	model.ArchetypeValueOpportunity:   "Hi %s, discover potential savings on your energy bills with our efficiency programme!",
	model.ArchetypeEngagement:         "Hello %s, we wanted to check how your energy service is working for you.",
}

// Composer drafts outreach copy via the provider with template fallback.
type Composer struct {
	provider  insight.Provider
	maxTokens int64
}

// New returns a Composer. maxTokens bounds one generated message.
func New(provider insight.Provider, maxTokens int64) *Composer {
	if maxTokens <= 0 {
		maxTokens = 200
	}
	return &Composer{provider: provider, maxTokens: maxTokens}
}

// Compose returns the outreach message and which path produced it.
// Never fails: any provider error or unusable response yields the
// archetype's fallback template.
func (co *Composer) Compose(ctx context.Context, c model.CustomerRecord, a model.PriorityAssessment, arch model.Archetype) (string, model.AssessmentSource) {
	text, err := co.provider.Generate(ctx, composeSystemPrompt, buildComposePrompt(c, a, arch), co.maxTokens)
	if err != nil {
		zap.L().Debug("message generation unavailable, using template",
			zap.String("customer_id", c.ID),
			zap.String("archetype", string(arch)),
			zap.Error(err),
		)
		return FallbackMessage(c, arch), model.SourceFallback
	}

	text = strings.TrimSpace(text)
	if text == "" || len(text) > ChannelCap(c.PreferredChannel) {
		zap.L().Debug("generated message failed basic checks, using template",
			zap.String("customer_id", c.ID),
			zap.Int("length", len(text)),
		)
		return FallbackMessage(c, arch), model.SourceFallback
	}
	return text, model.SourceModel
}

// FallbackMessage renders the deterministic template for an archetype.
func FallbackMessage(c model.CustomerRecord, arch model.Archetype) string {
	tmpl, ok := fallbackTemplates[arch]
	if !ok {
		tmpl = fallbackTemplates[model.ArchetypeEngagement]
	}
	return fmt.Sprintf(tmpl, c.FirstName())
}

func buildComposePrompt(c model.CustomerRecord, a model.PriorityAssessment, arch model.Archetype) string {
	brief, ok := archetypeBriefs[arch]
	if !ok {
		brief = archetypeBriefs[model.ArchetypeEngagement]
	}

	var b strings.Builder
	b.WriteString("Customer Profile:\n")
	fmt.Fprintf(&b, "- First name: %s\n", c.FirstName())
	fmt.Fprintf(&b, "- Segment: %s (price-conscious, practical)\n", c.Segment)
	fmt.Fprintf(&b, "- Churn Risk: %d%%\n", c.ChurnRisk)
	fmt.Fprintf(&b, "- Engagement Score: %d\n", c.EngagementScore)
	fmt.Fprintf(&b, "- Preferred Channel: %s\n", c.PreferredChannel)

	fmt.Fprintf(&b, "\nMessage Type: %s\n", arch)
	fmt.Fprintf(&b, "Priority: %s\n", a.Priority)
	fmt.Fprintf(&b, "Contact Reason: %s\n", a.ContactReason)
	fmt.Fprintf(&b, "Recommended Tone: %s\n", a.CommunicationStyle)

	fmt.Fprintf(&b, "\nMessage Requirements:\n- %s\n", brief)
	fmt.Fprintf(&b, "- You MAY use the customer's first name: %s\n", c.FirstName())
	fmt.Fprintf(&b, "- Keep the message under %d characters for %s delivery\n", ChannelCap(c.PreferredChannel), c.PreferredChannel)

	return b.String()
}
