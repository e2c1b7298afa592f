package classifier

import (
	"fmt"
	"strings"

	"github.com/caledonia-energy/engage-cli/internal/model"
)

// Seeded defaults: every field starts with a usable value so a
// malformed response still yields a complete assessment. The risk and
// trigger defaults are sentinels replaced by derivation when the
// response never set them.
const (
	defaultContactReason   = "Standard customer engagement"
	defaultTriggerFactors  = "Routine customer review"
	defaultImpact          = "Minimal impact if not addressed"
	defaultInsights        = "Value-conscious, practical customer"
	defaultStyle           = "Professional and helpful"
	defaultStarters        = "Hello, we wanted to check how your service is going"
	unsetRiskScore         = 5
)

// parseState accumulates fields plus set-tracking for the values whose
// absence triggers post-parse derivation.
type parseState struct {
	a           model.PriorityAssessment
	prioritySet bool
	urgencySet  bool
	riskSet     bool
	triggerSet  bool
}

// fieldTable is the canonical response field set. Keys are matched by
// substring against the normalized field-name token of each line, so
// decorated output ("**PRIORITY**", "1. RISK_SCORE") still parses.
var fieldTable = []struct {
	key   string
	apply func(st *parseState, value string)
}{
	{"priority", func(st *parseState, v string) {
		if p := model.CoercePriority(firstToken(v), ""); p != "" {
			st.a.Priority = p
			st.prioritySet = true
		}
	}},
	{"urgency", func(st *parseState, v string) {
		if u := model.CoerceUrgency(firstToken(v), ""); u != "" {
			st.a.Urgency = u
			st.urgencySet = true
		}
	}},
	{"risk_score", func(st *parseState, v string) {
		if n, ok := firstDigitRun(v); ok {
			st.a.RiskScore = clampRisk(n)
			st.riskSet = true
		}
	}},
	{"contact_reason", func(st *parseState, v string) { st.a.ContactReason = v }},
	{"trigger_factors", func(st *parseState, v string) {
		st.a.TriggerFactors = v
		st.triggerSet = true
	}},
	{"potential_impact", func(st *parseState, v string) { st.a.PotentialImpact = v }},
	{"customer_insights", func(st *parseState, v string) { st.a.CustomerInsights = v }},
	{"communication_style", func(st *parseState, v string) { st.a.CommunicationStyle = v }},
	{"conversation_starters", func(st *parseState, v string) { st.a.ConversationStarters = v }},
}

// ParseAssessment turns free provider text into a structured
// assessment. Lines without a separator, and lines whose field-name
// token matches nothing canonical, are ignored. Degraded is true when
// any of the structured fields (priority, urgency, risk score) was
// missing or unusable, meaning defaults or derivations filled in.
//
// The result always satisfies the assessment invariants: risk in
// [1,10], priority and urgency in their closed sets, trigger factors
// non-empty.
func ParseAssessment(text string) (assessment model.PriorityAssessment, degraded bool) {
	st := parseState{a: seededDefaults()}

	for _, line := range strings.Split(text, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = normalizeKey(key)
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		for _, f := range fieldTable {
			if strings.Contains(key, f.key) {
				f.apply(&st, value)
				break
			}
		}
	}

	if !st.riskSet {
		st.a.RiskScore = riskFromPriority(st.a.Priority)
	}
	if !st.triggerSet {
		st.a.TriggerFactors = synthesizeTriggerFactors(st.a)
	}

	degraded = !st.prioritySet || !st.urgencySet || !st.riskSet
	return st.a, degraded
}

func seededDefaults() model.PriorityAssessment {
	return model.PriorityAssessment{
		Priority:             model.PriorityMedium,
		Urgency:              model.UrgencyRoutine,
		RiskScore:            unsetRiskScore,
		ContactReason:        defaultContactReason,
		TriggerFactors:       defaultTriggerFactors,
		PotentialImpact:      defaultImpact,
		CustomerInsights:     defaultInsights,
		CommunicationStyle:   defaultStyle,
		ConversationStarters: defaultStarters,
	}
}

// riskFromPriority maps a tier onto a concrete score when the response
// never carried a usable one.
func riskFromPriority(p model.Priority) int {
	switch p {
	case model.PriorityHigh:
		return 8
	case model.PriorityMedium:
		return 5
	default:
		return 3
	}
}

// synthesizeTriggerFactors builds a concrete explanation from whatever
// signals survived parsing, so the field is never the bare sentinel.
func synthesizeTriggerFactors(a model.PriorityAssessment) string {
	parts := []string{
		fmt.Sprintf("Assessed %s priority with risk score %d/10", a.Priority, a.RiskScore),
	}
	reason := strings.ToLower(a.ContactReason)
	if strings.Contains(reason, "billing") {
		parts = append(parts, "billing concern cited in contact reason")
	}
	if strings.Contains(reason, "churn") {
		parts = append(parts, "churn risk cited in contact reason")
	}
	return strings.Join(parts, "; ")
}

// normalizeKey lowercases the field-name token and folds whitespace to
// underscores so "Risk Score" and "RISK_SCORE" match the same entry.
func normalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	return strings.Join(strings.Fields(key), "_")
}

// firstToken strips list/bracket decoration and returns the first
// whitespace-separated token, for enum-valued fields.
func firstToken(v string) string {
	fields := strings.Fields(v)
	if len(fields) == 0 {
		return ""
	}
	return strings.Trim(fields[0], "[]*()")
}

// firstDigitRun extracts the first contiguous run of digits anywhere in
// the value.
func firstDigitRun(v string) (int, bool) {
	n, inRun := 0, false
	for _, r := range v {
		if r >= '0' && r <= '9' {
			n = n*10 + int(r-'0')
			inRun = true
			continue
		}
		if inRun {
			break
		}
	}
	return n, inRun
}

func clampRisk(n int) int {
	if n < 1 {
		return 1
	}
	if n > 10 {
		return 10
	}
	return n
}
