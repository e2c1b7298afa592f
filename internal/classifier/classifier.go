// Package classifier turns one customer's record and history into a
// structured priority assessment. It asks the insight provider first
// and parses the free-text response tolerantly; when the provider is
// unavailable or times out it falls back to a deterministic rule
// engine. Classify never fails: every path resolves to a valid
// assessment.
package classifier

import (
	"context"

	"go.uber.org/zap"

	"github.com/caledonia-energy/engage-cli/internal/insight"
	"github.com/caledonia-energy/engage-cli/internal/model"
	"github.com/caledonia-energy/engage-cli/internal/policy"
)

// Classifier classifies customers using a provider with deterministic
// fallback.
type Classifier struct {
	provider   insight.Provider
	thresholds policy.Thresholds
	maxTokens  int64
}

// New returns a Classifier. maxTokens bounds the provider response for
// one analysis.
func New(provider insight.Provider, thresholds policy.Thresholds, maxTokens int64) *Classifier {
	if maxTokens <= 0 {
		maxTokens = 600
	}
	return &Classifier{
		provider:   provider,
		thresholds: thresholds,
		maxTokens:  maxTokens,
	}
}

// Classify produces an assessment for one customer. Provider and
// parsing failures degrade, never propagate; the Source field records
// which path produced the result.
func (cl *Classifier) Classify(ctx context.Context, c model.CustomerRecord, h *model.CustomerHistory) model.PriorityAssessment {
	signals := DeriveSignals(h)

	prompt := BuildPrompt(c, ContextSummary(c, signals, cl.thresholds))
	text, err := cl.provider.Generate(ctx, systemPrompt, prompt, cl.maxTokens)
	if err != nil {
		zap.L().Debug("insight provider unavailable, using fallback rules",
			zap.String("customer_id", c.ID),
			zap.Error(err),
		)
		return Fallback(c, signals, cl.thresholds)
	}

	assessment, degraded := ParseAssessment(text)
	assessment.Source = model.SourceModel
	if degraded {
		assessment.Source = model.SourceModelDegraded
		zap.L().Debug("provider response missing structured fields, defaults applied",
			zap.String("customer_id", c.ID),
		)
	}
	return assessment
}
