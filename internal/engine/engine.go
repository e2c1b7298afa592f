// Package engine runs the classify → decide → compose → assemble
// pipeline across a batch of customers. Customers share no mutable
// state, so the per-customer pipeline fans out over a bounded worker
// pool; results are collected by input index and sorted afterwards so
// completion order never leaks into output order.
package engine

import (
	"context"
	"errors"
	"sort"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/caledonia-energy/engage-cli/internal/assembler"
	"github.com/caledonia-energy/engage-cli/internal/classifier"
	"github.com/caledonia-energy/engage-cli/internal/composer"
	"github.com/caledonia-energy/engage-cli/internal/model"
	"github.com/caledonia-energy/engage-cli/internal/policy"
	"github.com/caledonia-energy/engage-cli/internal/store"
)

// Engine wires the pipeline stages over a customer store.
type Engine struct {
	store       store.Store
	classifier  *classifier.Classifier
	policy      *policy.Policy
	composer    *composer.Composer
	concurrency int
}

// New returns an Engine with the given stage implementations.
func New(st store.Store, cl *classifier.Classifier, pol *policy.Policy, co *composer.Composer, concurrency int) *Engine {
	if concurrency <= 0 {
		concurrency = 5
	}
	return &Engine{
		store:       st,
		classifier:  cl,
		policy:      pol,
		composer:    co,
		concurrency: concurrency,
	}
}

// Run executes one notification batch. A store listing failure is
// fatal; every per-customer failure (missing record, history error)
// skips that customer only. Suppressed customers never appear in the
// result. The returned list is ordered descending by (priority rank,
// risk score), ties in input order.
func (e *Engine) Run(ctx context.Context, filter store.Filter) ([]model.Notification, error) {
	customers, err := e.store.ListCustomers(ctx, filter)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	results := make([]*model.Notification, len(customers))
	var suppressed, skipped, fallbacks atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, c := range customers {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}

			history, err := e.store.LoadHistory(gctx, c.ID)
			if err != nil {
				skipped.Add(1)
				zap.L().Warn("skipping customer, history unavailable",
					zap.String("customer_id", c.ID),
					zap.Error(err),
				)
				return nil
			}

			assessment := e.classifier.Classify(gctx, c, history)
			if assessment.Source == model.SourceFallback {
				fallbacks.Add(1)
			}

			decision := e.policy.Decide(c, history, assessment)
			if !decision.ShouldContact {
				suppressed.Add(1)
				return nil
			}

			message, msgSource := e.composer.Compose(gctx, c, assessment, decision.Archetype)
			n := assembler.Assemble(c, assessment, decision, message, combineSource(assessment.Source, msgSource))
			results[i] = &n
			return nil
		})
	}

	if err := g.Wait(); err != nil && !isCancellation(err) {
		return nil, err
	}

	notifications := make([]model.Notification, 0, len(customers))
	for _, n := range results {
		if n != nil {
			notifications = append(notifications, *n)
		}
	}
	assembler.SortNotifications(notifications)

	zap.L().Info("notification batch complete",
		zap.Int("customers", len(customers)),
		zap.Int("notifications", len(notifications)),
		zap.Int64("suppressed", suppressed.Load()),
		zap.Int64("skipped", skipped.Load()),
		zap.Int64("fallback_assessments", fallbacks.Load()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return notifications, nil
}

// AnalyseAll classifies every matching customer without composing or
// filtering, for the analysis view. Ordering matches Run.
func (e *Engine) AnalyseAll(ctx context.Context, filter store.Filter) ([]model.CustomerAnalysis, error) {
	customers, err := e.store.ListCustomers(ctx, filter)
	if err != nil {
		return nil, err
	}

	results := make([]*model.CustomerAnalysis, len(customers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)
	for i, c := range customers {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			history, err := e.store.LoadHistory(gctx, c.ID)
			if err != nil {
				zap.L().Warn("skipping customer, history unavailable",
					zap.String("customer_id", c.ID),
					zap.Error(err),
				)
				return nil
			}
			results[i] = &model.CustomerAnalysis{
				CustomerID: c.ID,
				Name:       c.Name,
				Segment:    c.Segment,
				Assessment: e.classifier.Classify(gctx, c, history),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil && !isCancellation(err) {
		return nil, err
	}

	analyses := make([]model.CustomerAnalysis, 0, len(customers))
	for _, a := range results {
		if a != nil {
			analyses = append(analyses, *a)
		}
	}
	sort.SliceStable(analyses, func(i, j int) bool {
		ri, rj := analyses[i].Assessment.Priority.Rank(), analyses[j].Assessment.Priority.Rank()
		if ri != rj {
			return ri > rj
		}
		return analyses[i].Assessment.RiskScore > analyses[j].Assessment.RiskScore
	})
	return analyses, nil
}

// AnalyseOne classifies a single customer. Unknown ids surface
// store.ErrNotFound to the caller.
func (e *Engine) AnalyseOne(ctx context.Context, id string) (*model.CustomerAnalysis, error) {
	c, err := e.store.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	history, err := e.store.LoadHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	return &model.CustomerAnalysis{
		CustomerID: c.ID,
		Name:       c.Name,
		Segment:    c.Segment,
		Assessment: e.classifier.Classify(ctx, *c, history),
	}, nil
}

// combineSource reports the weaker of the two provider paths: a
// notification counts as model-sourced only when both the assessment
// and the message came from the model.
func combineSource(assessment, message model.AssessmentSource) model.AssessmentSource {
	if assessment == model.SourceFallback || message == model.SourceFallback {
		if assessment == model.SourceFallback && message == model.SourceFallback {
			return model.SourceFallback
		}
		return model.SourceModelDegraded
	}
	if assessment == model.SourceModelDegraded {
		return model.SourceModelDegraded
	}
	return message
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
