package ocr

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/inkdex/inkdex/internal/domain"
	"github.com/inkdex/inkdex/internal/metrics"
)

// escalationConfidence is the local-engine confidence below which balanced
// mode retries the page on the paid provider.
const escalationConfidence = 0.75

// Router picks a provider per page based on the quality mode and the spend
// budget. Either provider may be nil; at least one must be set.
type Router struct {
	local  Provider
	cloud  Provider
	budget *BudgetTracker
	logger *zap.Logger
}

// NewRouter creates a provider router. budget guards the cloud provider and
// must be non-nil when cloud is.
func NewRouter(local, cloud Provider, budget *BudgetTracker, logger *zap.Logger) (*Router, error) {
	if local == nil && cloud == nil {
		return nil, domain.ErrNoProviderAvailable
	}
	if cloud != nil && budget == nil {
		return nil, errors.New("ocr: cloud provider requires a budget tracker")
	}
	return &Router{local: local, cloud: cloud, budget: budget, logger: logger}, nil
}

// Recognize runs one page through the provider chain for the given quality
// mode. The returned result carries the provider name and the actual cost.
func (r *Router) Recognize(ctx context.Context, in Input, q Quality) (domain.OCRResult, error) {
	switch q {
	case QualityFast:
		if r.local != nil {
			return r.run(ctx, r.local, in)
		}
		// No local engine configured; fall through to the paid one rather
		// than fail the note.
		return r.runCloud(ctx, in)

	case QualityPremium:
		res, err := r.runCloud(ctx, in)
		if err == nil {
			return res, nil
		}
		if r.local == nil {
			return domain.OCRResult{}, err
		}
		r.logger.Warn("Premium OCR failed, falling back to local engine", zap.Error(err))
		return r.run(ctx, r.local, in)

	default: // QualityBalanced
		if r.local == nil {
			return r.runCloud(ctx, in)
		}
		res, err := r.run(ctx, r.local, in)
		if err != nil {
			if r.cloud == nil {
				return domain.OCRResult{}, err
			}
			r.logger.Warn("Local OCR failed, escalating to paid provider", zap.Error(err))
			return r.runCloud(ctx, in)
		}
		if res.Confidence >= escalationConfidence || r.cloud == nil {
			return res, nil
		}
		cloudRes, cloudErr := r.runCloud(ctx, in)
		if cloudErr != nil {
			// The local result is usable even when escalation is not.
			r.logger.Warn("Escalation failed, keeping local result",
				zap.Float64("local_confidence", res.Confidence),
				zap.Error(cloudErr))
			return res, nil
		}
		return cloudRes, nil
	}
}

// runCloud guards the paid provider behind the budget tracker.
func (r *Router) runCloud(ctx context.Context, in Input) (domain.OCRResult, error) {
	if r.cloud == nil {
		return domain.OCRResult{}, domain.ErrNoProviderAvailable
	}
	if err := r.budget.Check(ctx); err != nil {
		return domain.OCRResult{}, err
	}
	res, err := r.run(ctx, r.cloud, in)
	if err != nil {
		return domain.OCRResult{}, err
	}
	r.budget.Record(res.Cost)
	return res, nil
}

func (r *Router) run(ctx context.Context, p Provider, in Input) (domain.OCRResult, error) {
	start := time.Now()
	res, err := p.Recognize(ctx, in)
	duration := time.Since(start)

	metrics.OCRRequestDuration.WithLabelValues(p.Name()).Observe(duration.Seconds())
	if err != nil {
		metrics.OCRRequestsTotal.WithLabelValues(p.Name(), "error").Inc()
		metrics.OCRErrorsTotal.WithLabelValues(p.Name(), "recognize").Inc()
		return domain.OCRResult{}, err
	}
	res.Provider = p.Name()
	res.Cost = p.CostPerPage()
	metrics.OCRRequestsTotal.WithLabelValues(p.Name(), "ok").Inc()
	metrics.OCRCostTotal.WithLabelValues(p.Name()).Add(res.Cost)

	r.logger.Debug("page recognized",
		zap.String("provider", p.Name()),
		zap.Int("page", in.PageIndex),
		zap.Float64("confidence", res.Confidence),
		zap.Duration("took", duration))
	return res, nil
}
