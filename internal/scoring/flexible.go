package scoring

import (
	"context"
	"sync"

	"openrtb-auction/internal/domain"
	"openrtb-auction/internal/openrtb"
	"openrtb-auction/pkg/logger"
)

// Calculator computes one raw factor score for a bid.
type Calculator func(ctx context.Context, bid *openrtb.Bid, sc *domain.ScoringContext) (float64, error)

// Factor is a named, weighted scoring component of a FlexibleStrategy.
type Factor struct {
	Name      string
	Weight    float64
	Calculate Calculator
}

// FlexibleOptions tunes how factor scores fold into the final score. A nil
// NormalizeScores means true.
type FlexibleOptions struct {
	NormalizeScores *bool
	MinScore        *float64
	MaxScore        *float64
}

// FlexibleStrategy combines an ordered set of weighted factors into a single
// score. Factors run concurrently; a failing factor contributes 0 and is
// logged, never propagated.
type FlexibleStrategy struct {
	factors   []Factor
	normalize bool
	minScore  *float64
	maxScore  *float64
	log       logger.Logger
}

func NewFlexibleStrategy(factors []Factor, opts FlexibleOptions, log logger.Logger) *FlexibleStrategy {
	normalize := true
	if opts.NormalizeScores != nil {
		normalize = *opts.NormalizeScores
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &FlexibleStrategy{
		factors:   factors,
		normalize: normalize,
		minScore:  opts.MinScore,
		maxScore:  opts.MaxScore,
		log:       log,
	}
}

func (s *FlexibleStrategy) Score(ctx context.Context, bid *openrtb.Bid, sc *domain.ScoringContext) (float64, error) {
	weighted := make([]float64, len(s.factors))

	var wg sync.WaitGroup
	for i := range s.factors {
		wg.Add(1)
		go func(i int, factor Factor) {
			defer wg.Done()
			raw, err := factor.Calculate(ctx, bid, sc)
			if err != nil {
				// Partial-failure isolation: a broken factor scores 0.
				s.log.Error("Scoring factor failed", "factor", factor.Name, "bid_id", bid.ID, "error", err)
				return
			}
			weighted[i] = raw * factor.Weight
		}(i, s.factors[i])
	}
	wg.Wait()

	var final float64
	for _, score := range weighted {
		final += score
	}

	if s.normalize {
		var totalWeight float64
		for _, factor := range s.factors {
			totalWeight += factor.Weight
		}
		if totalWeight > 0 {
			final /= totalWeight
		}
	}

	if s.minScore != nil && final < *s.minScore {
		final = *s.minScore
	}
	if s.maxScore != nil && final > *s.maxScore {
		final = *s.maxScore
	}

	return final, nil
}
