// Package scoring provides the built-in bid scoring strategies. Any type
// implementing domain.ScoringStrategy can be plugged into an auction.
package scoring

import (
	"context"

	"openrtb-auction/internal/currency"
	"openrtb-auction/internal/domain"
	"openrtb-auction/internal/openrtb"
)

// PriceStrategy scores a bid by its price normalized into the target
// currency. When the bid carries no currency metadata or no rate table is
// available, the raw price is used with no conversion attempted.
type PriceStrategy struct{}

func NewPriceStrategy() *PriceStrategy {
	return &PriceStrategy{}
}

func (s *PriceStrategy) Score(_ context.Context, bid *openrtb.Bid, sc *domain.ScoringContext) (float64, error) {
	if sc.BidInfo == nil || sc.BidInfo.Currency == "" || sc.CurrencyConversion == nil {
		return bid.Price, nil
	}

	target := sc.TargetCurrency
	if target == "" {
		target = "USD"
	}

	converter := currency.NewConverter(sc.CurrencyConversion)
	return converter.Convert(bid.Price, sc.BidInfo.Currency, target), nil
}
