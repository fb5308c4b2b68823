package domain

import (
	"context"

	"openrtb-auction/internal/openrtb"
)

// ScoringStrategy is the pluggable policy that turns a bid into a comparable
// score. Higher is better. Implementations must be free of side effects on
// the bid and on auction state.
type ScoringStrategy interface {
	Score(ctx context.Context, bid *openrtb.Bid, sc *ScoringContext) (float64, error)
}

// NotificationSender delivers a loss-notification callback. It is used in
// fire-and-forget mode: callers never await delivery and any transport error
// is absorbed.
type NotificationSender interface {
	Send(ctx context.Context, url string) error
}

// RateSource yields the current currency conversion snapshot, or nil when no
// rate data is available.
type RateSource interface {
	Current() *CurrencyConversionData
}

// RateCache persists rate snapshots so instances can fall back to the last
// known table when the upstream feed is unreachable.
type RateCache interface {
	StoreRates(ctx context.Context, data *CurrencyConversionData) error
	LoadRates(ctx context.Context) (*CurrencyConversionData, error)
}

// ResultBroadcaster pushes auction outcomes to live observers.
type ResultBroadcaster interface {
	BroadcastResult(ctx context.Context, result *AuctionResult) error
}
