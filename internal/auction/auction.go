// Package auction implements the in-process bid auction: bid collection,
// winner selection through a pluggable scoring strategy, and best-effort
// loss notification for the bidders that did not win.
package auction

import (
	"context"
	"fmt"
	"math"

	"openrtb-auction/internal/domain"
	"openrtb-auction/internal/macro"
	"openrtb-auction/internal/openrtb"
	"openrtb-auction/internal/scoring"
	"openrtb-auction/pkg/logger"
)

// LossReasonLostToHigherBid is the OpenRTB loss reason code substituted into
// loss-notification URLs.
const LossReasonLostToHigherBid = 102

// Options is the immutable configuration an auction is constructed with.
// Every field is optional.
type Options struct {
	LossProcessing         bool
	CurrencyConversionData *domain.CurrencyConversionData
	ScoringStrategy        domain.ScoringStrategy
	TargetCurrency         string
}

// Auction runs a single-winner auction over bids for a fixed set of
// placements. Instances are not safe for uncoordinated concurrent writers;
// the owning caller is expected to serialize PlaceBid and End.
type Auction struct {
	impIDs        []string
	bids          map[string]*openrtb.Bid
	bidInfo       map[string]*domain.BidInformation
	bidOrder      []string
	status        domain.AuctionStatus
	winner        *openrtb.Bid
	options       Options
	strategy      domain.ScoringStrategy
	macroReplacer *macro.Replacer
	sender        domain.NotificationSender
	log           logger.Logger
}

// New creates an open auction scoped to the given placement ids. The sender
// is only used when loss processing is enabled; a nil sender disables
// dispatch.
func New(impIDs []string, options Options, sender domain.NotificationSender, log logger.Logger) *Auction {
	strategy := options.ScoringStrategy
	if strategy == nil {
		strategy = scoring.NewPriceStrategy()
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Auction{
		impIDs:        impIDs,
		bids:          make(map[string]*openrtb.Bid),
		bidInfo:       make(map[string]*domain.BidInformation),
		status:        domain.AuctionOpen,
		options:       options,
		strategy:      strategy,
		macroReplacer: macro.New(macro.Context{}, macro.NamespaceBoth),
		sender:        sender,
		log:           log,
	}
}

// PlaceBid accepts a bid and its side-channel metadata while the auction is
// open. A second bid with the same id overwrites the first but keeps its
// original submission position.
func (a *Auction) PlaceBid(bid *openrtb.Bid, info *domain.BidInformation) error {
	if a.status != domain.AuctionOpen {
		return domain.ErrAuctionClosed
	}
	if !a.validImpID(bid.ImpID) {
		return domain.ErrInvalidPlacement
	}

	if _, exists := a.bids[bid.ID]; !exists {
		a.bidOrder = append(a.bidOrder, bid.ID)
	}
	a.bids[bid.ID] = bid
	a.bidInfo[bid.ID] = info
	return nil
}

// End closes the auction, selects the winner, and kicks off loss processing
// as a detached side effect. It may be called at most once. Note that the
// status flips to closed before selection runs, so a selection failure
// leaves a closed auction with no winner.
func (a *Auction) End(ctx context.Context) (*openrtb.Bid, error) {
	if a.status != domain.AuctionOpen {
		return nil, domain.ErrAuctionAlreadyEnded
	}
	if len(a.bids) == 0 {
		return nil, domain.ErrNoBids
	}

	a.status = domain.AuctionClosed

	winner, err := a.selectWinner(ctx)
	if err != nil {
		return nil, err
	}
	a.winner = winner

	a.processLosingBids()

	return a.winner, nil
}

// Status reports the auction lifecycle state.
func (a *Auction) Status() domain.AuctionStatus {
	return a.status
}

// Winner returns the winning bid, or nil while the auction is open or after
// a failed close.
func (a *Auction) Winner() *openrtb.Bid {
	return a.winner
}

// BidCount returns the number of accepted bids.
func (a *Auction) BidCount() int {
	return len(a.bids)
}

// Seat returns the seat the given bid was submitted under, if known.
func (a *Auction) Seat(bidID string) string {
	if info := a.bidInfo[bidID]; info != nil {
		return info.Seat
	}
	return ""
}

func (a *Auction) validImpID(impID string) bool {
	for _, id := range a.impIDs {
		if id == impID {
			return true
		}
	}
	return false
}

// selectWinner walks accepted bids in submission order and keeps the first
// bid reaching the strictly-highest score. Later equal scores never replace
// an earlier leader.
func (a *Auction) selectWinner(ctx context.Context) (*openrtb.Bid, error) {
	highestScore := math.Inf(-1)
	var winner *openrtb.Bid

	for _, id := range a.bidOrder {
		bid := a.bids[id]
		info := a.bidInfo[id]
		if info == nil {
			// Should not happen under normal use; an unscoreable bid is skipped.
			continue
		}

		score, err := a.strategy.Score(ctx, bid, &domain.ScoringContext{
			BidInfo:            info,
			CurrencyConversion: a.options.CurrencyConversionData,
			TargetCurrency:     a.options.TargetCurrency,
		})
		if err != nil {
			return nil, fmt.Errorf("scoring bid %s: %w", id, err)
		}

		if score > highestScore {
			highestScore = score
			winner = bid
		}
	}

	if winner == nil {
		return nil, domain.ErrSelectionFailed
	}
	return winner, nil
}

// processLosingBids notifies every non-winning bid that carries a
// loss-notification URL template. Dispatch is fire-and-forget: the auction
// never awaits delivery and failures are logged, not raised.
func (a *Auction) processLosingBids() {
	if a.winner == nil || !a.options.LossProcessing || a.sender == nil {
		return
	}

	winningPrice := a.winner.Price
	lossReason := LossReasonLostToHigherBid
	a.macroReplacer.UpdateContext(macro.Context{
		Price:    &winningPrice,
		MinToWin: macro.Float64(winningPrice + 0.01),
		Loss:     &lossReason,
	})

	for _, id := range a.bidOrder {
		bid := a.bids[id]
		if id == a.winner.ID || bid.LURL == "" {
			continue
		}

		url, err := a.macroReplacer.Replace(bid.LURL)
		if err != nil {
			a.log.Error("Failed to process loss notification URL", "bid_id", id, "error", err)
			continue
		}

		go a.sendLossNotification(id, url)
	}
}

func (a *Auction) sendLossNotification(bidID, url string) {
	if err := a.sender.Send(context.Background(), url); err != nil {
		a.log.Error("Failed to send loss notification", "bid_id", bidID, "url", url, "error", err)
	}
}
