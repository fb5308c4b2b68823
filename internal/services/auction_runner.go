package services

import (
	"context"
	"sync"
	"time"

	"openrtb-auction/internal/auction"
	"openrtb-auction/internal/bidrequester"
	"openrtb-auction/internal/domain"
	"openrtb-auction/internal/openrtb"
	"openrtb-auction/pkg/logger"
	"openrtb-auction/pkg/utils"
)

// AuctionRunner drives one full auction round: fan a bid request out to the
// configured bidding endpoints, fold the returned bids into an auction, end
// it, and publish the outcome.
type AuctionRunner struct {
	requester      *bidrequester.Requester
	endpoints      []string
	rates          domain.RateSource
	sender         domain.NotificationSender
	broadcaster    domain.ResultBroadcaster
	targetCurrency string
	lossProcessing bool
	log            logger.Logger
}

func NewAuctionRunner(
	requester *bidrequester.Requester,
	endpoints []string,
	rates domain.RateSource,
	sender domain.NotificationSender,
	broadcaster domain.ResultBroadcaster,
	targetCurrency string,
	lossProcessing bool,
	log logger.Logger,
) *AuctionRunner {
	if log == nil {
		log = logger.NewNop()
	}
	return &AuctionRunner{
		requester:      requester,
		endpoints:      endpoints,
		rates:          rates,
		sender:         sender,
		broadcaster:    broadcaster,
		targetCurrency: targetCurrency,
		lossProcessing: lossProcessing,
		log:            log,
	}
}

// Run executes one auction for the given bid request and returns the winning
// bid. Endpoints that fail or decline to bid are skipped; the auction fails
// only when nothing bids at all.
func (r *AuctionRunner) Run(ctx context.Context, request *openrtb.BidRequest) (*openrtb.Bid, error) {
	auctionID := utils.GenerateID("auction")

	impIDs := make([]string, len(request.Imp))
	for i, imp := range request.Imp {
		impIDs[i] = imp.ID
	}

	var rates *domain.CurrencyConversionData
	if r.rates != nil {
		rates = r.rates.Current()
	}

	a := auction.New(impIDs, auction.Options{
		LossProcessing:         r.lossProcessing,
		CurrencyConversionData: rates,
		TargetCurrency:         r.targetCurrency,
	}, r.sender, r.log)

	// Query every endpoint concurrently, then fold responses in endpoint
	// order so bid submission order stays reproducible.
	responses := make([]*openrtb.BidResponse, len(r.endpoints))
	var wg sync.WaitGroup
	for i, endpoint := range r.endpoints {
		wg.Add(1)
		go func(i int, endpoint string) {
			defer wg.Done()
			response, err := r.requester.Request(ctx, endpoint, request)
			if err != nil {
				r.log.Warn("Bidder endpoint skipped", "auction_id", auctionID, "endpoint", endpoint, "error", err)
				return
			}
			responses[i] = response
		}(i, endpoint)
	}
	wg.Wait()

	for _, response := range responses {
		if response == nil {
			continue
		}
		for _, seatBid := range response.SeatBid {
			for i := range seatBid.Bid {
				bid := seatBid.Bid[i]
				info := &domain.BidInformation{
					Currency: response.Cur,
					Version:  "2.6",
					Seat:     seatBid.Seat,
				}
				if err := a.PlaceBid(&bid, info); err != nil {
					r.log.Warn("Bid rejected", "auction_id", auctionID, "bid_id", bid.ID, "imp_id", bid.ImpID, "error", err)
				}
			}
		}
	}

	winner, err := a.End(ctx)
	if err != nil {
		return nil, err
	}

	r.log.Info("Auction finished", "auction_id", auctionID, "winner_id", winner.ID, "price", winner.Price, "bids", a.BidCount())

	if r.broadcaster != nil {
		result := &domain.AuctionResult{
			AuctionID:  auctionID,
			WinnerID:   winner.ID,
			ImpID:      winner.ImpID,
			Seat:       a.Seat(winner.ID),
			Price:      winner.Price,
			Currency:   r.targetCurrency,
			BidCount:   a.BidCount(),
			FinishedAt: time.Now(),
		}
		if err := r.broadcaster.BroadcastResult(ctx, result); err != nil {
			r.log.Warn("Failed to broadcast auction result", "auction_id", auctionID, "error", err)
		}
	}

	return winner, nil
}
