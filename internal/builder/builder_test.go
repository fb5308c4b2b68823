package builder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"openrtb-auction/internal/openrtb"
)

func TestBidRequestBuilder_Defaults(t *testing.T) {
	request := NewBidRequestBuilder().Build()

	assert.NotEmpty(t, request.ID)
	assert.Empty(t, request.Imp)
}

func TestBidRequestBuilder_Chaining(t *testing.T) {
	request := NewBidRequestBuilder().
		WithID("req-1").
		AddImp(openrtb.Imp{ID: "imp-1", BidFloor: 0.5, BidFloorCur: "USD"}).
		AddImp(openrtb.Imp{TagID: "sidebar"}).
		WithSite(openrtb.Site{Domain: "news.example.com", Page: "https://news.example.com/article"}).
		WithTest(1).
		WithAuctionType(2).
		WithTimeout(150).
		WithCurrencies([]string{"USD", "JPY"}).
		WithWhitelistedSeats([]string{"seat-1"}).
		Build()

	assert.Equal(t, "req-1", request.ID)
	require.Len(t, request.Imp, 2)
	assert.Equal(t, "imp-1", request.Imp[0].ID)
	assert.NotEmpty(t, request.Imp[1].ID) // generated
	assert.Equal(t, "news.example.com", request.Site.Domain)
	assert.Equal(t, int8(1), request.Test)
	assert.Equal(t, int64(2), request.AT)
	assert.Equal(t, int64(150), request.TMax)
	assert.Equal(t, []string{"USD", "JPY"}, request.Cur)
	assert.Equal(t, []string{"seat-1"}, request.WSeat)
}

func TestBidRequestBuilder_Reset(t *testing.T) {
	b := NewBidRequestBuilder().WithID("req-1").AddImp(openrtb.Imp{ID: "imp-1"})
	request := b.Reset().Build()

	assert.NotEqual(t, "req-1", request.ID)
	assert.Empty(t, request.Imp)
}

func TestBidResponseBuilder_SeatBids(t *testing.T) {
	response := NewBidResponseBuilder().
		WithID("req-1").
		WithCurrency("USD").
		BeginSeatBid("seat-a").
		AddBid(openrtb.Bid{ID: "bid-1", ImpID: "imp-1", Price: 2.5}).
		AddBid(openrtb.Bid{ImpID: "imp-1", Price: 1.5}).
		BeginSeatBid("seat-b").
		WithGroup(1).
		AddBid(openrtb.Bid{ID: "bid-3", ImpID: "imp-1", Price: 3.0}).
		Build()

	assert.Equal(t, "req-1", response.ID)
	assert.Equal(t, "USD", response.Cur)
	require.Len(t, response.SeatBid, 2)

	seatA := response.SeatBid[0]
	assert.Equal(t, "seat-a", seatA.Seat)
	require.Len(t, seatA.Bid, 2)
	assert.NotEmpty(t, seatA.Bid[1].ID) // generated

	seatB := response.SeatBid[1]
	assert.Equal(t, int8(1), seatB.Group)
	require.Len(t, seatB.Bid, 1)
	assert.Equal(t, "bid-3", seatB.Bid[0].ID)
}

func TestBidResponseBuilder_AddBidWithoutSeatOpensAnonymousSeat(t *testing.T) {
	response := NewBidResponseBuilder().
		AddBid(openrtb.Bid{ID: "bid-1", ImpID: "imp-1", Price: 1}).
		Build()

	require.Len(t, response.SeatBid, 1)
	assert.Empty(t, response.SeatBid[0].Seat)
	require.Len(t, response.SeatBid[0].Bid, 1)
}

func TestBidResponseBuilder_CommonBidAppliedAtBuild(t *testing.T) {
	response := NewBidResponseBuilder().
		WithCommonBid(openrtb.Bid{ADomain: []string{"brand.example.com"}, LURL: "https://loss.example.com?p=${AUCTION_PRICE}"}).
		BeginSeatBid("seat-a").
		AddBid(openrtb.Bid{ID: "bid-1", ImpID: "imp-1", Price: 2}).
		AddBid(openrtb.Bid{ID: "bid-2", ImpID: "imp-2", Price: 3}).
		Build()

	for _, bid := range response.SeatBid[0].Bid {
		assert.Equal(t, []string{"brand.example.com"}, bid.ADomain)
		assert.Equal(t, "https://loss.example.com?p=${AUCTION_PRICE}", bid.LURL)
	}
	// Per-bid fields survive the overlay.
	assert.Equal(t, 2.0, response.SeatBid[0].Bid[0].Price)
}

func TestBidResponseBuilder_NoBidReason(t *testing.T) {
	response := NewBidResponseBuilder().WithNoBidReason(2).Build()

	require.NotNil(t, response.NBR)
	assert.Equal(t, int64(2), *response.NBR)
	assert.Empty(t, response.SeatBid)
}
