package builder

import (
	"github.com/google/uuid"

	"openrtb-auction/internal/openrtb"
)

// BidResponseBuilder assembles an openrtb.BidResponse through chainable
// calls. Bids are grouped under the most recently begun seatbid; adding a
// bid before any seat was begun opens an anonymous one.
type BidResponseBuilder struct {
	response  openrtb.BidResponse
	seatIndex int
	commonBid *openrtb.Bid
}

func NewBidResponseBuilder() *BidResponseBuilder {
	return &BidResponseBuilder{
		response:  openrtb.BidResponse{SeatBid: []openrtb.SeatBid{}},
		seatIndex: -1,
	}
}

// Reset discards everything configured so far and starts a fresh response.
func (b *BidResponseBuilder) Reset() *BidResponseBuilder {
	*b = *NewBidResponseBuilder()
	return b
}

// WithID sets the bid response id.
func (b *BidResponseBuilder) WithID(id string) *BidResponseBuilder {
	b.response.ID = id
	return b
}

// WithBidID sets the bidder generated response id.
func (b *BidResponseBuilder) WithBidID(bidID string) *BidResponseBuilder {
	b.response.BidID = bidID
	return b
}

// WithCurrency sets the bid currency.
func (b *BidResponseBuilder) WithCurrency(cur string) *BidResponseBuilder {
	b.response.Cur = cur
	return b
}

// WithCustomData sets custom data for cookie.
func (b *BidResponseBuilder) WithCustomData(customData string) *BidResponseBuilder {
	b.response.CustomData = customData
	return b
}

// WithNoBidReason sets the reason for not bidding.
func (b *BidResponseBuilder) WithNoBidReason(nbr int64) *BidResponseBuilder {
	b.response.NBR = &nbr
	return b
}

// BeginSeatBid opens a new seatbid section; subsequent AddBid calls append
// to it.
func (b *BidResponseBuilder) BeginSeatBid(seat string) *BidResponseBuilder {
	b.response.SeatBid = append(b.response.SeatBid, openrtb.SeatBid{
		Bid:  []openrtb.Bid{},
		Seat: seat,
	})
	b.seatIndex = len(b.response.SeatBid) - 1
	return b
}

// WithGroup sets the group flag for the current seatbid.
func (b *BidResponseBuilder) WithGroup(group int8) *BidResponseBuilder {
	if b.seatIndex >= 0 {
		b.response.SeatBid[b.seatIndex].Group = group
	}
	return b
}

// WithCommonBid sets properties applied to every bid at Build time.
func (b *BidResponseBuilder) WithCommonBid(common openrtb.Bid) *BidResponseBuilder {
	b.commonBid = &common
	return b
}

// AddBid appends a bid to the current seatbid. An empty bid id gets a
// generated one.
func (b *BidResponseBuilder) AddBid(bid openrtb.Bid) *BidResponseBuilder {
	if b.seatIndex < 0 {
		b.BeginSeatBid("")
	}
	if bid.ID == "" {
		bid.ID = uuid.NewString()
	}
	b.response.SeatBid[b.seatIndex].Bid = append(b.response.SeatBid[b.seatIndex].Bid, bid)
	return b
}

// Build returns the assembled response with common bid properties folded in.
func (b *BidResponseBuilder) Build() *openrtb.BidResponse {
	response := b.response
	if b.commonBid != nil {
		for si := range response.SeatBid {
			for bi := range response.SeatBid[si].Bid {
				applyCommonBid(&response.SeatBid[si].Bid[bi], b.commonBid)
			}
		}
	}
	return &response
}

// applyCommonBid overlays the set fields of common onto bid.
func applyCommonBid(bid *openrtb.Bid, common *openrtb.Bid) {
	if common.NURL != "" {
		bid.NURL = common.NURL
	}
	if common.BURL != "" {
		bid.BURL = common.BURL
	}
	if common.LURL != "" {
		bid.LURL = common.LURL
	}
	if common.AdM != "" {
		bid.AdM = common.AdM
	}
	if common.AdID != "" {
		bid.AdID = common.AdID
	}
	if len(common.ADomain) > 0 {
		bid.ADomain = common.ADomain
	}
	if common.CrID != "" {
		bid.CrID = common.CrID
	}
	if common.DealID != "" {
		bid.DealID = common.DealID
	}
	if common.W != 0 {
		bid.W = common.W
	}
	if common.H != 0 {
		bid.H = common.H
	}
	if len(common.Ext) > 0 {
		bid.Ext = common.Ext
	}
}
