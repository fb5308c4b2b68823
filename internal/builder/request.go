// Package builder provides fluent builders for OpenRTB bid request and bid
// response payloads. Builders carry no decision logic; they only assemble
// the values the auction and the bid requester consume.
package builder

import (
	"github.com/google/uuid"

	"openrtb-auction/internal/openrtb"
)

// BidRequestBuilder assembles an openrtb.BidRequest through chainable calls.
type BidRequestBuilder struct {
	request openrtb.BidRequest
}

func NewBidRequestBuilder() *BidRequestBuilder {
	return &BidRequestBuilder{
		request: openrtb.BidRequest{
			ID:  uuid.NewString(),
			Imp: []openrtb.Imp{},
		},
	}
}

// Reset discards everything configured so far and starts a fresh request.
func (b *BidRequestBuilder) Reset() *BidRequestBuilder {
	*b = *NewBidRequestBuilder()
	return b
}

// WithID sets the bid request id.
func (b *BidRequestBuilder) WithID(id string) *BidRequestBuilder {
	b.request.ID = id
	return b
}

// AddImp appends an impression. An empty imp id gets a generated one.
func (b *BidRequestBuilder) AddImp(imp openrtb.Imp) *BidRequestBuilder {
	if imp.ID == "" {
		imp.ID = uuid.NewString()
	}
	b.request.Imp = append(b.request.Imp, imp)
	return b
}

func (b *BidRequestBuilder) WithSite(site openrtb.Site) *BidRequestBuilder {
	b.request.Site = &site
	return b
}

func (b *BidRequestBuilder) WithApp(app openrtb.App) *BidRequestBuilder {
	b.request.App = &app
	return b
}

func (b *BidRequestBuilder) WithDevice(device openrtb.Device) *BidRequestBuilder {
	b.request.Device = &device
	return b
}

func (b *BidRequestBuilder) WithUser(user openrtb.User) *BidRequestBuilder {
	b.request.User = &user
	return b
}

// WithTest flags the request as test mode.
func (b *BidRequestBuilder) WithTest(test int8) *BidRequestBuilder {
	b.request.Test = test
	return b
}

// WithAuctionType sets the auction type (1 = first price, 2 = second price).
func (b *BidRequestBuilder) WithAuctionType(at int64) *BidRequestBuilder {
	b.request.AT = at
	return b
}

// WithTimeout sets the maximum time in milliseconds for receiving bids.
func (b *BidRequestBuilder) WithTimeout(tmaxMillis int64) *BidRequestBuilder {
	b.request.TMax = tmaxMillis
	return b
}

// WithWhitelistedSeats sets the allowed list of buyer seats.
func (b *BidRequestBuilder) WithWhitelistedSeats(wseat []string) *BidRequestBuilder {
	b.request.WSeat = wseat
	return b
}

// WithBlockedSeats sets the block list of buyer seats.
func (b *BidRequestBuilder) WithBlockedSeats(bseat []string) *BidRequestBuilder {
	b.request.BSeat = bseat
	return b
}

// WithCurrencies sets the currencies bids may be expressed in.
func (b *BidRequestBuilder) WithCurrencies(cur []string) *BidRequestBuilder {
	b.request.Cur = cur
	return b
}

// WithBlockedCategories sets the blocked advertiser categories.
func (b *BidRequestBuilder) WithBlockedCategories(bcat []string) *BidRequestBuilder {
	b.request.BCat = bcat
	return b
}

// WithBlockedAdvertisers sets the blocked advertiser domains.
func (b *BidRequestBuilder) WithBlockedAdvertisers(badv []string) *BidRequestBuilder {
	b.request.BAdv = badv
	return b
}

func (b *BidRequestBuilder) WithSource(source openrtb.Source) *BidRequestBuilder {
	b.request.Source = &source
	return b
}

func (b *BidRequestBuilder) WithRegulations(regs openrtb.Regs) *BidRequestBuilder {
	b.request.Regs = &regs
	return b
}

// Build returns the assembled request.
func (b *BidRequestBuilder) Build() *openrtb.BidRequest {
	request := b.request
	return &request
}
