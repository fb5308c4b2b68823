package domain

import (
	"time"
)

// AuctionStatus tracks the one-way open -> closed lifecycle of an auction.
type AuctionStatus int

const (
	AuctionOpen AuctionStatus = iota
	AuctionClosed
)

func (s AuctionStatus) String() string {
	switch s {
	case AuctionOpen:
		return "open"
	case AuctionClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// BidInformation is side-channel metadata associated with a bid for the
// lifetime of one auction instance. It is never serialized and never looked
// up by anything other than its bid.
type BidInformation struct {
	Currency string
	Version  string
	Seat     string
}

// CurrencyRates maps an ISO 4217 quote currency to its conversion rate.
type CurrencyRates map[string]float64

// ConversionRates maps a base currency to the rates quoted against it.
type ConversionRates map[string]CurrencyRates

// CurrencyConversionData is a read-only rate table snapshot. Rates need not
// be present in both directions or fully connected; unresolvable pairs may
// still route through USD.
type CurrencyConversionData struct {
	DataAsOf    string          `json:"dataAsOf"`
	GeneratedAt string          `json:"generatedAt"`
	Conversions ConversionRates `json:"conversions"`
}

// ScoringContext carries everything a scoring strategy may consult for one
// bid: its metadata, the auction's rate table, and the currency scores are
// normalized into.
type ScoringContext struct {
	BidInfo            *BidInformation
	CurrencyConversion *CurrencyConversionData
	TargetCurrency     string
}

// AuctionResult is the outcome summary published to observers after an
// auction closes.
type AuctionResult struct {
	AuctionID  string    `json:"auction_id"`
	WinnerID   string    `json:"winner_id"`
	ImpID      string    `json:"imp_id"`
	Seat       string    `json:"seat,omitempty"`
	Price      float64   `json:"price"`
	Currency   string    `json:"currency,omitempty"`
	BidCount   int       `json:"bid_count"`
	FinishedAt time.Time `json:"finished_at"`
}
