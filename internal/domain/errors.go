package domain

import "errors"

// Auction error taxonomy. Every error is terminal for the failing call but
// never corrupts auction state.
var (
	// ErrAuctionClosed is returned when a bid is placed after the auction closed.
	ErrAuctionClosed = errors.New("auction is closed")

	// ErrInvalidPlacement is returned when a bid targets an impression id the
	// auction was not configured with.
	ErrInvalidPlacement = errors.New("invalid impression ID")

	// ErrAuctionAlreadyEnded is returned when End is invoked more than once.
	ErrAuctionAlreadyEnded = errors.New("auction already ended")

	// ErrNoBids is returned when End is invoked with zero accepted bids.
	ErrNoBids = errors.New("no bids placed")

	// ErrSelectionFailed is returned when winner selection found no scoreable bid.
	ErrSelectionFailed = errors.New("failed to select winner")
)
