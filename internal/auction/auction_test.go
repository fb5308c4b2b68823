package auction

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"openrtb-auction/internal/domain"
	"openrtb-auction/internal/openrtb"
	"openrtb-auction/pkg/logger"
)

type recordingSender struct {
	sent chan string
	fail bool
}

func newRecordingSender() *recordingSender {
	return &recordingSender{sent: make(chan string, 16)}
}

func (s *recordingSender) Send(_ context.Context, url string) error {
	s.sent <- url
	if s.fail {
		return errors.New("connection refused")
	}
	return nil
}

// collect drains n sent URLs, failing the test if they do not arrive.
func (s *recordingSender) collect(t *testing.T, n int) []string {
	t.Helper()
	urls := make([]string, 0, n)
	for i := 0; i < n; i++ {
		select {
		case url := <-s.sent:
			urls = append(urls, url)
		case <-time.After(2 * time.Second):
			t.Fatalf("expected %d notifications, got %d", n, len(urls))
		}
	}
	return urls
}

// assertNoMore verifies no extra notification arrives.
func (s *recordingSender) assertNoMore(t *testing.T) {
	t.Helper()
	select {
	case url := <-s.sent:
		t.Fatalf("unexpected notification to %s", url)
	case <-time.After(50 * time.Millisecond):
	}
}

func usdInfo() *domain.BidInformation {
	return &domain.BidInformation{Currency: "USD", Version: "2.6"}
}

func TestPlaceBid_InvalidPlacement(t *testing.T) {
	a := New([]string{"imp-1"}, Options{}, nil, logger.NewNop())

	err := a.PlaceBid(&openrtb.Bid{ID: "b1", ImpID: "imp-9", Price: 1}, usdInfo())
	assert.ErrorIs(t, err, domain.ErrInvalidPlacement)
	assert.Equal(t, 0, a.BidCount())
}

func TestPlaceBid_AfterCloseFails(t *testing.T) {
	a := New([]string{"imp-1"}, Options{}, nil, logger.NewNop())
	require.NoError(t, a.PlaceBid(&openrtb.Bid{ID: "b1", ImpID: "imp-1", Price: 1}, usdInfo()))

	_, err := a.End(context.Background())
	require.NoError(t, err)

	err = a.PlaceBid(&openrtb.Bid{ID: "b2", ImpID: "imp-1", Price: 2}, usdInfo())
	assert.ErrorIs(t, err, domain.ErrAuctionClosed)
	assert.Equal(t, 1, a.BidCount())
}

func TestPlaceBid_OverwriteByIDKeepsPosition(t *testing.T) {
	a := New([]string{"imp-1"}, Options{}, nil, logger.NewNop())
	require.NoError(t, a.PlaceBid(&openrtb.Bid{ID: "b1", ImpID: "imp-1", Price: 1}, usdInfo()))
	require.NoError(t, a.PlaceBid(&openrtb.Bid{ID: "b2", ImpID: "imp-1", Price: 3}, usdInfo()))
	// Resubmitting b1 overwrites its price but keeps its first-submission slot.
	require.NoError(t, a.PlaceBid(&openrtb.Bid{ID: "b1", ImpID: "imp-1", Price: 3}, usdInfo()))

	winner, err := a.End(context.Background())
	require.NoError(t, err)
	// Equal scores: b1 occupies the earlier position, so it stays the leader.
	assert.Equal(t, "b1", winner.ID)
	assert.Equal(t, 2, a.BidCount())
}

func TestEnd_NoBids(t *testing.T) {
	a := New([]string{"imp-1"}, Options{}, nil, logger.NewNop())

	_, err := a.End(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoBids)
	// A failed End with no bids never closes the auction.
	assert.Equal(t, domain.AuctionOpen, a.Status())
}

func TestEnd_Twice(t *testing.T) {
	a := New([]string{"imp-1"}, Options{}, nil, logger.NewNop())
	require.NoError(t, a.PlaceBid(&openrtb.Bid{ID: "b1", ImpID: "imp-1", Price: 1}, usdInfo()))

	winner, err := a.End(context.Background())
	require.NoError(t, err)
	require.Equal(t, "b1", winner.ID)

	_, err = a.End(context.Background())
	assert.ErrorIs(t, err, domain.ErrAuctionAlreadyEnded)
	// The first call's winner is unaffected by the second call's failure.
	assert.Equal(t, "b1", a.Winner().ID)
}

func TestEnd_FirstMaxWinsTies(t *testing.T) {
	a := New([]string{"imp-1"}, Options{TargetCurrency: "USD"}, nil, logger.NewNop())
	require.NoError(t, a.PlaceBid(&openrtb.Bid{ID: "A", ImpID: "imp-1", Price: 5}, usdInfo()))
	require.NoError(t, a.PlaceBid(&openrtb.Bid{ID: "B", ImpID: "imp-1", Price: 4.5}, usdInfo()))
	require.NoError(t, a.PlaceBid(&openrtb.Bid{ID: "C", ImpID: "imp-1", Price: 5}, usdInfo()))

	winner, err := a.End(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "A", winner.ID)
	assert.Equal(t, domain.AuctionClosed, a.Status())
}

func TestEnd_CurrencyNormalizedSelection(t *testing.T) {
	rates := &domain.CurrencyConversionData{
		Conversions: domain.ConversionRates{"USD": {"JPY": 150}},
	}
	a := New([]string{"imp-1"}, Options{
		CurrencyConversionData: rates,
		TargetCurrency:         "USD",
	}, nil, logger.NewNop())

	// 450 JPY = 3 USD, so the 2 USD bid loses despite the smaller number.
	require.NoError(t, a.PlaceBid(&openrtb.Bid{ID: "jpy", ImpID: "imp-1", Price: 450},
		&domain.BidInformation{Currency: "JPY", Version: "2.6"}))
	require.NoError(t, a.PlaceBid(&openrtb.Bid{ID: "usd", ImpID: "imp-1", Price: 2}, usdInfo()))

	winner, err := a.End(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "jpy", winner.ID)
}

func TestEnd_MissingMetadataSkipped(t *testing.T) {
	a := New([]string{"imp-1"}, Options{}, nil, logger.NewNop())
	require.NoError(t, a.PlaceBid(&openrtb.Bid{ID: "b1", ImpID: "imp-1", Price: 9}, nil))
	require.NoError(t, a.PlaceBid(&openrtb.Bid{ID: "b2", ImpID: "imp-1", Price: 1}, usdInfo()))

	winner, err := a.End(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "b2", winner.ID)
}

func TestEnd_SelectionFailedLeavesClosedAuction(t *testing.T) {
	a := New([]string{"imp-1"}, Options{}, nil, logger.NewNop())
	require.NoError(t, a.PlaceBid(&openrtb.Bid{ID: "b1", ImpID: "imp-1", Price: 9}, nil))

	_, err := a.End(context.Background())
	assert.ErrorIs(t, err, domain.ErrSelectionFailed)
	// Existing behavior: the status flips before selection, so a selection
	// failure leaves a closed auction with no winner.
	assert.Equal(t, domain.AuctionClosed, a.Status())
	assert.Nil(t, a.Winner())
}

func TestEnd_CustomStrategy(t *testing.T) {
	// Prefer the lowest price to prove the strategy is honored.
	inverted := strategyFunc(func(_ context.Context, bid *openrtb.Bid, _ *domain.ScoringContext) (float64, error) {
		return -bid.Price, nil
	})
	a := New([]string{"imp-1"}, Options{ScoringStrategy: inverted}, nil, logger.NewNop())
	require.NoError(t, a.PlaceBid(&openrtb.Bid{ID: "cheap", ImpID: "imp-1", Price: 1}, usdInfo()))
	require.NoError(t, a.PlaceBid(&openrtb.Bid{ID: "rich", ImpID: "imp-1", Price: 7}, usdInfo()))

	winner, err := a.End(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "cheap", winner.ID)
}

type strategyFunc func(ctx context.Context, bid *openrtb.Bid, sc *domain.ScoringContext) (float64, error)

func (f strategyFunc) Score(ctx context.Context, bid *openrtb.Bid, sc *domain.ScoringContext) (float64, error) {
	return f(ctx, bid, sc)
}

func TestEnd_StrategyErrorPropagates(t *testing.T) {
	failing := strategyFunc(func(context.Context, *openrtb.Bid, *domain.ScoringContext) (float64, error) {
		return 0, errors.New("model offline")
	})
	a := New([]string{"imp-1"}, Options{ScoringStrategy: failing}, nil, logger.NewNop())
	require.NoError(t, a.PlaceBid(&openrtb.Bid{ID: "b1", ImpID: "imp-1", Price: 1}, usdInfo()))

	_, err := a.End(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "b1")
}

func TestLossNotification_LosersOnly(t *testing.T) {
	sender := newRecordingSender()
	a := New([]string{"imp-1"}, Options{LossProcessing: true}, sender, logger.NewNop())

	require.NoError(t, a.PlaceBid(&openrtb.Bid{
		ID: "win", ImpID: "imp-1", Price: 5,
		LURL: "https://win.example.com?p=${AUCTION_PRICE}",
	}, usdInfo()))
	require.NoError(t, a.PlaceBid(&openrtb.Bid{
		ID: "lose", ImpID: "imp-1", Price: 4,
		LURL: "https://lose.example.com?p=${AUCTION_PRICE}&mtw=${OPENRTB_MIN_TO_WIN}&reason=${AUCTION_LOSS}",
	}, usdInfo()))
	require.NoError(t, a.PlaceBid(&openrtb.Bid{ID: "silent", ImpID: "imp-1", Price: 3}, usdInfo()))

	winner, err := a.End(context.Background())
	require.NoError(t, err)
	require.Equal(t, "win", winner.ID)

	urls := sender.collect(t, 1)
	assert.Equal(t, "https://lose.example.com?p=5&mtw=5.01&reason=102", urls[0])
	// The winner and the template-less bid are never notified.
	sender.assertNoMore(t)
}

func TestLossNotification_DisabledByDefault(t *testing.T) {
	sender := newRecordingSender()
	a := New([]string{"imp-1"}, Options{}, sender, logger.NewNop())
	require.NoError(t, a.PlaceBid(&openrtb.Bid{ID: "b1", ImpID: "imp-1", Price: 2, LURL: "https://x.example.com"}, usdInfo()))
	require.NoError(t, a.PlaceBid(&openrtb.Bid{ID: "b2", ImpID: "imp-1", Price: 1, LURL: "https://y.example.com"}, usdInfo()))

	_, err := a.End(context.Background())
	require.NoError(t, err)
	sender.assertNoMore(t)
}

func TestLossNotification_SendFailureDoesNotAffectEnd(t *testing.T) {
	sender := newRecordingSender()
	sender.fail = true
	a := New([]string{"imp-1"}, Options{LossProcessing: true}, sender, logger.NewNop())
	require.NoError(t, a.PlaceBid(&openrtb.Bid{ID: "b1", ImpID: "imp-1", Price: 2}, usdInfo()))
	require.NoError(t, a.PlaceBid(&openrtb.Bid{ID: "b2", ImpID: "imp-1", Price: 1, LURL: "https://y.example.com"}, usdInfo()))

	winner, err := a.End(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "b1", winner.ID)
	sender.collect(t, 1)
}
