package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"openrtb-auction/internal/bidrequester"
	"openrtb-auction/internal/openrtb"
	"openrtb-auction/internal/services"
	"openrtb-auction/pkg/logger"
)

func newRunner(endpoints ...string) *services.AuctionRunner {
	return services.NewAuctionRunner(
		bidrequester.New(bidrequester.Options{}),
		endpoints,
		nil, nil, nil, "USD", false, logger.NewNop(),
	)
}

func postAuction(t *testing.T, handler *AuctionHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	request := httptest.NewRequest(http.MethodPost, "/auctions", strings.NewReader(body))
	request.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	recorder := httptest.NewRecorder()
	require.NoError(t, handler.RunAuction(e.NewContext(request, recorder)))
	return recorder
}

func TestRunAuction_Success(t *testing.T) {
	bidder := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var request openrtb.BidRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&request))
		require.Len(t, request.Imp, 1)

		_ = json.NewEncoder(w).Encode(openrtb.BidResponse{
			ID:  request.ID,
			Cur: "USD",
			SeatBid: []openrtb.SeatBid{{
				Seat: "seat-a",
				Bid:  []openrtb.Bid{{ID: "bid-1", ImpID: request.Imp[0].ID, Price: 1.75, AdM: "<div/>"}},
			}},
		})
	}))
	defer bidder.Close()

	handler := NewAuctionHandler(newRunner(bidder.URL), logger.NewNop())
	recorder := postAuction(t, handler, `{"placements":[{"id":"imp-1"}],"site_domain":"news.example.com"}`)

	require.Equal(t, http.StatusOK, recorder.Code)
	var response RunAuctionResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.Equal(t, "bid-1", response.WinnerID)
	assert.Equal(t, "imp-1", response.ImpID)
	assert.Equal(t, 1.75, response.Price)
	assert.Equal(t, "<div/>", response.AdM)
}

func TestRunAuction_InvalidBody(t *testing.T) {
	handler := NewAuctionHandler(newRunner(), logger.NewNop())
	recorder := postAuction(t, handler, `{not json`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestRunAuction_NoPlacements(t *testing.T) {
	handler := NewAuctionHandler(newRunner(), logger.NewNop())
	recorder := postAuction(t, handler, `{"placements":[]}`)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestRunAuction_NoBids(t *testing.T) {
	declining := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer declining.Close()

	handler := NewAuctionHandler(newRunner(declining.URL), logger.NewNop())
	recorder := postAuction(t, handler, `{"placements":[{"id":"imp-1"}]}`)
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestHealth(t *testing.T) {
	handler := NewAuctionHandler(newRunner(), logger.NewNop())
	e := echo.New()
	request := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	recorder := httptest.NewRecorder()
	require.NoError(t, handler.Health(e.NewContext(request, recorder)))
	assert.Equal(t, http.StatusOK, recorder.Code)
}
