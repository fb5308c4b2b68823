package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"openrtb-auction/internal/builder"
	"openrtb-auction/internal/domain"
	"openrtb-auction/internal/openrtb"
	"openrtb-auction/internal/services"
	"openrtb-auction/pkg/logger"
)

type AuctionHandler struct {
	runner *services.AuctionRunner
	log    logger.Logger
}

type PlacementRequest struct {
	ID          string  `json:"id"`
	TagID       string  `json:"tag_id,omitempty"`
	BidFloor    float64 `json:"bid_floor,omitempty"`
	BidFloorCur string  `json:"bid_floor_cur,omitempty"`
}

type RunAuctionRequest struct {
	Placements    []PlacementRequest `json:"placements"`
	SiteDomain    string             `json:"site_domain,omitempty"`
	TimeoutMillis int64              `json:"timeout_ms,omitempty"`
	Test          bool               `json:"test,omitempty"`
}

type RunAuctionResponse struct {
	WinnerID string  `json:"winner_id"`
	ImpID    string  `json:"imp_id"`
	Price    float64 `json:"price"`
	AdM      string  `json:"adm,omitempty"`
}

func NewAuctionHandler(runner *services.AuctionRunner, log logger.Logger) *AuctionHandler {
	return &AuctionHandler{
		runner: runner,
		log:    log,
	}
}

func (h *AuctionHandler) RunAuction(c echo.Context) error {
	var req RunAuctionRequest
	if err := c.Bind(&req); err != nil {
		h.log.Error("Failed to bind request", "error", err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	if len(req.Placements) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "At least one placement is required"})
	}

	b := builder.NewBidRequestBuilder()
	for _, placement := range req.Placements {
		b.AddImp(openrtb.Imp{
			ID:          placement.ID,
			TagID:       placement.TagID,
			BidFloor:    placement.BidFloor,
			BidFloorCur: placement.BidFloorCur,
		})
	}
	if req.SiteDomain != "" {
		b.WithSite(openrtb.Site{Domain: req.SiteDomain})
	}
	if req.TimeoutMillis > 0 {
		b.WithTimeout(req.TimeoutMillis)
	}
	if req.Test {
		b.WithTest(1)
	}

	winner, err := h.runner.Run(c.Request().Context(), b.Build())
	if err != nil {
		if errors.Is(err, domain.ErrNoBids) || errors.Is(err, domain.ErrSelectionFailed) {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "No winning bid"})
		}
		h.log.Error("Failed to run auction", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to run auction"})
	}

	return c.JSON(http.StatusOK, RunAuctionResponse{
		WinnerID: winner.ID,
		ImpID:    winner.ImpID,
		Price:    winner.Price,
		AdM:      winner.AdM,
	})
}

func (h *AuctionHandler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
