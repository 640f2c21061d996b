package api

import (
	"log/slog"
	"net/http"

	"github.com/openswap/barter-api/internal/api/shared"
	"github.com/openswap/barter-api/internal/service"
)

// TradeHandler serves the read side of the trade ledger. Trades are only
// ever created by offer acceptance, so there are no write endpoints.
type TradeHandler struct {
	offerService service.OfferService
	logger       *slog.Logger
}

// NewTradeHandler creates a new TradeHandler.
func NewTradeHandler(offerService service.OfferService, log *slog.Logger) *TradeHandler {
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TradeHandler")
	}

	return &TradeHandler{
		offerService: offerService,
		logger:       log.With(slog.String("component", "trade_handler")),
	}
}

// ListPostTrades handles GET /posts/{id}/trades requests.
func (h *TradeHandler) ListPostTrades(w http.ResponseWriter, r *http.Request) {
	postID, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	trades, err := h.offerService.ListTradesByPost(r.Context(), postID)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, trades)
}

// ListUserTrades handles GET /users/{id}/trades requests.
func (h *TradeHandler) ListUserTrades(w http.ResponseWriter, r *http.Request) {
	userID, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	trades, err := h.offerService.ListTradesByUser(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, trades)
}
