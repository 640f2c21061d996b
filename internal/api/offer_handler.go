package api

import (
	"log/slog"
	"net/http"

	"github.com/openswap/barter-api/internal/api/shared"
	"github.com/openswap/barter-api/internal/domain"
	"github.com/openswap/barter-api/internal/platform/logger"
	"github.com/openswap/barter-api/internal/service"
	"github.com/openswap/barter-api/internal/store"
)

// OfferHandler handles offer lifecycle HTTP requests.
type OfferHandler struct {
	offerService service.OfferService
	logger       *slog.Logger
}

// NewOfferHandler creates a new OfferHandler.
func NewOfferHandler(offerService service.OfferService, log *slog.Logger) *OfferHandler {
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for OfferHandler")
	}

	return &OfferHandler{
		offerService: offerService,
		logger:       log.With(slog.String("component", "offer_handler")),
	}
}

// CreateOffer handles POST /posts/{id}/offers requests.
func (h *OfferHandler) CreateOffer(w http.ResponseWriter, r *http.Request) {
	identity, ok := getIdentityFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	postID, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	var req CreateOfferRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	offer, err := h.offerService.CreateOffer(
		r.Context(),
		postID,
		identity.ID,
		req.Message,
		domain.Consideration{
			Items:       itemsToDomain(req.Items),
			ChildPostID: req.ChildPostID,
		},
	)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, offer)
}

// ListOffers handles GET /offers requests.
// Filters: post_id, author_id, child_post_id, status, limit, offset.
func (h *OfferHandler) ListOffers(w http.ResponseWriter, r *http.Request) {
	filter, err := offerFilterFromQuery(r)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	offers, total, err := h.offerService.ListOffers(r.Context(), filter)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ListResponse{
		Data:  offers,
		Total: total,
	})
}

// GetOffer handles GET /offers/{id} requests.
func (h *OfferHandler) GetOffer(w http.ResponseWriter, r *http.Request) {
	offerID, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	offer, err := h.offerService.GetOffer(r.Context(), offerID)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, offer)
}

// UpdateOffer handles PUT /offers/{id} requests.
func (h *OfferHandler) UpdateOffer(w http.ResponseWriter, r *http.Request) {
	identity, ok := getIdentityFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	offerID, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	var req UpdateOfferRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	update := service.OfferUpdate{
		Message:      req.Message,
		SetChildPost: req.ChildPostID.Set,
		ChildPostID:  req.ChildPostID.Value,
	}
	if req.Items != nil {
		update.SetItems = true
		update.Items = itemsToDomain(*req.Items)
	}

	offer, err := h.offerService.UpdateOffer(r.Context(), offerID, identity.ID, update)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, offer)
}

// AcceptOffer handles POST /offers/{id}/accept requests. On success the
// response carries the freshly recorded trade.
func (h *OfferHandler) AcceptOffer(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	identity, ok := getIdentityFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	offerID, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	trade, err := h.offerService.AcceptOffer(r.Context(), offerID, identity.ID)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	log.Debug("offer accepted via API",
		slog.Int64("offer_id", offerID),
		slog.Int64("trade_id", trade.ID))
	shared.RespondWithJSON(w, r, http.StatusOK, trade)
}

// RejectOffer handles POST /offers/{id}/reject requests.
func (h *OfferHandler) RejectOffer(w http.ResponseWriter, r *http.Request) {
	identity, ok := getIdentityFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	offerID, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	if err := h.offerService.RejectOffer(r.Context(), offerID, identity.ID); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// offerFilterFromQuery builds an OfferFilter from list query parameters.
// Unspecified filters stay nil and are omitted from the query, never
// defaulted; pagination is clamped by the store layer.
func offerFilterFromQuery(r *http.Request) (store.OfferFilter, error) {
	var filter store.OfferFilter
	var err error

	if filter.PostID, err = queryID(r, "post_id"); err != nil {
		return filter, err
	}
	if filter.AuthorID, err = queryID(r, "author_id"); err != nil {
		return filter, err
	}
	if filter.ChildPostID, err = queryID(r, "child_post_id"); err != nil {
		return filter, err
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := domain.OfferStatus(raw)
		filter.Status = &status
	}
	if filter.Limit, err = queryInt(r, "limit", 0); err != nil {
		return filter, err
	}
	if filter.Offset, err = queryInt(r, "offset", 0); err != nil {
		return filter, err
	}

	return filter, nil
}
