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

// PostHandler handles post and category HTTP requests.
type PostHandler struct {
	postService service.PostService
	logger      *slog.Logger
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(postService service.PostService, log *slog.Logger) *PostHandler {
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for PostHandler")
	}

	return &PostHandler{
		postService: postService,
		logger:      log.With(slog.String("component", "post_handler")),
	}
}

// CreatePost handles POST /posts requests.
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	identity, ok := getIdentityFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreatePostRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	post, err := h.postService.CreatePost(
		r.Context(),
		identity.ID,
		req.Title,
		req.Description,
		req.CategoryID,
		itemsToDomain(req.Items),
	)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, post)
}

// ListPosts handles GET /posts requests. Filters: author_id, status, q.
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	authorID, err := queryID(r, "author_id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	filter := store.PostFilter{
		AuthorID: authorID,
		Query:    r.URL.Query().Get("q"),
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := domain.PostStatus(raw)
		filter.Status = &status
	}

	posts, err := h.postService.ListPosts(r.Context(), filter)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, posts)
}

// GetPost handles GET /posts/{id} requests: the aggregate detail view
// with the offer summary and linked offers.
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	postID, err := getPathID(r, "id")
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	detail, err := h.postService.GetPostDetail(r.Context(), postID)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, detail)
}

// UpdatePost handles PUT /posts/{id} requests.
func (h *PostHandler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

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

	var req UpdatePostRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	update := service.PostUpdate{
		Title:       req.Title,
		Description: req.Description,
		SetCategory: req.CategoryID.Set,
		CategoryID:  req.CategoryID.Value,
	}
	if req.Status != nil {
		status := domain.PostStatus(*req.Status)
		update.Status = &status
	}

	post, err := h.postService.UpdatePost(r.Context(), postID, identity.ID, update)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	log.Debug("post updated via API", slog.Int64("post_id", postID))
	shared.RespondWithJSON(w, r, http.StatusOK, post)
}

// DeletePost handles DELETE /posts/{id} requests.
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
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

	if err := h.postService.DeletePost(r.Context(), postID, identity.ID); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListCategories handles GET /categories requests.
func (h *PostHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.postService.ListCategories(r.Context())
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, categories)
}
