package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/openswap/barter-api/internal/api"
	apiMiddleware "github.com/openswap/barter-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all
// routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(app.userService, app.jwtService, app.logger)
	userHandler := api.NewUserHandler(app.userService, app.logger)
	postHandler := api.NewPostHandler(app.postService, app.logger)
	offerHandler := api.NewOfferHandler(app.offerService, app.logger)
	tradeHandler := api.NewTradeHandler(app.offerService, app.logger)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)

		// Read-only endpoints, open to anonymous callers. A bearer token
		// is still honored when present so responses can reflect the
		// caller's identity.
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.MaybeAuthenticate)
			r.Get("/categories", postHandler.ListCategories)
			r.Get("/posts", postHandler.ListPosts)
			r.Get("/posts/{id}", postHandler.GetPost)
			r.Get("/posts/{id}/trades", tradeHandler.ListPostTrades)
			r.Get("/offers", offerHandler.ListOffers)
			r.Get("/offers/{id}", offerHandler.GetOffer)
			r.Get("/users/{id}", userHandler.GetUser)
			r.Get("/users/{id}/trades", tradeHandler.ListUserTrades)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Get("/users/me", userHandler.GetCurrentUser)

			r.Post("/posts", postHandler.CreatePost)
			r.Put("/posts/{id}", postHandler.UpdatePost)
			r.Delete("/posts/{id}", postHandler.DeletePost)

			r.Post("/posts/{id}/offers", offerHandler.CreateOffer)
			r.Put("/offers/{id}", offerHandler.UpdateOffer)
			r.Post("/offers/{id}/accept", offerHandler.AcceptOffer)
			r.Post("/offers/{id}/reject", offerHandler.RejectOffer)
		})
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
