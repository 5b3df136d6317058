/**
 * @description
 * This file sets up the HTTP router for the transfer-service. It defines the
 * API endpoints, associates them with their corresponding handlers, and
 * applies the shared middleware: logging, panic recovery, timeouts, the
 * internal API key check, and rate limiting on the workflow action routes.
 *
 * @dependencies
 * - net/http: Standard Go library for HTTP functionality.
 * - github.com/go-chi/chi/v5: A lightweight and idiomatic router for Go.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/transfersystem/transfer-service/internal/app"
	"github.com/transfersystem/transfer-service/internal/domain"
)

// TransferRoutes creates and returns a new router for the transfer service.
func TransferRoutes(h *TransferHandlers, internalAPIKey string, limiter *app.RedisActionRateLimiter, actionRateLimitPerMinute int) http.Handler {
	r := chi.NewRouter()

	// Add standard middleware for logging, panic recovery, and timeouts.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	// Group routes that require the internal API key.
	r.Group(func(r chi.Router) {
		r.Use(InternalAuthMiddleware(internalAPIKey))

		r.Route("/api/v1/transfers", func(r chi.Router) {
			r.Post("/", h.InitiateTransferHandler)
			r.Get("/", h.ListTransfersHandler)
			r.Get("/{transferID}", h.GetTransferHandler)

			// Workflow action endpoints share the action rate limit.
			r.Group(func(r chi.Router) {
				r.Use(RateLimitMiddleware(limiter, "workflow_action", actionRateLimitPerMinute))
				r.Patch("/{transferID}/submit", h.ApplyActionHandler(domain.ActionSubmit))
				r.Patch("/{transferID}/negotiate", h.ApplyActionHandler(domain.ActionNegotiate))
				r.Patch("/{transferID}/approve", h.ApplyActionHandler(domain.ActionApprove))
				r.Patch("/{transferID}/complete", h.ApplyActionHandler(domain.ActionComplete))
				r.Patch("/{transferID}/cancel", h.ApplyActionHandler(domain.ActionCancel))
			})
		})

		r.Route("/api/v1/players", func(r chi.Router) {
			r.Post("/", h.CreatePlayerHandler)
			r.Get("/", h.ListPlayersHandler)
			r.Get("/{playerID}", h.GetPlayerHandler)
			r.Put("/{playerID}", h.UpdatePlayerHandler)
			r.Delete("/{playerID}", h.DeletePlayerHandler)
		})

		r.Route("/api/v1/clubs", func(r chi.Router) {
			r.Post("/", h.CreateClubHandler)
			r.Get("/", h.ListClubsHandler)
			r.Get("/{clubID}", h.GetClubHandler)
			r.Put("/{clubID}", h.RenameClubHandler)
			r.Delete("/{clubID}", h.DeleteClubHandler)
		})
	})

	return r
}
