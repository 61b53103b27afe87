/**
 * @description
 * This file sets up the HTTP router for the savings-service. It defines the API
 * endpoints, associates them with their corresponding handlers, and applies
 * middleware for logging, panic recovery, timeouts, and CORS so the marketing
 * frontend can call the API from the browser.
 *
 * @dependencies
 * - net/http: Standard Go library for HTTP functionality.
 * - github.com/go-chi/chi/v5: A lightweight and idiomatic router for Go.
 * - github.com/go-chi/cors: CORS middleware.
 */

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Routes creates and returns the router for the savings-service.
func Routes(h *Handlers, allowedOrigins string) http.Handler {
	r := chi.NewRouter()

	// Add standard middleware for logging, panic recovery, and timeouts.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   splitOrigins(allowedOrigins),
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	r.Route("/api", func(r chi.Router) {
		// Catalog reads
		r.Get("/products", h.ListProductsHandler)
		r.Get("/products/{slug}", h.GetProductHandler)
		r.Get("/products/{slug}/theme", h.GetProductThemeHandler)
		r.Get("/product-types", h.ListProductTypesHandler)

		// Administrative writes
		r.Post("/products", h.CreateProductHandler)
		r.Patch("/products/{slug}", h.UpdateProductHandler)
		r.Post("/product-types", h.CreateProductTypeHandler)

		// Site flows
		r.Post("/simulate", h.SimulateHandler)
		r.Post("/onboarding", h.OnboardingHandler)
		r.Post("/verify-recaptcha", h.VerifyRecaptchaHandler)
		r.Post("/revalidate", h.RevalidateHandler)
	})

	return r
}

func splitOrigins(origins string) []string {
	parts := strings.Split(origins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		out = []string{"*"}
	}
	return out
}
