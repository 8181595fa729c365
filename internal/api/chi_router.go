// Pollarium - Community Polling and Question Ranking
// Copyright 2026 Pollarium Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pollarium/pollarium

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/pollarium/pollarium/docs"
	"github.com/pollarium/pollarium/internal/auth"
	"github.com/pollarium/pollarium/internal/middleware"
)

// chiMiddleware adapts http.HandlerFunc middleware to Chi's
// func(http.Handler) http.Handler so the auth and metrics middleware
// work with r.Use().
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// Router assembles the HTTP routing table.
type Router struct {
	handler       *Handler
	middleware    *auth.Middleware
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a router from the handler, the auth middleware, and
// the Chi middleware factory.
func NewRouter(handler *Handler, authMW *auth.Middleware, chiMW *ChiMiddleware) *Router {
	return &Router{
		handler:       handler,
		middleware:    authMW,
		chiMiddleware: chiMW,
	}
}

// SetupChi configures all HTTP routes using the Chi router.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order. CORS must be
	// global to handle OPTIONS preflight.
	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())

	// Health probes get a permissive limit so monitoring tools can poll
	// frequently.
	r.Route("/api/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// Authentication endpoints carry the strictest rate limit. The
	// login handler additionally consults the per-IP brute-force
	// limiter in the auth middleware.
	r.Route("/api/auth", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitAuth())
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Post("/register", router.handler.Register)
		r.Post("/login", router.handler.Login)
	})

	r.Route("/api/questions", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))

		// Public reads
		r.Get("/", router.handler.ListQuestions)
		r.Get("/top", router.handler.TopQuestions)
		r.Get("/{id}/reactions", router.handler.Reactions)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(chiMiddleware(router.middleware.Authenticate))
			r.Get("/user", router.handler.ListUserQuestions)
			r.With(router.chiMiddleware.RateLimitWrite()).Post("/", router.handler.CreateQuestion)
			r.With(router.chiMiddleware.RateLimitWrite()).Put("/{id}", router.handler.UpdateQuestion)
			r.With(router.chiMiddleware.RateLimitWrite()).Delete("/{id}", router.handler.DeleteQuestion)
			r.With(router.chiMiddleware.RateLimitWrite()).Post("/{id}/vote", router.handler.Vote)
			r.With(router.chiMiddleware.RateLimitWrite()).Post("/{id}/react", router.handler.React)
		})
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(chiMiddleware(middleware.PrometheusMetrics))
		r.Use(chiMiddleware(router.middleware.RequireAdmin))

		r.Get("/users", router.handler.AdminListUsers)
		r.Get("/questions", router.handler.AdminListQuestions)
		r.Post("/users/{id}/toggle-admin", router.handler.AdminToggleAdmin)
		r.Delete("/users/{id}", router.handler.AdminDeleteUser)
		r.Delete("/questions/{id}", router.handler.AdminDeleteQuestion)
	})

	// WebSocket upgrades bypass the metrics middleware because the
	// wrapped ResponseWriter does not support hijacking.
	r.With(router.chiMiddleware.RateLimitWebSocket()).Get("/api/ws", router.handler.WebSocket)

	// Observability
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/doc.json", docs.ServeSpec)
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
	))

	return r
}
