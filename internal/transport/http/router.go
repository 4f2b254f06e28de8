package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rdzcn/weight-tracker/internal/application/auth"
	"github.com/rdzcn/weight-tracker/internal/application/weight"
	"github.com/rdzcn/weight-tracker/internal/config"
	"github.com/rdzcn/weight-tracker/internal/transport/http/handler"
	appmiddleware "github.com/rdzcn/weight-tracker/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendOrigin},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// 5 requests/second, burst of 10 — applied to the public auth endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	authSvc := auth.NewService(auth.ServiceDeps{
		Users:          deps.UserRepo,
		Links:          deps.LinkRepo,
		Mailer:         deps.Mailer,
		Signer:         deps.JWTProvider,
		LinkTTL:        time.Duration(cfg.MagicLinkTTLMinutes) * time.Minute,
		FrontendOrigin: cfg.FrontendOrigin,
	})
	weightSvc := weight.NewService(weight.ServiceDeps{
		Entries:   deps.WeightRepo,
		Extractor: deps.Extractor,
		Photos:    deps.PhotoStore,
	})

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc)
	weightH := handler.NewWeightHandler(weightSvc)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.With(sensitiveRL.Limit).Post("/auth/magic-link", authH.RequestLink)
		r.With(sensitiveRL.Limit).Get("/auth/redeem", authH.Redeem)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(appmiddleware.Auth(authSvc))

			r.Get("/auth/me", authH.Me)
			r.Post("/weight", weightH.Submit)
			r.Get("/weights", weightH.List)
			r.Get("/weight/{id}/image", weightH.Image)
			r.Delete("/weight/{id}", weightH.Delete)
		})
	})

	return r
}
