package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/pbusenius/nllb-api/internal/config"
)

// NewRouter assembles the full HTTP surface of spec §6, mounted under
// cfg.ServerRootPath. Grounded on examples/chi-server/main.go's router
// assembly (chi.NewRouter + middleware.Logger/Recoverer/Timeout +
// cors.Handler), generalized from that example's single route to the full
// ten-route table and parameterized by cfg's ACCESS_CONTROL_* fields
// instead of the example's hardcoded cors.Options. The decoder-backed routes
// additionally sit behind a shared token-bucket admission limiter (adapted
// from examples/middleware/rate-limiting), keeping a burst of callers from
// flooding the Dispatch Layer's single decoder lease; /health and /metrics
// stay unlimited.
func NewRouter(cfg *config.Config, state *State) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Duration(cfg.RequestTimeoutSeconds) * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.AccessControlAllowOrigin},
		AllowedMethods:   cfg.AccessControlAllowMethods,
		AllowedHeaders:   cfg.AccessControlAllowHeaders,
		ExposedHeaders:   cfg.AccessControlExposeHeaders,
		AllowCredentials: cfg.AccessControlAllowCredentials,
		MaxAge:           cfg.AccessControlMaxAge,
	}))

	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimitRequestsPerSecond), cfg.RateLimitBurst)

	r.Route(cfg.ServerRootPath, func(r chi.Router) {
		r.Get("/health", state.HandleHealth)
		r.Get("/metrics", state.HandleMetrics)

		r.Group(func(r chi.Router) {
			r.Use(rateLimitMiddleware(limiter))

			r.Get("/language", state.HandleLanguage)

			r.Get("/translator", state.HandleTranslateUnaryGET)
			r.Post("/translator", state.HandleTranslateUnaryPOST)
			r.Put("/translator", state.HandleLoad)
			r.Delete("/translator", state.HandleUnload)
			r.Post("/translator/batch", state.HandleTranslateBatch)
			r.Get("/translator/stream", state.HandleTranslateStream)
			r.Get("/translator/tokens", state.HandleTokens)
		})
	})

	return r
}
