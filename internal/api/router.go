package api

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"massage-board-backend/config"
	"massage-board-backend/internal/monitoring"
	"massage-board-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, cfg config.ServerConfig, responses mw.ResponseCache) *gin.Engine {
	r := gin.Default()
	monitoring.Init()

	r.Use(
		mw.RequestID(),
		mw.CORS(cfg.AllowedOrigins),
		mw.Sentry(),
		mw.ErrorReporter(),
		mw.Metrics(),
	)

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(monitoring.Handler()))

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)
	caching := mw.Cache(responses, cfg.CacheTTL)

	// API group
	api := r.Group("/api")
	api.Use(rateLimiter, mw.Invalidate(responses))
	{
		api.GET("/appointments", caching, h.GetAppointments)
		api.POST("/appointments", h.CreateAppointment)
		api.PUT("/appointments", h.UpdateAppointment)
		api.DELETE("/appointments", h.DeleteAppointment)

		// Not cached: the grid carries the current time.
		api.GET("/board", h.GetBoard)

		api.GET("/workers", caching, h.GetWorkers)
		api.PUT("/workers", h.PutWorkers)
		api.POST("/workers/reorder", h.ReorderWorker)

		api.GET("/subscriptions", h.GetSubscription)
		api.PUT("/subscriptions", h.PutSubscription)
		api.DELETE("/subscriptions", h.DeleteSubscription)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
	}

	return r
}
