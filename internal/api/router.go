package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"push-campaign-backend/config"
	"push-campaign-backend/internal/dispatch"
	"push-campaign-backend/internal/metrics"
	"push-campaign-backend/internal/mw"
	"push-campaign-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.Config, s store.Store, o *dispatch.Orchestrator) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, o, &cfg.Push)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.POST("/subscriptions", handler.RegisterSubscription)
		api.DELETE("/subscriptions", handler.Unsubscribe)
		api.GET("/vapid_public_key", caching, handler.GetVAPIDPublicKey)

		api.POST("/campaigns", handler.SendCampaign)
		api.GET("/campaigns/:id", handler.GetCampaign)

		api.POST("/templates", handler.CreateTemplate)
		api.GET("/templates", handler.ListTemplates)
	}

	// Click redirects sit outside /api: the URL is baked into delivered
	// notifications and must stay short and stable.
	r.GET("/c", handler.ClickRedirect)

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	return r
}
