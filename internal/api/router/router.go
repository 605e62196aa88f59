package router

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/denisAlshanov/ytplatform/internal/api/handlers"
	"github.com/denisAlshanov/ytplatform/internal/api/middleware"
	"github.com/denisAlshanov/ytplatform/internal/config"
	"github.com/denisAlshanov/ytplatform/internal/services/auth"
)

type Router struct {
	engine  *gin.Engine
	config  *config.Config
	server  *http.Server
	limiter *middleware.RateLimiter
}

func NewRouter(cfg *config.Config, youtubeHandler *handlers.YouTubeHandler, healthHandler *handlers.HealthHandler, jwtService *auth.JWTService) *Router {
	if cfg.Server.Host == "0.0.0.0" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CorrelationIDMiddleware())

	// Health endpoints (no auth required)
	health := engine.Group("/")
	{
		health.GET("/health", healthHandler.Health)
		health.GET("/ready", healthHandler.Readiness)
		health.GET("/live", healthHandler.Liveness)
	}

	limiter := middleware.NewRateLimiter(cfg.API.RateLimitRequests, cfg.API.RateLimitWindow)

	api := engine.Group("/api/v1")
	api.Use(middleware.HybridAuthMiddleware(&cfg.API, jwtService))
	api.Use(middleware.RateLimitWith(limiter))
	{
		yt := api.Group("/youtube")
		{
			yt.POST("/exists", youtubeHandler.Exists)       // /api/v1/youtube/exists
			yt.POST("/url", youtubeHandler.URL)             // /api/v1/youtube/url
			yt.POST("/details", youtubeHandler.Details)     // /api/v1/youtube/details
			yt.POST("/title", youtubeHandler.Title)         // /api/v1/youtube/title
			yt.POST("/duration", youtubeHandler.Duration)   // /api/v1/youtube/duration
			yt.POST("/thumbnail", youtubeHandler.Thumbnail) // /api/v1/youtube/thumbnail
			yt.POST("/video", youtubeHandler.Video)         // /api/v1/youtube/video
			yt.POST("/playlist", youtubeHandler.Playlist)   // /api/v1/youtube/playlist
			yt.POST("/track", youtubeHandler.Track)         // /api/v1/youtube/track
			yt.POST("/formats", youtubeHandler.Formats)     // /api/v1/youtube/formats
			yt.POST("/slider", youtubeHandler.Slider)       // /api/v1/youtube/slider
			yt.POST("/dispatch", youtubeHandler.Dispatch)   // /api/v1/youtube/dispatch
			yt.POST("/download", youtubeHandler.Download)   // /api/v1/youtube/download
		}
	}

	return &Router{
		engine: engine,
		config: cfg,
		server: &http.Server{
			Addr:              cfg.Server.Host + ":" + cfg.Server.Port,
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
		limiter: limiter,
	}
}

// Start serves until Shutdown is called.
func (r *Router) Start() error {
	if err := r.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (r *Router) Shutdown(ctx context.Context) error {
	r.limiter.Stop()
	return r.server.Shutdown(ctx)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
