// Package main runs the YouTube platform service: an HTTP façade over
// yt-dlp and video search used by the music bots.
// @title YouTube Platform API
// @version 1.0
// @description Metadata, stream resolution, format listing and downloads for YouTube links.
//
// @BasePath /
//
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
// @description Static API key
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Service token issued by ytplatformctl, as "Bearer <token>"
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/denisAlshanov/ytplatform/internal/api/handlers"
	"github.com/denisAlshanov/ytplatform/internal/api/router"
	"github.com/denisAlshanov/ytplatform/internal/config"
	"github.com/denisAlshanov/ytplatform/internal/services/auth"
	"github.com/denisAlshanov/ytplatform/internal/services/flags"
	"github.com/denisAlshanov/ytplatform/internal/services/platform"
	"github.com/denisAlshanov/ytplatform/internal/services/search"
	"github.com/denisAlshanov/ytplatform/internal/services/worker"
	"github.com/denisAlshanov/ytplatform/internal/services/youtube"
	"github.com/denisAlshanov/ytplatform/internal/services/ytdlp"
	"github.com/denisAlshanov/ytplatform/internal/utils"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	utils.SetLevel(cfg.LogLevel)
	logger := utils.GetLogger()
	logger.Info("Starting YouTube platform service")

	tool := ytdlp.New(cfg.Platform.YtdlpPath)
	if v, err := tool.Version(context.Background()); err != nil {
		logger.Errorf("yt-dlp is not usable at %q: %v", tool.PathOrDefault(), err)
	} else {
		logger.Infof("Using yt-dlp %s", v)
	}

	flagStore, err := flags.NewStore(cfg)
	if err != nil {
		logger.Fatalf("Failed to initialize flag store: %v", err)
	}

	searcher := search.NewResolver(
		youtube.NewClient(cfg.Search.Timeout),
		search.NewInvidiousClient(&cfg.Search),
	)

	pool := worker.NewPool(cfg.Platform.Workers)
	adapter := platform.NewAdapter(tool, searcher, flagStore, pool, &cfg.Platform)

	var jwtService *auth.JWTService
	if cfg.API.JWTSecret != "" {
		jwtService = auth.NewJWTService(auth.JWTConfig{SecretKey: cfg.API.JWTSecret})
	}

	youtubeHandler := handlers.NewYouTubeHandler(adapter)
	healthHandler := handlers.NewHealthHandler(tool, flagStore, version)

	r := router.NewRouter(cfg, youtubeHandler, healthHandler, jwtService)

	go func() {
		logger.Infof("Starting server on %s:%s", cfg.Server.Host, cfg.Server.Port)
		if err := r.Start(); err != nil {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := r.Shutdown(ctx); err != nil {
		logger.Errorf("Failed to shut down HTTP server: %v", err)
	}

	if err := flagStore.Close(ctx); err != nil {
		logger.Errorf("Failed to close flag store: %v", err)
	}

	logger.Info("Server shutdown complete")
}
