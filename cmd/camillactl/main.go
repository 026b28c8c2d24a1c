// Package main is the entry point for the CamillaDSP remote controller.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/daverz/camilla-remote-control/internal/api"
	"github.com/daverz/camilla-remote-control/internal/camilla"
	"github.com/daverz/camilla-remote-control/internal/catalog"
	"github.com/daverz/camilla-remote-control/internal/config"
	"github.com/daverz/camilla-remote-control/internal/control"
	"github.com/daverz/camilla-remote-control/internal/display"
	"github.com/daverz/camilla-remote-control/pkg/logger"
	"github.com/daverz/camilla-remote-control/pkg/version"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Initialize(cfg.Debug, cfg.Environment != "production")
	logger.Info("camillactl %s (%s)", version.Version, version.Commit)
	logger.Info("engine at %s:%d, playback %s (%d channels @ %d Hz)",
		cfg.Engine.Host, cfg.Engine.Port,
		cfg.Audio.PlaybackDevice, cfg.Audio.PlaybackChannels, cfg.Audio.SampleRate)

	engine, err := camilla.Dial(cfg.Engine.Host, cfg.Engine.Port, cfg.Engine.Timeout)
	if err != nil {
		logger.Fatal("Failed to connect to engine: %v", err)
	}
	defer func() {
		if err := engine.Close(); err != nil {
			logger.Error("Failed to close engine connection: %v", err)
		}
	}()

	// Every selectable combination is validated up front; a broken one means
	// the controller must not start.
	cat, err := catalog.Build(cfg.Menu, cfg.Audio, engine)
	if err != nil {
		logger.Fatal("Catalog build failed: %v", err)
	}

	ctrl := control.New(engine, cat, display.Log{}, cfg.Control, cfg.Audio)
	if err := ctrl.Activate(); err != nil {
		logger.Fatal("Failed to activate initial configuration: %v", err)
	}
	defer ctrl.Stop()

	router := api.SetupRouter(ctrl, engine, cfg)
	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Control surface listening on %s", cfg.Server.Address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown: %v", err)
	}

	logger.Info("Controller exited")
}
