package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/do"
	"go.uber.org/zap"

	"github.com/framekeep/framekeep/internal/bootstrap"
	"github.com/framekeep/framekeep/internal/config"
	"github.com/framekeep/framekeep/internal/modules/handler"
	"github.com/framekeep/framekeep/internal/modules/service"
	"github.com/framekeep/framekeep/internal/router"
	"github.com/framekeep/framekeep/internal/telemetry"
	"github.com/framekeep/framekeep/internal/worker"
	"gorm.io/gorm"
)

func main() {
	// build dependency injection container
	inj := bootstrap.BuildContainer()

	cfg := do.MustInvoke[*config.Config](inj)
	log := do.MustInvoke[*zap.Logger](inj)
	db := do.MustInvoke[*gorm.DB](inj)

	tp, err := telemetry.SetupTracing(cfg)
	if err != nil {
		log.Sugar().Warnw("failed to setup tracing, continuing without tracing", "err", err)
	} else if tp != nil {
		log.Sugar().Infow("OpenTelemetry tracing enabled", "endpoint", cfg.Telemetry.OtlpEndpoint)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := telemetry.Shutdown(ctx); err != nil {
				log.Sugar().Errorw("failed to shutdown tracer", "err", err)
			}
		}()
	}

	// init gin
	gin.SetMode(cfg.App.Env)

	engine := router.NewRouter(router.RouterDeps{
		Config:          cfg,
		DB:              db,
		Log:             log,
		AssetHandler:    do.MustInvoke[*handler.AssetHandler](inj),
		StackHandler:    do.MustInvoke[*handler.StackHandler](inj),
		TrashHandler:    do.MustInvoke[*handler.TrashHandler](inj),
		DownloadHandler: do.MustInvoke[*handler.DownloadHandler](inj),
	})

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	// job worker
	w := do.MustInvoke[*worker.Worker](inj)
	go func() {
		if err := w.Run(rootCtx); err != nil && rootCtx.Err() == nil {
			log.Sugar().Fatalw("worker stopped", "err", err)
		}
	}()

	// nightly trash expiry sweep
	assets := do.MustInvoke[service.AssetService](inj)
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-rootCtx.Done():
				return
			case <-ticker.C:
				if _, err := assets.HandleTrashSweep(rootCtx); err != nil {
					log.Sugar().Errorw("trash sweep failed", "err", err)
				}
			}
		}
	}()

	addr := fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port)
	srv := &http.Server{Addr: addr, Handler: engine}

	go func() {
		log.Sugar().Infow("starting http server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Sugar().Fatalw("listen error", "err", err)
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Sugar().Errorw("server shutdown", "err", err)
	}
	log.Sugar().Info("server exited")
}
