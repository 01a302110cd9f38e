package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/inkpub/micropub/internal/config"
	"github.com/inkpub/micropub/pkg/logger"
	"github.com/inkpub/micropub/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

var startTime = time.Now()

func main() {
	// initialize logging (can be controlled with LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.LogLevel)
	logger.SetJSON(cfg.LogFormat == "json")
	logger.Infof("config loaded: store=%s mongo=%v redis=%v oidc=%v", cfg.Store.Backend, cfg.MongoDB.URI != "", cfg.Redis.Enabled(), cfg.Auth.OIDCIssuer != "")

	ctx := context.Background()
	a, err := newApp(ctx, cfg)
	if err != nil {
		logger.Fatalf("failed to initialize: %v", err)
	}
	defer a.close(ctx)

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r := a.router()
	gin.SetMode(gin.ReleaseMode)

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	logger.Infof("Starting micropub server on %s (me=%s)", addr, a.pub.Me)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("server failed: %v", err)
	}
}
