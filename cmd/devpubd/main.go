package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/devpubio/devpub/core/config"
	"github.com/devpubio/devpub/core/logger"
	"github.com/devpubio/devpub/core/registry"
	"github.com/devpubio/devpub/core/server"
	"github.com/devpubio/devpub/httpserver"
	"github.com/devpubio/devpub/middleware"
	"golang.org/x/sync/errgroup"
)

type appConfig struct {
	Log       logger.Config
	Server    server.Config
	MaxTopics int `env:"MAX_TOPICS" envDefault:"256"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg appConfig
	config.MustLoad(&cfg)

	log := logger.New(cfg.Log)

	reg := registry.New(
		registry.WithMaxTopics(cfg.MaxTopics),
		registry.WithLogger(log.With(logger.Component("registry"))),
	)

	handler := middleware.Chain(
		middleware.RequestID(),
		middleware.LoggingWithConfig(middleware.LoggingConfig{
			Logger: log.With(logger.Component("http.request")),
			Skip: func(r *http.Request) bool {
				return strings.HasPrefix(r.URL.Path, "/health/")
			},
		}),
	)(httpserver.New(reg,
		httpserver.WithLogger(log.With(logger.Component("httpserver"))),
	))

	srv, err := server.NewFromConfig(cfg.Server,
		server.WithLogger(log.With(logger.Component("server"))),
	)
	if err != nil {
		log.Error("invalid server configuration", logger.Error(err))
		os.Exit(1)
	}

	log.Info("devpubd starting",
		logger.Key("addr", cfg.Server.Addr),
		logger.Count("max_topics", cfg.MaxTopics),
	)

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(srv.Run(ctx, handler))

	if err := eg.Wait(); err != nil {
		log.Error("server terminated", logger.Error(err))
		os.Exit(1)
	}

	log.Info("devpubd stopped")
}
