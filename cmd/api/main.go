// Command api runs the pereval submission HTTP service.
//
// Startup order: configuration, logger (+ optional New Relic),
// database pool, migrations, then the wired layers (repositories,
// services, handlers, middlewares, router). Shutdown is signal-driven
// and graceful.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fstr-project/pereval-api/internal/config"
	"github.com/fstr-project/pereval-api/internal/database"
	"github.com/fstr-project/pereval-api/internal/handler"
	"github.com/fstr-project/pereval-api/internal/logger"
	"github.com/fstr-project/pereval-api/internal/middleware"
	"github.com/fstr-project/pereval-api/internal/repository"
	"github.com/fstr-project/pereval-api/internal/router"
	"github.com/fstr-project/pereval-api/internal/server"
	"github.com/fstr-project/pereval-api/internal/service"

	_ "github.com/joho/godotenv/autoload"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Logger is not up yet.
		panic(err)
	}

	log, loggerService, err := logger.New(cfg)
	if err != nil {
		panic(err)
	}

	srv, err := server.New(cfg, log, loggerService)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize server")
	}

	if err := database.Migrate(context.Background(), log, cfg); err != nil {
		log.Fatal().Err(err).Msg("failed to run database migrations")
	}

	repos := repository.NewRepositories(srv)

	services, err := service.NewServices(srv, repos)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize services")
	}

	handlers := handler.NewHandlers(srv, services)
	middlewares := middleware.NewMiddlewares(srv)

	e := router.NewRouter(middlewares, handlers)
	srv.SetupHTTPServer(e)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	if loggerService != nil {
		loggerService.Shutdown(shutdownTimeout)
	}

	log.Info().Msg("server stopped")
}
