package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ahinestrog/mybookstore-storefront/internal/auth"
	"github.com/ahinestrog/mybookstore-storefront/internal/catalog"
	"github.com/ahinestrog/mybookstore-storefront/internal/config"
	"github.com/ahinestrog/mybookstore-storefront/internal/events"
	"github.com/ahinestrog/mybookstore-storefront/internal/orders"
	"github.com/ahinestrog/mybookstore-storefront/internal/purchase"
	"github.com/ahinestrog/mybookstore-storefront/internal/rest"
	"github.com/ahinestrog/mybookstore-storefront/internal/web"
)

func main() {
	// Logger
	zerolog.TimeFieldFormat = time.RFC3339
	cfg := config.Load()
	if !cfg.Production() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && lvl != zerolog.NoLevel {
		zerolog.SetGlobalLevel(lvl)
	}

	log.Info().
		Str("addr", cfg.HTTPAddr).
		Str("api", cfg.APIBaseURL).
		Str("db", cfg.OrdersDBPath).
		Bool("rabbit", cfg.RabbitURL != "").
		Msg("starting storefront")

	repo, err := orders.NewSQLiteRepo(cfg.OrdersDBPath)
	must(err)
	defer repo.Close()

	rabbit, err := events.NewRabbit(cfg.RabbitURL, cfg.EventExchange)
	must(err)
	defer rabbit.Close()

	rc := rest.New(cfg.APIBaseURL, cfg.APITimeout)
	books := catalog.NewClient(rc)
	srv := web.NewServer(cfg, web.Deps{
		Auth:      auth.NewClient(rc),
		Catalog:   books,
		Prices:    catalog.NewCache(books, cfg.CacheSize, cfg.CacheTTL),
		Purchases: purchase.NewClient(rc),
		Orders:    repo,
		Rabbit:    rabbit,
		Log:       log.Logger,
	})

	httpSrv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      srv.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2*cfg.APITimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Msg("http listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	// Señales para apagado limpio
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Warn().Msg("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownGrace)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
	if err := srv.Close(ctx); err != nil {
		log.Warn().Err(err).Msg("cart events not flushed")
	}
	log.Info().Msg("storefront stopped")
}

func must(err error) {
	if err != nil {
		log.Fatal().Err(err).Msg("fatal")
	}
}
