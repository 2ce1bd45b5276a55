package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/chibyk-cyber/pro-shop/internal/app"
	"github.com/chibyk-cyber/pro-shop/internal/config"
	h "github.com/chibyk-cyber/pro-shop/internal/http"
	"github.com/chibyk-cyber/pro-shop/internal/logger"
	"github.com/chibyk-cyber/pro-shop/internal/metrics"
	"github.com/chibyk-cyber/pro-shop/internal/orders/publisher"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New(cfg.Env)
	slog.SetDefault(log)
	log.Info("storefront starting", slog.String("env", cfg.Env))

	for _, cerr := range cfg.Validate() {
		log.Warn("configuration incomplete", slog.String("key", cerr.Key), slog.String("detail", cerr.Message))
	}

	startCtx, startCancel := context.WithTimeout(context.Background(), time.Minute)
	a, err := app.New(startCtx, cfg, log)
	startCancel()
	if err != nil {
		log.Error("failed to start", slog.String("error", err.Error()))
		os.Exit(1)
	}

	metrics.Register(prometheus.DefaultRegisterer)
	// Spans are not exported; the provider gives requests trace ids for the logs.
	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	var wg sync.WaitGroup
	workerCtx, workerCancel := context.WithCancel(context.Background())

	if len(cfg.Kafka.Brokers) > 0 {
		writer := publisher.NewKafkaWriter(cfg.Kafka.Topic, cfg.Kafka.Brokers...)
		poller := publisher.NewOutboxPoller(a.Orders, writer, log)
		wg.Add(1)
		go func() {
			defer wg.Done()
			poller.Run(workerCtx)
		}()
		log.Info("outbox poller started", slog.String("topic", cfg.Kafka.Topic))
	}

	metricsSrv := &http.Server{
		Addr:              cfg.Prometheus.Addr,
		Handler:           promhttp.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("starting Prometheus metrics server", slog.String("address", cfg.Prometheus.Addr))
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server error", slog.String("error", err.Error()))
		}
	}()

	timeout := cfg.HTTP.RequestTimeout
	views := h.Views(h.Handlers{
		Auth:     h.NewAuthHandler(a.Auth, a.Sessions, a.Carts, timeout, log),
		Products: h.NewProductHandler(a.Catalog, cfg.Paystack.Currency),
		Profile:  h.NewProfileHandler(a.Profiles, timeout),
		Cart:     h.NewCartHandler(a.Carts, a.Catalog, cfg.Paystack.Currency, timeout),
		Checkout: h.NewCheckoutHandler(a.Checkout, timeout),
		Orders:   h.NewOrdersHandler(a.Orders, timeout),
	})
	router := h.NewRouter(views, a.Sessions, h.RouterConfig{
		RequestTimeout:     timeout,
		MaxRequestBodySize: cfg.HTTP.MaxRequestBodySize,
		TracerProvider:     tp,
	}, log)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: timeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("storefront listening", slog.String("port", cfg.HTTP.Port), slog.Bool("checkout_enabled", a.Checkout.Enabled()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", slog.String("error", err.Error()))
	}
	if err := metricsSrv.Shutdown(ctx); err != nil {
		log.Error("metrics server forced to shutdown", slog.String("error", err.Error()))
	}

	workerCancel()
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		log.Info("outbox poller stopped cleanly")
	case <-ctx.Done():
		log.Warn("outbox poller didn't stop in time")
	}

	a.Close(ctx)
	if err := tp.Shutdown(ctx); err != nil {
		log.Warn("tracer provider shutdown failed", slog.String("error", err.Error()))
	}
	log.Info("server exited")
}
