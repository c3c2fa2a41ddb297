package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"radmon.influxDB/internal/config"
	"radmon.influxDB/internal/controller"
	"radmon.influxDB/internal/metrics"
	"radmon.influxDB/internal/middleware"
	"radmon.influxDB/internal/repository"
	"radmon.influxDB/internal/routes"
	"radmon.influxDB/internal/service"
)

const shutdownGrace = 5 * time.Second

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags)

	// Load configuration
	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		logger.Fatalf("Error loading configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, &cfg, logger); err != nil {
		logger.Fatalf("Error starting server: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	sink, err := repository.NewSink(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer sink.Close()

	m := metrics.New()
	svc := service.NewReadingService(cfg, sink, logger, m)
	ctrl := controller.NewReadingController(svc)

	accessLog, closeAccessLog, err := openAccessLog(cfg.AccessLog)
	if err != nil {
		return err
	}
	defer closeAccessLog()

	handler := middleware.Wrap(routes.NewRouter(ctrl), logger, accessLog)
	srv := newServer(cfg, handler)

	if cfg.MetricsAddr != "" {
		metricsSrv := &http.Server{Addr: cfg.MetricsAddr, Handler: m.Handler()}
		go func() {
			logger.Printf("Metrics on http://%s/metrics", cfg.MetricsAddr)
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Printf("Metrics listener stopped: %v", err)
			}
		}()
		defer metricsSrv.Close()
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Printf("Listening on http://0.0.0.0%s", cfg.ListenAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	logger.Println("Shutting down")
	return srv.Shutdown(shutdownCtx)
}

func newServer(cfg *config.Config, handler http.Handler) *http.Server {
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv.SetKeepAlivesEnabled(cfg.KeepAlive)
	return srv
}

func openAccessLog(target string) (io.Writer, func(), error) {
	switch target {
	case "":
		return nil, func() {}, nil
	case "stdout":
		return os.Stdout, func() {}, nil
	}
	f, err := os.OpenFile(target, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening access log %s: %w", target, err)
	}
	return f, func() { f.Close() }, nil
}
