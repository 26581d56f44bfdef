// Cascade API — сервис истории запусков.
//
// Совмещает две роли:
//   - Read-only HTTP API над архивом (runs, steps, stats)
//   - Archiver: потребитель run.completed, сохраняющий отчёты в Postgres
//
// Без RabbitMQ сервис деградирует до чистого API с предупреждением:
// чтение архива работает, новые отчёты не поступают.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Cascade/internal/api"
	"github.com/shaiso/Cascade/internal/config"
	"github.com/shaiso/Cascade/internal/history"
	"github.com/shaiso/Cascade/internal/mq"
	"github.com/shaiso/Cascade/internal/telemetry"
)

var startTime = time.Now()

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting cascade-api")

	cfg, err := config.Load(os.Getenv("CASCADE_CONFIG"))
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Подключаемся к базе данных
	pool, err := history.NewPool(ctx, cfg.DB.URL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("database connected")

	runRepo := history.NewRunRepo(pool)

	// RabbitMQ: без брокера работает только чтение архива.
	var archiver *history.Archiver
	if cfg.MQ.URL == "" {
		logger.Info("mq.url is not set, archiving disabled")
	} else {
		conn, err := mq.NewConnection(mq.Config{URL: cfg.MQ.URL, Logger: logger})
		if err != nil {
			logger.Warn("RabbitMQ not available, archiving disabled", "error", err)
		} else {
			defer conn.Close()
			logger.Info("RabbitMQ connected")

			if err := mq.SetupTopology(ctx, conn); err != nil {
				logger.Warn("failed to setup topology, archiving disabled", "error", err)
			} else {
				archiver = history.NewArchiver(history.ArchiverConfig{
					Conn:   conn,
					Repo:   runRepo,
					Logger: logger,
				})
			}
		}
	}

	if archiver != nil {
		go func() {
			if err := archiver.Run(ctx); err != nil {
				logger.Error("archiver stopped", "error", err)
			}
		}()
	}

	// Создаём API handler
	handler := api.NewHandler(api.Config{
		RunRepo: runRepo,
		Logger:  logger,
	})

	mux := http.NewServeMux()

	// Health и metrics
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "ok %s", time.Since(startTime))
	})
	mux.Handle("/metrics", promhttp.Handler())

	// Регистрируем API маршруты
	handler.RegisterRoutes(mux)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.API.Port),
		Handler: mux,
	}

	go func() {
		logger.Info("listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			cancel()
		}
	}()

	// Ожидаем сигнал завершения
	<-ctx.Done()
	logger.Info("shutting down")

	if archiver != nil {
		archiver.Stop()
	}

	// Graceful shutdown с таймаутом 10 секунд
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}

	logger.Info("stopped")
}
