// Cascade Scheduler — выполняет workflow файлы по расписаниям
// из конфигурации приложения (секция scheduler.entries).
//
// Метрики и health отдаются на SCHED_PORT (по умолчанию 8081).
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Cascade/internal/config"
	"github.com/shaiso/Cascade/internal/mq"
	"github.com/shaiso/Cascade/internal/scheduler"
	"github.com/shaiso/Cascade/internal/telemetry"
)

func main() {
	// Инициализируем structured logging
	logger := telemetry.SetupLogger()
	logger.Info("starting cascade-scheduler")

	cfg, err := config.Load(os.Getenv("CASCADE_CONFIG"))
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	metrics := telemetry.NewMetrics(prometheus.DefaultRegisterer)

	// RabbitMQ (опционально): события о запусках по расписанию.
	var publisher *mq.Publisher
	if cfg.MQ.URL == "" {
		logger.Info("mq.url is not set, run events disabled")
	} else {
		conn, err := mq.NewConnection(mq.Config{URL: cfg.MQ.URL, Logger: logger})
		if err != nil {
			logger.Warn("RabbitMQ not available, run events disabled", "error", err)
		} else {
			defer conn.Close()
			logger.Info("RabbitMQ connected")

			if err := mq.SetupTopology(ctx, conn); err != nil {
				logger.Warn("failed to setup topology, run events disabled", "error", err)
			} else {
				publisher = mq.NewPublisher(conn, logger)
			}
		}
	}

	sched, err := scheduler.New(scheduler.Config{
		Entries:   cfg.Scheduler.Entries,
		Base:      cfg.EngineConfig(""),
		Seed:      cfg.Context,
		Tick:      time.Duration(cfg.Scheduler.TickSec) * time.Second,
		Publisher: publisher,
		Logger:    logger,
		Metrics:   metrics,
	})
	if err != nil {
		logger.Error("failed to create scheduler", "error", err)
		os.Exit(1)
	}

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	port := ":8081"
	if v := os.Getenv("SCHED_PORT"); v != "" {
		port = ":" + v
	}

	go func() {
		logger.Info("listening", "addr", port)
		if err := http.ListenAndServe(port, mux); err != nil {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	// Блокируется до сигнала; начатые запуски дорабатывают.
	if err := sched.Run(ctx); err != nil {
		logger.Error("scheduler error", "error", err)
	}

	logger.Info("cascade-scheduler stopped")
}
