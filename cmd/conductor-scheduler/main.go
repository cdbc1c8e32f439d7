package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaiso/Conductor/internal/mq"
	"github.com/shaiso/Conductor/internal/orchestrator"
	"github.com/shaiso/Conductor/internal/repo"
	"github.com/shaiso/Conductor/internal/scheduler"
	"github.com/shaiso/Conductor/internal/skills"
	"github.com/shaiso/Conductor/internal/telemetry"
)

func main() {
	logger := telemetry.SetupLogger()
	logger.Info("starting conductor-scheduler")

	// graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// DB pool
	pool, err := repo.NewPool(ctx)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("connected to database")

	recordRepo := repo.NewRecordRepo(pool)
	definitionRepo := repo.NewDefinitionRepo(pool)

	// RabbitMQ опционален: без него события просто не публикуются
	var publisher orchestrator.EventPublisher
	if amqpURL := os.Getenv("RABBITMQ_URL"); amqpURL != "" {
		conn, err := mq.NewConnection(amqpURL, logger)
		if err != nil {
			logger.Warn("failed to connect to RabbitMQ, events disabled", "error", err)
		} else {
			defer conn.Close()
			if err := mq.SetupTopology(conn); err != nil {
				logger.Error("failed to setup RabbitMQ topology", "error", err)
				os.Exit(1)
			}
			publisher = mq.NewPublisher(conn, logger)
			logger.Info("connected to RabbitMQ")
		}
	}

	skillRunnerURL := os.Getenv("SKILL_RUNNER_URL")
	if skillRunnerURL == "" {
		skillRunnerURL = "http://localhost:8090"
	}

	orch := orchestrator.New(orchestrator.Config{
		Backend:   skills.NewHTTPBackend(skillRunnerURL),
		Records:   recordRepo,
		Publisher: publisher,
		Logger:    logger,
	})

	sched := scheduler.New(scheduler.Config{
		Definitions: definitionRepo,
		Executor:    orch,
		Logger:      logger,
	})

	// Цикл планировщика
	go func() {
		if err := sched.Start(ctx); err != nil && ctx.Err() == nil {
			logger.Error("scheduler stopped", "error", err)
			cancel()
		}
	}()

	// HTTP mux: /healthz + /metrics
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.Handler())

	addr := ":8081"
	if v := os.Getenv("SCHED_PORT"); v != "" {
		addr = ":" + v
	}

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		logger.Info("listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	server.Close()
	logger.Info("stopped")
}
