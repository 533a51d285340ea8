package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/UmerKhan7479/SemesterSurvival/internal/bootstrap"
	"github.com/UmerKhan7479/SemesterSurvival/internal/config"
	"github.com/UmerKhan7479/SemesterSurvival/internal/core/domain"
	"github.com/UmerKhan7479/SemesterSurvival/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, "worker")
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", workerMetrics.Handler())
		log.Printf("worker metrics listening on :%s", cfg.WorkerMetricsPort)
		if err := http.ListenAndServe(":"+cfg.WorkerMetricsPort, mux); err != nil && err != http.ErrServerClosed {
			log.Printf("worker metrics server error: %v", err)
		}
	}()

	log.Printf("worker subscribed to %s", cfg.NATSSubject)
	err = app.Queue.SubscribeHistoryEntries(ctx, func(handlerCtx context.Context, entry *domain.HistoryEntry) error {
		persistCtx, cancel := context.WithTimeout(handlerCtx, 30*time.Second)
		defer cancel()

		workerMetrics.StartPersist()
		workerMetrics.ObserveQueueLag("worker", time.Since(entry.CreatedAt))
		start := time.Now()
		err := app.Persister.Persist(persistCtx, entry)
		workerMetrics.FinishPersist("worker", time.Since(start), err)
		return err
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}
