package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/UmerKhan7479/SemesterSurvival/internal/adapters/http"
	"github.com/UmerKhan7479/SemesterSurvival/internal/auth"
	"github.com/UmerKhan7479/SemesterSurvival/internal/bootstrap"
	"github.com/UmerKhan7479/SemesterSurvival/internal/config"
)

func main() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, "api")
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	router := httpadapter.NewRouter(
		app.Uploader,
		app.Reports,
		app.CheatSheets,
		app.History,
		app.Notes,
		app.AuthHandler,
		auth.RequireSession(app.Sessions),
		app.APIMetrics,
		"api",
		app.Logger,
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", app.APIMetrics.Handler())
	mux.Handle("/", router.Handler())

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("api listening on :%s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("api shutdown error: %v", err)
	}
}
