package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dukerupert/clubsite/internal/app"
	"github.com/dukerupert/clubsite/internal/config"
	"github.com/dukerupert/clubsite/internal/icsfeed"
	"github.com/dukerupert/clubsite/internal/logging"
	"github.com/dukerupert/clubsite/internal/scheduler"
	"github.com/dukerupert/clubsite/internal/server"
	"github.com/dukerupert/clubsite/internal/syncer"
	ws "github.com/dukerupert/clubsite/internal/websocket"
)

func main() {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("CLUB_CONFIG"))
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	hub := ws.NewHub(logger.With("component", "ws"))
	a, err := app.New(cfg, hub, logger)
	if err != nil {
		log.Fatalf("failed to initialize: %v", err)
	}
	defer a.Close()

	srv := server.New(server.Config{
		CronSecret:     cfg.Sync.CronSecret,
		Feed:           icsfeed.Options{Name: cfg.Feed.Name, Domain: cfg.Feed.Domain},
		OriginPatterns: cfg.OriginPatterns,
	}, server.Deps{
		DB:            a.DB,
		EventsFile:    a.EventsFile,
		ResourcesFile: a.ResourcesFile,
		Events:        a.Events,
		Resources:     a.Resources,
		GitHub:        a.GitHub,
		Hub:           hub,
	}, logger)

	sched := scheduler.New(logger)
	trig := syncer.Trigger{Source: syncer.SourceScheduler}
	if err := sched.Add("events", cfg.Sync.Schedule, func(ctx context.Context) error {
		_, err := a.Events.Sync(ctx, trig)
		return err
	}); err != nil {
		log.Fatalf("failed to schedule events sync: %v", err)
	}
	if err := sched.Add("resources", cfg.Sync.Schedule, func(ctx context.Context) error {
		_, err := a.Resources.Sync(ctx, trig)
		return err
	}); err != nil {
		log.Fatalf("failed to schedule resources sync: %v", err)
	}
	if err := sched.Add("prune", "@hourly", func(ctx context.Context) error {
		srv.RateLimiter().Cleanup()
		a.Prune(time.Now())
		return nil
	}); err != nil {
		log.Fatalf("failed to schedule cleanup: %v", err)
	}
	sched.Start()
	for _, e := range sched.Entries() {
		logger.Info("scheduled job", "name", e.Name, "spec", e.Spec, "next", e.Next)
	}

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("clubsite running", "addr", "http://localhost:"+cfg.Port, "schedule", cfg.Sync.Schedule)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	sched.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
