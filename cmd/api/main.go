package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"northstar/api/internal/app"
	"northstar/api/internal/archive"
	"northstar/api/internal/config"
	"northstar/api/internal/export"
	"northstar/api/internal/search"
	"northstar/api/internal/store"
	"northstar/api/internal/trendcache"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	var documentStore store.DocumentStore
	if strings.TrimSpace(cfg.DatabaseURL) != "" {
		db, err := store.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("database connection failed: %v", err)
		}
		defer db.Close()

		pg := store.NewPostgresStore(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Fatalf("schema setup failed: %v", err)
		}
		documentStore = pg
		log.Printf("Using PostgreSQL document store")
	} else {
		documentStore = store.NewFileStore(cfg.DataFile)
		log.Printf("Using file document store at %s", cfg.DataFile)
	}

	opts := app.Options{
		Archive: archive.New(cfg.ArchiveDir),
		Export:  export.NewService(),
	}

	if strings.TrimSpace(cfg.RedisURL) != "" {
		cache, err := trendcache.NewCache(cfg.RedisURL)
		if err != nil {
			log.Fatalf("redis connection failed: %v", err)
		}
		opts.Cache = cache
		log.Printf("Using Redis trend cache")
	}

	if strings.TrimSpace(cfg.MinioEndpoint) != "" {
		uploader, err := export.NewUploader(ctx,
			cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			log.Fatalf("object storage connection failed: %v", err)
		}
		opts.Uploader = uploader
		log.Printf("Archiving reports to bucket %s", cfg.MinioBucket)
	}

	service := app.NewService(documentStore, opts)
	defer service.Close()
	if err := service.Bootstrap(ctx); err != nil {
		log.Fatalf("bootstrap failed: %v", err)
	}

	var meiliClient *search.Meili
	if strings.TrimSpace(cfg.MeiliURL) != "" {
		meiliClient = search.NewMeili(cfg.MeiliURL, cfg.MeiliMasterKey)
		defer meiliClient.Close()
	}
	service.SetSearch(search.NewService(meiliClient, search.NewMemory(service.CurrentDocument)))

	httpServer := app.NewHTTPServer(service, cfg.CORSOrigin)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpServer.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Northstar API listening on %s", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
