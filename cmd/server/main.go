package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"

	"github.com/jaimetur/SSB-RetuningAutomations/internal/config"
	"github.com/jaimetur/SSB-RetuningAutomations/internal/export"
	"github.com/jaimetur/SSB-RetuningAutomations/internal/middleware"
	"github.com/jaimetur/SSB-RetuningAutomations/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (optional)")
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Printf("[INFO] campaign %s -> %s, band [%d..%d]", cfg.SSBPre, cfg.SSBPost, cfg.Band.Low, cfg.Band.High)

	exporter := export.NewService()
	handler := server.NewHandler(cfg, exporter)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
	})

	httpServer := &http.Server{
		Addr:         *addr,
		Handler:      corsHandler.Handler(middleware.LoggingMiddleware(handler.Routes())),
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting audit server on %s", *addr)
		log.Printf("Audit endpoint available at http://localhost%s/api/audit", *addr)

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
