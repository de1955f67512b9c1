package main

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sportbuddy/app/internal/config"
	"github.com/sportbuddy/app/internal/content"
	"github.com/sportbuddy/app/internal/handlers"
	"github.com/sportbuddy/app/internal/session"
	"github.com/sportbuddy/app/web"
)

// sweepInterval is how often idle sessions are looked for.
const sweepInterval = time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	opts := []content.Option{}
	if cfg.Seed != 0 {
		opts = append(opts, content.WithRand(rand.New(rand.NewSource(cfg.Seed))))
	}
	gen, err := content.New(opts...)
	if err != nil {
		log.Fatalf("Error loading content tables: %v", err)
	}

	if err := handlers.LoadTemplates(web.Templates, "templates"); err != nil {
		log.Fatalf("Error loading templates: %v", err)
	}

	store := session.NewStore(gen, session.Options{
		ReplyDelayMin: cfg.ReplyDelayMin,
		ReplyDelayMax: cfg.ReplyDelayMax,
	}, cfg.SessionTTL)
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go store.Run(ctx, sweepInterval)

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: handlers.NewRouter(handlers.RouterConfig{
			Store:          store,
			Generator:      gen,
			AllowedOrigins: cfg.AllowedOrigins,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Error shutting down server: %v", err)
		}
	}()

	log.Printf("Server starting on port %s (replies after %v-%v, sessions expire after %v)",
		cfg.Port, cfg.ReplyDelayMin, cfg.ReplyDelayMax, cfg.SessionTTL)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("Error starting server: %v", err)
	}
	log.Printf("Server stopped")
}
