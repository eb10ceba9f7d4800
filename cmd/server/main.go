package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AlperErd0gan/Filizlen-App/internal/api"
	"github.com/AlperErd0gan/Filizlen-App/internal/config"
	"github.com/AlperErd0gan/Filizlen-App/internal/core"
	"github.com/AlperErd0gan/Filizlen-App/internal/store"
)

func main() {
	cfg := config.LoadConfig()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if cfg.Debug() {
		log.Println("Service starting in DEBUG mode")
	}

	rebuildCacheFlag := flag.Bool("rebuild-cache", false, "Rebuild the embedding cache from news and tips and exit")
	seedFlag := flag.Bool("seed", true, "Insert sample categories and tips into an empty database")
	flag.Parse()

	validate := cfg.Validate
	if *rebuildCacheFlag {
		validate = cfg.ValidateRebuild
	}
	if err := validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	dbStore, err := store.NewSQLiteStoreWithOptions(cfg.DatabasePath, store.Options{BusyTimeout: cfg.DBBusyTimeout})
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer dbStore.Close()

	ctx := context.Background()
	if err := dbStore.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to create database schema: %v", err)
	}
	if *seedFlag {
		if err := dbStore.SeedSampleData(ctx); err != nil {
			log.Fatalf("Failed to seed sample data: %v", err)
		}
	}

	llmService, err := core.NewLLMService(ctx, cfg.GeminiAPIKey)
	if err != nil {
		log.Fatalf("Failed to initialize LLM service: %v", err)
	}
	defer llmService.Close()

	if *rebuildCacheFlag {
		log.Println("Starting embedding cache rebuild...")
		rebuildCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		indexer := core.NewIndexer(dbStore, llmService.GetEmbedding, cfg.EmbeddingCachePath, cfg.EmbedInterval)
		n, err := indexer.Rebuild(rebuildCtx)
		if err != nil {
			log.Fatalf("Embedding cache rebuild failed: %v", err)
		}
		log.Printf("Embedding cache rebuild complete. Indexed %d documents into %s.", n, cfg.EmbeddingCachePath)
		return
	}

	ragService, err := core.NewRAGService(cfg.EmbeddingCachePath, llmService.GetEmbedding)
	if err != nil {
		log.Fatalf("Failed to initialize RAG service: %v", err)
	}

	chatService := core.NewChatService(dbStore, ragService, llmService)

	// SIGHUP reloads the embedding cache after an out-of-process rebuild.
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	go func() {
		for range hup {
			n, err := ragService.Refresh()
			if err != nil {
				log.Printf("Embedding cache reload failed, keeping the current snapshot: %v", err)
				continue
			}
			log.Printf("Embedding cache reloaded with %d documents.", n)
		}
	}()

	apiHandler := api.NewAPIHandler(dbStore, chatService, ragService)
	router := api.NewRouter(apiHandler)

	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)
	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // LLM calls can take time
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on %s. Press Ctrl+C to quit.", serverAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", serverAddr, err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exiting gracefully")
}
