package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"wodo.ai/wodo-connect/internal/api"
	"wodo.ai/wodo-connect/internal/config"
	"wodo.ai/wodo-connect/internal/core"
	"wodo.ai/wodo-connect/internal/events"
	"wodo.ai/wodo-connect/internal/llm"
	"wodo.ai/wodo-connect/internal/middleware"
	"wodo.ai/wodo-connect/internal/store"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	cfg := config.AppConfig
	if err := cfg.ValidateServer(); err != nil {
		return err
	}

	// Initialize storage
	kv, err := store.Open(ctx, cfg.StorageDriver, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	st := store.New(kv)
	defer st.Close()

	// Initialize LLM service
	model, err := llm.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize text model: %w", err)
	}
	llmService := core.NewLLMService(model)
	defer llmService.Close()

	hub := events.NewHub()
	svc := core.NewServices(st, llmService, hub, core.Options{ThoughtTTL: cfg.ThoughtTTL})
	if _, err := svc.Thoughts.SeedInitialThoughts(ctx); err != nil {
		return err
	}

	limiter := middleware.NewLimiterStore(cfg.AIRatePerMinute, cfg.AIRateBurst, time.Minute)
	defer limiter.Stop()

	router := api.NewRouter(api.NewAPIHandler(svc, hub), limiter)

	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)
	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // LLM calls can take time
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on %s (storage: %s, model: %s). Press Ctrl+C to quit.", serverAddr, cfg.StorageDriver, cfg.LLMProvider)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("could not listen on %s: %w", serverAddr, err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return err
	}
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("Server exiting gracefully")
	return nil
}
