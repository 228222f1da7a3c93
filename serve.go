package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/fmuoria/resume-reviser/internal/analysis"
	"github.com/fmuoria/resume-reviser/internal/api"
	"github.com/fmuoria/resume-reviser/internal/ingestion"
	"github.com/fmuoria/resume-reviser/internal/llm"
	"github.com/fmuoria/resume-reviser/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE:  runServe,
}

var listenAddr string

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "addr", "", "Listen address (default from config, e.g. :8080)")
	rootCmd.AddCommand(serveCmd)
}

// newAnalyzer builds an analyzer that creates a model client per request
func newAnalyzer() (*analysis.Analyzer, error) {
	return analysis.NewAnalyzer(func(ctx context.Context) (llm.Client, error) {
		return llm.NewClient(ctx, cfg)
	})
}

func runServe(cmd *cobra.Command, args []string) error {
	if listenAddr == "" {
		listenAddr = cfg.ListenAddr
	}

	analyzer, err := newAnalyzer()
	if err != nil {
		return fmt.Errorf("failed to create analyzer: %w", err)
	}
	parser := ingestion.NewParser()

	registry := api.NewRegistry(func() *session.Session {
		return session.New(parser, analyzer)
	}, cfg.SessionTTL())
	server := api.NewServer(registry, ingestion.NewFileHandler(cfg.MaxUploadBytes), nil)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go registry.Run(ctx, time.Minute)

	gin.SetMode(gin.ReleaseMode)
	httpServer := &http.Server{
		Addr:              listenAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting resume reviser", "addr", listenAddr, "provider", cfg.Provider, "model", cfg.Model)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}
