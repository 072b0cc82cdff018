package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/chatvault/chatvault/internal/api"
	"github.com/chatvault/chatvault/internal/ask"
	"github.com/chatvault/chatvault/internal/search"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Run the chatvault HTTP API server in the foreground.

Endpoints:
  GET  /health
  GET  /api/v1/threads
  GET  /api/v1/threads/{chatID}/messages
  GET  /api/v1/search
  GET  /api/v1/context
  POST /api/v1/ask
  GET  /api/v1/stats

Set [server] api_key in config.toml to require authentication.
Use Ctrl+C to stop the server gracefully.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	s, err := openExistingStore()
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer s.Close()

	var asker api.Asker
	if cfg.Ask.APIKey != "" {
		llm := ask.NewOpenAIClient(cfg.Ask.Server, cfg.Ask.APIKey, cfg.Ask.Model)
		asker = ask.NewService(s, llm, ask.Options{
			MaxContextChars: cfg.Ask.MaxContextChars,
			CacheTTL:        time.Duration(cfg.Ask.CacheTTLSeconds) * time.Second,
			Logger:          logger,
		})
	} else {
		logger.Warn("no answering model configured, /api/v1/ask disabled")
	}

	apiServer := api.NewServer(cfg, s, search.New(s), asker, logger)

	serverErr := make(chan error, 1)
	go func() {
		if err := apiServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	bindAddr := cfg.Server.BindAddr
	if bindAddr == "" {
		bindAddr = "127.0.0.1"
	}
	fmt.Printf("chatvault server started\n")
	fmt.Printf("  API server: http://%s\n", net.JoinHostPort(bindAddr, strconv.Itoa(cfg.Server.APIPort)))
	fmt.Printf("  Database:   %s\n", cfg.DatabasePath())
	fmt.Println()
	fmt.Println("Press Ctrl+C to stop.")

	select {
	case <-cmd.Context().Done():
		logger.Info("received shutdown signal")
		fmt.Println("\nShutting down...")
	case err := <-serverErr:
		return fmt.Errorf("API server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("API server shutdown error", "error", err)
	}
	return nil
}
