package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/paperbot/paperbot/app/api"
	"github.com/paperbot/paperbot/app/cfg"
	"github.com/paperbot/paperbot/app/provider"
	"github.com/paperbot/paperbot/app/slack"
	"github.com/paperbot/paperbot/app/unfurl"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting paperbot", "version", appCfg.Version)

	settings, err := provider.LoadSettings(appCfg.ProvidersFile)
	if err != nil {
		slog.Error("Failed to load provider settings", "path", appCfg.ProvidersFile, "error", err)
		os.Exit(1)
	}

	httpClient := &http.Client{
		Timeout: time.Duration(appCfg.HTTPTimeout) * time.Second,
	}

	// Provider order matters: should two providers ever claim the same
	// URL, the later one wins in the dispatcher.
	var providers []provider.Provider
	if settings.Arxiv.IsEnabled() {
		providers = append(providers, provider.NewArxiv(httpClient, settings.Arxiv, appCfg.UserAgent))
	}
	if settings.SSRN.IsEnabled() {
		providers = append(providers, provider.NewSSRN(httpClient, settings.SSRN, appCfg.UserAgent))
	}
	if len(providers) == 0 {
		slog.Error("No providers enabled, nothing to unfurl")
		os.Exit(1)
	}
	for _, p := range providers {
		slog.Info("Provider enabled", "provider", p.Name())
	}

	dispatcher := unfurl.NewDispatcher(providers...)
	client := slack.NewClient(httpClient, appCfg.OAuthToken, appCfg.UserAgent)
	verifier := slack.NewVerifier(appCfg.SigningSecret, appCfg.VerificationToken)

	handler := api.NewHandler(verifier, client, dispatcher, len(providers))
	server := api.NewServer(handler)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	slog.Info("Shutdown complete")
}
