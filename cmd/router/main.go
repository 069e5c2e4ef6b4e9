// Copyright 2026 The switchAIRouter Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package main provides the entry point for the switchAIRouter engine.
// The engine maintains the provider quota tree, resolves the active model
// selection, and serves the management API on localhost.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/traylinx/switchAIRouter/internal/api/handlers/management"
	"github.com/traylinx/switchAIRouter/internal/config"
	"github.com/traylinx/switchAIRouter/internal/discovery"
	"github.com/traylinx/switchAIRouter/internal/graph"
	"github.com/traylinx/switchAIRouter/internal/logging"
	"github.com/traylinx/switchAIRouter/internal/selection"
	"github.com/traylinx/switchAIRouter/internal/store"
	"github.com/traylinx/switchAIRouter/internal/tree"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

// init initializes the shared logger setup.
func init() {
	logging.SetupBaseLogger()
}

func main() {
	configPath := flag.String("config", "", "path to config.yaml (optional)")
	flag.Parse()

	// Local .env is a convenience for development; absence is not an error.
	if err := godotenv.Load(); err == nil {
		log.Debugf("Loaded environment from .env")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}
	if err := logging.ConfigureLogOutput(cfg.LoggingToFile); err != nil {
		log.Warnf("Failed to configure log output: %v", err)
	}
	log.Infof("switchAIRouter %s (%s, built %s)", Version, Commit, BuildDate)

	if err := run(cfg); err != nil {
		log.Fatalf("Engine terminated: %v", err)
	}
}

func run(cfg *config.Config) error {
	opts := []tree.TreeOption{}
	if !cfg.Discovery.Disabled {
		prober := discovery.NewProber(cfg.Discovery.Port, time.Duration(cfg.Discovery.TimeoutMs)*time.Millisecond)
		if prober.Enabled() {
			opts = append(opts, tree.WithProber(prober))
		}
	}
	root := tree.NewProviderTree(opts...)

	statePath := cfg.ResolvedStatePath()
	if loaded, err := root.LoadFromFile(statePath); err != nil {
		return fmt.Errorf("failed to restore state from %s: %w", statePath, err)
	} else if loaded {
		log.Infof("Restored provider state from %s", statePath)
	}

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err := root.Initialize(initCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to initialize provider tree: %w", err)
	}

	var history *store.RequestLog
	if dbPath := cfg.ResolvedHistoryDBPath(); dbPath != "" {
		history, err = store.Open(dbPath)
		if err != nil {
			log.Warnf("Request history disabled, failed to open %s: %v", dbPath, err)
			history = nil
		}
	}

	facade := graph.NewFacade(root)
	watcher := selection.NewWatcher(selection.NewResolver(root))
	if err := watcher.Start(); err != nil {
		log.Warnf("Selection watching disabled: %v", err)
	}
	watcher.Subscribe(func(sel *selection.Selection) {
		if sel == nil {
			log.Infof("Active selection cleared")
			return
		}
		log.Infof("Active selection changed: provider=%s model=%s", sel.Provider, sel.ModelName)
	})

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	handler := management.NewHandler(facade, watcher, history, "")
	handler.RegisterRoutes(engine)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler: engine,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Management API listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("management API failed: %w", err)
	case sig := <-sigCh:
		log.Infof("Received %s, shutting down", sig)
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warnf("Management API shutdown: %v", err)
	}
	watcher.Stop()
	if history != nil {
		if err := history.Close(); err != nil {
			log.Warnf("Failed to close request history: %v", err)
		}
	}
	if err := root.SaveToFile(statePath); err != nil {
		return fmt.Errorf("failed to persist state on shutdown: %w", err)
	}
	log.Infof("Provider state persisted to %s", statePath)
	return nil
}
