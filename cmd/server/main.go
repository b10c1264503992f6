// WebeSync - WeBeFriends Festival Content Sync Service
// Copyright 2026 Howlin' Yuma Collective
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/howlinyuma/webesync

// Command server runs the festival content sync service: the public
// events feed, the webhook receiver, the visitor counter, and the
// nightly refresh scheduler, all under one supervisor tree.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/howlinyuma/webesync/internal/api"
	"github.com/howlinyuma/webesync/internal/config"
	"github.com/howlinyuma/webesync/internal/content"
	"github.com/howlinyuma/webesync/internal/logging"
	"github.com/howlinyuma/webesync/internal/models"
	"github.com/howlinyuma/webesync/internal/normalize"
	"github.com/howlinyuma/webesync/internal/scheduler"
	"github.com/howlinyuma/webesync/internal/store"
	"github.com/howlinyuma/webesync/internal/supervisor"
	"github.com/howlinyuma/webesync/internal/supervisor/services"
	"github.com/howlinyuma/webesync/internal/webe"
	"github.com/howlinyuma/webesync/internal/webhook"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	logging.Info().
		Str("site", cfg.Site.Slug).
		Str("db_path", cfg.Database.Path).
		Bool("remote_enabled", cfg.Webe.APIKey != "").
		Bool("webhook_secured", cfg.Webhook.Secret != "").
		Msg("Starting WebeSync")
	if cfg.Webhook.Secret == "" {
		logging.Warn().Msg("No webhook secret configured; all webhook deliveries will be rejected")
	}

	st, err := openStore(cfg.Database.Path)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open store")
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing store")
		}
	}()

	normalizer := normalize.New(normalize.Defaults{
		SiteSlug:     cfg.Site.Slug,
		SiteName:     content.DefaultSiteName,
		SourcePageID: cfg.Site.PageID,
	})

	client := webe.New(webe.Config{
		BaseURL:   cfg.Webe.BaseURL,
		APIKey:    cfg.Webe.APIKey,
		UserAgent: cfg.Webe.UserAgent,
		Timeout:   cfg.Webe.Timeout,
	}, normalizer)

	cache := content.NewCache(client, st, content.CacheOptions{
		SnapshotTTL: cfg.Cache.SnapshotTTL,
	})
	refresher := content.NewRefresher(st, client, cache)
	processor := webhook.NewProcessor(st, refresher, normalizer)

	handlers := api.NewHandlers(client, st, processor, refresher, api.HandlerOptions{
		SiteSlug:      cfg.Site.Slug,
		PageID:        cfg.Site.PageID,
		WebhookSecret: cfg.Webhook.Secret,
	})
	router := api.NewRouter(handlers, api.RouterOptions{
		RateLimit:  cfg.Server.RateLimit,
		RateWindow: cfg.Server.RateWindow,
	})

	server := &http.Server{
		Addr:         cfg.Server.ListenAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Warm the store before serving so the first feed request after a
	// cold deploy does not pay for a remote fetch.
	bootstrap(ctx, refresher, cfg.Site.Slug)

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	if cfg.Scheduler.Enabled {
		sched, err := scheduler.New(refresher, scheduler.Config{
			SiteSlug:    cfg.Site.Slug,
			RefreshTime: cfg.Scheduler.RefreshTime,
			Timezone:    cfg.Scheduler.Timezone,
		})
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to build refresh scheduler")
		}
		tree.AddSyncService(sched)
		logging.Info().
			Str("at", cfg.Scheduler.RefreshTime).
			Str("tz", cfg.Scheduler.Timezone).
			Msg("Refresh scheduler service added")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	errCh := tree.ServeBackground(ctx)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	logging.Info().Msg("Stopped gracefully")
}

// openStore opens the on-disk Badger store, or an in-memory one when no
// path is configured.
func openStore(path string) (*store.Store, error) {
	if path == "" {
		logging.Warn().Msg("No database path configured; using in-memory store")
		return store.OpenInMemory()
	}
	return store.Open(path)
}

// bootstrap runs one initial refresh. A failure only means the cache
// chain starts from the persisted snapshot or the bundled fallback.
func bootstrap(ctx context.Context, refresher *content.Refresher, slug string) {
	bootCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	correlationID := "bootstrap-" + logging.GenerateCorrelationID()
	result, err := refresher.Refresh(bootCtx, slug, models.RefreshBootstrap, correlationID)
	switch {
	case err != nil:
		logging.Error().Err(err).Msg("Bootstrap refresh failed")
	case !result.Processed():
		logging.Warn().Str("reason", result.Reason).Msg("Bootstrap refresh skipped")
	default:
		logging.Info().Msg("Bootstrap refresh completed")
	}
}
