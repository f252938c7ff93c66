package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"history-server/config"
	"history-server/gateway"
	"history-server/logger"
	"history-server/normalize"
	"history-server/usecase"
	appOtel "history-server/utils/otel"
)

// App holds all components of the history-server service.
type App struct {
	httpServer   *http.Server
	searchUC     *usecase.SearchHistoryUsecase
	closeDrivers func()
	otelShutdown appOtel.ShutdownFunc
}

// Run initializes all components and starts the service.
// It blocks until ctx is cancelled, then performs graceful shutdown.
func Run(ctx context.Context) error {
	// ── OpenTelemetry ──
	otelCfg := appOtel.ConfigFromEnv()
	otelShutdown, err := appOtel.InitProvider(ctx, otelCfg)
	if err != nil {
		fmt.Printf("Failed to initialize OpenTelemetry: %v\n", err)
		otelCfg.Enabled = false
		otelShutdown = func(context.Context) error { return nil }
	}

	// ── Logger ──
	logger.InitWithOTel(otelCfg.Enabled)
	logger.Logger.Info("Starting history-server",
		"service", otelCfg.ServiceName,
		"otel_enabled", otelCfg.Enabled,
	)

	// ── Load config ──
	appCfg, err := config.Load()
	if err != nil {
		logger.Logger.Error("Failed to load config", "err", err)
		return err
	}

	// ── Drivers (infrastructure layer) ──
	drivers, err := initDrivers(ctx, appCfg)
	if err != nil {
		logger.Logger.Error("Failed to initialize drivers", "err", err)
		return err
	}

	// ── Gateways (anti-corruption layer) ──
	searchBackend := gateway.NewSearchBackendGateway(drivers.search)
	ruleRepo := gateway.NewRuleRepositoryGateway(drivers.database)

	var cacheStore *gateway.CacheStoreGateway
	if drivers.cache != nil {
		cacheStore = gateway.NewCacheStoreGateway(drivers.cache)
	}

	if err := searchBackend.EnsureIndex(ctx); err != nil {
		logger.Logger.Error("Failed to ensure search index", "err", err)
		drivers.close()
		return err
	}

	// ── Use cases (application layer) ──
	normalizer := normalize.NewNormalizer(ruleRepo, normalize.DefaultRulesTTL, logger.Logger)

	searchUC := usecase.NewSearchHistoryUsecase(searchBackend, cacheStoreOrNil(cacheStore), usecase.SearchHistoryConfig{
		CacheEnabled: appCfg.Cache.Enabled && cacheStore != nil,
		CacheTTL:     appCfg.Cache.TTL,
		StoreTimeout: appCfg.Cache.StoreTimeout,
	}, logger.Logger)

	insertUC := usecase.NewInsertHistoryUsecase(searchBackend, normalizer, logger.Logger)
	invalidateUC := usecase.NewInvalidateSearchCacheUsecase(cacheStoreOrNil(cacheStore))
	refreshUC := usecase.NewRefreshCacheUsecase(normalizer, invalidateUC, logger.Logger)
	rulesUC := usecase.NewManageRulesUsecase(ruleRepo, normalizer)

	// ── HTTP server ──
	app := &App{
		httpServer:   newHTTPServer(appCfg, searchUC, insertUC, refreshUC, rulesUC, otelCfg),
		searchUC:     searchUC,
		closeDrivers: drivers.close,
		otelShutdown: otelShutdown,
	}

	go func() {
		logger.Logger.Info("http listen", "addr", appCfg.Server.Addr())
		if err := app.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Error("http", "err", err)
		}
	}()

	// ── Wait for shutdown signal ──
	<-ctx.Done()
	app.shutdown()
	return nil
}

// shutdown performs graceful shutdown of all components.
func (a *App) shutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error("http shutdown error", "err", err)
	}

	// Let in-flight cache population writes finish before closing drivers.
	a.searchUC.WaitForPopulation()

	if a.closeDrivers != nil {
		a.closeDrivers()
	}

	otelCtx, otelCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer otelCancel()
	if err := a.otelShutdown(otelCtx); err != nil {
		fmt.Printf("Failed to shutdown OpenTelemetry: %v\n", err)
	}
}
