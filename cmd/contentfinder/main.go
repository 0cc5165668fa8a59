package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/contentfinder/internal/config"
	"github.com/kailas-cloud/contentfinder/internal/db"
	dbRedis "github.com/kailas-cloud/contentfinder/internal/db/redis"
	"github.com/kailas-cloud/contentfinder/internal/domain"
	"github.com/kailas-cloud/contentfinder/internal/domain/locale"
	logpkg "github.com/kailas-cloud/contentfinder/internal/logger"
	"github.com/kailas-cloud/contentfinder/internal/metrics"
	budgetrepo "github.com/kailas-cloud/contentfinder/internal/repository/budget"
	contentrepo "github.com/kailas-cloud/contentfinder/internal/repository/content"
	"github.com/kailas-cloud/contentfinder/internal/repository/embcache"
	chiTransport "github.com/kailas-cloud/contentfinder/internal/transport/chi"
	openaiTransport "github.com/kailas-cloud/contentfinder/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/contentfinder/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/contentfinder/internal/usecase/health"
	queryuc "github.com/kailas-cloud/contentfinder/internal/usecase/query"
	usageuc "github.com/kailas-cloud/contentfinder/internal/usecase/usage"
	"github.com/kailas-cloud/contentfinder/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting contentfinder API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, config.Seconds(cfg.Database.ReadinessTimeout)); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterRetrievalMetrics()

	vecCfg := cfg.Embedding.Vectorizer
	provCfg := cfg.Embedding.Providers[vecCfg.Provider]

	base := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     provCfg.APIKey,
		BaseURL:    provCfg.BaseURL,
		Model:      vecCfg.Model,
		Dimensions: vecCfg.Dimensions,
		Provider:   vecCfg.Provider,
		Timeout:    config.Seconds(provCfg.TimeoutSec),
		Logger:     logger,
	})
	budgetCfg := cfg.Embedding.Budget
	tracker := embeddinguc.NewBudgetTracker(embeddinguc.BudgetConfig{
		Provider:     vecCfg.Provider,
		KeyPrefix:    cfg.Storage.KeyPrefix,
		DailyLimit:   budgetCfg.DailyTokenLimit,
		MonthlyLimit: budgetCfg.MonthlyTokenLimit,
		Action:       embeddinguc.BudgetAction(budgetCfg.Action),
	}, logger).WithStore(ctx, budgetrepo.New(store, budgetDailyTTL, budgetMonthlyTTL))

	queryEmbedder := buildEmbedder(base, tracker, store, cfg, logger)
	logger.Info("Embedder created",
		zap.String("provider", vecCfg.Provider),
		zap.String("model", vecCfg.Model),
		zap.Int("dimensions", vecCfg.Dimensions),
		zap.Int64("daily_token_limit", budgetCfg.DailyTokenLimit),
		zap.Int64("monthly_token_limit", budgetCfg.MonthlyTokenLimit),
		zap.String("budget_action", budgetCfg.Action),
	)

	contentRepo := contentrepo.New(store, queryEmbedder, indexConfig(cfg))
	if err := contentRepo.EnsureIndex(ctx); err != nil {
		logger.Fatal("Failed to ensure content index", zap.Error(err))
	}

	// Pass a nil interface (not a typed nil pointer) when interpretation is off.
	var interpreter queryuc.Interpreter
	var interpretationCheck healthuc.Checker
	if cfg.Interpretation.Enabled {
		ic := cfg.Embedding.Providers[cfg.Interpretation.Provider]
		in := openaiTransport.NewInterpreter(&openaiTransport.InterpreterConfig{
			APIKey:   ic.APIKey,
			BaseURL:  ic.BaseURL,
			Model:    cfg.Interpretation.Model,
			Provider: cfg.Interpretation.Provider,
			Timeout:  config.Seconds(cfg.Interpretation.TimeoutSec),
			Logger:   logger,
		})
		interpreter = in
		interpretationCheck = in
		logger.Info("Query interpretation enabled", zap.String("model", cfg.Interpretation.Model))
	}

	querySvc := queryuc.New(contentRepo, contentRepo, interpreter, locale.Default(), queryuc.Options{
		DiscoveryScanLimit: cfg.Query.DiscoveryScanLimit,
		MaxDiscovered:      cfg.Query.MaxDiscovered,
		InterpretTimeout:   config.Seconds(cfg.Interpretation.TimeoutSec),
		MaxDistance:        cfg.Query.MaxDistance,
	}, queryuc.Metrics{
		RowsTotal:           metrics.RetrievalRowsTotal,
		FailuresTotal:       metrics.RetrievalFailuresTotal,
		CallDuration:        metrics.RetrievalDuration,
		QueriesTotal:        metrics.QueriesTotal,
		InterpretationTotal: metrics.InterpretationTotal,
	})

	healthSvc := healthuc.New(store,
		healthuc.Component{Name: "embedding", Checker: base},
		healthuc.Component{Name: "index", Checker: contentRepo},
		healthuc.Component{Name: "interpretation", Checker: interpretationCheck},
	)

	usageSvc := usageuc.New(tracker)

	server := chiTransport.NewServer(querySvc, healthSvc, usageSvc, logger)
	handler := chiTransport.NewRouter(server, chiTransport.RouterConfig{
		APIKeys:      cfg.Auth.APIKeys,
		QueryTimeout: config.Seconds(cfg.HTTP.QueryTimeoutSec),
	}, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  config.Seconds(cfg.HTTP.ReadTimeoutSec),
		WriteTimeout: config.Seconds(cfg.HTTP.WriteTimeoutSec),
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.Seconds(cfg.HTTP.ShutdownSec))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// Budget counter keys outlive their period by a margin.
const (
	budgetDailyTTL   = 48 * time.Hour
	budgetMonthlyTTL = 62 * 24 * time.Hour
)

// buildEmbedder assembles the decorator chain: OpenAI -> Instrumented (budget) -> Cached -> Instruction.
// Cache hits never reach the budget.
func buildEmbedder(base domain.Embedder, budget embeddinguc.BudgetChecker, kv db.KVStore, cfg config.Config, logger *zap.Logger) domain.Embedder {
	vecCfg := cfg.Embedding.Vectorizer

	instrumented := embeddinguc.NewInstrumentedEmbedder(base, vecCfg.Provider, vecCfg.Model,
		budget, metrics.EmbeddingBudgetTokensRemaining, logger)

	var embedder domain.Embedder = embcache.New(instrumented, kv, embcache.Options{
		KeyPrefix: cfg.Storage.KeyPrefix,
		Model:     vecCfg.Model,
		TTL:       config.Seconds(cfg.Storage.EmbeddingCacheTTLSec),
	}, metrics.EmbeddingCacheTotal, logger)

	// Instruction prefix is outermost so the cache key includes it.
	if vecCfg.QueryInstruction != "" {
		return domain.NewInstructionEmbedder(embedder, vecCfg.QueryInstruction)
	}
	return embedder
}

func indexConfig(cfg config.Config) contentrepo.IndexConfig {
	algo := db.VectorHNSW
	if cfg.Index.Algorithm == "flat" {
		algo = db.VectorFlat
	}
	return contentrepo.IndexConfig{
		KeyPrefix:   cfg.Storage.KeyPrefix,
		VectorDim:   cfg.Embedding.Vectorizer.Dimensions,
		Algorithm:   algo,
		Distance:    db.DistanceCosine,
		M:           cfg.Index.HNSWM,
		EFConstruct: cfg.Index.HNSWEFConstruct,
	}
}
