// cmd/assistant/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"childcare-assistant/internal/common/aws"
	"childcare-assistant/internal/common/config"
	"childcare-assistant/internal/common/database"
	"childcare-assistant/internal/common/logger"
	"childcare-assistant/internal/common/observability"

	"childcare-assistant/internal/actions/engine"
	"childcare-assistant/internal/actions/registry"
	"childcare-assistant/internal/actions/store"
	"childcare-assistant/internal/backend/facilities"
	"childcare-assistant/internal/chat/conversation"
	"childcare-assistant/internal/chat/responder"
	"childcare-assistant/internal/nlu/classifier"
	"childcare-assistant/internal/server"

	ia "childcare-assistant/internal/actions/executors/interest-add"
	ir "childcare-assistant/internal/actions/executors/interest-remove"
	sc "childcare-assistant/internal/actions/executors/subscription-cancel"
	wj "childcare-assistant/internal/actions/executors/waitlist-join"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting assistant service...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")
	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redisClient *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redisClient, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redisClient.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redisClient.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init notification clients ---
	var snsClient *aws.SNSClient
	var sesClient *aws.SESClient
	if cfg.Notifications.Enabled {
		snsClient, err = aws.NewSNSClient(ctx, cfg.Notifications.AWSRegion)
		if err != nil {
			zapLog.Fatal("sns client init failed", zap.Error(err))
		}
		sesClient, err = aws.NewSESClient(ctx, cfg.Notifications.AWSRegion)
		if err != nil {
			zapLog.Fatal("ses client init failed", zap.Error(err))
		}
		zapLog.Info("Notification clients initialized")
	}

	// --- Build action pipeline ---
	actionStore := store.New(redisClient.GetClient(), cfg.Actions.Retention(), log)

	wjConfig := wj.LoadConfig()
	wjConfig.SNSTopicARN = cfg.Notifications.SNSTopicARN
	var notifier wj.Notifier
	if snsClient != nil {
		notifier = snsClient
	}

	scConfig := sc.LoadConfig()
	scConfig.SESSender = cfg.Notifications.SESSender
	var mailer sc.Mailer
	if sesClient != nil {
		mailer = sesClient
	}

	reg := registry.New(log,
		wj.NewHandler(wjConfig, pg.DB, notifier, log),
		ia.NewHandler(ia.LoadConfig(), pg.DB, log),
		ir.NewHandler(ir.LoadConfig(), pg.DB, log),
		sc.NewHandler(scConfig, pg.DB, mailer, log),
	)
	actionEngine := engine.New(actionStore, reg, log)

	// --- Build chat pipeline ---
	var fallback classifier.ModelClassifier
	if cfg.Assistant.IntentAPI.Enabled {
		fallback = classifier.NewIntentAPIClient(
			cfg.Assistant.IntentAPI.BaseURL,
			time.Duration(cfg.Assistant.IntentAPI.Timeout)*time.Millisecond,
		)
	}
	intentClassifier := classifier.New(classifier.Config{
		ConfidenceThreshold: cfg.Assistant.ConfidenceThreshold,
	}, fallback, log)

	facilityService := facilities.NewService(pg.DB, esClient.Client, cfg.Database.Elasticsearch.Index, log)
	blockBuilder := responder.New(facilityService, actionStore, cfg.Actions, reg, log)
	contextStore := conversation.New(
		redisClient.GetClient(),
		cfg.Assistant.ContextTurns,
		time.Duration(cfg.Assistant.ContextTTL)*time.Second,
		log,
	)

	srv := server.New(cfg, intentClassifier, blockBuilder, contextStore, actionEngine, obs, log)
	httpServer := srv.HTTPServer()

	// --- Optional expired-intent sweep ---
	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	if cfg.Actions.SweepEvery > 0 {
		go func() {
			ticker := time.NewTicker(time.Duration(cfg.Actions.SweepEvery) * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-sweepCtx.Done():
					return
				case <-ticker.C:
					if n, err := actionStore.SweepExpired(sweepCtx); err != nil {
						zapLog.Warn("expired intent sweep failed", zap.Error(err))
					} else if n > 0 {
						zapLog.Info("expired intents swept", zap.Int("count", n))
					}
				}
			}
		}()
	}

	// --- Health & Metrics Server ---
	go func() {
		mux := http.NewServeMux()
		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		mux.Handle("/metrics", promhttp.Handler())
		mux.Handle("/debug/pprof/", http.DefaultServeMux)
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Server.MetricsAddress))
		if err := http.ListenAndServe(cfg.Server.MetricsAddress, mux); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Serve ---
	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining...")
	stopSweep()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("http server shutdown failed", zap.Error(err))
	}
	zapLog.Info("Shutdown complete")
}
