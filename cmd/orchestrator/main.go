// cmd/orchestrator/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"orchestrateiq/internal/api"
	"orchestrateiq/internal/common/config"
	"orchestrateiq/internal/common/database"
	"orchestrateiq/internal/common/logger"
	"orchestrateiq/internal/common/observability"
	"orchestrateiq/internal/notify"
	"orchestrateiq/internal/orchestrate"
	"orchestrateiq/internal/skills"
	"orchestrateiq/internal/watsonx"
)

func main() {
	// Bootstrap logger for the window before configuration is available.
	bootLog := logger.New("info", "console")

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}
	bootLog.Sync()

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting orchestrator...",
		zap.String("log_level", cfg.Logging.Level),
		zap.String("log_format", cfg.Logging.Format),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	source, cleanup, err := buildSource(ctx, cfg, zapLog)
	if err != nil {
		zapLog.Fatal("data source init failed", zap.Error(err))
	}
	defer cleanup()

	var tokenRedis *redis.Client
	if cfg.Watsonx.ShareToken {
		redisClient, err := database.NewRedis(cfg.Database.Redis)
		if err != nil {
			zapLog.Fatal("redis init failed", zap.Error(err))
		}
		defer redisClient.Close()
		if err := redisClient.Ping(ctx); err != nil {
			zapLog.Warn("redis unreachable, token sharing degraded", zap.Error(err))
		}
		tokenRedis = redisClient.GetClient()
	}

	ai := watsonx.NewClient(cfg.Watsonx, tokenRedis, log)
	if !ai.Available() {
		zapLog.Info("watsonx not configured, keyword recognition only")
	}

	notifier, err := notify.New(ctx, cfg.Notifications, log)
	if err != nil {
		zapLog.Fatal("notification init failed", zap.Error(err))
	}

	manager := skills.NewManager(source, log)
	recognizer := orchestrate.NewRecognizer(ai, log)
	engine := orchestrate.NewEngine(manager, ai, cfg.Workflow, log)

	var agentNotifier orchestrate.Notifier
	if notifier != nil {
		agentNotifier = notifier
	}
	agent := orchestrate.NewAgent(recognizer, engine, agentNotifier, obs, log)

	server := api.NewServer(cfg.Server, agent, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		zapLog.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			zapLog.Fatal("server failed", zap.Error(err))
		}
		return
	}

	if err := server.Shutdown(ctx); err != nil {
		zapLog.Error("shutdown incomplete", zap.Error(err))
	}
	zapLog.Info("orchestrator stopped")
}

// buildSource wires the dataset source configured under data.source.
func buildSource(ctx context.Context, cfg *config.Config, zapLog *zap.Logger) (skills.Source, func(), error) {
	noop := func() {}

	switch cfg.Data.Source {
	case "postgres":
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return nil, noop, err
		}
		if err := pg.Ping(ctx); err != nil {
			pg.Close()
			return nil, noop, err
		}
		zapLog.Info("using postgres datasets", zap.String("host", cfg.Database.Postgres.Host))
		return skills.NewPostgresSource(pg.GetDB()), func() { pg.Close() }, nil

	case "elasticsearch":
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return nil, noop, err
		}
		if err := es.Ping(); err != nil {
			zapLog.Warn("elasticsearch unreachable at startup", zap.Error(err))
		}
		zapLog.Info("using elasticsearch datasets", zap.String("url", cfg.Database.Elasticsearch.GetURL()))
		return skills.NewElasticsearchSource(es.Client), noop, nil

	default:
		zapLog.Info("using csv datasets", zap.String("dir", cfg.Data.Dir))
		return skills.NewCSVSource(cfg.Data.Dir), noop, nil
	}
}
