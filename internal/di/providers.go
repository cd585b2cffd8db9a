package di

import (
	"context"
	"fmt"
	"time"

	"SilverFetch/internal/domain/repository"
	"SilverFetch/internal/handler/api"
	"SilverFetch/internal/handler/ws"
	internalrepo "SilverFetch/internal/repository"
	"SilverFetch/internal/service/history"
	"SilverFetch/internal/service/narrative"
	"SilverFetch/internal/service/sources"
	"SilverFetch/internal/usecase"
	pkgcache "SilverFetch/pkg/cache"
	pkgch "SilverFetch/pkg/clickhouse"
	"SilverFetch/pkg/config"
	pkgkafka "SilverFetch/pkg/kafka"
	"SilverFetch/pkg/logger"
	"SilverFetch/pkg/metrics"
	"SilverFetch/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideCache selects the candle cache backend from config.
func ProvideCache(cfg *config.Config) (pkgcache.Service, error) {
	switch cfg.Cache.Backend {
	case "", "memory":
		return pkgcache.NewMemoryCache(), nil
	case "redis":
		return pkgcache.NewRedisCache(redisOptions(cfg)...)
	case "layered":
		rc, err := pkgcache.NewRedisCache(redisOptions(cfg)...)
		if err != nil {
			return nil, err
		}
		return pkgcache.NewLayeredCache(rc), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
	}
}

func redisOptions(cfg *config.Config) []pkgcache.RedisOption {
	return []pkgcache.RedisOption{
		pkgcache.WithRedisHost(cfg.Cache.Redis.Host),
		pkgcache.WithRedisPort(cfg.Cache.Redis.Port),
		pkgcache.WithRedisPassword(cfg.Cache.Redis.Password),
		pkgcache.WithRedisDB(cfg.Cache.Redis.DB),
		pkgcache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
	}
}

// ProvideSourceAdapters builds one adapter per configured price source.
func ProvideSourceAdapters(cfg *config.Config, log *logger.Logger) []repository.SourceAdapter {
	return sources.Build(cfg.Sources, log)
}

// ProvideAggregator creates the price aggregator.
func ProvideAggregator(adapters []repository.SourceAdapter, log *logger.Logger, m repository.Metrics) *usecase.Aggregator {
	return usecase.NewAggregator(adapters, log, m)
}

// ProvideCandleProvider creates the cached candle provider.
func ProvideCandleProvider(cfg *config.Config, cacheSvc pkgcache.Service, log *logger.Logger) repository.CandleProvider {
	ttl := cfg.Cache.TTL
	if ttl <= 0 {
		ttl = cfg.Refresh.Interval - 5*time.Second
	}
	return history.NewProvider(cacheSvc, ttl, log)
}

// ProvideScoringEngine creates the scoring engine from configured weights.
func ProvideScoringEngine(cfg *config.Config) *usecase.ScoringEngine {
	return usecase.NewScoringEngine(cfg.Scoring)
}

// ProvideNarrativeService creates the summary client.
func ProvideNarrativeService(cfg *config.Config, log *logger.Logger) repository.NarrativeService {
	return narrative.NewClient(cfg, log)
}

// ProvideSinks builds the optional snapshot sinks. Both are off by default;
// a sink that is enabled but unreachable fails startup rather than silently
// dropping data.
func ProvideSinks(cfg *config.Config, log *logger.Logger) ([]repository.SnapshotSink, error) {
	var sinks []repository.SnapshotSink

	if cfg.Kafka.Enabled {
		producer, err := pkgkafka.NewProducer(
			pkgkafka.WithBrokers(cfg.Kafka.Brokers),
			pkgkafka.WithCompression(cfg.Kafka.Compression),
			pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
			pkgkafka.WithTimeouts(cfg.Kafka.WriteTimeout, cfg.Kafka.WriteTimeout),
			pkgkafka.WithAsync(cfg.Kafka.Async),
		)
		if err != nil {
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		sinks = append(sinks, internalrepo.NewKafkaSnapshotPublisher(producer, cfg.Kafka.Topic, log))
	}

	if cfg.History.Enabled {
		ch := cfg.History.ClickHouse
		client, err := pkgch.NewClient(
			pkgch.WithHost(ch.Host),
			pkgch.WithPort(ch.Port),
			pkgch.WithDatabase(ch.Database),
			pkgch.WithCredentials(ch.User, ch.Password),
			pkgch.WithMaxConnections(10, 5),
			pkgch.WithTimeouts(ch.DialTimeout, ch.ReadTimeout, ch.WriteTimeout),
		)
		if err != nil {
			return nil, fmt.Errorf("clickhouse client: %w", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		sink, err := internalrepo.NewCHHistorySink(ctx, client, log)
		if err != nil {
			_ = client.Close()
			return nil, err
		}
		sinks = append(sinks, sink)
	}

	return sinks, nil
}

// ProvideScheduler creates the snapshot scheduler. The broadcaster is
// attached afterwards by ProvideApp.
func ProvideScheduler(
	cfg *config.Config,
	aggregator *usecase.Aggregator,
	candles repository.CandleProvider,
	engine *usecase.ScoringEngine,
	narrativeSvc repository.NarrativeService,
	sinks []repository.SnapshotSink,
	log *logger.Logger,
	m repository.Metrics,
) *usecase.Scheduler {
	return usecase.NewScheduler(cfg, aggregator, candles, engine, narrativeSvc, sinks, log, m)
}

// ProvideHub creates the websocket hub with the scheduler as its snapshot
// source.
func ProvideHub(scheduler *usecase.Scheduler, log *logger.Logger, m repository.Metrics) *ws.Hub {
	return ws.NewHub(scheduler, log, m)
}

// ProvideHandler creates the REST and websocket handler.
func ProvideHandler(cfg *config.Config, log *logger.Logger, scheduler *usecase.Scheduler, hub *ws.Hub) *api.MarketEchoHandler {
	return api.NewMarketEchoHandler(log, scheduler, hub, cfg.Server.AllowedOrigins)
}

// ProvideApp assembles the application and closes the scheduler/hub loop.
func ProvideApp(
	cfg *config.Config,
	log *logger.Logger,
	scheduler *usecase.Scheduler,
	hub *ws.Hub,
	handler *api.MarketEchoHandler,
	sinks []repository.SnapshotSink,
) *server.App {
	scheduler.SetBroadcaster(hub)
	return server.New(cfg, log, scheduler, handler, sinks)
}
