// The sweeper daemon runs the expiry sweep on a schedule and serves the
// cache's admin HTTP API. The cache core starts no timer of its own; this
// binary is the out-of-band scheduler the core expects.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"dynacache/infrastructure/messaging/eventbridge"
	ddbstore "dynacache/infrastructure/persistence/dynamodb"
	"dynacache/internal/config"
	"dynacache/interfaces/http/rest"
	"dynacache/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg.Environment)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := setupTracing(ctx, cfg.Telemetry.OTLPEndpoint)
	if err != nil {
		logger.Fatal("Failed to set up tracing", zap.Error(err))
	}
	defer shutdownTracing(context.Background())

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		logger.Fatal("Failed to load AWS config", zap.Error(err))
	}

	dbClient := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.AWS.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.AWS.Endpoint)
		}
	})

	metrics := observability.NewCacheMetrics(prometheus.DefaultRegisterer)
	store := ddbstore.New(dbClient, cfg.Table.Name, cfg.Table.ExpiryIndex, logger,
		ddbstore.WithChunkSize(cfg.Cache.ChunkSize),
		ddbstore.WithPageSize(cfg.Cache.PageSize),
		ddbstore.WithMetrics(metrics),
	)

	var publisher *eventbridge.Publisher
	if cfg.Events.BusName != "" {
		publisher = eventbridge.NewPublisher(awseventbridge.NewFromConfig(awsCfg), cfg.Events.BusName, logger)
	}

	// The sweep interval hot-reloads when the config file changes.
	var sweepInterval atomic.Int64
	sweepInterval.Store(int64(cfg.Sweeper.Interval.Std()))

	watcher, err := config.NewWatcher(configPath, logger, func(next *config.Config) {
		sweepInterval.Store(int64(next.Sweeper.Interval.Std()))
	})
	if err != nil {
		logger.Warn("Config watcher disabled", zap.Error(err))
	} else {
		defer watcher.Close()
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "expiry-sweep",
		Timeout: 2 * cfg.Sweeper.Interval.Std(),
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Sweep breaker state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           rest.NewRouter(store, publisher, logger).Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("Admin server listening", zap.String("addr", cfg.Server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	group.Go(func() error {
		return runSweepLoop(ctx, store, publisher, breaker, &sweepInterval, logger)
	})

	if err := group.Wait(); err != nil {
		logger.Fatal("Sweeper exited with error", zap.Error(err))
	}
	logger.Info("Sweeper stopped")
}

// runSweepLoop invokes the expiry sweep every interval until ctx ends. The
// breaker trips open after consecutive failures so a broken table is left
// alone until its timeout elapses.
func runSweepLoop(
	ctx context.Context,
	store *ddbstore.Store,
	publisher *eventbridge.Publisher,
	breaker *gobreaker.CircuitBreaker,
	interval *atomic.Int64,
	logger *zap.Logger,
) error {
	current := time.Duration(interval.Load())
	ticker := time.NewTicker(current)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if next := time.Duration(interval.Load()); next != current {
				current = next
				ticker.Reset(current)
				logger.Info("Sweep interval updated", zap.Duration("interval", current))
			}

			_, err := breaker.Execute(func() (interface{}, error) {
				return nil, store.DeleteExpiredCacheEntry(ctx)
			})
			switch {
			case errors.Is(err, gobreaker.ErrOpenState):
				logger.Warn("Sweep skipped, breaker open")
			case err != nil:
				logger.Error("Expiry sweep failed", zap.Error(err))
			default:
				if pubErr := publisher.PublishSwept(ctx); pubErr != nil {
					logger.Warn("Failed to publish sweep event", zap.Error(pubErr))
				}
			}
		}
	}
}

func newLogger(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// setupTracing wires the OTLP gRPC exporter when an endpoint is configured
// and returns a shutdown function; without an endpoint tracing stays on the
// default no-op provider.
func setupTracing(ctx context.Context, endpoint string) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(provider)
	return provider.Shutdown, nil
}
