// Lambda entry point for the cache harness. One function serves two event
// shapes: API Gateway HTTP requests proxied to the chi admin router, and
// EventBridge scheduled events that trigger the expiry sweep.
package main

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"dynacache/infrastructure/messaging/eventbridge"
	ddbstore "dynacache/infrastructure/persistence/dynamodb"
	"dynacache/internal/config"
	"dynacache/interfaces/http/rest"
	"dynacache/pkg/observability"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	chiadapter "github.com/awslabs/aws-lambda-go-api-proxy/chi"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

var (
	chiLambda *chiadapter.ChiLambdaV2
	store     *ddbstore.Store
	logger    *zap.Logger
)

// init runs during cold start.
func init() {
	ctx := context.Background()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err = zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
	if err != nil {
		logger.Fatal("Failed to load AWS config", zap.Error(err))
	}

	dbClient := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.AWS.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.AWS.Endpoint)
		}
	})

	store = ddbstore.New(dbClient, cfg.Table.Name, cfg.Table.ExpiryIndex, logger,
		ddbstore.WithChunkSize(cfg.Cache.ChunkSize),
		ddbstore.WithPageSize(cfg.Cache.PageSize),
		ddbstore.WithMetrics(observability.NewCacheMetrics(prometheus.DefaultRegisterer)),
	)

	var publisher *eventbridge.Publisher
	if cfg.Events.BusName != "" {
		publisher = eventbridge.NewPublisher(awseventbridge.NewFromConfig(awsCfg), cfg.Events.BusName, logger)
	}

	handler := rest.NewRouter(store, publisher, logger).Setup()
	chiRouter, ok := handler.(*chi.Mux)
	if !ok {
		logger.Fatal("Failed to cast handler to chi.Mux")
	}
	chiLambda = chiadapter.NewV2(chiRouter)
}

// Handler dispatches on the raw event shape: scheduled EventBridge events
// run the sweep, everything else is treated as an API Gateway request.
func Handler(ctx context.Context, raw json.RawMessage) (interface{}, error) {
	var probe struct {
		DetailType string `json:"detail-type"`
		RouteKey   string `json:"routeKey"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, err
	}

	if probe.DetailType != "" {
		logger.Info("Scheduled sweep triggered", zap.String("detailType", probe.DetailType))
		return nil, store.DeleteExpiredCacheEntry(ctx)
	}

	var req events.APIGatewayV2HTTPRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, err
	}
	return chiLambda.ProxyWithContextV2(ctx, req)
}

func main() {
	lambda.Start(Handler)
}
