package dynamodb

import (
	"context"
	"time"

	"dynacache/domain/cache"
	appErrors "dynacache/pkg/errors"
	"dynacache/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Store is the DynamoDB-backed response cache.
type Store struct {
	client      DynamoDBAPI
	tableName   string
	expiryIndex string
	chunkSize   int
	pageSize    int
	build       cache.IdentifierBuilder
	now         func() time.Time
	metrics     *observability.CacheMetrics
	tracer      trace.Tracer
	logger      *zap.Logger
}

var _ cache.ResponseCache = (*Store)(nil)

// Option customizes a Store.
type Option func(*Store)

// WithIdentifierBuilder replaces the default entity identifier builder.
func WithIdentifierBuilder(build cache.IdentifierBuilder) Option {
	return func(s *Store) {
		if build != nil {
			s.build = build
		}
	}
}

// WithChunkSize bounds the membership-predicate list per invalidation scan.
func WithChunkSize(size int) Option {
	return func(s *Store) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithPageSize bounds one page of the batched delete engine. Values above
// the transaction item limit are clamped so a page stays one transaction.
func WithPageSize(size int) Option {
	return func(s *Store) {
		if size > 0 {
			s.pageSize = size
		}
	}
}

// WithMetrics attaches cache metrics.
func WithMetrics(metrics *observability.CacheMetrics) Option {
	return func(s *Store) {
		s.metrics = metrics
	}
}

// WithClock replaces the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates a new DynamoDB-backed response cache store.
func New(client DynamoDBAPI, tableName, expiryIndex string, logger *zap.Logger, opts ...Option) *Store {
	if tableName == "" {
		tableName = DefaultTableName
	}
	if expiryIndex == "" {
		expiryIndex = DefaultExpiryIndexName
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	store := &Store{
		client:      client,
		tableName:   tableName,
		expiryIndex: expiryIndex,
		chunkSize:   DefaultChunkSize,
		pageSize:    DefaultPageSize,
		build:       cache.DefaultIdentifierBuilder,
		now:         time.Now,
		tracer:      otel.Tracer("dynacache/infrastructure/persistence/dynamodb"),
		logger:      logger,
	}
	for _, opt := range opts {
		opt(store)
	}
	if store.pageSize > maxTransactItems {
		store.pageSize = maxTransactItems
	}
	return store
}

// Set writes the full entry at key, overwriting any prior entry. The write
// is unconditional: concurrent Sets on one key race and the store commits
// whichever write lands last.
func (s *Store) Set(ctx context.Context, key string, payload []byte, entities []cache.Entity, ttl time.Duration) error {
	ctx, span := s.tracer.Start(ctx, "cache.Set")
	defer span.End()
	start := s.now()

	entry := cache.NewEntry(key, payload, entities, ttl, start, s.build)
	item, err := marshalEntry(entry)
	if err != nil {
		return err
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	s.metrics.ObserveOperation("set", s.now().Sub(start), err)
	if err != nil {
		return appErrors.FromStore(err, "failed to write cache entry")
	}

	s.logger.Debug("Cache entry written",
		zap.String("cacheKey", key),
		zap.Int("typenames", len(entry.Typenames)),
		zap.Int("entityIds", len(entry.EntityIDs)),
		zap.Time("expireAt", entry.ExpireAt),
	)
	return nil
}

// Get reads the entry at key. A miss is (nil, false, nil). An entry found
// to be expired is evicted in a detached fire-and-forget task and reported
// as a miss; the read path never waits for that cleanup.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, span := s.tracer.Start(ctx, "cache.Get")
	defer span.End()
	start := s.now()

	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key:       entryKey(key),
	})
	s.metrics.ObserveOperation("get", s.now().Sub(start), err)
	if err != nil {
		return nil, false, appErrors.FromStore(err, "failed to read cache entry")
	}

	if len(result.Item) == 0 {
		s.metrics.RecordMiss()
		return nil, false, nil
	}

	entry, err := unmarshalEntry(result.Item)
	if err != nil {
		return nil, false, err
	}

	if entry.Expired(s.now()) {
		s.evictExpired(ctx, key)
		s.metrics.RecordMiss()
		return nil, false, nil
	}

	s.metrics.RecordHit()
	return entry.Payload, true, nil
}

// evictExpired deletes an entry observed to be expired at read time. The
// deletion runs detached from the caller and its failure is swallowed; the
// sweep will catch anything this misses.
func (s *Store) evictExpired(ctx context.Context, key string) {
	detached := context.WithoutCancel(ctx)
	go func() {
		_, err := s.client.DeleteItem(detached, &dynamodb.DeleteItemInput{
			TableName: aws.String(s.tableName),
			Key:       entryKey(key),
		})
		if err != nil {
			s.logger.Warn("Lazy eviction failed",
				zap.String("cacheKey", key),
				zap.Error(err),
			)
			return
		}
		s.metrics.RecordLazyEviction()
		s.logger.Debug("Expired cache entry evicted on read", zap.String("cacheKey", key))
	}()
}
