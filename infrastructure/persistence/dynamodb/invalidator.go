package dynamodb

import (
	"context"

	"dynacache/domain/cache"
	appErrors "dynacache/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// Invalidate deletes every entry whose index overlaps the selector set.
//
// Selectors are partitioned into type names and entity tokens (a broad
// selector subsumes the narrow ones of its typename), each list is split
// into chunks bounded by the membership-predicate limit, and every chunk
// drives one filtered scan through the batched delete engine. The typename
// phase completes before the entity-token phase: typename deletes may
// already remove entries the second phase would otherwise re-find. Each
// delete is idempotent, so ordering affects work, not correctness.
func (s *Store) Invalidate(ctx context.Context, selectors []cache.Selector) error {
	ctx, span := s.tracer.Start(ctx, "cache.Invalidate")
	defer span.End()
	start := s.now()

	typenames, entityTokens := cache.PartitionSelectors(selectors, s.build)

	deleted, err := s.invalidateField(ctx, attrTypenames, typenames)
	if err == nil {
		var byToken int
		byToken, err = s.invalidateField(ctx, attrEntityIDs, entityTokens)
		deleted += byToken
	}

	s.metrics.ObserveOperation("invalidate", s.now().Sub(start), err)
	s.metrics.RecordInvalidated(deleted)
	if err != nil {
		return err
	}

	s.logger.Info("Cache invalidation completed",
		zap.Int("typenames", len(typenames)),
		zap.Int("entityTokens", len(entityTokens)),
		zap.Int("deleted", deleted),
	)
	return nil
}

// invalidateField deletes every entry whose set-valued field intersects
// values, one chunked membership scan at a time.
func (s *Store) invalidateField(ctx context.Context, field string, values []string) (int, error) {
	deleted := 0
	for _, chunk := range cache.ChunkStrings(values, s.chunkSize) {
		n, err := s.deleteMatching(ctx, s.membershipScan(field, chunk))
		deleted += n
		if err != nil {
			return deleted, err
		}
	}
	return deleted, nil
}

// membershipScan builds the page fetcher for "entries whose field
// intersects chunk": an OR of contains() per chunk value, projected down to
// primary keys.
func (s *Store) membershipScan(field string, chunk []string) pageFetcher {
	return func(ctx context.Context, startKey map[string]types.AttributeValue) (keyPage, error) {
		filter := expression.Name(field).Contains(chunk[0])
		for _, value := range chunk[1:] {
			filter = filter.Or(expression.Name(field).Contains(value))
		}

		expr, err := expression.NewBuilder().
			WithFilter(filter).
			WithProjection(expression.NamesList(expression.Name(attrPK), expression.Name(attrSK))).
			Build()
		if err != nil {
			return keyPage{}, appErrors.Wrap(err, "failed to build membership filter")
		}

		result, err := s.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:                 aws.String(s.tableName),
			FilterExpression:          expr.Filter(),
			ProjectionExpression:      expr.Projection(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			Limit:                     aws.Int32(int32(s.pageSize)),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return keyPage{}, appErrors.FromStore(err, "failed to scan cache entries")
		}

		return keyPage{keys: keysOnly(result.Items), next: result.LastEvaluatedKey}, nil
	}
}
