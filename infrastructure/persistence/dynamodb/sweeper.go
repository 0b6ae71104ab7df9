package dynamodb

import (
	"context"

	appErrors "dynacache/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// DeleteExpiredCacheEntry deletes every entry whose expiry instant is
// strictly before now, in ascending expiry order, through the batched
// delete engine. The expiry index is sparse: entries without an expiry are
// never in it, so they are never matched. The store starts no timer of its
// own; the surrounding system invokes this on a schedule.
func (s *Store) DeleteExpiredCacheEntry(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "cache.DeleteExpiredCacheEntry")
	defer span.End()
	start := s.now()

	deleted, err := s.deleteMatching(ctx, s.expiredQuery(start.UnixMilli()))

	s.metrics.ObserveOperation("sweep", s.now().Sub(start), err)
	s.metrics.RecordSwept(deleted)
	if err != nil {
		return err
	}

	s.logger.Info("Expiry sweep completed", zap.Int("deleted", deleted))
	return nil
}

// expiredQuery builds the page fetcher for "entries whose ExpireAt is set
// and strictly before cutoff", ordered by ExpireAt ascending on the sparse
// expiry index and projected down to primary keys.
func (s *Store) expiredQuery(cutoff int64) pageFetcher {
	return func(ctx context.Context, startKey map[string]types.AttributeValue) (keyPage, error) {
		keyCond := expression.Key(attrGSI1PK).Equal(expression.Value(gsi1pkExpires)).
			And(expression.Key(attrExpireAt).LessThan(expression.Value(cutoff)))

		expr, err := expression.NewBuilder().
			WithKeyCondition(keyCond).
			WithProjection(expression.NamesList(expression.Name(attrPK), expression.Name(attrSK))).
			Build()
		if err != nil {
			return keyPage{}, appErrors.Wrap(err, "failed to build expiry condition")
		}

		result, err := s.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(s.tableName),
			IndexName:                 aws.String(s.expiryIndex),
			KeyConditionExpression:    expr.KeyCondition(),
			ProjectionExpression:      expr.Projection(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ScanIndexForward:          aws.Bool(true),
			Limit:                     aws.Int32(int32(s.pageSize)),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return keyPage{}, appErrors.FromStore(err, "failed to query expired cache entries")
		}

		return keyPage{keys: keysOnly(result.Items), next: result.LastEvaluatedKey}, nil
	}
}
