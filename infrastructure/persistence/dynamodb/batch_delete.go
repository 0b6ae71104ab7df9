package dynamodb

import (
	"context"

	appErrors "dynacache/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"go.uber.org/zap"
)

// keyPage is one page of a filtered query: the primary keys of the matching
// items plus the cursor to resume after, nil when the query is exhausted.
type keyPage struct {
	keys []map[string]types.AttributeValue
	next map[string]types.AttributeValue
}

// pageFetcher fetches the page of matching keys after startKey.
type pageFetcher func(ctx context.Context, startKey map[string]types.AttributeValue) (keyPage, error)

// deleteMatching is the batched delete engine shared by the invalidator and
// the expiry sweeper. It runs an explicit loop: fetch a page of matching
// keys after the cursor, delete the page as one transaction, advance the
// cursor, and stop when the cursor is exhausted. A page with zero matches
// but a live cursor only advances (the store filters after it paginates).
//
// The engine is re-entrant and idempotent: re-running the same filter after
// a mid-run failure re-finds and deletes whatever still matches. No page is
// retried here; errors propagate to the caller unchanged in cause.
func (s *Store) deleteMatching(ctx context.Context, fetch pageFetcher) (int, error) {
	var cursor map[string]types.AttributeValue
	deleted := 0

	for {
		page, err := fetch(ctx, cursor)
		if err != nil {
			return deleted, err
		}

		if len(page.keys) > 0 {
			if err := s.deletePage(ctx, page.keys); err != nil {
				return deleted, err
			}
			deleted += len(page.keys)
		}

		if page.next == nil {
			s.logger.Debug("Batched delete drained", zap.Int("deleted", deleted))
			return deleted, nil
		}
		cursor = page.next
	}
}

// deletePage deletes one page of keys as a single transaction: either every
// item in the page is removed or the whole page fails.
func (s *Store) deletePage(ctx context.Context, keys []map[string]types.AttributeValue) error {
	items := make([]types.TransactWriteItem, 0, len(keys))
	for _, key := range keys {
		items = append(items, types.TransactWriteItem{
			Delete: &types.Delete{
				TableName: aws.String(s.tableName),
				Key:       key,
			},
		})
	}

	_, err := s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	if err != nil {
		return appErrors.FromStore(err, "failed to delete cache entry page")
	}
	return nil
}

// keysOnly extracts the primary key attributes from queried items.
func keysOnly(items []map[string]types.AttributeValue) []map[string]types.AttributeValue {
	keys := make([]map[string]types.AttributeValue, 0, len(items))
	for _, item := range items {
		key := map[string]types.AttributeValue{}
		if pk, ok := item[attrPK]; ok {
			key[attrPK] = pk
		}
		if sk, ok := item[attrSK]; ok {
			key[attrSK] = sk
		}
		keys = append(keys, key)
	}
	return keys
}
