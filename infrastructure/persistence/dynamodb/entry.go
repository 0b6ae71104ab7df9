package dynamodb

import (
	"time"

	"dynacache/domain/cache"
	appErrors "dynacache/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ddbEntry represents the structure of a cache entry item in DynamoDB.
type ddbEntry struct {
	PK        string   `dynamodbav:"PK"`
	SK        string   `dynamodbav:"SK"`
	CacheKey  string   `dynamodbav:"CacheKey"`
	Payload   []byte   `dynamodbav:"Payload"`
	ExpireAt  int64    `dynamodbav:"ExpireAt,omitempty"` // epoch milliseconds; absent means never expires
	GSI1PK    string   `dynamodbav:"GSI1PK,omitempty"`   // set only alongside ExpireAt, keeps the expiry index sparse
	Typenames []string `dynamodbav:"Typenames,stringset,omitempty"`
	EntityIds []string `dynamodbav:"EntityIds,stringset,omitempty"`
	CreatedAt string   `dynamodbav:"CreatedAt"`
}

// entryKey builds the primary key for the entry stored at the cache key.
func entryKey(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrPK: &types.AttributeValueMemberS{Value: pkPrefix + key},
		attrSK: &types.AttributeValueMemberS{Value: skEntry},
	}
}

// marshalEntry converts a cache entry to its DynamoDB item shape.
func marshalEntry(entry cache.Entry) (map[string]types.AttributeValue, error) {
	doc := ddbEntry{
		PK:        pkPrefix + entry.Key,
		SK:        skEntry,
		CacheKey:  entry.Key,
		Payload:   entry.Payload,
		Typenames: entry.Typenames,
		EntityIds: entry.EntityIDs,
		CreatedAt: entry.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if !entry.ExpireAt.IsZero() {
		doc.ExpireAt = entry.ExpireAt.UnixMilli()
		doc.GSI1PK = gsi1pkExpires
	}

	item, err := attributevalue.MarshalMap(doc)
	if err != nil {
		return nil, appErrors.Wrap(err, "failed to marshal cache entry")
	}
	return item, nil
}

// unmarshalEntry converts a DynamoDB item back into a cache entry.
func unmarshalEntry(item map[string]types.AttributeValue) (cache.Entry, error) {
	var doc ddbEntry
	if err := attributevalue.UnmarshalMap(item, &doc); err != nil {
		return cache.Entry{}, appErrors.Wrap(err, "failed to unmarshal cache entry")
	}

	entry := cache.Entry{
		Key:       doc.CacheKey,
		Payload:   doc.Payload,
		Typenames: doc.Typenames,
		EntityIDs: doc.EntityIds,
	}
	if doc.ExpireAt != 0 {
		entry.ExpireAt = time.UnixMilli(doc.ExpireAt).UTC()
	}
	if doc.CreatedAt != "" {
		if createdAt, err := time.Parse(time.RFC3339Nano, doc.CreatedAt); err == nil {
			entry.CreatedAt = createdAt
		}
	}
	return entry, nil
}
