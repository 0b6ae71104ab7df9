// Package dynamodb persists cache entries in AWS DynamoDB. This is the
// infrastructure layer behind the cache.ResponseCache contract: point
// read/write of entries, selector invalidation through chunked membership
// scans, and the expiry sweep, all sharing one batched delete engine.
package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// DynamoDBAPI defines the DynamoDB operations the store uses, making the
// store testable without AWS. The concrete *dynamodb.Client satisfies it.
type DynamoDBAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// Table schema. One item per cache key; the expiry index is sparse because
// gsi1pkExpires is only written on entries that carry an expiry.
const (
	DefaultTableName       = "responseCache"
	DefaultExpiryIndexName = "ExpireAtIndex"

	attrPK        = "PK"
	attrSK        = "SK"
	attrGSI1PK    = "GSI1PK"
	attrExpireAt  = "ExpireAt"
	attrTypenames = "Typenames"
	attrEntityIDs = "EntityIds"

	pkPrefix      = "CACHE#"
	skEntry       = "ENTRY"
	gsi1pkExpires = "EXPIRES"
)

// Bounds imposed by the store. A page is deleted as one transaction, so the
// page size may not exceed the transaction item limit.
const (
	// DefaultChunkSize bounds the membership-predicate list per scan.
	DefaultChunkSize = 10
	// DefaultPageSize bounds one page of the batched delete engine.
	DefaultPageSize = 100
	// maxTransactItems is DynamoDB's TransactWriteItems item limit.
	maxTransactItems = 100
)
