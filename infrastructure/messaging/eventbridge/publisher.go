// Package eventbridge publishes cache lifecycle events to AWS EventBridge
// so downstream systems can react to invalidations and sweeps. Publishing
// is an optional collaborator surface: a nil publisher is a no-op.
package eventbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"dynacache/domain/cache"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.uber.org/zap"
)

// Event detail types emitted by the cache harness.
const (
	EventCacheInvalidated = "CacheInvalidated"
	EventCacheSwept       = "CacheSwept"

	eventSource = "dynacache"
)

// EventBridgeAPI defines the EventBridge operations the publisher uses.
// The concrete *eventbridge.Client satisfies it.
type EventBridgeAPI interface {
	PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

// CacheEvent is the JSON detail payload of every published event.
type CacheEvent struct {
	Selectors  []cache.Selector `json:"selectors,omitempty"`
	OccurredAt time.Time        `json:"occurredAt"`
}

// Publisher sends cache events to one EventBridge bus.
type Publisher struct {
	client       EventBridgeAPI
	eventBusName string
	logger       *zap.Logger
}

// NewPublisher creates a new EventBridge publisher.
func NewPublisher(client EventBridgeAPI, eventBusName string, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{
		client:       client,
		eventBusName: eventBusName,
		logger:       logger,
	}
}

// PublishInvalidated emits a CacheInvalidated event carrying the selectors.
func (p *Publisher) PublishInvalidated(ctx context.Context, selectors []cache.Selector) error {
	return p.publish(ctx, EventCacheInvalidated, CacheEvent{
		Selectors:  selectors,
		OccurredAt: time.Now().UTC(),
	})
}

// PublishSwept emits a CacheSwept event after an expiry sweep.
func (p *Publisher) PublishSwept(ctx context.Context) error {
	return p.publish(ctx, EventCacheSwept, CacheEvent{
		OccurredAt: time.Now().UTC(),
	})
}

func (p *Publisher) publish(ctx context.Context, detailType string, event CacheEvent) error {
	if p == nil || p.client == nil {
		return nil
	}

	detail, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal cache event: %w", err)
	}

	result, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{
		Entries: []types.PutEventsRequestEntry{
			{
				EventBusName: aws.String(p.eventBusName),
				Source:       aws.String(eventSource),
				DetailType:   aws.String(detailType),
				Detail:       aws.String(string(detail)),
				Time:         aws.Time(event.OccurredAt),
			},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to publish cache event: %w", err)
	}

	if result.FailedEntryCount > 0 {
		for _, entry := range result.Entries {
			if entry.ErrorCode != nil {
				p.logger.Error("Failed to publish cache event",
					zap.String("detailType", detailType),
					zap.String("errorCode", aws.ToString(entry.ErrorCode)),
					zap.String("errorMessage", aws.ToString(entry.ErrorMessage)),
				)
			}
		}
		return fmt.Errorf("%d cache events failed to publish", result.FailedEntryCount)
	}

	p.logger.Debug("Cache event published",
		zap.String("detailType", detailType),
		zap.String("eventBus", p.eventBusName),
	)
	return nil
}
