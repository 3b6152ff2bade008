package ports

import (
	"context"

	"github.com/morgankhalil/VenueConnect-sub003/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishTourRescored(ctx context.Context, event *domain.TourRescoredEvent) error
	PublishStopStatusChanged(ctx context.Context, event *domain.StopStatusChangedEvent) error
	PublishNetworkRebuilt(ctx context.Context, event *domain.NetworkRebuiltEvent) error
	PublishBroadcast(ctx context.Context, data []byte) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeVenueChanges(ctx context.Context, handler func(ctx context.Context, event *domain.VenueChangedEvent) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
