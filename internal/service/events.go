package service

import (
	"context"
	"strconv"
	"time"

	"github.com/Skotchmaster/storefront/pkg/logging"
)

const (
	TopicUsers    = "user_events"
	TopicProducts = "product_events"
	TopicCarts    = "cart_events"
)

// EventPublisher is implemented by the Kafka producer. A nil publisher
// disables events.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

const publishTimeout = 5 * time.Second

func publish(ctx context.Context, p EventPublisher, topic string, key uint, event map[string]any) {
	if p == nil {
		return
	}
	event["at"] = time.Now().UTC().Format(time.RFC3339)

	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := p.PublishEvent(pctx, topic, strconv.FormatUint(uint64(key), 10), event); err != nil {
		logging.FromContext(ctx).Error("event_publish_failed", "topic", topic, "type", event["type"], "error", err)
	}
}
