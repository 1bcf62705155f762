package realtime

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/wishwell/api/internal/domain"
)

const channelPrefix = "wishlist:"

// RedisBridge routes snapshots through Redis pub/sub so a mutation handled
// by one instance reaches viewers connected to another. Every instance
// subscribes to the wishlist channels and feeds received snapshots into its
// local hub; publishing therefore replaces direct hub delivery.
type RedisBridge struct {
	client *redis.Client
	hub    *Hub
	log    *logrus.Logger
}

func NewRedisBridge(client *redis.Client, hub *Hub, log *logrus.Logger) *RedisBridge {
	return &RedisBridge{client: client, hub: hub, log: log}
}

// Broadcast publishes the snapshot; local delivery happens when the message
// comes back through the subscription, same as on every other instance.
func (b *RedisBridge) Broadcast(slug string, snapshot domain.PublicWishlist) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		b.log.WithError(err).WithField("slug", slug).Error("encode snapshot")
		return
	}
	if err := b.client.Publish(context.Background(), channelPrefix+slug, payload).Err(); err != nil {
		b.log.WithError(err).WithField("slug", slug).Warn("publish snapshot")
	}
}

// Run consumes the wishlist channels until the context is cancelled,
// delivering each snapshot to the local hub. The subscription reconnects
// internally on connection loss; a Redis blip loses at most the snapshots
// published while disconnected, and the next one heals the viewers.
func (b *RedisBridge) Run(ctx context.Context) error {
	sub := b.client.PSubscribe(ctx, channelPrefix+"*")
	defer sub.Close()

	feed := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-feed:
			if !ok {
				return nil
			}
			slug := strings.TrimPrefix(msg.Channel, channelPrefix)
			b.hub.Deliver(slug, []byte(msg.Payload))
		}
	}
}
