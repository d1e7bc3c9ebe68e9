package consumer

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"

	c "github.com/nijercart/storefront/internal/cart/cache"
	r "github.com/nijercart/storefront/internal/cart/repository"
	"github.com/nijercart/storefront/internal/events"
)

// Consumer empties a user's cart once their order is placed. Clearing
// happens off the checkout path, driven by the order-placed event, so a
// slow cart store never delays order confirmation.
type Consumer struct {
	repo   r.CartRepository
	cache  c.CartCache
	reader *kafka.Reader
	log    *logrus.Logger
}

func NewConsumer(repo r.CartRepository, cache c.CartCache, log *logrus.Logger, brokers ...string) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    events.Topic,
		GroupID:  "storefront-cart-clear",
		MaxBytes: 10e6, // 10MB
	})
	return &Consumer{repo: repo, cache: cache, reader: reader, log: log}
}

func (c *Consumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		c.processMessage(ctx)
	}
}

func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		c.log.WithError(err).Warn("error closing kafka reader")
	}
}

func (c *Consumer) processMessage(ctx context.Context) {
	m, err := c.reader.ReadMessage(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		c.log.WithError(err).Error("error reading message")
		return
	}

	var payload map[string]interface{}
	if errUnmarshal := json.Unmarshal(m.Value, &payload); errUnmarshal != nil {
		c.log.WithError(errUnmarshal).Error("error parsing message")
		return
	}

	userID, ok := payload["user_id"].(string)
	if !ok {
		c.log.Error("missing or invalid user_id in order event")
		return
	}

	errDelete := c.repo.DeleteCart(ctx, userID)
	if errDelete != nil && !errors.Is(errDelete, r.ErrCartNotFound) {
		c.log.WithError(errDelete).Error("failed to delete cart")
	}

	if errCache := c.cache.Delete(ctx, userID); errCache != nil {
		c.log.WithError(errCache).Warn("failed to delete cart cache")
	}
}
