// Package quotecache keeps short-lived quotes in Redis between the quote and
// booking requests.
package quotecache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"rentshare-backend/internal/domain"
)

const keyPrefix = "quote:"

type QuoteCache struct {
	c *redis.Client
}

func New(c *redis.Client) *QuoteCache {
	return &QuoteCache{c: c}
}

func key(id string) string {
	return keyPrefix + id
}

func (q *QuoteCache) Put(ctx context.Context, quote *domain.Quote, ttl time.Duration) error {
	if ttl <= 0 {
		return errors.Errorf("quote %s: ttl must be positive, got %s", quote.ID, ttl)
	}
	val, err := json.Marshal(quote)
	if err != nil {
		return errors.Wrap(err, "marshal quote")
	}
	if err := q.c.Set(ctx, key(quote.ID), val, ttl).Err(); err != nil {
		return errors.Wrap(err, "redis set")
	}
	return nil
}

// Take removes the quote and returns it, so at most one caller ever receives
// a given quote. ok is false when the quote never existed, has expired or was
// already taken.
func (q *QuoteCache) Take(ctx context.Context, id string) (*domain.Quote, bool, error) {
	val, err := q.c.GetDel(ctx, key(id)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "redis getdel")
	}
	var quote domain.Quote
	if err := json.Unmarshal(val, &quote); err != nil {
		return nil, false, errors.Wrapf(err, "decode quote %s", id)
	}
	return &quote, true, nil
}
