package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/StayLedger/internal/domain/currency"
	"github.com/turtacn/StayLedger/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/StayLedger/pkg/errors"
)

const rateKeyPrefix = "fx:snapshot:"

// RateCache is a currency.RateCache shared by every API instance. Entries
// expire in Redis after ttl; freshness is still decided by the rate service
// from FetchedAt.
type RateCache struct {
	client *Client
	ttl    time.Duration
	logger logging.Logger
}

var _ currency.RateCache = (*RateCache)(nil)

// NewRateCache returns a RateCache. A zero ttl stores entries without expiry.
func NewRateCache(client *Client, ttl time.Duration, log logging.Logger) *RateCache {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &RateCache{client: client, ttl: ttl, logger: log}
}

func (c *RateCache) key(base string) string {
	return c.client.Key(rateKeyPrefix + currency.NormalizeCode(base))
}

func (c *RateCache) Get(ctx context.Context, base string) (*currency.Snapshot, bool, error) {
	raw, err := c.client.rdb.Get(ctx, c.key(base)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, errors.CodeCacheError, "read rate snapshot")
	}

	var snap currency.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		// A corrupt entry is treated as a miss so the chain repopulates it.
		c.logger.Warn("discarding undecodable rate snapshot", logging.Currency("base", base), logging.Err(err))
		return nil, false, nil
	}
	return &snap, true, nil
}

func (c *RateCache) Set(ctx context.Context, snap *currency.Snapshot) error {
	if snap == nil {
		return nil
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "encode rate snapshot")
	}
	if err := c.client.rdb.Set(ctx, c.key(snap.Base), raw, c.ttl).Err(); err != nil {
		return errors.Wrap(err, errors.CodeCacheError, "write rate snapshot")
	}
	return nil
}

func (c *RateCache) Invalidate(ctx context.Context, base string) error {
	if err := c.client.rdb.Del(ctx, c.key(base)).Err(); err != nil {
		return errors.Wrap(err, errors.CodeCacheError, "invalidate rate snapshot")
	}
	return nil
}

//Personal.AI order the ending
