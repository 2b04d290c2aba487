package claims

import (
	"context"
	"errors"
	"fmt"
	"route-assignment-service/internal/platform/obs"
	"route-assignment-service/internal/ports"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Sets every key with NX or none of them. Returns 1 on success, 0 on conflict.
var claimScript = redis.NewScript(`
for i, key in ipairs(KEYS) do
	if redis.call("EXISTS", key) == 1 then
		return 0
	end
end
for i, key in ipairs(KEYS) do
	redis.call("SET", key, ARGV[1], "PX", ARGV[2])
end
return 1
`)

// Deletes only keys still owned by ARGV[1].
var releaseScript = redis.NewScript(`
local n = 0
for i, key in ipairs(KEYS) do
	if redis.call("GET", key) == ARGV[1] then
		n = n + redis.call("DEL", key)
	end
end
return n
`)

// RedisClaimer implements ports.OrderClaimer across service instances.
type RedisClaimer struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisClaimer(url string, ttl time.Duration) (*RedisClaimer, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis claimer: parse url: %w", err)
	}

	return NewRedisClaimerWithClient(redis.NewClient(opt), ttl), nil
}

func NewRedisClaimerWithClient(rdb *redis.Client, ttl time.Duration) *RedisClaimer {
	return &RedisClaimer{rdb: rdb, ttl: ttl, prefix: "route-claim:order:"}
}

func (c *RedisClaimer) keys(ids []int64) []string {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, c.prefix+strconv.FormatInt(id, 10))
	}
	return keys
}

func (c *RedisClaimer) Claim(
	ctx context.Context,
	owner string,
	ids []int64,
) (_ func(context.Context), err error) {
	defer obs.Time(ctx, "claims.redis.Claim")(&err)

	if owner == "" {
		return nil, errors.New("redis claim: owner is empty")
	}

	keys := c.keys(ids)
	if len(keys) == 0 {
		return func(context.Context) {}, nil
	}

	ok, err := claimScript.Run(ctx, c.rdb, keys, owner, c.ttl.Milliseconds()).Int()
	if err != nil {
		return nil, fmt.Errorf("redis claim: %w", err)
	}
	if ok != 1 {
		return nil, ports.ErrOrdersClaimed
	}

	release := func(ctx context.Context) {
		if err := releaseScript.Run(ctx, c.rdb, keys, owner).Err(); err != nil {
			zap.L().Warn("release order claims failed",
				zap.String("owner", owner),
				zap.Int("orders", len(keys)),
				zap.Error(err),
			)
		}
	}

	return release, nil
}

func (c *RedisClaimer) Close() error {
	return c.rdb.Close()
}
