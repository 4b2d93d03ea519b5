package proximity

import (
    "context"
    "strconv"
    "time"

    "github.com/redis/go-redis/v9"
)

// Cache stores pairwise ranking distances in Redis keyed by
// proximity:<requesterID>:<candidateID>.  A nil client disables the cache
// entirely; every method then behaves as a miss or a no-op, mirroring how
// the rest of the service degrades when Redis is unreachable.
type Cache struct {
    rdb *redis.Client
    ttl time.Duration
}

// NewCache returns a distance cache.  rdb may be nil.
func NewCache(rdb *redis.Client, ttl time.Duration) *Cache {
    if ttl <= 0 {
        ttl = 15 * time.Minute
    }
    return &Cache{rdb: rdb, ttl: ttl}
}

func cacheKey(requesterID, candidateID string) string {
    return "proximity:" + requesterID + ":" + candidateID
}

// Get returns a cached distance and whether it was present.  Redis errors
// are treated as misses.
func (c *Cache) Get(ctx context.Context, requesterID, candidateID string) (float64, bool) {
    if c == nil || c.rdb == nil {
        return 0, false
    }
    val, err := c.rdb.Get(ctx, cacheKey(requesterID, candidateID)).Result()
    if err != nil {
        return 0, false
    }
    km, err := strconv.ParseFloat(val, 64)
    if err != nil {
        return 0, false
    }
    return km, true
}

// Put stores a distance with the configured TTL.  Errors are ignored; the
// cache is purely an optimization.
func (c *Cache) Put(ctx context.Context, requesterID, candidateID string, km float64) {
    if c == nil || c.rdb == nil {
        return
    }
    _ = c.rdb.Set(ctx, cacheKey(requesterID, candidateID),
        strconv.FormatFloat(km, 'f', -1, 64), c.ttl).Err()
}

// InvalidateEntity removes every cached pair involving the entity, on
// either side.  Called when a school's or provider's location changes.
func (c *Cache) InvalidateEntity(ctx context.Context, entityID string) {
    if c == nil || c.rdb == nil {
        return
    }
    for _, pattern := range []string{
        "proximity:" + entityID + ":*",
        "proximity:*:" + entityID,
    } {
        iter := c.rdb.Scan(ctx, 0, pattern, 100).Iterator()
        for iter.Next(ctx) {
            _ = c.rdb.Del(ctx, iter.Val()).Err()
        }
    }
}
