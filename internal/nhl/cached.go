package nhl

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fortuna/faceoff/pkg/logger"
)

// Cache is the key/value store player lookups are memoized in.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
}

// PlayerSource is anything that can look a player up.
type PlayerSource interface {
	Player(ctx context.Context, playerID int) (*PlayerCareerStats, error)
}

// CachedPlayers memoizes player lookups. Cache failures fall through to
// the source and are never returned.
type CachedPlayers struct {
	source PlayerSource
	cache  Cache
	ttl    time.Duration
	log    *logrus.Entry
}

// NewCachedPlayers wraps source with cache.
func NewCachedPlayers(source PlayerSource, cache Cache, ttl time.Duration, log *logrus.Entry) *CachedPlayers {
	if log == nil {
		log = logger.Discard()
	}
	return &CachedPlayers{
		source: source,
		cache:  cache,
		ttl:    ttl,
		log:    log.WithField("component", "player-cache"),
	}
}

func playerKey(id int) string {
	return fmt.Sprintf("faceoff:player:%d", id)
}

// Player returns the cached lookup or fetches and stores it.
func (c *CachedPlayers) Player(ctx context.Context, playerID int) (*PlayerCareerStats, error) {
	key := playerKey(playerID)

	if raw, err := c.cache.Get(ctx, key); err == nil {
		var p PlayerCareerStats
		if err := json.Unmarshal([]byte(raw), &p); err == nil {
			return &p, nil
		}
		c.log.WithField("player_id", playerID).Warn("Discarding undecodable cache entry")
	}

	p, err := c.source.Player(ctx, playerID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(p); err == nil {
		if err := c.cache.Set(ctx, key, string(data), c.ttl); err != nil {
			c.log.WithError(err).WithField("player_id", playerID).Debug("Cache write failed")
		}
	}
	return p, nil
}
