package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const participantsKey = "wordstreak:participants"

// RedisCache shares the participant list between API instances.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	key    string
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{client: client, ttl: ttl, key: participantsKey}
}

// NewRedisClient builds a client and pings it once. An unreachable server is
// returned as an error so callers can fall back to MemoryCache.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

func (c *RedisCache) Get(ctx context.Context) ([]ParticipantSummary, bool) {
	b, err := c.client.Get(ctx, c.key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.WithError(err).Warn("Participant cache read failed")
		}
		return nil, false
	}
	var participants []ParticipantSummary
	if err := json.Unmarshal(b, &participants); err != nil {
		log.WithError(err).Warn("Participant cache holds an unreadable payload")
		return nil, false
	}
	return participants, true
}

func (c *RedisCache) Set(ctx context.Context, participants []ParticipantSummary) error {
	b, err := json.Marshal(participants)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key, b, c.ttl).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, c.key).Err()
}
