package cache

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
)

const codeKeyPrefix = "question:code:"

type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Channel  string
}

// RedisCache maps question codes to ids and relays hub events between
// server instances over a pub/sub channel.
type RedisCache struct {
	client  *redis.Client
	ttl     time.Duration
	channel string
}

func NewRedisCache(opts Options) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return NewRedisCacheWithClient(client, opts.TTL, opts.Channel)
}

func NewRedisCacheWithClient(client *redis.Client, ttl time.Duration, channel string) *RedisCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if channel == "" {
		channel = "quiz-event:events"
	}
	return &RedisCache{client: client, ttl: ttl, channel: channel}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// GetQuestionID returns the cached id for code. A miss is reported with
// ok=false and a nil error.
func (c *RedisCache) GetQuestionID(ctx context.Context, code string) (string, bool, error) {
	id, err := c.client.Get(ctx, codeKeyPrefix+code).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}

func (c *RedisCache) SetQuestionID(ctx context.Context, code, id string) error {
	return c.client.Set(ctx, codeKeyPrefix+code, id, c.ttl).Err()
}

func (c *RedisCache) DeleteQuestionCodes(ctx context.Context, codes ...string) error {
	if len(codes) == 0 {
		return nil
	}
	pipe := c.client.Pipeline()
	for _, code := range codes {
		pipe.Del(ctx, codeKeyPrefix+code)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (c *RedisCache) Publish(ctx context.Context, payload []byte) error {
	return c.client.Publish(ctx, c.channel, payload).Err()
}

// Subscribe confirms the subscription before returning, so messages
// published afterwards are guaranteed to be delivered. The returned channel
// closes when ctx is cancelled.
func (c *RedisCache) Subscribe(ctx context.Context) (<-chan []byte, error) {
	pubsub := c.client.Subscribe(ctx, c.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, err
	}

	out := make(chan []byte, 64)
	go func() {
		defer close(out)
		defer pubsub.Close()

		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					log.Warn().Str("channel", c.channel).Msg("redis subscription closed")
					return
				}
				select {
				case out <- []byte(msg.Payload):
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
