package lock

import (
	"context"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/schedule"
)

const keyPrefix = "ratiba:lock:"

// releaseScript deletes a key only if it still holds our token: an expired lock re-taken
// by another instance must not be released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Redis is a keyed lock shared by every API instance using the same Redis.
// Keys expire after ttl so a crashed holder cannot block saves forever.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
	retry  time.Duration
}

var _ schedule.Locker = (*Redis)(nil)

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &Redis{client: client, ttl: ttl, retry: 50 * time.Millisecond}
}

// NewRedisClient connects to Redis and pings it.
func NewRedisClient(conf *core.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Redis.Addr,
		Password: conf.Redis.Password,
		DB:       conf.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, errors.Wrap(err, "pinging redis")
	}
	return client, nil
}

func (l *Redis) Lock(ctx context.Context, keys ...string) (func(), error) {
	keys = core.UniqueStrings(keys...)
	sort.Strings(keys)
	token := uuid.NewString()

	held := make([]string, 0, len(keys))
	release := func() {
		// released even once ctx is done
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		for i := len(held) - 1; i >= 0; i-- {
			_ = releaseScript.Run(rctx, l.client, []string{held[i]}, token).Err()
		}
	}

	for _, key := range keys {
		rkey := keyPrefix + key
		if err := l.acquire(ctx, rkey, token); err != nil {
			release()
			return nil, err
		}
		held = append(held, rkey)
	}
	return release, nil
}

func (l *Redis) acquire(ctx context.Context, key, token string) error {
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return errors.Wrapf(err, "locking %s", key)
		}
		if ok {
			return nil
		}

		select {
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), "waiting for %s", key)
		case <-time.After(l.retry):
		}
	}
}
