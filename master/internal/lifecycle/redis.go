package lifecycle

import (
	"context"
	"fmt"
	"time"

	back "github.com/cenkalti/backoff/v4"
	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/computeplane/computeplane/master/internal/api"
	"github.com/computeplane/computeplane/master/internal/config"
)

const (
	redisIndexKey      = "index"
	redisUpdateRetries = 20
)

type redisLogger struct{}

func (redisLogger) Printf(_ context.Context, format string, v ...interface{}) {
	log.WithField("component", "redis").Infof(format, v...)
}

// NewRedisClient connects to redis and checks the connection.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (redis.UniversalClient, error) {
	redis.SetLogger(redisLogger{})
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    cfg.Addrs,
		DB:       cfg.DB,
		Username: cfg.Username,
		Password: cfg.Password,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "connecting to redis at %v", cfg.Addrs)
	}
	return client, nil
}

// RedisStore keeps one payload per key under a prefix, plus a sorted set of tracking ids scored
// by last update time. Updates are optimistic: the key is watched and the transaction retried if
// another writer changed it first.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisStore returns a store over the client.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (r *RedisStore) key(trackingID string) string {
	return fmt.Sprintf("%slog:%s", r.prefix, trackingID)
}

func (r *RedisStore) indexKey() string {
	return r.prefix + redisIndexKey
}

// Payload implements Store.
func (r *RedisStore) Payload(ctx context.Context, trackingID string) ([]byte, error) {
	payload, err := r.client.Get(ctx, r.key(trackingID)).Bytes()
	if err == redis.Nil {
		return nil, api.AsErrNotFound("lifecycle log %s", trackingID)
	} else if err != nil {
		return nil, errors.Wrapf(err, "reading lifecycle log %s", trackingID)
	}
	return payload, nil
}

// Update implements Store.
func (r *RedisStore) Update(
	ctx context.Context, trackingID string, fn func(current []byte) ([]byte, error),
) error {
	key := r.key(trackingID)
	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Bytes()
		if err == redis.Nil {
			current = nil
		} else if err != nil {
			return err
		}

		next, err := fn(current)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, 0)
			pipe.ZAdd(ctx, r.indexKey(), &redis.Z{
				Score:  float64(time.Now().UnixNano()),
				Member: trackingID,
			})
			return nil
		})
		return err
	}

	err := back.Retry(func() error {
		err := r.client.Watch(ctx, txf, key)
		switch {
		case err == redis.TxFailedErr:
			log.WithField("tracking-id", trackingID).
				Debug("lifecycle log changed concurrently, retrying")
			return err
		case err != nil:
			return back.Permanent(err)
		default:
			return nil
		}
	}, updateBackoff(ctx))
	if err == redis.TxFailedErr {
		return errors.Errorf("updating lifecycle log %s: too many concurrent writers", trackingID)
	}
	return err
}

func updateBackoff(ctx context.Context) back.BackOff {
	bf := back.NewExponentialBackOff()
	bf.InitialInterval = 5 * time.Millisecond
	bf.MaxInterval = 250 * time.Millisecond
	return back.WithContext(back.WithMaxRetries(bf, redisUpdateRetries), ctx)
}

// TrackingIDs implements Store, most recently updated first.
func (r *RedisStore) TrackingIDs(ctx context.Context) ([]string, error) {
	ids, err := r.client.ZRevRange(ctx, r.indexKey(), 0, -1).Result()
	return ids, errors.Wrap(err, "listing lifecycle logs")
}
