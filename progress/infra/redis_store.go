package infra

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"progress-sync/progress/domain"

	"github.com/redis/go-redis/v9"
)

const (
	redisFieldValue   = "value"
	redisFieldVersion = "version"
)

// RedisStore guarda cada chave como um hash {value, version}.
//
// Escritas condicionais usam WATCH/MULTI: se outra instância tocar a chave entre
// a leitura da versão e o EXEC, o resultado é domain.ErrVersionConflict.
type RedisStore struct {
	rdb    redis.UniversalClient
	prefix string
}

type RedisStoreOption func(*RedisStore)

func WithKeyPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) { s.prefix = strings.Trim(prefix, ":") }
}

func NewRedisStore(rdb redis.UniversalClient, opts ...RedisStoreOption) *RedisStore {
	s := &RedisStore{
		rdb:    rdb,
		prefix: "progress-sync",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) key(k string) string {
	if s.prefix == "" {
		return k
	}
	return s.prefix + ":" + k
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Get implementa domain.Store.
func (s *RedisStore) Get(ctx context.Context, key string) (domain.Entry, error) {
	vals, err := s.rdb.HMGet(ctx, s.key(key), redisFieldValue, redisFieldVersion).Result()
	if err != nil {
		return domain.Entry{}, fmt.Errorf("redis hmget: %w", err)
	}
	if len(vals) != 2 || vals[0] == nil {
		return domain.Entry{}, domain.ErrNotFound
	}

	value, ok := vals[0].(string)
	if !ok {
		return domain.Entry{}, fmt.Errorf("redis hmget: unexpected value type %T", vals[0])
	}
	var version int64
	if raw, ok := vals[1].(string); ok {
		version, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return domain.Entry{}, fmt.Errorf("redis hmget: bad version %q: %w", raw, err)
		}
	}
	return domain.Entry{Value: []byte(value), Version: version}, nil
}

// Set implementa domain.Store.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, opts domain.SetOptions) error {
	k := s.key(key)
	write := func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, k, redisFieldValue, value)
		pipe.HIncrBy(ctx, k, redisFieldVersion, 1)
		if opts.TTL > 0 {
			pipe.PExpire(ctx, k, opts.TTL)
		} else {
			pipe.Persist(ctx, k)
		}
		return nil
	}

	if opts.IfVersion == nil {
		if _, err := s.rdb.TxPipelined(ctx, write); err != nil {
			return fmt.Errorf("redis set: %w", err)
		}
		return nil
	}

	expected := *opts.IfVersion
	err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.HGet(ctx, k, redisFieldVersion).Int64()
		if errors.Is(err, redis.Nil) {
			current = 0
		} else if err != nil {
			return err
		}
		if current != expected {
			return domain.ErrVersionConflict
		}
		_, err = tx.TxPipelined(ctx, write)
		return err
	}, k)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrVersionConflict), errors.Is(err, redis.TxFailedErr):
		return domain.ErrVersionConflict
	default:
		return fmt.Errorf("redis set: %w", err)
	}
}
