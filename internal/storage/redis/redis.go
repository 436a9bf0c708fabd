// redis хранит пару токенов под одним ключом Redis.
//
// Значение — JSON пары (storage.Encode). TTL > 0 ограничивает жизнь ключа:
// по истечении сессия при следующем старте восстанавливается как анонимная.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/pribylovaa/storefront/internal/models"
	"github.com/pribylovaa/storefront/internal/storage"
)

type Store struct {
	rdb *goredis.Client
	key string
	ttl time.Duration
}

// New создаёт клиент Redis из URL (например, redis://:pass@host:6379/0).
// Если key пустой — используется "storefront:tokens".
func New(ctx context.Context, redisURL, key string, ttl time.Duration) (*Store, error) {
	const op = "storage.redis.New"

	opt, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rdb := goredis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return NewWithClient(rdb, key, ttl), nil
}

// NewWithClient оборачивает уже настроенный клиент.
func NewWithClient(rdb *goredis.Client, key string, ttl time.Duration) *Store {
	if key == "" {
		key = "storefront:tokens"
	}

	return &Store{rdb: rdb, key: key, ttl: ttl}
}

func (s *Store) Load(ctx context.Context) (models.Credentials, error) {
	const op = "storage.redis.Load"

	b, err := s.rdb.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return models.Credentials{}, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return models.Credentials{}, fmt.Errorf("%s: %w", op, err)
	}

	creds, err := storage.Decode(b)
	if err != nil {
		return models.Credentials{}, fmt.Errorf("%s: %w", op, err)
	}

	return creds, nil
}

func (s *Store) Save(ctx context.Context, creds models.Credentials) error {
	const op = "storage.redis.Save"

	b, err := storage.Encode(creds)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.rdb.Set(ctx, s.key, b, s.ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Store) Delete(ctx context.Context) error {
	const op = "storage.redis.Delete"

	if err := s.rdb.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Store) Close() error { return s.rdb.Close() }

var _ storage.CredentialStore = (*Store)(nil)
