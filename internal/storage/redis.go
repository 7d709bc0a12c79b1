package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Ananth-NQI/shopbot-backend/internal/models"
)

// RedisSessionStore keeps each session record under prefix+userID. Records
// never expire; a session is the resumable history of that user.
type RedisSessionStore struct {
	rdb    *goredis.Client
	prefix string
}

// DialRedis connects to addr and checks the server answers
func DialRedis(ctx context.Context, addr string) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// NewRedisSessionStore uses an existing client
func NewRedisSessionStore(rdb *goredis.Client, prefix string) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb, prefix: prefix}
}

func (r *RedisSessionStore) key(userID string) string {
	return r.prefix + userID
}

func (r *RedisSessionStore) Load(ctx context.Context, userID string) (*models.Session, error) {
	raw, err := r.rdb.Get(ctx, r.key(userID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	session, err := DecodeSession(raw)
	return &session, err
}

func (r *RedisSessionStore) Save(ctx context.Context, userID string, session models.Session) error {
	raw, err := EncodeSession(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.rdb.Set(ctx, r.key(userID), raw, 0).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *RedisSessionStore) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

func (r *RedisSessionStore) Close() error {
	return r.rdb.Close()
}
