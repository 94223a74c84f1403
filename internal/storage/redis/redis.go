// Package redis keeps session tokens in Redis: the storefront's own token
// between runs, and the tokens the stub API server issues.
package redis

import (
	"context"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/xenking/kart-storefront/internal/domain/session"
	"github.com/xenking/kart-storefront/internal/stub"
)

var (
	_ session.Repository = (*SessionRepository)(nil)
	_ stub.TokenStore    = (*TokenStore)(nil)
)

// Connect creates a client for addr and checks it with a ping.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrapf(err, "ping redis at %s", addr)
	}
	return rdb, nil
}

// SessionRepository stores the storefront token under a single key.
type SessionRepository struct {
	rdb *redis.Client
	key string
	ttl time.Duration
}

// NewSessionRepository stores the token at key. A zero ttl keeps it until
// Clear.
func NewSessionRepository(rdb *redis.Client, key string, ttl time.Duration) *SessionRepository {
	return &SessionRepository{rdb: rdb, key: key, ttl: ttl}
}

func (r *SessionRepository) Get(ctx context.Context) (string, error) {
	token, err := r.rdb.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) || (err == nil && token == "") {
		return "", session.ErrNoToken
	}
	if err != nil {
		return "", errors.Wrapf(err, "get %s", r.key)
	}
	return token, nil
}

func (r *SessionRepository) Set(ctx context.Context, token string) error {
	if err := r.rdb.Set(ctx, r.key, token, r.ttl).Err(); err != nil {
		return errors.Wrapf(err, "set %s", r.key)
	}
	return nil
}

func (r *SessionRepository) Clear(ctx context.Context) error {
	if err := r.rdb.Del(ctx, r.key).Err(); err != nil {
		return errors.Wrapf(err, "del %s", r.key)
	}
	return nil
}

// TokenStore keeps issued tokens as hashes with an expiry, refreshed on
// every successful Resolve.
type TokenStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewTokenStore stores tokens under prefix with the given lifetime.
func NewTokenStore(rdb *redis.Client, prefix string, ttl time.Duration) *TokenStore {
	return &TokenStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *TokenStore) key(token string) string {
	return s.prefix + token
}

func (s *TokenStore) Issue(ctx context.Context, userID int64) (string, error) {
	token := uuid.NewString()
	key := s.key(token)

	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key, "user_id", userID, "issued_at", time.Now().Unix())
		p.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return "", errors.Wrap(err, "store token")
	}
	return token, nil
}

func (s *TokenStore) Resolve(ctx context.Context, token string) (int64, error) {
	key := s.key(token)
	raw, err := s.rdb.HGet(ctx, key, "user_id").Result()
	if errors.Is(err, redis.Nil) {
		return 0, stub.ErrTokenNotFound
	}
	if err != nil {
		return 0, errors.Wrap(err, "get token")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parse user id %q", raw)
	}
	if err := s.rdb.Expire(ctx, key, s.ttl).Err(); err != nil {
		return 0, errors.Wrap(err, "refresh token")
	}
	return id, nil
}
