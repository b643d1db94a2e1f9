package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Connect builds a client and pings it with exponential backoff until
// maxWait elapses.
func Connect(ctx context.Context, addr, password string, db int, maxWait time.Duration, log *zap.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = maxWait
	ping := func() error {
		pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		return rdb.Ping(pctx).Err()
	}
	notify := func(err error, next time.Duration) {
		log.Warn("redis ping failed, retrying", zap.Duration("retry_in", next), zap.Error(err))
	}
	if err := backoff.RetryNotify(ping, backoff.WithContext(b, ctx), notify); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	log.Info("Redis connected", zap.String("addr", addr))
	return rdb, nil
}

// PresenceStore mirrors online/offline transitions into Redis so last-seen
// survives restarts. Keys:
//
//	<prefix>:online:<userID>    connection id, expires after ttl
//	<prefix>:last_seen:<userID> unix milliseconds of the last disconnect
//
// The online key only hints at liveness to other readers; routing never
// consults it.
type PresenceStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewPresenceStore(client *redis.Client, prefix string, ttl time.Duration) *PresenceStore {
	return &PresenceStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *PresenceStore) onlineKey(userID string) string {
	return fmt.Sprintf("%s:online:%s", s.prefix, userID)
}

func (s *PresenceStore) lastSeenKey(userID string) string {
	return fmt.Sprintf("%s:last_seen:%s", s.prefix, userID)
}

func (s *PresenceStore) MarkOnline(ctx context.Context, userID, connID string) error {
	return s.client.Set(ctx, s.onlineKey(userID), connID, s.ttl).Err()
}

func (s *PresenceStore) MarkOffline(ctx context.Context, userID string) error {
	now := strconv.FormatInt(time.Now().UnixMilli(), 10)
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, s.onlineKey(userID))
		p.Set(ctx, s.lastSeenKey(userID), now, 0)
		return nil
	})
	return err
}

// LastSeen returns when the user last disconnected; ok is false if never.
func (s *PresenceStore) LastSeen(ctx context.Context, userID string) (t time.Time, ok bool, err error) {
	v, err := s.client.Get(ctx, s.lastSeenKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("last_seen for %s: %w", userID, err)
	}
	return time.UnixMilli(ms).UTC(), true, nil
}

func (s *PresenceStore) IsOnline(ctx context.Context, userID string) (bool, error) {
	n, err := s.client.Exists(ctx, s.onlineKey(userID)).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
