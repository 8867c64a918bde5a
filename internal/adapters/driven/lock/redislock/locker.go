// Package redislock provides a driven.KeyLocker shared by several vepctl
// processes merging into the same store.
package redislock

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/vepctl/internal/core/domain"
	"github.com/custodia-labs/vepctl/internal/core/ports/driven"
	"github.com/custodia-labs/vepctl/internal/logger"
)

// Ensure Locker implements the interface.
var _ driven.KeyLocker = (*Locker)(nil)

const (
	// DefaultTTL bounds how long a crashed holder can block a key.
	DefaultTTL = 30 * time.Second

	// DefaultRetry is the wait between acquisition attempts.
	DefaultRetry = 10 * time.Millisecond
)

// releaseScript deletes a key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker takes per-key locks with SET NX PX.
type Locker struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	retry  time.Duration
}

// Option configures a Locker.
type Option func(*Locker)

// WithTTL sets the lock expiry.
func WithTTL(d time.Duration) Option {
	return func(l *Locker) {
		if d > 0 {
			l.ttl = d
		}
	}
}

// WithRetry sets the wait between acquisition attempts.
func WithRetry(d time.Duration) Option {
	return func(l *Locker) {
		if d > 0 {
			l.retry = d
		}
	}
}

// New creates a locker over an existing client.
func New(client redis.UniversalClient, prefix string, opts ...Option) *Locker {
	l := &Locker{
		client: client,
		prefix: prefix,
		ttl:    DefaultTTL,
		retry:  DefaultRetry,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Dial connects to the Redis server at addr and checks it is reachable.
func Dial(ctx context.Context, addr, prefix string, opts ...Option) (*Locker, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}
	return New(client, prefix, opts...), nil
}

// Close closes the underlying client.
func (l *Locker) Close() error {
	return l.client.Close()
}

// Lock acquires every key, blocking until all are held or ctx is done.
// Keys are taken in sorted order so overlapping callers cannot deadlock.
func (l *Locker) Lock(ctx context.Context, keys ...string) (func(), error) {
	sorted := slices.Clone(keys)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	token := uuid.NewString()
	held := make([]string, 0, len(sorted))
	release := func() {
		// Release must still run after the caller's ctx is cancelled.
		rctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		for i := len(held) - 1; i >= 0; i-- {
			if err := releaseScript.Run(rctx, l.client, []string{held[i]}, token).Err(); err != nil {
				logger.Warn("releasing lock %s: %v", held[i], err)
			}
		}
	}

	for _, k := range sorted {
		key := l.prefix + k
		if err := l.acquire(ctx, key, token); err != nil {
			release()
			return nil, err
		}
		held = append(held, key)
	}
	return release, nil
}

func (l *Locker) acquire(ctx context.Context, key, token string) error {
	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()
	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return fmt.Errorf("%w: %w", domain.ErrLockTimeout, ctxErr)
			}
			return fmt.Errorf("acquiring lock %s: %w", key, err)
		}
		if ok {
			return nil
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", domain.ErrLockTimeout, ctx.Err())
		}
	}
}
