package services

import (
	"context"
	"fmt"
	"hash/fnv"
	"slices"

	"github.com/custodia-labs/vepctl/internal/core/domain"
	"github.com/custodia-labs/vepctl/internal/core/ports/driven"
)

// Ensure KeyLocks implements the interface.
var _ driven.KeyLocker = (*KeyLocks)(nil)

// DefaultStripes is the stripe count used when none is given.
const DefaultStripes = 256

// KeyLocks serialises work on identity keys within one process.
// Keys hash onto a fixed set of stripes; stripes are always taken in
// ascending order so two callers locking overlapping key sets cannot
// deadlock.
type KeyLocks struct {
	stripes []chan struct{}
}

// NewKeyLocks creates a locker with n stripes.
func NewKeyLocks(n int) *KeyLocks {
	if n < 1 {
		n = DefaultStripes
	}
	stripes := make([]chan struct{}, n)
	for i := range stripes {
		stripes[i] = make(chan struct{}, 1)
	}
	return &KeyLocks{stripes: stripes}
}

// Lock acquires every key, blocking until all are held or ctx is done.
func (l *KeyLocks) Lock(ctx context.Context, keys ...string) (func(), error) {
	idx := make([]int, 0, len(keys))
	for _, k := range keys {
		idx = append(idx, l.stripe(k))
	}
	slices.Sort(idx)
	idx = slices.Compact(idx)

	held := make([]int, 0, len(idx))
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			<-l.stripes[held[i]]
		}
	}

	for _, i := range idx {
		select {
		case l.stripes[i] <- struct{}{}:
			held = append(held, i)
		case <-ctx.Done():
			release()
			return nil, fmt.Errorf("%w: %w", domain.ErrLockTimeout, ctx.Err())
		}
	}
	return release, nil
}

func (l *KeyLocks) stripe(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(l.stripes)))
}
