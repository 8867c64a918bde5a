package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vepctl/internal/core/domain"
)

func TestKeyLocks_LockUnlock(t *testing.T) {
	l := NewKeyLocks(4)
	unlock, err := l.Lock(context.Background(), "a", "b", "a")
	require.NoError(t, err)
	unlock()

	unlock, err = l.Lock(context.Background(), "a")
	require.NoError(t, err)
	unlock()
}

func TestKeyLocks_BlocksSameKey(t *testing.T) {
	l := NewKeyLocks(DefaultStripes)
	unlock, err := l.Lock(context.Background(), "person:1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "person:1")
	assert.True(t, errors.Is(err, domain.ErrLockTimeout))
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	unlock()
	unlock2, err := l.Lock(context.Background(), "person:1")
	require.NoError(t, err)
	unlock2()
}

func TestKeyLocks_ReleasesPartialOnTimeout(t *testing.T) {
	l := NewKeyLocks(1)
	unlock, err := l.Lock(context.Background(), "x")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = l.Lock(ctx, "y", "z")
	require.Error(t, err)

	unlock()
	unlock, err = l.Lock(context.Background(), "y")
	require.NoError(t, err)
	unlock()
}

func TestKeyLocks_OverlappingSetsDoNotDeadlock(t *testing.T) {
	l := NewKeyLocks(16)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	counter := 0
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			keys := []string{"a", "b", "c"}
			if i%2 == 0 {
				keys = []string{"c", "b", "a"}
			}
			unlock, err := l.Lock(ctx, keys...)
			if !assert.NoError(t, err) {
				return
			}
			counter++
			unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, counter)
}

func TestNewKeyLocks_DefaultStripes(t *testing.T) {
	l := NewKeyLocks(0)
	assert.Len(t, l.stripes, DefaultStripes)
}
