package driven

import "context"

// KeyLocker serialises work on identity keys.
type KeyLocker interface {
	// Lock acquires every key, blocking until all are held or ctx is done.
	// The returned function releases them.
	Lock(ctx context.Context, keys ...string) (unlock func(), err error)
}
