package cache

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrLockNotObtained = errors.New("lock not obtained")

type Releaser interface {
	Release(ctx context.Context) error
}

// Locker serializes writers on a key.
type Locker interface {
	Obtain(ctx context.Context, key string, ttl time.Duration) (Releaser, error)
}

// LocalLocker is a process-local Locker for single-node runs and tests. ttl is ignored.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*localEntry
}

type localEntry struct {
	ch   chan struct{}
	refs int
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*localEntry)}
}

func (l *LocalLocker) Obtain(ctx context.Context, key string, _ time.Duration) (Releaser, error) {
	l.mu.Lock()
	e, ok := l.locks[key]
	if !ok {
		e = &localEntry{ch: make(chan struct{}, 1)}
		l.locks[key] = e
	}
	e.refs++
	l.mu.Unlock()

	select {
	case e.ch <- struct{}{}:
		return &localLock{owner: l, key: key, entry: e}, nil
	case <-ctx.Done():
		l.drop(key, e)
		return nil, ErrLockNotObtained
	}
}

func (l *LocalLocker) drop(key string, e *localEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.locks, key)
	}
}

type localLock struct {
	owner *LocalLocker
	key   string
	entry *localEntry
	once  sync.Once
}

func (k *localLock) Release(context.Context) error {
	k.once.Do(func() {
		<-k.entry.ch
		k.owner.drop(k.key, k.entry)
	})
	return nil
}
