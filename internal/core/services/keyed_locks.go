package services

import (
	"sort"
	"sync"
)

type refMutex struct {
	mu   sync.Mutex
	refs int
}

// keyedLocks hands out one mutex per key. Entries are reference counted and
// removed once no goroutine holds or waits on them.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{locks: make(map[string]*refMutex)}
}

// lock acquires the mutexes for all keys in sorted order and returns a func that
// releases them. Duplicate keys are locked once.
func (k *keyedLocks) lock(keys ...string) func() {
	ordered := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		ordered = append(ordered, key)
	}
	sort.Strings(ordered)

	held := make([]*refMutex, 0, len(ordered))
	for _, key := range ordered {
		m := k.acquire(key)
		m.mu.Lock()
		held = append(held, m)
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].mu.Unlock()
			k.release(ordered[i])
		}
	}
}

func (k *keyedLocks) acquire(key string) *refMutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	m, ok := k.locks[key]
	if !ok {
		m = &refMutex{}
		k.locks[key] = m
	}
	m.refs++
	return m
}

func (k *keyedLocks) release(key string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	m, ok := k.locks[key]
	if !ok {
		return
	}
	m.refs--
	if m.refs == 0 {
		delete(k.locks, key)
	}
}

// size reports the number of live lock entries.
func (k *keyedLocks) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
