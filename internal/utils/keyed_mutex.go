package utils

import "sync"

// KeyedMutex hands out one mutex per key, used to serialize per-guild
// read-modify-write sequences. Entries are never evicted: the map grows with
// the number of distinct keys seen, one small mutex per guild.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *KeyedMutex) Lock(key string) {
	k.mu.Lock()
	lock, ok := k.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		k.locks[key] = lock
	}
	k.mu.Unlock()
	lock.Lock()
}

func (k *KeyedMutex) Unlock(key string) {
	k.mu.Lock()
	lock := k.locks[key]
	k.mu.Unlock()
	if lock != nil {
		lock.Unlock()
	}
}
