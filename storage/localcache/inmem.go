package localcache

import (
	"sync"

	"github.com/upskillway/crm/core/college"
)

var (
	_ college.CacheStore = (*FileStore)(nil)
	_ college.CacheStore = (*MemStore)(nil)
)

// MemStore is a map-backed CacheStore for tests.
type MemStore struct {
	mutex sync.RWMutex
	data  map[string][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string][]byte)}
}

func (s *MemStore) Get(key string) ([]byte, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.data[key], nil
}

func (s *MemStore) Put(key string, val []byte) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	cp := make([]byte, len(val))
	copy(cp, val)
	s.data[key] = cp
	return nil
}

func (s *MemStore) Delete(key string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.data, key)
	return nil
}
