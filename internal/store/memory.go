package store

import (
	"bytes"
	"context"
	"sync"
)

// MemoryStore keeps records in process memory. Used in tests and with STORE_DRIVER=memory.
type MemoryStore struct {
	records map[string][]byte
	mu      sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string][]byte),
	}
}

func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.records[key]
	if !ok {
		return nil, ErrNotFound
	}
	return bytes.Clone(value), nil
}

func (s *MemoryStore) Put(ctx context.Context, key string, value []byte) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = bytes.Clone(value)
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
