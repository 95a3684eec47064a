package namecache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Memory is an in-process LRU cache. Entries expire after ttl; a zero ttl
// keeps them until evicted or deleted. A zero size means no bound.
type Memory struct {
	lru *expirable.LRU[string, int64]
}

// NewMemory returns an empty in-process cache holding at most size entries.
func NewMemory(size int, ttl time.Duration) *Memory {
	return &Memory{lru: expirable.NewLRU[string, int64](size, nil, ttl)}
}

func (m *Memory) Get(_ context.Context, key string) (int64, bool, error) {
	id, ok := m.lru.Get(key)
	return id, ok, nil
}

func (m *Memory) Set(_ context.Context, key string, id int64) error {
	m.lru.Add(key, id)
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.lru.Remove(key)
	return nil
}

// Len returns the number of live entries.
func (m *Memory) Len() int {
	return m.lru.Len()
}
