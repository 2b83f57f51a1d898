package storage

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStorage keeps objects in process. It backs tests and memory:// runs.
type MemoryStorage struct {
	mu      sync.RWMutex
	bucket  string
	objects map[string][]byte
}

func NewMemoryStorage(bucket string) *MemoryStorage {
	return &MemoryStorage{bucket: bucket, objects: make(map[string][]byte)}
}

var _ ObjectStorage = (*MemoryStorage)(nil)

func (m *MemoryStorage) PutObject(_ context.Context, objectKey, _ string, body []byte) error {
	m.mu.Lock()
	m.objects[objectKey] = append([]byte(nil), body...)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStorage) GetObject(_ context.Context, objectKey string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.objects[objectKey]
	if !ok {
		return nil, ErrObjectNotFound
	}
	return append([]byte(nil), b...), nil
}

func (m *MemoryStorage) GeneratePresignedDownloadURL(_ context.Context, objectKey string, expires time.Duration) (string, error) {
	if expires <= 0 {
		expires = DefaultPresignedURLExpiry
	}
	m.mu.RLock()
	_, ok := m.objects[objectKey]
	m.mu.RUnlock()
	if !ok {
		return "", ErrObjectNotFound
	}
	return fmt.Sprintf("memory://%s/%s?expires=%d", m.bucket, objectKey, int(expires.Seconds())), nil
}

func (m *MemoryStorage) DeleteObject(_ context.Context, objectKey string) error {
	m.mu.Lock()
	delete(m.objects, objectKey)
	m.mu.Unlock()
	return nil
}

// Keys returns the stored object keys; used by tests.
func (m *MemoryStorage) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	return keys
}
