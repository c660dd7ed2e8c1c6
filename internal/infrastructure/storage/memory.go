package storage

import (
	"context"
	"errors"
	"sync"
	"time"
)

// MemoryObjectStorage is an in-process ObjectStorage used by tests and
// local development without an S3 backend.
type MemoryObjectStorage struct {
	mu      sync.RWMutex
	objects map[string]memoryObject

	// BaseURL is used when generating download URLs
	BaseURL string
}

type memoryObject struct {
	data        []byte
	contentType string
}

// NewMemoryObjectStorage creates an empty in-memory storage
func NewMemoryObjectStorage() *MemoryObjectStorage {
	return &MemoryObjectStorage{
		objects: make(map[string]memoryObject),
		BaseURL: "https://storage.example.com",
	}
}

var _ ObjectStorage = (*MemoryObjectStorage)(nil)

// Upload stores data under the given key
func (m *MemoryObjectStorage) Upload(_ context.Context, storageKey string, data []byte, contentType string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	buf := make([]byte, len(data))
	copy(buf, data)
	m.objects[storageKey] = memoryObject{data: buf, contentType: contentType}
	return nil
}

// GenerateDownloadURL returns a synthetic download URL
func (m *MemoryObjectStorage) GenerateDownloadURL(_ context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}

	expiresAt := time.Now().Add(expiresIn)
	return m.BaseURL + "/" + storageKey, expiresAt, nil
}

// DeleteObject removes an object; deleting a missing key succeeds
func (m *MemoryObjectStorage) DeleteObject(_ context.Context, storageKey string) error {
	if storageKey == "" {
		return errors.New("storage key is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, storageKey)
	return nil
}

// ObjectExists reports whether a key is present
func (m *MemoryObjectStorage) ObjectExists(_ context.Context, storageKey string) (bool, error) {
	if storageKey == "" {
		return false, errors.New("storage key is required")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[storageKey]
	return ok, nil
}

// Get returns the stored bytes and content type for a key
func (m *MemoryObjectStorage) Get(storageKey string) ([]byte, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[storageKey]
	if !ok {
		return nil, "", false
	}
	return obj.data, obj.contentType, true
}

// Len returns the number of stored objects
func (m *MemoryObjectStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
