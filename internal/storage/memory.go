package storage

import (
	"bytes"
	"context"
	"io"
	"sync"
)

// MemoryStore keeps blobs in a map. URLs use a fake scheme.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string]memoryObject
}

type memoryObject struct {
	contentType string
	data        []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: map[string]memoryObject{}}
}

func (s *MemoryStore) Upload(_ context.Context, objectName string, contentType string, r io.Reader) (string, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[objectName] = memoryObject{contentType: contentType, data: buf.Bytes()}
	return objectName, nil
}

func (s *MemoryStore) URL(_ context.Context, handle string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[handle]; !ok {
		return "", ErrObjectNotFound
	}
	return "memory://" + handle, nil
}

func (s *MemoryStore) Delete(_ context.Context, objectName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[objectName]; !ok {
		return ErrObjectNotFound
	}
	delete(s.objects, objectName)
	return nil
}

// Has reports whether objectName is stored.
func (s *MemoryStore) Has(objectName string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[objectName]
	return ok
}

// ContentType returns the stored content type of objectName.
func (s *MemoryStore) ContentType(objectName string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.objects[objectName].contentType
}
