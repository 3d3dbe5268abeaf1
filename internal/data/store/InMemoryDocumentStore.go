package store

import (
	"context"
	"iter"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/akolanti/DocQueryAPI/internal/domain/commonModels"
)

type memObject struct {
	data         []byte
	lastModified time.Time
}

// InMemoryDocumentStore backs local runs and tests. Listing is in key order,
// matching S3.
type InMemoryDocumentStore struct {
	mu      sync.RWMutex
	objects map[string]memObject
	now     func() time.Time
}

func InitInMemoryDocumentStore() *InMemoryDocumentStore {
	return &InMemoryDocumentStore{
		objects: make(map[string]memObject),
		now:     time.Now,
	}
}

// WithClock replaces the time source used to stamp LastModified.
func (s *InMemoryDocumentStore) WithClock(now func() time.Time) *InMemoryDocumentStore {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
	return s
}

// SetLastModified rewrites an object's timestamp.
func (s *InMemoryDocumentStore) SetLastModified(key string, t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if obj, ok := s.objects[key]; ok {
		obj.lastModified = t
		s.objects[key] = obj
	}
}

func (s *InMemoryDocumentStore) Put(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = memObject{data: slices.Clone(data), lastModified: s.now()}
	return nil
}

func (s *InMemoryDocumentStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[key]
	if !ok {
		return nil, commonModels.ErrNotFound
	}
	return slices.Clone(obj.data), nil
}

func (s *InMemoryDocumentStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	return nil
}

// ListByPrefix snapshots matching keys up front so callers may delete while
// iterating.
func (s *InMemoryDocumentStore) ListByPrefix(ctx context.Context, prefix string) iter.Seq2[commonModels.StoredObjectMeta, error] {
	return func(yield func(commonModels.StoredObjectMeta, error) bool) {
		s.mu.RLock()
		metas := make([]commonModels.StoredObjectMeta, 0)
		for key, obj := range s.objects {
			if strings.HasPrefix(key, prefix) {
				metas = append(metas, commonModels.StoredObjectMeta{StorageKey: key, LastModified: obj.lastModified})
			}
		}
		s.mu.RUnlock()

		slices.SortFunc(metas, func(a, b commonModels.StoredObjectMeta) int {
			return strings.Compare(a.StorageKey, b.StorageKey)
		})
		for _, meta := range metas {
			if err := ctx.Err(); err != nil {
				yield(commonModels.StoredObjectMeta{}, err)
				return
			}
			if !yield(meta, nil) {
				return
			}
		}
	}
}

func (s *InMemoryDocumentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
