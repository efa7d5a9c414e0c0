package repo

import (
	"context"
	"sync"

	"github.com/ovaphlow/pitchfork/service-user-registry/internal/user/entity"
)

// Store persists the whole user collection as one document. Save replaces
// the document; there are no partial writes.
type Store interface {
	Load(ctx context.Context) ([]entity.User, error)
	Save(ctx context.Context, users []entity.User) error
}

// MemoryStore keeps the collection in process. Callers never share slices or
// pointers with the stored copy.
type MemoryStore struct {
	mu    sync.RWMutex
	users []entity.User
}

func NewMemoryStore(seed ...entity.User) *MemoryStore {
	return &MemoryStore{users: cloneAll(seed)}
}

func (s *MemoryStore) Load(_ context.Context) ([]entity.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.users), nil
}

func (s *MemoryStore) Save(_ context.Context, users []entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = cloneAll(users)
	return nil
}

func cloneAll(in []entity.User) []entity.User {
	out := make([]entity.User, len(in))
	for i, u := range in {
		out[i] = u.Clone()
	}
	return out
}
