package accounts

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is a mutex-guarded in-memory CredentialStore. It backs the
// test suite and small embedded deployments.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]*User // keyed by lowercased email
	now   func() time.Time
}

var _ CredentialStore = (*MemoryStore)(nil)

// NewMemoryStore builds an empty in-memory credential store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]*User),
		now:   time.Now,
	}
}

func (s *MemoryStore) FindByEmail(_ context.Context, email string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[emailKey(email)]
	if !ok {
		return nil, ErrUserNotFound
	}
	return user.Clone(), nil
}

func (s *MemoryStore) FindByID(_ context.Context, id uuid.UUID) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.ID == id {
			return user.Clone(), nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *MemoryStore) FindByResetTokenHash(_ context.Context, hash string) (*User, error) {
	if hash == "" {
		return nil, ErrUserNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.ResetTokenHash == hash {
			return user.Clone(), nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *MemoryStore) Create(_ context.Context, user *User) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// clone up front; the store never writes through the caller's pointer
	record := user.Clone()

	key := emailKey(record.Email)
	if existing, ok := s.users[key]; ok {
		if existing.IsVerified {
			return nil, ErrAccountExists
		}
		// abandoned signup: overwrite in place, keep the original id
		record.ID = existing.ID
		record.CreatedAt = existing.CreatedAt
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	now := s.now()
	if record.CreatedAt == nil {
		record.CreatedAt = &now
	}
	record.UpdatedAt = &now

	s.users[key] = record
	return record.Clone(), nil
}

func (s *MemoryStore) Update(_ context.Context, user *User) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, existing := range s.users {
		if existing.ID == user.ID {
			record := user.Clone()
			record.CreatedAt = existing.CreatedAt
			now := s.now()
			record.UpdatedAt = &now
			s.users[key] = record
			return record.Clone(), nil
		}
	}
	return nil, ErrUserNotFound
}

// Len reports the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}
