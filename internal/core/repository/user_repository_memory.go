package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/duynhne/cookie-auth-service/internal/core/domain"
)

// MemoryUserRepository is an in-process domain.UserRepository used by tests
// and by the service when no database is configured.
type MemoryUserRepository struct {
	mu     sync.RWMutex
	byID   map[string]domain.UserRecord
	byName map[string]string
}

// NewMemoryUserRepository creates an empty MemoryUserRepository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:   make(map[string]domain.UserRecord),
		byName: make(map[string]string),
	}
}

// Create inserts a new user and returns the generated user ID.
func (r *MemoryUserRepository) Create(_ context.Context, user domain.NewUser) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byName[user.UserName]; ok {
		return "", fmt.Errorf("insert user %q: %w", user.UserName, domain.ErrDuplicateUser)
	}

	id := uuid.NewString()
	r.byID[id] = domain.UserRecord{
		ID:           id,
		FirstName:    user.FirstName,
		SurName:      user.SurName,
		UserName:     user.UserName,
		PasswordHash: user.PasswordHash,
	}
	r.byName[user.UserName] = id
	return id, nil
}

// GetByUserName returns the user matching the given username.
func (r *MemoryUserRepository) GetByUserName(_ context.Context, userName string) (*domain.UserRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byName[userName]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	rec := r.byID[id]
	return &rec, nil
}

// GetByID returns the user with the given ID.
func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*domain.UserRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &rec, nil
}

// List returns every user ordered by username.
func (r *MemoryUserRepository) List(_ context.Context) ([]domain.UserInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]domain.UserInfo, 0, len(r.byID))
	for _, rec := range r.byID {
		users = append(users, rec.Info())
	}
	sort.Slice(users, func(i, j int) bool { return users[i].UserName < users[j].UserName })
	return users, nil
}

var _ domain.UserRepository = (*MemoryUserRepository)(nil)
