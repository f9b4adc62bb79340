package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/Apurer/freshcart-api/internal/domains/accounts/domain"
	"github.com/Apurer/freshcart-api/internal/domains/accounts/ports"
)

var (
	_ ports.Repository        = (*Repository)(nil)
	_ ports.ProfileRepository = (*ProfileRepository)(nil)
)

// Repository keeps users in memory for development and tests.
type Repository struct {
	mu      sync.RWMutex
	byID    map[string]*domain.User
	byEmail map[string]string
}

func NewRepository() *Repository {
	return &Repository{byID: map[string]*domain.User{}, byEmail: map[string]string{}}
}

func (r *Repository) Create(_ context.Context, user *domain.User) error {
	if user == nil {
		return errors.New("user is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byEmail[user.Email]; taken {
		return ports.ErrEmailTaken
	}
	r.byID[user.ID] = user.Clone()
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *Repository) Update(_ context.Context, user *domain.User) error {
	if user == nil {
		return errors.New("user is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.byID[user.ID]
	if !ok {
		return ports.ErrNotFound
	}
	if owner, taken := r.byEmail[user.Email]; taken && owner != user.ID {
		return ports.ErrEmailTaken
	}
	delete(r.byEmail, existing.Email)
	r.byID[user.ID] = user.Clone()
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byID[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return user.Clone(), nil
}

func (r *Repository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return r.byID[id].Clone(), nil
}

// ProfileRepository keeps one profile per user in memory.
type ProfileRepository struct {
	mu       sync.RWMutex
	profiles map[string]domain.Profile
}

func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{profiles: map[string]domain.Profile{}}
}

func (r *ProfileRepository) Get(_ context.Context, userID string) (*domain.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	profile, ok := r.profiles[userID]
	if !ok {
		return nil, ports.ErrProfileNotFound
	}
	return &profile, nil
}

func (r *ProfileRepository) Save(_ context.Context, profile domain.Profile) error {
	if profile.UserID == "" {
		return errors.New("profile user id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[profile.UserID] = profile
	return nil
}
