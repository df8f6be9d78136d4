package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"stockpile/internal/model"
)

// memUserRepository is an in-memory UserRepository with the same
// uniqueness and not-found semantics as the gorm one.
type memUserRepository struct {
	mu   sync.Mutex
	byID map[uuid.UUID]model.User
}

func newMemUserRepository() *memUserRepository {
	return &memUserRepository{byID: map[uuid.UUID]model.User{}}
}

func (r *memUserRepository) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Username == user.Username {
			return gorm.ErrDuplicatedKey
		}
		if user.HasGoogleID() && u.HasGoogleID() && *u.GoogleID == *user.GoogleID {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.byID[user.ID] = *user
	return nil
}

func (r *memUserRepository) Update(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, u := range r.byID {
		if id != user.ID && user.HasGoogleID() && u.HasGoogleID() && *u.GoogleID == *user.GoogleID {
			return gorm.ErrDuplicatedKey
		}
	}
	user.UpdatedAt = time.Now()
	r.byID[user.ID] = *user
	return nil
}

func (r *memUserRepository) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &u, nil
}

func (r *memUserRepository) FindByUsername(_ context.Context, username string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memUserRepository) FindByGoogleID(_ context.Context, googleID string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.HasGoogleID() && *u.GoogleID == googleID {
			return &u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// memItemRepository is an in-memory ItemRepository that records writes.
type memItemRepository struct {
	mu     sync.Mutex
	byID   map[uuid.UUID]model.Item
	writes int
}

func newMemItemRepository() *memItemRepository {
	return &memItemRepository{byID: map[uuid.UUID]model.Item{}}
}

func (r *memItemRepository) Create(_ context.Context, item *model.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	item.CreatedAt = time.Now()
	item.UpdatedAt = item.CreatedAt
	r.byID[item.ID] = *item
	r.writes++
	return nil
}

func (r *memItemRepository) Update(_ context.Context, item *model.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byID[item.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Name = item.Name
	stored.Description = item.Description
	stored.UpdatedAt = time.Now()
	r.byID[item.ID] = stored
	r.writes++
	return nil
}

func (r *memItemRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.byID, id)
	r.writes++
	return nil
}

func (r *memItemRepository) FindByID(_ context.Context, id uuid.UUID) (*model.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &item, nil
}

func (r *memItemRepository) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]model.Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := []model.Item{}
	for _, item := range r.byID {
		if item.UserID == ownerID {
			items = append(items, item)
		}
	}
	return items, nil
}
