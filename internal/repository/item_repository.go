package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"stockpile/internal/model"
)

// ItemRepository defines item persistence operations.
type ItemRepository interface {
	Create(ctx context.Context, item *model.Item) error
	Update(ctx context.Context, item *model.Item) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Item, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Item, error)
}

type itemRepository struct {
	db *gorm.DB
}

// NewItemRepository creates a new item repository.
func NewItemRepository(db *gorm.DB) ItemRepository {
	return &itemRepository{db: db}
}

// Create creates a new item.
func (r *itemRepository) Create(ctx context.Context, item *model.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// Update persists name and description. The owner column is never written.
func (r *itemRepository) Update(ctx context.Context, item *model.Item) error {
	return r.db.WithContext(ctx).Model(item).
		Select("name", "description", "updated_at").
		Updates(item).Error
}

// Delete removes an item by ID.
func (r *itemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Item{}).Error
}

// FindByID finds an item by ID.
func (r *itemRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Item, error) {
	var item model.Item
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// ListByOwner lists every item owned by ownerID, oldest first.
func (r *itemRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Item, error) {
	items := []model.Item{}
	if err := r.db.WithContext(ctx).Where("user_id = ?", ownerID).
		Order("created_at").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
