package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "stockpile/internal/errors"
	"stockpile/internal/model"
	"stockpile/internal/repository"
)

// ItemService exposes owner-scoped item operations.
type ItemService interface {
	List(ctx context.Context, ownerID uuid.UUID) ([]model.Item, error)
	Create(ctx context.Context, ownerID uuid.UUID, name, description string) (*model.Item, error)
	Update(ctx context.Context, ownerID, itemID uuid.UUID, name, description string) (*model.Item, error)
	Delete(ctx context.Context, ownerID, itemID uuid.UUID) (uuid.UUID, error)
}

type itemService struct {
	repo repository.ItemRepository
}

// NewItemService builds an ItemService.
func NewItemService(repo repository.ItemRepository) ItemService {
	return &itemService{repo: repo}
}

func (s *itemService) List(ctx context.Context, ownerID uuid.UUID) ([]model.Item, error) {
	items, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

func (s *itemService) Create(ctx context.Context, ownerID uuid.UUID, name, description string) (*model.Item, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name is required", apperrors.ErrMissingField)
	}

	item := &model.Item{
		UserID:      ownerID,
		Name:        name,
		Description: description,
	}
	if err := s.repo.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	return item, nil
}

// Update changes name and description. Empty values keep the stored ones.
func (s *itemService) Update(ctx context.Context, ownerID, itemID uuid.UUID, name, description string) (*model.Item, error) {
	item, err := s.owned(ctx, ownerID, itemID)
	if err != nil {
		return nil, err
	}

	if name != "" {
		item.Name = name
	}
	if description != "" {
		item.Description = description
	}
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return item, nil
}

func (s *itemService) Delete(ctx context.Context, ownerID, itemID uuid.UUID) (uuid.UUID, error) {
	item, err := s.owned(ctx, ownerID, itemID)
	if err != nil {
		return uuid.Nil, err
	}
	if err := s.repo.Delete(ctx, item.ID); err != nil {
		return uuid.Nil, fmt.Errorf("delete item: %w", err)
	}
	return item.ID, nil
}

// owned loads the item and checks ownership before any write happens.
func (s *itemService) owned(ctx context.Context, ownerID, itemID uuid.UUID) (*model.Item, error) {
	item, err := s.repo.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("find item: %w", err)
	}
	if !item.OwnedBy(ownerID) {
		return nil, apperrors.ErrForbidden
	}
	return item, nil
}
