package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"stockpile/internal/model"
)

func TestItemRepository_CRUD(t *testing.T) {
	gormDB := newTestDB(t)
	users := NewUserRepository(gormDB)
	items := NewItemRepository(gormDB)
	ctx := context.Background()

	owner := createUser(t, users, "owner")

	item := &model.Item{UserID: owner.ID, Name: "Router", Description: ""}
	require.NoError(t, items.Create(ctx, item))
	assert.NotEqual(t, uuid.Nil, item.ID)

	found, err := items.FindByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Router", found.Name)
	assert.Equal(t, "", found.Description)
	assert.True(t, found.OwnedBy(owner.ID))

	found.Name = "Switch"
	found.Description = "24 ports"
	require.NoError(t, items.Update(ctx, found))

	updated, err := items.FindByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Switch", updated.Name)
	assert.Equal(t, "24 ports", updated.Description)
	assert.Equal(t, owner.ID, updated.UserID)

	require.NoError(t, items.Delete(ctx, item.ID))
	_, err = items.FindByID(ctx, item.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestItemRepository_UpdateNeverMovesOwnership(t *testing.T) {
	gormDB := newTestDB(t)
	users := NewUserRepository(gormDB)
	items := NewItemRepository(gormDB)
	ctx := context.Background()

	alice := createUser(t, users, "alice")
	bob := createUser(t, users, "bob")

	item := &model.Item{UserID: alice.ID, Name: "Laptop"}
	require.NoError(t, items.Create(ctx, item))

	item.UserID = bob.ID
	item.Name = "Laptop 2"
	require.NoError(t, items.Update(ctx, item))

	reloaded, err := items.FindByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, reloaded.UserID)
	assert.Equal(t, "Laptop 2", reloaded.Name)
}

func TestItemRepository_ListByOwner(t *testing.T) {
	gormDB := newTestDB(t)
	users := NewUserRepository(gormDB)
	items := NewItemRepository(gormDB)
	ctx := context.Background()

	alice := createUser(t, users, "alice")
	bob := createUser(t, users, "bob")

	for _, name := range []string{"Router", "Switch"} {
		require.NoError(t, items.Create(ctx, &model.Item{UserID: alice.ID, Name: name}))
	}
	require.NoError(t, items.Create(ctx, &model.Item{UserID: bob.ID, Name: "Modem"}))

	aliceItems, err := items.ListByOwner(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, aliceItems, 2)
	for _, it := range aliceItems {
		assert.Equal(t, alice.ID, it.UserID)
	}

	none, err := items.ListByOwner(ctx, uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}
