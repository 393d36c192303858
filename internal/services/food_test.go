package services

import (
	"context"
	"testing"

	"relief-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFood() (*FoodService, *memFood, *fakeUploader, *fakeLocal) {
	store := &memFood{}
	uploader := &fakeUploader{}
	local := &fakeLocal{}
	svc := NewFoodService(store, uploader, local)
	svc.now = fixedClock
	return svc, store, uploader, local
}

func TestFoodService_Create(t *testing.T) {
	ctx := context.Background()
	owner := &models.User{ID: 3}

	t.Run("distance from submitter", func(t *testing.T) {
		svc, _, uploader, _ := newTestFood()
		region, err := svc.Create(ctx, owner, FoodInput{
			Address:       "Temple kitchen",
			Pincode:       "600001",
			Latitude:      0,
			Longitude:     0,
			UserLatitude:  ptr(1.0),
			UserLongitude: ptr(0.0),
		}, jpeg())
		require.NoError(t, err)
		require.NotNil(t, region.Distance)
		assert.InDelta(t, 111.19, *region.Distance, 0.01)
		require.Len(t, uploader.keys, 1)
		assert.Contains(t, uploader.keys[0], "food/")
	})

	t.Run("no submitter position", func(t *testing.T) {
		svc, _, _, _ := newTestFood()
		region, err := svc.Create(ctx, owner, FoodInput{Address: "x", Latitude: 1, Longitude: 1}, jpeg())
		require.NoError(t, err)
		assert.Nil(t, region.Distance)
	})

	t.Run("upload failure writes nothing", func(t *testing.T) {
		svc, store, uploader, _ := newTestFood()
		uploader.err = errUploadFailed
		_, err := svc.Create(ctx, owner, FoodInput{Address: "x"}, jpeg())
		assert.ErrorIs(t, err, ErrServer)
		assert.Empty(t, store.rows)
	})
}

func TestFoodService_ListNearby(t *testing.T) {
	ctx := context.Background()
	svc, store, _, _ := newTestFood()
	store.rows = []*models.FoodRegion{
		{ID: 1, Latitude: ptr(0.0), Longitude: ptr(0.05)},
		{ID: 2, Latitude: nil, Longitude: ptr(0.0)},
		{ID: 3, Latitude: ptr(0.5), Longitude: ptr(0.5)},
	}

	regions, err := svc.ListNearby(ctx, 0, 0, DefaultFoodRadiusKm)
	require.NoError(t, err)
	require.Len(t, regions, 1)
	assert.Equal(t, int64(1), regions[0].ID)

	_, err = svc.ListNearby(ctx, 40, 40, DefaultFoodRadiusKm)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.EqualError(t, err, "No food providing regions found within 10 km radius")
}

func TestFoodService_AnyUserMayModify(t *testing.T) {
	ctx := context.Background()
	svc, store, _, local := newTestFood()
	owner := &models.User{ID: 1}
	stranger := &models.User{ID: 2}

	region, err := svc.Create(ctx, owner, FoodInput{Address: "Old", Latitude: 1, Longitude: 1}, jpeg())
	require.NoError(t, err)

	_, err = svc.ListMine(ctx, stranger)
	assert.ErrorIs(t, err, ErrNotFound)

	updated, err := svc.Update(ctx, region.ID, FoodInput{
		Address: "New", Pincode: "1", Latitude: 2, Longitude: 2,
	}, &Image{Filename: "menu.jpg", Data: []byte{1}})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Address)
	assert.Equal(t, "images/menu.jpg", *updated.Images)
	assert.Equal(t, []string{"images/menu.jpg"}, local.saved)
	assert.Equal(t, int64(1), *updated.UserID)

	_, err = svc.Update(ctx, 404, FoodInput{}, nil)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.EqualError(t, err, "Food providing region not found")

	require.NoError(t, svc.Delete(ctx, region.ID))
	assert.Empty(t, store.rows)

	assert.ErrorIs(t, svc.Delete(ctx, region.ID), ErrNotFound)
}
