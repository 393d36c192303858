package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"relief-backend/internal/geo"
	"relief-backend/internal/models"
	"relief-backend/internal/repository"
)

// DefaultFoodRadiusKm is the search radius used when none is given
const DefaultFoodRadiusKm = 10.0

// FoodStore is the persistence needed by FoodService
type FoodStore interface {
	Create(ctx context.Context, f *models.FoodRegion) error
	List(ctx context.Context) ([]*models.FoodRegion, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.FoodRegion, error)
	GetByID(ctx context.Context, id int64) (*models.FoodRegion, error)
	Update(ctx context.Context, f *models.FoodRegion) error
	Delete(ctx context.Context, id int64) error
}

// FoodService handles food providing regions. Unlike shelters and news,
// update and delete are not restricted to the owner: any authenticated
// user may change any region.
type FoodService struct {
	food     FoodStore
	uploader ImageUploader
	local    LocalImages
	now      func() time.Time
}

// NewFoodService creates a new food region service
func NewFoodService(food FoodStore, uploader ImageUploader, local LocalImages) *FoodService {
	return &FoodService{
		food:     food,
		uploader: uploader,
		local:    local,
		now:      time.Now,
	}
}

// FoodInput holds the form fields of a food region create or update.
// The user coordinates are only read on create and may be absent.
type FoodInput struct {
	Address       string
	Pincode       string
	Description   *string
	Latitude      float64
	Longitude     float64
	UserLatitude  *float64
	UserLongitude *float64
}

// ListNearby returns regions within dist km, skipping rows without coordinates
func (s *FoodService) ListNearby(ctx context.Context, latitude, longitude, dist float64) ([]*models.FoodRegion, error) {
	regions, err := s.food.List(ctx)
	if err != nil {
		return nil, err
	}

	nearby := make([]*models.FoodRegion, 0)
	for _, region := range regions {
		if region.Latitude == nil || region.Longitude == nil {
			continue
		}
		if geo.Haversine(latitude, longitude, *region.Latitude, *region.Longitude) <= dist {
			nearby = append(nearby, region)
		}
	}

	if len(nearby) == 0 {
		return nil, notFound(fmt.Sprintf("No food providing regions found within %s km radius", formatKm(dist)))
	}
	return nearby, nil
}

// Create uploads the image and stores a region owned by user. Distance is
// measured from the submitter and left empty when their position is unknown.
func (s *FoodService) Create(ctx context.Context, user *models.User, in FoodInput, img *Image) (*models.FoodRegion, error) {
	now := s.now().UTC()

	url, err := requireImage(ctx, s.uploader, "food", img, now)
	if err != nil {
		return nil, err
	}

	region := &models.FoodRegion{
		CreatedAt:   now,
		Latitude:    &in.Latitude,
		Longitude:   &in.Longitude,
		Address:     in.Address,
		Pincode:     in.Pincode,
		Description: in.Description,
		Images:      &url,
		UserID:      &user.ID,
	}
	if in.UserLatitude != nil && in.UserLongitude != nil {
		distance := geo.Haversine(in.Latitude, in.Longitude, *in.UserLatitude, *in.UserLongitude)
		region.Distance = &distance
	}

	if err := s.food.Create(ctx, region); err != nil {
		return nil, err
	}

	return region, nil
}

// ListMine returns the caller's regions, newest first
func (s *FoodService) ListMine(ctx context.Context, user *models.User) ([]*models.FoodRegion, error) {
	regions, err := s.food.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if len(regions) == 0 {
		return nil, notFound("No food providing regions found for this user")
	}
	return regions, nil
}

// Update overwrites any region by id. A new image is written locally.
func (s *FoodService) Update(ctx context.Context, id int64, in FoodInput, img *Image) (*models.FoodRegion, error) {
	region, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if img != nil && len(img.Data) > 0 {
		path, err := s.local.Save(img.Filename, img.Data)
		if err != nil {
			return nil, err
		}
		region.Images = &path
	}

	region.Address = in.Address
	region.Pincode = in.Pincode
	region.Description = in.Description
	region.Latitude = &in.Latitude
	region.Longitude = &in.Longitude

	if err := s.food.Update(ctx, region); err != nil {
		return nil, err
	}

	return region, nil
}

// Delete removes any region by id
func (s *FoodService) Delete(ctx context.Context, id int64) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}
	return s.food.Delete(ctx, id)
}

func (s *FoodService) get(ctx context.Context, id int64) (*models.FoodRegion, error) {
	region, err := s.food.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("Food providing region not found")
		}
		return nil, err
	}
	return region, nil
}
