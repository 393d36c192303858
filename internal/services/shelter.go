package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"relief-backend/internal/geo"
	"relief-backend/internal/models"
	"relief-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

// ShelterStore is the persistence needed by ShelterService
type ShelterStore interface {
	Create(ctx context.Context, s *models.Shelter) error
	List(ctx context.Context) ([]*models.Shelter, error)
	ListByUser(ctx context.Context, userID int64) ([]*models.Shelter, error)
	GetOwned(ctx context.Context, id, userID int64) (*models.Shelter, error)
	Update(ctx context.Context, s *models.Shelter) error
	Delete(ctx context.Context, id int64) error
}

// ShelterService handles shelter-related business logic
type ShelterService struct {
	shelters ShelterStore
	uploader ImageUploader
	local    LocalImages
	now      func() time.Time
}

// NewShelterService creates a new shelter service
func NewShelterService(shelters ShelterStore, uploader ImageUploader, local LocalImages) *ShelterService {
	return &ShelterService{
		shelters: shelters,
		uploader: uploader,
		local:    local,
		now:      time.Now,
	}
}

// ShelterInput holds the form fields of a shelter create or update
type ShelterInput struct {
	Name          string
	Address       string
	Pincode       string
	Description   *string
	Latitude      float64
	Longitude     float64
	UserLatitude  float64
	UserLongitude float64
}

// ListNearby returns shelters within dist km of the given point. Shelters
// without coordinates are skipped; an empty result is NotFound.
func (s *ShelterService) ListNearby(ctx context.Context, latitude, longitude, dist float64) ([]*models.Shelter, error) {
	shelters, err := s.shelters.List(ctx)
	if err != nil {
		return nil, err
	}

	nearby := make([]*models.Shelter, 0)
	for _, shelter := range shelters {
		if shelter.Latitude == nil || shelter.Longitude == nil {
			continue
		}
		if geo.Haversine(latitude, longitude, *shelter.Latitude, *shelter.Longitude) <= dist {
			nearby = append(nearby, shelter)
		}
	}

	if len(nearby) == 0 {
		return nil, notFound(fmt.Sprintf("No shelters found within %s km radius", formatKm(dist)))
	}

	log.Debug().
		Int("count", len(nearby)).
		Float64("radius_km", dist).
		Msg("Nearby shelters found")

	return nearby, nil
}

// Create uploads the image and stores a shelter owned by user. The stored
// distance is measured from the submitter's own position.
func (s *ShelterService) Create(ctx context.Context, user *models.User, in ShelterInput, img *Image) (*models.Shelter, error) {
	now := s.now().UTC()

	url, err := requireImage(ctx, s.uploader, "shelters", img, now)
	if err != nil {
		return nil, err
	}

	distance := geo.Haversine(in.Latitude, in.Longitude, in.UserLatitude, in.UserLongitude)
	shelter := &models.Shelter{
		Name:        in.Name,
		Address:     in.Address,
		Pincode:     in.Pincode,
		Images:      &url,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
		Latitude:    &in.Latitude,
		Longitude:   &in.Longitude,
		UserID:      &user.ID,
		Distance:    &distance,
	}

	if err := s.shelters.Create(ctx, shelter); err != nil {
		return nil, err
	}

	return shelter, nil
}

// ListMine returns the caller's shelters, newest first
func (s *ShelterService) ListMine(ctx context.Context, user *models.User) ([]*models.Shelter, error) {
	shelters, err := s.shelters.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if len(shelters) == 0 {
		return nil, notFound("No shelters found for this user")
	}
	return shelters, nil
}

// Update overwrites a shelter owned by user. A new image goes to local
// storage and replaces any previous local file. The distance is recomputed
// against the shelter's own (already updated) coordinates, so it becomes 0.
func (s *ShelterService) Update(ctx context.Context, user *models.User, id int64, in ShelterInput, img *Image) (*models.Shelter, error) {
	shelter, err := s.getOwned(ctx, user, id, "Shelter not found or you do not have permission to update it")
	if err != nil {
		return nil, err
	}

	shelter.Name = in.Name
	shelter.Address = in.Address
	shelter.Pincode = in.Pincode
	shelter.Latitude = &in.Latitude
	shelter.Longitude = &in.Longitude
	shelter.Description = in.Description

	if img != nil && len(img.Data) > 0 {
		path, err := s.local.Save(img.Filename, img.Data)
		if err != nil {
			return nil, err
		}
		if shelter.Images != nil && *shelter.Images != path {
			if err := s.local.Remove(*shelter.Images); err != nil {
				log.Warn().Err(err).Int64("shelter_id", id).Msg("Failed to remove old shelter image")
			}
		}
		shelter.Images = &path
	}

	distance := geo.Haversine(in.Latitude, in.Longitude, *shelter.Latitude, *shelter.Longitude)
	shelter.Distance = &distance
	shelter.UpdatedAt = s.now().UTC()

	if err := s.shelters.Update(ctx, shelter); err != nil {
		return nil, err
	}

	return shelter, nil
}

// Delete removes a shelter owned by user along with its local image file
func (s *ShelterService) Delete(ctx context.Context, user *models.User, id int64) error {
	shelter, err := s.getOwned(ctx, user, id, "Shelter not found or you do not have permission to delete it")
	if err != nil {
		return err
	}

	if shelter.Images != nil {
		if err := s.local.Remove(*shelter.Images); err != nil {
			log.Warn().Err(err).Int64("shelter_id", id).Msg("Failed to remove shelter image")
		}
	}

	return s.shelters.Delete(ctx, id)
}

func (s *ShelterService) getOwned(ctx context.Context, user *models.User, id int64, msg string) (*models.Shelter, error) {
	shelter, err := s.shelters.GetOwned(ctx, id, user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound(msg)
		}
		return nil, err
	}
	return shelter, nil
}

func formatKm(km float64) string {
	return strconv.FormatFloat(km, 'f', -1, 64)
}
